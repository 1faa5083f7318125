package catalog

import (
	"fmt"
	"strings"

	"github.com/iliyamo/cinema-seat-hold/internal/model"
)

// aisleWidth is the number of empty grid columns inserted after the
// middle seat of every row.
const aisleWidth = 2

// GenerateHallSeats builds the seat grid of a hall.  Seats right of the
// middle are shifted by the aisle.  When vipRows is set the last two rows
// are VIP; the two seats at each end of the back row are Twin and the two
// ends of the front row are Wheelchair.
func GenerateHallSeats(hallID string, rows, seatsPerRow int, vipRows bool) []model.Seat {
	seats := make([]model.Seat, 0, rows*seatsPerRow)
	for r := 0; r < rows; r++ {
		label := RowLabel(r)
		for n := 1; n <= seatsPerRow; n++ {
			typ := model.SeatTypeStandard
			if vipRows && r >= rows-2 {
				typ = model.SeatTypeVIP
			}
			if r == rows-1 && (n <= 2 || n > seatsPerRow-2) {
				typ = model.SeatTypeTwin
			}
			if r == 0 && (n == 1 || n == seatsPerRow) {
				typ = model.SeatTypeWheelchair
			}
			seats = append(seats, model.Seat{
				ID:     SeatID(hallID, label, n),
				HallID: hallID,
				Row:    label,
				Number: n,
				GridX:  GridX(n, seatsPerRow),
				GridY:  r + 1,
				Type:   typ,
			})
		}
	}
	return seats
}

// GridX returns the layout column of seat number n in a row of
// seatsPerRow seats.
func GridX(n, seatsPerRow int) int {
	if n > seatsPerRow/2 {
		return n + aisleWidth
	}
	return n
}

// SeatID formats the stable seat identifier, e.g. "h1-E5".
func SeatID(hallID, row string, number int) string {
	return fmt.Sprintf("%s-%s%d", hallID, strings.ToUpper(row), number)
}

// RowLabel converts a zero-based row index to a label like A, B, ..., Z, AA.
func RowLabel(i int) string {
	if i < 0 {
		return ""
	}
	res := []rune{}
	for {
		res = append(res, rune('A'+i%26))
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	for j, k := 0, len(res)-1; j < k; j, k = j+1, k-1 {
		res[j], res[k] = res[k], res[j]
	}
	return string(res)
}

// RowIndex is the inverse of RowLabel.  It reports false for labels that
// contain anything but ASCII letters.
func RowIndex(label string) (int, bool) {
	s := strings.ToUpper(strings.TrimSpace(label))
	if s == "" {
		return -1, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch < 'A' || ch > 'Z' {
			return -1, false
		}
		n = n*26 + int(ch-'A'+1)
	}
	return n - 1, true
}
