package repository

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iliyamo/cinema-seat-hold/internal/model"
)

// Catalog keys are the numeric primary keys with a one-letter prefix so
// they cannot be confused across tables: hall 3 is "h3", show 12 is "s12".

// HallKey returns the catalog ID of hall row id.
func HallKey(id uint64) string { return "h" + strconv.FormatUint(id, 10) }

// ShowKey returns the catalog ID of show row id.
func ShowKey(id uint64) string { return "s" + strconv.FormatUint(id, 10) }

// ParseShowKey is the inverse of ShowKey.
func ParseShowKey(key string) (uint64, error) { return parseKey("s", key) }

func parseKey(prefix, key string) (uint64, error) {
	if !strings.HasPrefix(key, prefix) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	id, err := strconv.ParseUint(key[len(prefix):], 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return id, nil
}

// seatType maps the seats.seat_type enum onto model.SeatType.
func seatType(dbType string) model.SeatType {
	switch strings.ToUpper(dbType) {
	case "VIP":
		return model.SeatTypeVIP
	case "TWIN":
		return model.SeatTypeTwin
	case "ACCESSIBLE", "WHEELCHAIR":
		return model.SeatTypeWheelchair
	default:
		return model.SeatTypeStandard
	}
}
