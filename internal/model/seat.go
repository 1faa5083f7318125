package model

// SeatType classifies a physical seat.  It drives pricing (VIP) and layout
// rendering (Twin seats span two grid cells) but has no effect on holds.
type SeatType string

const (
    SeatTypeStandard   SeatType = "Standard"
    SeatTypeVIP        SeatType = "VIP"
    SeatTypeTwin       SeatType = "Twin"
    SeatTypeWheelchair SeatType = "Wheelchair"
)

// Seat describes a physical seat in a hall.  Seats are uniquely
// identified by their hall, row label and seat number, which together
// form the stable ID (e.g. "h1-E5").  Seats are immutable once the hall
// layout is defined.
//
// Fields:
//  ID     – stable identifier "<hallID>-<row><number>".
//  HallID – hall to which this seat belongs.
//  Row    – letter designating the row (A, B, ...).
//  Number – 1-based position of the seat within the row.
//  GridX  – column in the rendered layout (aisle gaps included).
//  GridY  – row in the rendered layout (1-based).
//  Type   – Standard, VIP, Twin or Wheelchair.
type Seat struct {
    ID     string   `json:"id"`
    HallID string   `json:"hall_id"`
    Row    string   `json:"row"`
    Number int      `json:"number"`
    GridX  int      `json:"grid_x"`
    GridY  int      `json:"grid_y"`
    Type   SeatType `json:"type"`
}

// SeatStatus is the per-showtime availability of a seat.
type SeatStatus string

const (
    StatusAvailable SeatStatus = "available"
    StatusHeld      SeatStatus = "held"
    StatusBooked    SeatStatus = "booked"
)

// Valid reports whether s is one of the three known statuses.
func (s SeatStatus) Valid() bool {
    switch s {
    case StatusAvailable, StatusHeld, StatusBooked:
        return true
    }
    return false
}

// SeatState is the value stored per (showtime, seat).  HoldID tags a held
// or booked seat with the hold that moved it there so that one hold can
// never transition a seat claimed by another.  Available seats carry an
// empty HoldID.
type SeatState struct {
    Status SeatStatus
    HoldID string
}

// Available is the state of a free seat.
func Available() SeatState { return SeatState{Status: StatusAvailable} }

// HeldBy returns the state of a seat held under holdID.
func HeldBy(holdID string) SeatState { return SeatState{Status: StatusHeld, HoldID: holdID} }

// BookedBy returns the state of a seat committed under holdID.
func BookedBy(holdID string) SeatState { return SeatState{Status: StatusBooked, HoldID: holdID} }
