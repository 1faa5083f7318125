package model

import "time"

// Showtime is a scheduled screening of a movie in a hall.  Seat status
// is tracked per showtime; the set of seats comes from the hall.
//
// Fields:
//  ID         – showtime identifier.
//  MovieTitle – title shown to customers and in audit lines.
//  HallID     – hall where the screening takes place.
//  StartsAt   – start of the screening (UTC).
//  PriceCents – standard seat price in cents.
//  VIPCents   – VIP seat price in cents.
type Showtime struct {
    ID         string    `json:"id"`
    MovieTitle string    `json:"movie_title"`
    HallID     string    `json:"hall_id"`
    StartsAt   time.Time `json:"starts_at"`
    PriceCents uint32    `json:"price_cents"`
    VIPCents   uint32    `json:"vip_price_cents"`
}

// PriceFor returns the price of a seat of the given type.  VIP and Twin
// seats use the VIP price when one is set.
func (s Showtime) PriceFor(t SeatType) uint32 {
    if (t == SeatTypeVIP || t == SeatTypeTwin) && s.VIPCents > 0 {
        return s.VIPCents
    }
    return s.PriceCents
}
