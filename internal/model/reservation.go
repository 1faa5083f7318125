package model

import "time"

// Reservation records a committed hold: the seats a customer paid for
// on a showtime.  It is written by the booking finalizer after the seats
// have been moved to booked in the inventory.
//
// Fields:
//  HoldID           – hold that was committed; unique per reservation.
//  OwnerToken       – customer identity taken from the hold.
//  ShowtimeID       – showtime being reserved.
//  SeatIDs          – seats contained in the reservation.
//  SeatPrices       – price charged per seat ID.
//  TotalAmountCents – sum of the seat prices.
//  PaymentRef       – external payment reference, if any.
//  ConfirmedAt      – commit timestamp.
type Reservation struct {
    HoldID           string
    OwnerToken       string
    ShowtimeID       string
    SeatIDs          []string
    SeatPrices       map[string]uint32
    TotalAmountCents uint32
    PaymentRef       string
    ConfirmedAt      time.Time
}
