package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-seat-hold/internal/model"
)

func TestGenerateHallSeatsLayout(t *testing.T) {
	seats := GenerateHallSeats("h1", 10, 12, true)
	require.Len(t, seats, 120)

	byID := map[string]model.Seat{}
	for _, s := range seats {
		byID[s.ID] = s
	}

	assert.Equal(t, model.SeatTypeWheelchair, byID["h1-A1"].Type)
	assert.Equal(t, model.SeatTypeWheelchair, byID["h1-A12"].Type)
	assert.Equal(t, model.SeatTypeStandard, byID["h1-A2"].Type)
	assert.Equal(t, model.SeatTypeVIP, byID["h1-I5"].Type)
	assert.Equal(t, model.SeatTypeTwin, byID["h1-J1"].Type)
	assert.Equal(t, model.SeatTypeTwin, byID["h1-J12"].Type)
	assert.Equal(t, model.SeatTypeVIP, byID["h1-J5"].Type)

	// aisle after the sixth seat
	assert.Equal(t, 6, byID["h1-C6"].GridX)
	assert.Equal(t, 9, byID["h1-C7"].GridX)
	assert.Equal(t, 3, byID["h1-C7"].GridY)
}

func TestGenerateHallSeatsWithoutVIP(t *testing.T) {
	for _, s := range GenerateHallSeats("h3", 12, 12, false) {
		assert.NotEqual(t, model.SeatTypeVIP, s.Type, s.ID)
	}
}

func TestRowLabelRoundTrip(t *testing.T) {
	cases := map[int]string{0: "A", 4: "E", 25: "Z", 26: "AA", 27: "AB", 701: "ZZ"}
	for idx, label := range cases {
		assert.Equal(t, label, RowLabel(idx))
		got, ok := RowIndex(label)
		require.True(t, ok)
		assert.Equal(t, idx, got)
	}
	_, ok := RowIndex("A1")
	assert.False(t, ok)
	assert.Equal(t, "", RowLabel(-1))
}

func TestFixtureCatalogLookups(t *testing.T) {
	c, err := Load(context.Background(), Fixture{})
	require.NoError(t, err)

	show, err := c.Showtime("s1")
	require.NoError(t, err)
	assert.Equal(t, "h1", show.HallID)

	seats, err := c.SeatsForShowtime("s1")
	require.NoError(t, err)
	assert.Len(t, seats, 120)
	assert.Equal(t, "h1-A1", seats[0].ID)

	_, err = c.SeatForShowtime("s1", "h1-E5")
	assert.NoError(t, err)
	_, err = c.SeatForShowtime("s1", "h2-A1")
	assert.ErrorIs(t, err, ErrSeatNotFound)
	_, err = c.SeatForShowtime("nope", "h1-A1")
	assert.ErrorIs(t, err, ErrShowtimeNotFound)
	_, err = c.HallSeats("h9")
	assert.ErrorIs(t, err, ErrHallNotFound)

	assert.Len(t, c.Showtimes(), 5)
}

func TestNewRejectsInconsistentRows(t *testing.T) {
	halls := []model.Hall{{ID: "h1"}}

	_, err := New(halls, []model.Seat{{ID: "x", HallID: "h2"}}, nil)
	assert.Error(t, err)

	_, err = New(halls, nil, []model.Showtime{{ID: "s1", HallID: "h2"}})
	assert.Error(t, err)

	_, err = New(append(halls, model.Hall{ID: "h1"}), nil, nil)
	assert.Error(t, err)

	_, err = New(halls, []model.Seat{{ID: "a", HallID: "h1"}, {ID: "a", HallID: "h1"}}, nil)
	assert.Error(t, err)
}

func TestShowtimePriceFor(t *testing.T) {
	s := model.Showtime{PriceCents: 1800, VIPCents: 3200}
	assert.EqualValues(t, 3200, s.PriceFor(model.SeatTypeVIP))
	assert.EqualValues(t, 3200, s.PriceFor(model.SeatTypeTwin))
	assert.EqualValues(t, 1800, s.PriceFor(model.SeatTypeWheelchair))
	assert.EqualValues(t, 1800, model.Showtime{PriceCents: 1800}.PriceFor(model.SeatTypeVIP))
}
