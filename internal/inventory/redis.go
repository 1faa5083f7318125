package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinema-seat-hold/internal/model"
)

// registerScript seeds a showtime hash only if it does not exist yet.
// ARGV holds field/value pairs.
var registerScript = redis.NewScript(`
    if redis.call('EXISTS', KEYS[1]) == 1 then
        return 0
    end
    redis.call('HSET', KEYS[1], unpack(ARGV))
    return 1
`)

// casScript swaps a seat field from ARGV[2] to ARGV[3].
// Returns 1 on swap, 0 on mismatch, -1 for an unknown seat and -2 for an
// unknown showtime.
var casScript = redis.NewScript(`
    local cur = redis.call('HGET', KEYS[1], ARGV[1])
    if not cur then
        if redis.call('EXISTS', KEYS[1]) == 0 then
            return -2
        end
        return -1
    end
    if cur ~= ARGV[2] then
        return 0
    end
    redis.call('HSET', KEYS[1], ARGV[1], ARGV[3])
    return 1
`)

// Redis is a Store backed by one Redis hash per showtime.  Several
// service replicas can share it; the Lua script makes every transition
// atomic on the server.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

var _ Store = (*Redis)(nil)

// NewRedis returns a Redis store.  prefix namespaces the keys
// (default "seats").
func NewRedis(rdb *redis.Client, prefix string) *Redis {
	if rdb == nil {
		panic("nil redis client passed to inventory.NewRedis")
	}
	if prefix == "" {
		prefix = "seats"
	}
	return &Redis{rdb: rdb, prefix: prefix}
}

func (r *Redis) key(showtimeID string) string {
	return r.prefix + ":showtime:" + showtimeID
}

// encodeState renders a state as "status" or "status:holdID".
func encodeState(s model.SeatState) string {
	if s.HoldID == "" {
		return string(s.Status)
	}
	return string(s.Status) + ":" + s.HoldID
}

func decodeState(v string) (model.SeatState, error) {
	status, hold, _ := strings.Cut(v, ":")
	st := model.SeatState{Status: model.SeatStatus(status), HoldID: hold}
	if err := validState(st); err != nil {
		return model.SeatState{}, err
	}
	return st, nil
}

// Register implements Store.
func (r *Redis) Register(ctx context.Context, showtimeID string, seatIDs, booked []string) error {
	if len(seatIDs) == 0 {
		return fmt.Errorf("register %s: no seats", showtimeID)
	}
	bookedSeats, err := bookedSet(seatIDs, booked)
	if err != nil {
		return err
	}
	args := make([]interface{}, 0, len(seatIDs)*2)
	for _, id := range seatIDs {
		st := model.Available()
		if bookedSeats[id] {
			st = model.SeatState{Status: model.StatusBooked}
		}
		args = append(args, id, encodeState(st))
	}
	n, err := registerScript.Run(ctx, r.rdb, []string{r.key(showtimeID)}, args...).Int()
	if err != nil {
		return fmt.Errorf("register %s: %w", showtimeID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, showtimeID)
	}
	return nil
}

// State implements Store.
func (r *Redis) State(ctx context.Context, showtimeID, seatID string) (model.SeatState, error) {
	v, err := r.rdb.HGet(ctx, r.key(showtimeID), seatID).Result()
	if errors.Is(err, redis.Nil) {
		return model.SeatState{}, r.missing(ctx, showtimeID, seatID)
	}
	if err != nil {
		return model.SeatState{}, err
	}
	return decodeState(v)
}

// Status implements Store.
func (r *Redis) Status(ctx context.Context, showtimeID, seatID string) (model.SeatStatus, error) {
	st, err := r.State(ctx, showtimeID, seatID)
	return st.Status, err
}

func (r *Redis) missing(ctx context.Context, showtimeID, seatID string) error {
	n, err := r.rdb.Exists(ctx, r.key(showtimeID)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrShowtimeNotFound, showtimeID)
	}
	return fmt.Errorf("%w: %s", ErrSeatNotFound, seatID)
}

// CompareAndSet implements Store.
func (r *Redis) CompareAndSet(ctx context.Context, showtimeID, seatID string, expected, next model.SeatState) (bool, error) {
	if err := validState(next); err != nil {
		return false, err
	}
	res, err := casScript.Run(ctx, r.rdb, []string{r.key(showtimeID)},
		seatID, encodeState(expected), encodeState(next)).Int()
	if err != nil {
		return false, fmt.Errorf("cas %s/%s: %w", showtimeID, seatID, err)
	}
	switch res {
	case 1:
		return true, nil
	case 0:
		return false, nil
	case -2:
		return false, fmt.Errorf("%w: %s", ErrShowtimeNotFound, showtimeID)
	default:
		return false, fmt.Errorf("%w: %s", ErrSeatNotFound, seatID)
	}
}

// Snapshot implements Store.
func (r *Redis) Snapshot(ctx context.Context, showtimeID string) (map[string]model.SeatStatus, error) {
	vals, err := r.rdb.HGetAll(ctx, r.key(showtimeID)).Result()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrShowtimeNotFound, showtimeID)
	}
	out := make(map[string]model.SeatStatus, len(vals))
	for seat, v := range vals {
		st, err := decodeState(v)
		if err != nil {
			return nil, fmt.Errorf("seat %s: %w", seat, err)
		}
		out[seat] = st.Status
	}
	return out, nil
}
