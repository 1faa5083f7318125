package inventory

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/iliyamo/cinema-seat-hold/internal/model"
)

// DefaultShards is the shard count used when NewMemory is given zero.
const DefaultShards = 64

type seatKey struct {
	showtime string
	seat     string
}

// cell holds the current state of one (showtime, seat) pair.  States are
// immutable values behind an atomic pointer; a transition swaps the
// pointer.
type cell struct {
	state atomic.Pointer[model.SeatState]
}

type shard struct {
	mu    sync.RWMutex
	cells map[seatKey]*cell
}

// Memory is an in-process Store.  Seat cells are spread over shards
// whose locks only guard the cell maps; transitions are lock-free
// compare-and-swap on the cell itself.
type Memory struct {
	shards []*shard

	mu        sync.RWMutex
	showtimes map[string][]string // showtime -> seat IDs in registration order
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory inventory with n shards.
func NewMemory(n int) *Memory {
	if n <= 0 {
		n = DefaultShards
	}
	m := &Memory{
		shards:    make([]*shard, n),
		showtimes: make(map[string][]string),
	}
	for i := range m.shards {
		m.shards[i] = &shard{cells: make(map[seatKey]*cell)}
	}
	return m
}

func (m *Memory) shardFor(k seatKey) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(k.showtime))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(k.seat))
	return m.shards[h.Sum32()%uint32(len(m.shards))]
}

// Register implements Store.
func (m *Memory) Register(_ context.Context, showtimeID string, seatIDs, booked []string) error {
	bookedSeats, err := bookedSet(seatIDs, booked)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.showtimes[showtimeID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, showtimeID)
	}
	ids := make([]string, 0, len(seatIDs))
	for _, id := range seatIDs {
		st := model.Available()
		if bookedSeats[id] {
			st = model.SeatState{Status: model.StatusBooked}
		}
		c := &cell{}
		c.state.Store(&st)
		k := seatKey{showtimeID, id}
		sh := m.shardFor(k)
		sh.mu.Lock()
		sh.cells[k] = c
		sh.mu.Unlock()
		ids = append(ids, id)
	}
	m.showtimes[showtimeID] = ids
	return nil
}

func (m *Memory) lookup(showtimeID, seatID string) (*cell, error) {
	k := seatKey{showtimeID, seatID}
	sh := m.shardFor(k)
	sh.mu.RLock()
	c, ok := sh.cells[k]
	sh.mu.RUnlock()
	if ok {
		return c, nil
	}
	m.mu.RLock()
	_, known := m.showtimes[showtimeID]
	m.mu.RUnlock()
	if !known {
		return nil, fmt.Errorf("%w: %s", ErrShowtimeNotFound, showtimeID)
	}
	return nil, fmt.Errorf("%w: %s", ErrSeatNotFound, seatID)
}

// State implements Store.
func (m *Memory) State(_ context.Context, showtimeID, seatID string) (model.SeatState, error) {
	c, err := m.lookup(showtimeID, seatID)
	if err != nil {
		return model.SeatState{}, err
	}
	return *c.state.Load(), nil
}

// Status implements Store.
func (m *Memory) Status(ctx context.Context, showtimeID, seatID string) (model.SeatStatus, error) {
	st, err := m.State(ctx, showtimeID, seatID)
	return st.Status, err
}

// CompareAndSet implements Store.
func (m *Memory) CompareAndSet(_ context.Context, showtimeID, seatID string, expected, next model.SeatState) (bool, error) {
	if err := validState(next); err != nil {
		return false, err
	}
	c, err := m.lookup(showtimeID, seatID)
	if err != nil {
		return false, err
	}
	nv := next
	for {
		cur := c.state.Load()
		if *cur != expected {
			return false, nil
		}
		if c.state.CompareAndSwap(cur, &nv) {
			return true, nil
		}
	}
}

// Snapshot implements Store.  The result is not a consistent cut across
// seats; each entry is the state of that seat at the moment it was read.
func (m *Memory) Snapshot(_ context.Context, showtimeID string) (map[string]model.SeatStatus, error) {
	m.mu.RLock()
	ids, ok := m.showtimes[showtimeID]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrShowtimeNotFound, showtimeID)
	}
	out := make(map[string]model.SeatStatus, len(ids))
	for _, id := range ids {
		c, err := m.lookup(showtimeID, id)
		if err != nil {
			return nil, err
		}
		out[id] = c.state.Load().Status
	}
	return out, nil
}
