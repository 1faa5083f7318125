package repository

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "sort"
    "time"

    "github.com/go-sql-driver/mysql"

    "github.com/iliyamo/cinema-seat-hold/internal/catalog"
    "github.com/iliyamo/cinema-seat-hold/internal/model"
)

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// ReservationRepo persists confirmed reservations and their seats.  All
// timestamp fields are assumed to be stored in UTC.
type ReservationRepo struct {
    db        *sql.DB
    seats     *SeatRepo
    shows     *ShowRepo
    showSeats *ShowSeatRepo
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo {
    return &ReservationRepo{db: db, seats: NewSeatRepo(db), shows: NewShowRepo(db), showSeats: NewShowSeatRepo(db)}
}

// ReservationRecord mirrors the schema of the reservations table.  It is
// used internally by the repository when constructing rows.  Business
// logic should use the model.Reservation type instead.
type ReservationRecord struct {
    ID               uint64
    HoldID           string
    Owner            string
    ShowID           uint64
    Status           string
    TotalAmountCents uint32
    PaymentRef       sql.NullString
    ConfirmedAt      time.Time
}

// ReservationSeatRecord mirrors the reservation_seats table.  It maps a
// reservation to a specific seat and price.
type ReservationSeatRecord struct {
    ReservationID uint64
    ShowID        uint64
    SeatID        uint64
    PriceCents    uint32
}

// Record writes a confirmed reservation, its seats and the RESERVED show
// seat statuses in one transaction.  Recording the same hold twice yields
// ErrConflict.  It implements booking.Recorder.
func (r *ReservationRepo) Record(ctx context.Context, res model.Reservation) error {
    showID, err := ParseShowKey(res.ShowtimeID)
    if err != nil {
        return err
    }
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return fmt.Errorf("begin: %w", err)
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    hallID, err := r.shows.HallIDTx(ctx, tx, showID)
    if err != nil {
        return err
    }
    hallSeats, err := r.seats.ListByHallTx(ctx, tx, hallID)
    if err != nil {
        return err
    }
    byKey := make(map[string]uint64, len(hallSeats))
    for _, s := range hallSeats {
        byKey[catalog.SeatID(HallKey(hallID), s.RowLabel, int(s.SeatNumber))] = s.ID
    }

    rec := &ReservationRecord{
        HoldID:           res.HoldID,
        Owner:            res.OwnerToken,
        ShowID:           showID,
        Status:           "CONFIRMED",
        TotalAmountCents: res.TotalAmountCents,
        PaymentRef:       sql.NullString{String: res.PaymentRef, Valid: res.PaymentRef != ""},
        ConfirmedAt:      res.ConfirmedAt.UTC(),
    }
    if err := r.CreateTx(ctx, tx, rec); err != nil {
        return err
    }

    seatRecs := make([]ReservationSeatRecord, 0, len(res.SeatIDs))
    dbIDs := make([]uint64, 0, len(res.SeatIDs))
    for _, key := range res.SeatIDs {
        id, ok := byKey[key]
        if !ok {
            return fmt.Errorf("%w: %s", catalog.ErrSeatNotFound, key)
        }
        seatRecs = append(seatRecs, ReservationSeatRecord{
            ReservationID: rec.ID,
            ShowID:        showID,
            SeatID:        id,
            PriceCents:    res.SeatPrices[key],
        })
        dbIDs = append(dbIDs, id)
    }
    sort.Slice(dbIDs, func(i, j int) bool { return dbIDs[i] < dbIDs[j] })
    if err := r.CreateSeatsBulkTx(ctx, tx, seatRecs); err != nil {
        return err
    }
    if err := r.showSeats.BulkUpdateStatusTx(ctx, tx, showID, dbIDs, ShowSeatReserved); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return fmt.Errorf("commit: %w", err)
    }
    committed = true
    return nil
}

// CreateTx inserts a new reservation within the scope of an existing
// transaction and populates the generated ID.  The caller must commit or
// rollback the transaction.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *ReservationRecord) error {
    const q = `INSERT INTO reservations (hold_id, owner, show_id, status, total_amount_cents, payment_ref, confirmed_at)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
    result, err := tx.ExecContext(ctx, q, res.HoldID, res.Owner, res.ShowID, res.Status, res.TotalAmountCents, res.PaymentRef, res.ConfirmedAt)
    if err != nil {
        var me *mysql.MySQLError
        if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
            return fmt.Errorf("%w: hold %s already recorded", ErrConflict, res.HoldID)
        }
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    res.ID = uint64(id)
    return nil
}

// CreateSeatsBulkTx inserts multiple reservation_seats rows in a single
// statement.  Passing an empty slice has no effect and returns nil.
func (r *ReservationRepo) CreateSeatsBulkTx(ctx context.Context, tx *sql.Tx, seats []ReservationSeatRecord) error {
    if len(seats) == 0 {
        return nil
    }
    query := `INSERT INTO reservation_seats (reservation_id, show_id, seat_id, price_cents) VALUES `
    args := make([]interface{}, 0, len(seats)*4)
    for i, s := range seats {
        if i > 0 {
            query += ","
        }
        query += "(?, ?, ?, ?)"
        args = append(args, s.ReservationID, s.ShowID, s.SeatID, s.PriceCents)
    }
    _, err := tx.ExecContext(ctx, query, args...)
    return err
}
