package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/holidaze/internal/availability"
	"github.com/iliyamo/holidaze/internal/model"
)

// BookingRepo stores bookings as DATE ranges. Dates go in as calendar days
// computed by the calculator and come back as midnight in its location.
// Create and Update re-run the availability check while holding a row lock
// on the venue, so two overlapping requests cannot both succeed.
type BookingRepo struct {
	db   *sql.DB
	calc availability.Calculator
}

// NewBookingRepo returns a BookingRepo that reduces dates with calc.
func NewBookingRepo(db *sql.DB, calc availability.Calculator) *BookingRepo {
	return &BookingRepo{db: db, calc: calc}
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

const bookingCols = "b.id, b.venue_id, b.customer_id, b.date_from, b.date_to, b.guests, b.created_at, b.updated_at"

// midnight maps a scanned DATE (UTC midnight) to midnight in the booking
// location.
func (r *BookingRepo) midnight(t time.Time) time.Time {
	return availability.DayOf(t).In(r.calc.Location)
}

// dateArg renders t as the calendar day stored in a DATE column.
func (r *BookingRepo) dateArg(t time.Time) string {
	return r.calc.Day(t).String()
}

func (r *BookingRepo) scan(s rowScanner) (model.Booking, error) {
	var b model.Booking
	var from, to time.Time
	err := s.Scan(&b.ID, &b.VenueID, &b.CustomerID, &from, &to, &b.Guests, &b.Created, &b.Updated)
	if errors.Is(err, sql.ErrNoRows) {
		return b, ErrNotFound
	}
	if err != nil {
		return b, err
	}
	b.DateFrom = r.midnight(from)
	b.DateTo = r.midnight(to)
	return b, nil
}

func (r *BookingRepo) list(ctx context.Context, q queryer, tail string, args ...any) ([]model.Booking, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+bookingCols+" FROM bookings b "+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()
	out := []model.Booking{}
	for rows.Next() {
		b, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListByVenue returns every booking of a venue ordered by arrival.
func (r *BookingRepo) ListByVenue(ctx context.Context, venueID string) ([]model.Booking, error) {
	return r.list(ctx, r.db, "WHERE b.venue_id = ? ORDER BY b.date_from, b.id", venueID)
}

// ListByVenues groups the bookings of several venues by venue ID.
func (r *BookingRepo) ListByVenues(ctx context.Context, venueIDs []string) (map[string][]model.Booking, error) {
	out := make(map[string][]model.Booking, len(venueIDs))
	if len(venueIDs) == 0 {
		return out, nil
	}
	args := make([]any, len(venueIDs))
	for i, id := range venueIDs {
		args[i] = id
	}
	all, err := r.list(ctx, r.db,
		"WHERE b.venue_id IN ("+placeholders(len(venueIDs))+") ORDER BY b.date_from, b.id", args...)
	if err != nil {
		return nil, err
	}
	for _, b := range all {
		out[b.VenueID] = append(out[b.VenueID], b)
	}
	return out, nil
}

// ListByCustomer returns the bookings made by a user, soonest first.
func (r *BookingRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]model.Booking, error) {
	return r.list(ctx, r.db, "WHERE b.customer_id = ? ORDER BY b.date_from, b.id", customerID)
}

// ListForOwner pages through the bookings on every venue owned by ownerID.
func (r *BookingRepo) ListForOwner(ctx context.Context, ownerID uint64, page, limit int) ([]model.Booking, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookings b JOIN venues v ON v.id = b.venue_id WHERE v.owner_id = ?",
		ownerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count owner bookings: %w", err)
	}
	if page < 1 {
		page = 1
	}
	items, err := r.list(ctx, r.db,
		"JOIN venues v ON v.id = b.venue_id WHERE v.owner_id = ? ORDER BY b.date_from, b.id LIMIT ? OFFSET ?",
		ownerID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Get returns one booking or ErrNotFound.
func (r *BookingRepo) Get(ctx context.Context, id string) (model.Booking, error) {
	return r.scan(r.db.QueryRowContext(ctx, "SELECT "+bookingCols+" FROM bookings b WHERE b.id = ?", id))
}

// checkLocked locks the venue row, then validates b against the venue's
// capacity and its other bookings. The booking identified by b.ID, if any,
// is left out of the blocked set.
func (r *BookingRepo) checkLocked(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	var maxGuests int
	err := tx.QueryRowContext(ctx, "SELECT max_guests FROM venues WHERE id = ? FOR UPDATE", b.VenueID).Scan(&maxGuests)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock venue: %w", err)
	}
	if b.Guests > maxGuests {
		return ErrTooManyGuests
	}
	others, err := r.list(ctx, tx, "WHERE b.venue_id = ? AND b.id <> ?", b.VenueID, b.ID)
	if err != nil {
		return err
	}
	return r.calc.IsValidRange(&b.DateFrom, &b.DateTo, r.calc.Expand(model.Intervals(others)))
}

// Create validates and inserts a booking, filling its ID and timestamps.
// It returns ErrNotFound for an unknown venue, ErrTooManyGuests, or one of
// the availability errors.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	b.ID = id.String()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := r.checkLocked(ctx, tx, b); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO bookings (id, venue_id, customer_id, date_from, date_to, guests) VALUES (?,?,?,?,?,?)",
		b.ID, b.VenueID, b.CustomerID, r.dateArg(b.DateFrom), r.dateArg(b.DateTo), b.Guests); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	fresh, err := r.Get(ctx, b.ID)
	if err != nil {
		return err
	}
	*b = fresh
	return nil
}

// Update stores new dates and guest count for an existing booking after
// re-validating them against the venue's other bookings.
func (r *BookingRepo) Update(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := r.checkLocked(ctx, tx, b); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		"UPDATE bookings SET date_from = ?, date_to = ?, guests = ? WHERE id = ? AND venue_id = ?",
		r.dateArg(b.DateFrom), r.dateArg(b.DateTo), b.Guests, b.ID, b.VenueID)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := tx.QueryRowContext(ctx, "SELECT 1 FROM bookings WHERE id = ?", b.ID).Scan(&one); errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	fresh, err := r.Get(ctx, b.ID)
	if err != nil {
		return err
	}
	*b = fresh
	return nil
}

// Delete removes a booking. It returns ErrNotFound when nothing was deleted.
func (r *BookingRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM bookings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
