package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/iliyamo/holidaze/internal/model"
)

// VenueRepo provides CRUD and search over the venues table. Prices are
// stored as integer cents and exposed as float64 in model.Venue.
type VenueRepo struct {
	db *sql.DB
}

// NewVenueRepo returns a new VenueRepo bound to the given database.
func NewVenueRepo(db *sql.DB) *VenueRepo { return &VenueRepo{db: db} }

const venueCols = `v.id, v.owner_id, v.name, v.description, v.media, v.price_cents, v.max_guests, v.rating,
	v.wifi, v.parking, v.breakfast, v.pets,
	v.address, v.city, v.zip, v.country, v.continent, v.lat, v.lng,
	v.created_at, v.updated_at,
	(SELECT COUNT(*) FROM bookings bc WHERE bc.venue_id = v.id)`

func scanVenue(s rowScanner) (model.Venue, error) {
	var (
		v          model.Venue
		mediaJSON  []byte
		priceCents uint32
		bookings   int
	)
	err := s.Scan(&v.ID, &v.OwnerID, &v.Name, &v.Description, &mediaJSON, &priceCents, &v.MaxGuests, &v.Rating,
		&v.Meta.Wifi, &v.Meta.Parking, &v.Meta.Breakfast, &v.Meta.Pets,
		&v.Location.Address, &v.Location.City, &v.Location.Zip, &v.Location.Country, &v.Location.Continent,
		&v.Location.Lat, &v.Location.Lng,
		&v.Created, &v.Updated, &bookings)
	if errors.Is(err, sql.ErrNoRows) {
		return v, ErrNotFound
	}
	if err != nil {
		return v, err
	}
	v.Media = []model.Media{}
	if len(mediaJSON) > 0 {
		if err := json.Unmarshal(mediaJSON, &v.Media); err != nil {
			return v, fmt.Errorf("decode media of venue %s: %w", v.ID, err)
		}
	}
	v.Price = float64(priceCents) / 100.0
	v.Count = &model.VenueCount{Bookings: bookings}
	return v, nil
}

func toCents(price float64) uint32 { return uint32(math.Round(price * 100)) }

func encodeMedia(m []model.Media) ([]byte, error) {
	if m == nil {
		m = []model.Media{}
	}
	return json.Marshal(m)
}

// Create inserts the venue and fills its ID and timestamps.
func (r *VenueRepo) Create(ctx context.Context, v *model.Venue) error {
	if v.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		v.ID = id.String()
	}
	media, err := encodeMedia(v.Media)
	if err != nil {
		return err
	}
	const q = `INSERT INTO venues (id, owner_id, name, description, media, price_cents, max_guests, rating,
		wifi, parking, breakfast, pets, address, city, zip, country, continent, lat, lng)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
	if _, err := r.db.ExecContext(ctx, q,
		v.ID, v.OwnerID, v.Name, v.Description, media, toCents(v.Price), v.MaxGuests, v.Rating,
		v.Meta.Wifi, v.Meta.Parking, v.Meta.Breakfast, v.Meta.Pets,
		v.Location.Address, v.Location.City, v.Location.Zip, v.Location.Country, v.Location.Continent,
		v.Location.Lat, v.Location.Lng,
	); err != nil {
		return fmt.Errorf("insert venue: %w", err)
	}
	fresh, err := r.Get(ctx, v.ID)
	if err != nil {
		return err
	}
	*v = fresh
	return nil
}

// Get returns one venue or ErrNotFound.
func (r *VenueRepo) Get(ctx context.Context, id string) (model.Venue, error) {
	return scanVenue(r.db.QueryRowContext(ctx, "SELECT "+venueCols+" FROM venues v WHERE v.id = ?", id))
}

// List returns one page of venues matching q and the total match count.
func (r *VenueRepo) List(ctx context.Context, q VenueQuery) ([]model.Venue, int, error) {
	cond, args := q.where()

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM venues v WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count venues: %w", err)
	}

	limit, offset := q.window()
	dataSQL := "SELECT " + venueCols + " FROM venues v WHERE " + cond +
		" ORDER BY " + q.orderBy() + " LIMIT ? OFFSET ?"
	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, fmt.Errorf("list venues: %w", err)
	}
	defer rows.Close()

	out := make([]model.Venue, 0, limit)
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// GetMany loads the venues with the given IDs, keyed by ID. Missing IDs are
// simply absent from the result.
func (r *VenueRepo) GetMany(ctx context.Context, ids []string) (map[string]model.Venue, error) {
	out := make(map[string]model.Venue, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+venueCols+" FROM venues v WHERE v.id IN ("+placeholders(len(ids))+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		out[v.ID] = v
	}
	return out, rows.Err()
}

// ownerOf returns the owner of a venue, locking the row when q is a tx and
// lock is set.
func ownerOf(ctx context.Context, q queryRower, id string, lock bool) (uint64, error) {
	query := "SELECT owner_id FROM venues WHERE id = ?"
	if lock {
		query += " FOR UPDATE"
	}
	var owner uint64
	err := q.QueryRowContext(ctx, query, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return owner, err
}

// Update overwrites the editable fields of a venue owned by ownerID. It
// returns ErrNotFound for unknown venues and ErrForbidden when the caller is
// not the owner.
func (r *VenueRepo) Update(ctx context.Context, id string, ownerID uint64, in model.VenueInput) (model.Venue, error) {
	owner, err := ownerOf(ctx, r.db, id, false)
	if err != nil {
		return model.Venue{}, err
	}
	if owner != ownerID {
		return model.Venue{}, ErrForbidden
	}
	var v model.Venue
	in.Apply(&v)
	media, err := encodeMedia(v.Media)
	if err != nil {
		return model.Venue{}, err
	}
	const q = `UPDATE venues SET name=?, description=?, media=?, price_cents=?, max_guests=?, rating=?,
		wifi=?, parking=?, breakfast=?, pets=?,
		address=?, city=?, zip=?, country=?, continent=?, lat=?, lng=?
		WHERE id=? AND owner_id=?`
	if _, err := r.db.ExecContext(ctx, q,
		v.Name, v.Description, media, toCents(v.Price), v.MaxGuests, v.Rating,
		v.Meta.Wifi, v.Meta.Parking, v.Meta.Breakfast, v.Meta.Pets,
		v.Location.Address, v.Location.City, v.Location.Zip, v.Location.Country, v.Location.Continent,
		v.Location.Lat, v.Location.Lng,
		id, ownerID,
	); err != nil {
		return model.Venue{}, fmt.Errorf("update venue: %w", err)
	}
	return r.Get(ctx, id)
}

// Delete removes a venue owned by ownerID together with its bookings and
// returns the number of bookings removed.
func (r *VenueRepo) Delete(ctx context.Context, id string, ownerID uint64) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	owner, err := ownerOf(ctx, tx, id, true)
	if err != nil {
		return 0, err
	}
	if owner != ownerID {
		return 0, ErrForbidden
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM bookings WHERE venue_id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("delete venue bookings: %w", err)
	}
	removed, _ := res.RowsAffected()
	if _, err := tx.ExecContext(ctx, "DELETE FROM venues WHERE id = ?", id); err != nil {
		return 0, fmt.Errorf("delete venue: %w", err)
	}
	return removed, tx.Commit()
}
