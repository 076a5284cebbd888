package handler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/holidaze/internal/model"
	"github.com/iliyamo/holidaze/internal/queue"
	"github.com/iliyamo/holidaze/internal/repository"
	"github.com/iliyamo/holidaze/internal/utils"
)

// In-memory stores with the repositories' error contracts.

type memUsers struct {
	byID map[uint64]model.User
	next uint64
}

func newMemUsers() *memUsers { return &memUsers{byID: map[uint64]model.User{}} }

func (m *memUsers) Create(_ context.Context, u model.User, password string, cost int) (uint64, error) {
	for _, o := range m.byID {
		if o.Name == u.Name {
			return 0, repository.ErrNameExists
		}
		if o.Email == u.Email {
			return 0, repository.ErrEmailExists
		}
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	m.next++
	u.ID, u.PasswordHash, u.IsActive = m.next, hash, true
	m.byID[u.ID] = u
	return u.ID, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return u, repository.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) GetByName(_ context.Context, name string) (model.User, error) {
	for _, u := range m.byID {
		if u.Name == name {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (m *memUsers) UpdateProfile(_ context.Context, id uint64, upd model.ProfileUpdate) (model.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return u, repository.ErrNotFound
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.Avatar != nil {
		u.Avatar = upd.Avatar
	}
	if upd.Banner != nil {
		u.Banner = upd.Banner
	}
	if upd.VenueManager != nil {
		u.Role = model.RoleCustomer
		if *upd.VenueManager {
			u.Role = model.RoleManager
		}
	}
	m.byID[id] = u
	return u, nil
}

func (m *memUsers) Counts(context.Context, uint64) (model.ProfileCount, error) {
	return model.ProfileCount{}, nil
}

func (m *memUsers) ProfilesByID(_ context.Context, ids []uint64) (map[uint64]model.Profile, error) {
	out := map[uint64]model.Profile{}
	for _, id := range ids {
		if u, ok := m.byID[id]; ok {
			out[id] = u.Profile()
		}
	}
	return out, nil
}

type memToken struct {
	userID  uint64
	exp     time.Time
	revoked bool
}

type memTokens struct{ byHash map[string]*memToken }

func newMemTokens() *memTokens { return &memTokens{byHash: map[string]*memToken{}} }

func (m *memTokens) StoreRefresh(_ context.Context, userID uint64, hash string, exp time.Time) error {
	m.byHash[hash] = &memToken{userID: userID, exp: exp}
	return nil
}

func (m *memTokens) ValidateRefresh(_ context.Context, hash string) (uint64, error) {
	t, ok := m.byHash[hash]
	if !ok || t.revoked || time.Now().After(t.exp) {
		return 0, repository.ErrNotFound
	}
	return t.userID, nil
}

func (m *memTokens) Rotate(ctx context.Context, oldHash, newHash string, exp time.Time) (uint64, error) {
	uid, err := m.ValidateRefresh(ctx, oldHash)
	if err != nil {
		return 0, err
	}
	m.byHash[oldHash].revoked = true
	return uid, m.StoreRefresh(ctx, uid, newHash, exp)
}

func (m *memTokens) RevokeByHash(_ context.Context, hash string) error {
	if t, ok := m.byHash[hash]; ok {
		t.revoked = true
	}
	return nil
}

func (m *memTokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	for _, t := range m.byHash {
		if t.userID == userID {
			t.revoked = true
		}
	}
	return nil
}

type memVenues struct {
	order []string
	byID  map[string]model.Venue
}

func newMemVenues() *memVenues { return &memVenues{byID: map[string]model.Venue{}} }

func (m *memVenues) Create(_ context.Context, v *model.Venue) error {
	v.ID = uuid.NewString()
	v.Created = time.Now().UTC()
	v.Updated = v.Created
	m.order = append(m.order, v.ID)
	m.byID[v.ID] = *v
	return nil
}

func (m *memVenues) Get(_ context.Context, id string) (model.Venue, error) {
	v, ok := m.byID[id]
	if !ok {
		return v, repository.ErrNotFound
	}
	return v, nil
}

func (m *memVenues) List(_ context.Context, q repository.VenueQuery) ([]model.Venue, int, error) {
	all := []model.Venue{}
	for _, id := range m.order {
		v, ok := m.byID[id]
		if !ok || (q.OwnerID != 0 && v.OwnerID != q.OwnerID) {
			continue
		}
		all = append(all, v)
	}
	return window(all, q.Page, q.Limit), len(all), nil
}

func (m *memVenues) GetMany(_ context.Context, ids []string) (map[string]model.Venue, error) {
	out := map[string]model.Venue{}
	for _, id := range ids {
		if v, ok := m.byID[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func (m *memVenues) Update(_ context.Context, id string, ownerID uint64, in model.VenueInput) (model.Venue, error) {
	v, ok := m.byID[id]
	if !ok {
		return v, repository.ErrNotFound
	}
	if v.OwnerID != ownerID {
		return v, repository.ErrForbidden
	}
	in.Apply(&v)
	m.byID[id] = v
	return v, nil
}

func (m *memVenues) Delete(_ context.Context, id string, ownerID uint64) (int64, error) {
	v, ok := m.byID[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if v.OwnerID != ownerID {
		return 0, repository.ErrForbidden
	}
	delete(m.byID, id)
	return 0, nil
}

type memBookings struct {
	venues *memVenues
	order  []string
	byID   map[string]model.Booking
}

func newMemBookings(v *memVenues) *memBookings {
	return &memBookings{venues: v, byID: map[string]model.Booking{}}
}

func (m *memBookings) filter(keep func(model.Booking) bool) []model.Booking {
	out := []model.Booking{}
	for _, id := range m.order {
		if b, ok := m.byID[id]; ok && keep(b) {
			out = append(out, b)
		}
	}
	return out
}

func (m *memBookings) ListByVenue(_ context.Context, venueID string) ([]model.Booking, error) {
	return m.filter(func(b model.Booking) bool { return b.VenueID == venueID }), nil
}

func (m *memBookings) ListByVenues(_ context.Context, venueIDs []string) (map[string][]model.Booking, error) {
	out := map[string][]model.Booking{}
	for _, id := range venueIDs {
		out[id] = m.filter(func(b model.Booking) bool { return b.VenueID == id })
	}
	return out, nil
}

func (m *memBookings) ListByCustomer(_ context.Context, customerID uint64) ([]model.Booking, error) {
	return m.filter(func(b model.Booking) bool { return b.CustomerID == customerID }), nil
}

func (m *memBookings) ListForOwner(_ context.Context, ownerID uint64, page, limit int) ([]model.Booking, int, error) {
	all := m.filter(func(b model.Booking) bool { return m.venues.byID[b.VenueID].OwnerID == ownerID })
	return window(all, page, limit), len(all), nil
}

func (m *memBookings) Get(_ context.Context, id string) (model.Booking, error) {
	b, ok := m.byID[id]
	if !ok {
		return b, repository.ErrNotFound
	}
	return b, nil
}

func (m *memBookings) Create(_ context.Context, b *model.Booking) error {
	b.ID = uuid.NewString()
	m.order = append(m.order, b.ID)
	m.byID[b.ID] = *b
	return nil
}

func (m *memBookings) Update(_ context.Context, b *model.Booking) error {
	if _, ok := m.byID[b.ID]; !ok {
		return repository.ErrNotFound
	}
	m.byID[b.ID] = *b
	return nil
}

func (m *memBookings) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func window[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// recPublisher records every published event.
type recPublisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
}

func (p *recPublisher) Publish(_ context.Context, ev queue.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recPublisher) last() queue.BookingEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return queue.BookingEvent{}
	}
	return p.events[len(p.events)-1]
}
