package handler

import (
	"context"
	"time"

	"github.com/iliyamo/holidaze/internal/model"
	"github.com/iliyamo/holidaze/internal/repository"
)

// The handlers depend on these narrow views of the repositories.

type UserStore interface {
	Create(ctx context.Context, u model.User, password string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	GetByName(ctx context.Context, name string) (model.User, error)
	UpdateProfile(ctx context.Context, id uint64, upd model.ProfileUpdate) (model.User, error)
	Counts(ctx context.Context, id uint64) (model.ProfileCount, error)
	ProfilesByID(ctx context.Context, ids []uint64) (map[uint64]model.Profile, error)
}

type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	Rotate(ctx context.Context, oldHash, newHash string, exp time.Time) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

type VenueStore interface {
	Create(ctx context.Context, v *model.Venue) error
	Get(ctx context.Context, id string) (model.Venue, error)
	List(ctx context.Context, q repository.VenueQuery) ([]model.Venue, int, error)
	GetMany(ctx context.Context, ids []string) (map[string]model.Venue, error)
	Update(ctx context.Context, id string, ownerID uint64, in model.VenueInput) (model.Venue, error)
	Delete(ctx context.Context, id string, ownerID uint64) (int64, error)
}

type BookingStore interface {
	ListByVenue(ctx context.Context, venueID string) ([]model.Booking, error)
	ListByVenues(ctx context.Context, venueIDs []string) (map[string][]model.Booking, error)
	ListByCustomer(ctx context.Context, customerID uint64) ([]model.Booking, error)
	ListForOwner(ctx context.Context, ownerID uint64, page, limit int) ([]model.Booking, int, error)
	Get(ctx context.Context, id string) (model.Booking, error)
	Create(ctx context.Context, b *model.Booking) error
	Update(ctx context.Context, b *model.Booking) error
	Delete(ctx context.Context, id string) error
}

var (
	_ UserStore    = (*repository.UserRepo)(nil)
	_ TokenStore   = (*repository.TokenRepo)(nil)
	_ VenueStore   = (*repository.VenueRepo)(nil)
	_ BookingStore = (*repository.BookingRepo)(nil)
)
