package handler

import (
	"context"

	"github.com/iliyamo/holidaze/internal/model"
)

// attachVenues sets Venue on each booking. Bookings whose venue has gone
// are left without one.
func attachVenues(ctx context.Context, venues VenueStore, items []model.Booking) error {
	if len(items) == 0 {
		return nil
	}
	seen := map[string]bool{}
	ids := []string{}
	for _, b := range items {
		if !seen[b.VenueID] {
			seen[b.VenueID] = true
			ids = append(ids, b.VenueID)
		}
	}
	byID, err := venues.GetMany(ctx, ids)
	if err != nil {
		return err
	}
	for i := range items {
		if v, ok := byID[items[i].VenueID]; ok {
			items[i].Venue = &v
		}
	}
	return nil
}

// attachCustomers sets Customer on each booking.
func attachCustomers(ctx context.Context, users UserStore, items []model.Booking) error {
	if len(items) == 0 {
		return nil
	}
	seen := map[uint64]bool{}
	ids := []uint64{}
	for _, b := range items {
		if !seen[b.CustomerID] {
			seen[b.CustomerID] = true
			ids = append(ids, b.CustomerID)
		}
	}
	profiles, err := users.ProfilesByID(ctx, ids)
	if err != nil {
		return err
	}
	for i := range items {
		if p, ok := profiles[items[i].CustomerID]; ok {
			items[i].Customer = &p
		}
	}
	return nil
}

// attachOwners sets Owner on each venue.
func attachOwners(ctx context.Context, users UserStore, venues []model.Venue) error {
	if len(venues) == 0 {
		return nil
	}
	seen := map[uint64]bool{}
	ids := []uint64{}
	for _, v := range venues {
		if !seen[v.OwnerID] {
			seen[v.OwnerID] = true
			ids = append(ids, v.OwnerID)
		}
	}
	profiles, err := users.ProfilesByID(ctx, ids)
	if err != nil {
		return err
	}
	for i := range venues {
		if p, ok := profiles[venues[i].OwnerID]; ok {
			venues[i].Owner = &p
		}
	}
	return nil
}

// attachBookings sets Bookings on each venue. A venue without bookings gets
// an empty list.
func attachBookings(ctx context.Context, bookings BookingStore, venues []model.Venue) error {
	if len(venues) == 0 {
		return nil
	}
	ids := make([]string, len(venues))
	for i, v := range venues {
		ids[i] = v.ID
	}
	byVenue, err := bookings.ListByVenues(ctx, ids)
	if err != nil {
		return err
	}
	for i := range venues {
		venues[i].Bookings = byVenue[venues[i].ID]
		if venues[i].Bookings == nil {
			venues[i].Bookings = []model.Booking{}
		}
	}
	return nil
}
