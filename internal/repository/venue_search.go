package repository

import (
	"strings"

	"github.com/iliyamo/holidaze/internal/availability"
)

// VenueQuery defines filters, ordering & pagination for listing venues.
// Zero-valued filters are ignored. From/To is the span a stay would occupy
// (see availability.Calculator.Span) and is only applied when HasDates is set.
type VenueQuery struct {
	Page      int
	Limit     int
	Sort      string
	SortOrder string

	OwnerID uint64
	Text    string
	City    string
	Country string
	Guests  int

	Wifi      bool
	Parking   bool
	Breakfast bool
	Pets      bool

	HasDates bool
	From     availability.Day
	To       availability.Day
	Policy   availability.Policy
}

var venueSortColumns = map[string]string{
	"created":   "v.created_at",
	"updated":   "v.updated_at",
	"name":      "v.name",
	"price":     "v.price_cents",
	"rating":    "v.rating",
	"maxguests": "v.max_guests",
}

// where returns the SQL condition and its arguments.
func (q VenueQuery) where() (string, []any) {
	where := []string{}
	args := []any{}

	if q.OwnerID != 0 {
		where = append(where, "v.owner_id = ?")
		args = append(args, q.OwnerID)
	}
	if t := strings.ToLower(strings.TrimSpace(q.Text)); t != "" {
		where = append(where, "(LOWER(v.name) LIKE ? OR LOWER(v.description) LIKE ? OR LOWER(v.city) LIKE ? OR LOWER(v.country) LIKE ?)")
		like := "%" + t + "%"
		args = append(args, like, like, like, like)
	}
	if c := strings.ToLower(strings.TrimSpace(q.City)); c != "" {
		where = append(where, "LOWER(v.city) LIKE ?")
		args = append(args, "%"+c+"%")
	}
	if c := strings.ToLower(strings.TrimSpace(q.Country)); c != "" {
		where = append(where, "LOWER(v.country) LIKE ?")
		args = append(args, "%"+c+"%")
	}
	if q.Guests > 0 {
		where = append(where, "v.max_guests >= ?")
		args = append(args, q.Guests)
	}
	if q.Wifi {
		where = append(where, "v.wifi = 1")
	}
	if q.Parking {
		where = append(where, "v.parking = 1")
	}
	if q.Breakfast {
		where = append(where, "v.breakfast = 1")
	}
	if q.Pets {
		where = append(where, "v.pets = 1")
	}
	if q.HasDates {
		// Stored rows may have their dates swapped, hence LEAST/GREATEST.
		lastDay := "GREATEST(b.date_from, b.date_to)"
		if q.Policy == availability.CheckoutTurnover {
			lastDay = "IF(b.date_from = b.date_to, b.date_to, DATE_SUB(GREATEST(b.date_from, b.date_to), INTERVAL 1 DAY))"
		}
		where = append(where, `NOT EXISTS (SELECT 1 FROM bookings b
			WHERE b.venue_id = v.id
			  AND LEAST(b.date_from, b.date_to) <= ?
			  AND `+lastDay+` >= ?)`)
		args = append(args, q.To.String(), q.From.String())
	}

	if len(where) == 0 {
		return "1=1", args
	}
	return strings.Join(where, " AND "), args
}

// orderBy maps the sort/sortOrder query parameters to a whitelisted ORDER BY
// clause. Unknown columns fall back to newest first.
func (q VenueQuery) orderBy() string {
	col, ok := venueSortColumns[strings.ToLower(q.Sort)]
	if !ok {
		col = "v.created_at"
	}
	dir := "DESC"
	if strings.EqualFold(q.SortOrder, "asc") {
		dir = "ASC"
	}
	return col + " " + dir + ", v.id " + dir
}

// window returns LIMIT and OFFSET for the page.
func (q VenueQuery) window() (int, int) {
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	return limit, (page - 1) * limit
}
