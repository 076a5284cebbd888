package model

import "time"

// VenueMeta lists the amenities of a venue.
type VenueMeta struct {
	Wifi      bool `json:"wifi"`
	Parking   bool `json:"parking"`
	Breakfast bool `json:"breakfast"`
	Pets      bool `json:"pets"`
}

// Location is where a venue is. Every field is optional.
type Location struct {
	Address   string  `json:"address" validate:"max=200"`
	City      string  `json:"city" validate:"max=100"`
	Zip       string  `json:"zip" validate:"max=20"`
	Country   string  `json:"country" validate:"max=100"`
	Continent string  `json:"continent" validate:"max=50"`
	Lat       float64 `json:"lat" validate:"min=-90,max=90"`
	Lng       float64 `json:"lng" validate:"min=-180,max=180"`
}

// Venue is a bookable listing. Owner and Bookings are only filled when the
// caller asks for them (?_owner=true, ?_bookings=true).
type Venue struct {
	ID          string      `json:"id"`
	OwnerID     uint64      `json:"-"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Media       []Media     `json:"media"`
	Price       float64     `json:"price"`
	MaxGuests   int         `json:"maxGuests"`
	Rating      float64     `json:"rating"`
	Meta        VenueMeta   `json:"meta"`
	Location    Location    `json:"location"`
	Created     time.Time   `json:"created"`
	Updated     time.Time   `json:"updated"`
	Owner       *Profile    `json:"owner,omitempty"`
	Bookings    []Booking   `json:"bookings,omitempty"`
	Count       *VenueCount `json:"_count,omitempty"`
}

// VenueCount carries the number of bookings on a venue.
type VenueCount struct {
	Bookings int `json:"bookings"`
}

// VenueInput is the body of POST /v1/venues and PUT /v1/venues/:id.
type VenueInput struct {
	Name        string    `json:"name" validate:"required,max=100"`
	Description string    `json:"description" validate:"required,max=2000"`
	Media       []Media   `json:"media" validate:"max=8,dive"`
	Price       float64   `json:"price" validate:"gt=0,lte=10000"`
	MaxGuests   int       `json:"maxGuests" validate:"min=1,max=100"`
	Rating      float64   `json:"rating" validate:"min=0,max=5"`
	Meta        VenueMeta `json:"meta"`
	Location    Location  `json:"location"`
}

// Apply copies the input onto v, leaving ID, owner and timestamps alone.
func (in VenueInput) Apply(v *Venue) {
	v.Name = in.Name
	v.Description = in.Description
	v.Media = in.Media
	if v.Media == nil {
		v.Media = []Media{}
	}
	v.Price = in.Price
	v.MaxGuests = in.MaxGuests
	v.Rating = in.Rating
	v.Meta = in.Meta
	v.Location = in.Location
}
