package models

import (
	"net/url"
	"strconv"
)

type SearchRequest struct {
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	DepartureDate string  `json:"departure_date"`
	ReturnDate    *string `json:"return_date,omitempty"`
	Adults        int     `json:"adults"`
	Currency      string  `json:"currency"`
	Max           int     `json:"max"`
}

func (r *SearchRequest) Validate() error {
	if r.Origin == "" {
		return ErrMissingOrigin
	}
	if r.Destination == "" {
		return ErrMissingDestination
	}
	if r.DepartureDate == "" {
		return ErrMissingDepartureDate
	}
	if r.Adults <= 0 {
		r.Adults = 2
	}
	if r.Max <= 0 {
		r.Max = 20
	}
	return nil
}

// Query renders the request as flight-offers search parameters.
func (r SearchRequest) Query() url.Values {
	q := url.Values{}
	q.Set("originLocationCode", r.Origin)
	q.Set("destinationLocationCode", r.Destination)
	q.Set("departureDate", r.DepartureDate)
	if r.ReturnDate != nil && *r.ReturnDate != "" {
		q.Set("returnDate", *r.ReturnDate)
	}
	q.Set("adults", strconv.Itoa(r.Adults))
	if r.Currency != "" {
		q.Set("currencyCode", r.Currency)
	}
	q.Set("max", strconv.Itoa(r.Max))
	return q
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingOrigin        ValidationError = "origin is required"
	ErrMissingDestination   ValidationError = "destination is required"
	ErrMissingDepartureDate ValidationError = "departure_date is required"
)
