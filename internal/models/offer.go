package models

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// RawOffer is one element of the flight-offers "data" array, kept undecoded so
// that a malformed offer only fails its own evaluation.
type RawOffer = json.RawMessage

type Offer struct {
	ID                     string            `json:"id"`
	Price                  Price             `json:"price"`
	Itineraries            []Itinerary       `json:"itineraries"`
	ValidatingAirlineCodes []string          `json:"validatingAirlineCodes"`
	TravelerPricings       []TravelerPricing `json:"travelerPricings"`
}

// Price.Total is invalid when the API omitted it or sent null.
type Price struct {
	Currency string              `json:"currency"`
	Total    decimal.NullDecimal `json:"total"`
}

type Itinerary struct {
	Duration string    `json:"duration"`
	Segments []Segment `json:"segments"`
}

type Segment struct {
	ID          string   `json:"id"`
	CarrierCode string   `json:"carrierCode"`
	Number      string   `json:"number"`
	Departure   Endpoint `json:"departure"`
	Arrival     Endpoint `json:"arrival"`
	Duration    string   `json:"duration"`
}

type Endpoint struct {
	IataCode string `json:"iataCode"`
	Terminal string `json:"terminal,omitempty"`
	At       string `json:"at"`
}

type TravelerPricing struct {
	TravelerID           string       `json:"travelerId"`
	FareDetailsBySegment []FareDetail `json:"fareDetailsBySegment"`
}

type FareDetail struct {
	SegmentID           string       `json:"segmentId"`
	Cabin               string       `json:"cabin"`
	IncludedCheckedBags *CheckedBags `json:"includedCheckedBags,omitempty"`
}

type CheckedBags struct {
	Quantity   int    `json:"quantity"`
	Weight     int    `json:"weight,omitempty"`
	WeightUnit string `json:"weightUnit,omitempty"`
}

// Metrics are derived once by the evaluator and never mutated afterwards.
type Metrics struct {
	TotalHours  float64   `json:"total_hours"`
	Stops       int       `json:"stops"`
	BagIncluded bool      `json:"bag_included"`
	Premium     bool      `json:"premium"`
	Layovers    []float64 `json:"layovers"`
}

// EvaluatedOffer is an offer that passed the rule set, with its metrics.
type EvaluatedOffer struct {
	Offer   Offer
	Metrics Metrics
}

func (e EvaluatedOffer) Price() decimal.Decimal {
	return e.Offer.Price.Total.Decimal
}

// CompactOffer is the reporting shape of an offer.
type CompactOffer struct {
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Carriers    string          `json:"carriers"`
	Stops       int             `json:"stops"`
	Hours       float64         `json:"hours"`
	BagIncluded bool            `json:"bag_included"`
	Premium     bool            `json:"premium"`
}

func (e EvaluatedOffer) Compact() CompactOffer {
	return CompactOffer{
		Price:       e.Offer.Price.Total.Decimal,
		Currency:    e.Offer.Price.Currency,
		Carriers:    strings.Join(e.Offer.ValidatingAirlineCodes, ","),
		Stops:       e.Metrics.Stops,
		Hours:       math.Round(e.Metrics.TotalHours*10) / 10,
		BagIncluded: e.Metrics.BagIncluded,
		Premium:     e.Metrics.Premium,
	}
}
