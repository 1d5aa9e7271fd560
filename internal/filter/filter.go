package filter

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/farewatch/farewatch/internal/duration"
	"github.com/farewatch/farewatch/internal/models"
)

// PlaceholderLayoverHours stands in for every connection. Offers carry no
// usable ground time between segments, so this is not a measurement.
const PlaceholderLayoverHours = 1.5

// ErrMissingPrice rejects offers without price.total. A zero price would
// otherwise rank first and raise alerts.
var ErrMissingPrice = errors.New("offer has no price total")

var DefaultPremiumCarriers = []string{"AF", "KL", "AY", "NH", "JL", "QR", "SQ", "CX", "LH", "LX"}

type Rules struct {
	MaxStops         int      `yaml:"max_stops"`
	MaxDurationHours float64  `yaml:"max_duration_hours"`
	BaggageRequired  bool     `yaml:"baggage_required"`
	PremiumCarriers  []string `yaml:"premium_carriers"`
}

func DefaultRules() Rules {
	return Rules{
		MaxStops:         1,
		MaxDurationHours: 25,
		BaggageRequired:  true,
		PremiumCarriers:  DefaultPremiumCarriers,
	}
}

type Evaluator struct {
	rules   Rules
	premium map[string]bool
}

func NewEvaluator(rules Rules) *Evaluator {
	premium := make(map[string]bool, len(rules.PremiumCarriers))
	for _, code := range rules.PremiumCarriers {
		premium[code] = true
	}
	return &Evaluator{rules: rules, premium: premium}
}

// Evaluate decodes a raw offer and checks it against the rule set. Any failure
// along the way yields (false, zero metrics) together with the cause; the
// returned offer is only meaningful when ok is true.
func (e *Evaluator) Evaluate(raw models.RawOffer) (ok bool, offer models.Offer, metrics models.Metrics, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, offer, metrics = false, models.Offer{}, models.Metrics{}
			err = fmt.Errorf("evaluate offer: %v", r)
		}
	}()

	if err := json.Unmarshal(raw, &offer); err != nil {
		return false, models.Offer{}, models.Metrics{}, fmt.Errorf("decode offer: %w", err)
	}
	if !offer.Price.Total.Valid {
		return false, models.Offer{}, models.Metrics{}, ErrMissingPrice
	}

	metrics = e.measure(offer)
	return e.passes(metrics), offer, metrics, nil
}

func (e *Evaluator) measure(offer models.Offer) models.Metrics {
	m := models.Metrics{Layovers: []float64{}}

	for _, itin := range offer.Itineraries {
		stops := len(itin.Segments) - 1
		if stops < 0 {
			stops = 0
		}
		if stops > m.Stops {
			m.Stops = stops
		}
		m.TotalHours += duration.ParseHours(itin.Duration)
		if len(itin.Segments) > 1 {
			m.Layovers = append(m.Layovers, PlaceholderLayoverHours)
		}
	}

	m.BagIncluded = bagIncluded(offer.TravelerPricings)

	for _, code := range offer.ValidatingAirlineCodes {
		if e.premium[code] {
			m.Premium = true
			break
		}
	}

	return m
}

func bagIncluded(pricings []models.TravelerPricing) bool {
	for _, tp := range pricings {
		for _, fd := range tp.FareDetailsBySegment {
			if fd.IncludedCheckedBags != nil && fd.IncludedCheckedBags.Quantity > 0 {
				return true
			}
		}
	}
	return false
}

func (e *Evaluator) passes(m models.Metrics) bool {
	if m.Stops > e.rules.MaxStops {
		return false
	}
	if m.TotalHours >= e.rules.MaxDurationHours {
		return false
	}
	if e.rules.BaggageRequired && !m.BagIncluded {
		return false
	}
	return true
}
