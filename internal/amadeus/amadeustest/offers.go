package amadeustest

import (
	"encoding/json"
	"fmt"
)

type Itinerary struct {
	Duration string
	Segments int
}

// OfferSpec describes a flight offer in terms the evaluator cares about.
type OfferSpec struct {
	ID          string
	Price       string
	Currency    string
	Carriers    []string
	CheckedBags int
	Itineraries []Itinerary
}

// Offer renders spec in the flight-offers response shape.
func Offer(spec OfferSpec) json.RawMessage {
	if spec.Currency == "" {
		spec.Currency = "EUR"
	}
	if spec.ID == "" {
		spec.ID = "1"
	}

	type endpoint struct {
		IataCode string `json:"iataCode"`
		At       string `json:"at"`
	}
	type segment struct {
		ID          string   `json:"id"`
		CarrierCode string   `json:"carrierCode"`
		Number      string   `json:"number"`
		Departure   endpoint `json:"departure"`
		Arrival     endpoint `json:"arrival"`
	}
	type itinerary struct {
		Duration string    `json:"duration"`
		Segments []segment `json:"segments"`
	}

	carrier := "XX"
	if len(spec.Carriers) > 0 {
		carrier = spec.Carriers[0]
	}

	var itineraries []itinerary
	var fareDetails []map[string]interface{}
	for i, it := range spec.Itineraries {
		segs := make([]segment, it.Segments)
		for j := range segs {
			id := fmt.Sprintf("%d", len(fareDetails)+1)
			segs[j] = segment{
				ID:          id,
				CarrierCode: carrier,
				Number:      fmt.Sprintf("%d%d", 100+i, j),
			}
			fareDetails = append(fareDetails, map[string]interface{}{
				"segmentId":           id,
				"cabin":               "ECONOMY",
				"includedCheckedBags": map[string]int{"quantity": spec.CheckedBags},
			})
		}
		itineraries = append(itineraries, itinerary{Duration: it.Duration, Segments: segs})
	}

	doc := map[string]interface{}{
		"type":                   "flight-offer",
		"id":                     spec.ID,
		"price":                  map[string]string{"currency": spec.Currency, "total": spec.Price},
		"itineraries":            itineraries,
		"validatingAirlineCodes": spec.Carriers,
		"travelerPricings": []map[string]interface{}{{
			"travelerId":           "1",
			"fareDetailsBySegment": fareDetails,
		}},
	}

	data, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return data
}
