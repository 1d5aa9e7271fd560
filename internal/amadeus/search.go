package amadeus

import (
	"context"
	"fmt"

	"github.com/farewatch/farewatch/internal/models"
)

const FlightOffersPath = "/v2/shopping/flight-offers"

type searchResponse struct {
	Data []models.RawOffer `json:"data"`
}

// SearchOffers runs one Flight Offers Search and returns the raw offers.
func (c *Client) SearchOffers(ctx context.Context, req models.SearchRequest) ([]models.RawOffer, error) {
	if req.Currency == "" {
		req.Currency = c.cfg.Currency
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("amadeus: invalid search: %w", err)
	}

	var resp searchResponse
	if err := c.Get(ctx, FlightOffersPath, req.Query(), &resp); err != nil {
		return nil, fmt.Errorf("search %s-%s on %s: %w", req.Origin, req.Destination, req.DepartureDate, err)
	}

	c.log.Debug("search completed",
		"origin", req.Origin,
		"destination", req.Destination,
		"departure_date", req.DepartureDate,
		"offers", len(resp.Data))

	return resp.Data, nil
}
