package watcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/farewatch/farewatch/internal/amadeus"
	"github.com/farewatch/farewatch/internal/amadeus/amadeustest"
	"github.com/farewatch/farewatch/internal/cache"
	"github.com/farewatch/farewatch/internal/dates"
	"github.com/farewatch/farewatch/internal/metrics"
	"github.com/farewatch/farewatch/internal/models"
	"github.com/farewatch/farewatch/pkg/logger"
)

type fakeSearcher struct {
	mu       sync.Mutex
	offers   map[string][]models.RawOffer
	failOn   string
	requests []models.SearchRequest
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{offers: make(map[string][]models.RawOffer)}
}

func routeKey(origin, destination, date string) string {
	return origin + "-" + destination + "@" + date
}

func (f *fakeSearcher) add(origin, destination, date string, offers ...models.RawOffer) {
	key := routeKey(origin, destination, date)
	f.offers[key] = append(f.offers[key], offers...)
}

func (f *fakeSearcher) SearchOffers(_ context.Context, req models.SearchRequest) ([]models.RawOffer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	key := routeKey(req.Origin, req.Destination, req.DepartureDate)
	if key == f.failOn {
		return nil, errors.New("boom")
	}
	return f.offers[key], nil
}

type memoryCache struct {
	entries map[string][]models.RawOffer
	sets    int
}

func (m *memoryCache) Get(_ context.Context, req models.SearchRequest) ([]models.RawOffer, bool) {
	offers, ok := m.entries[cache.Key(req)]
	return offers, ok
}

func (m *memoryCache) Set(_ context.Context, req models.SearchRequest, offers []models.RawOffer) error {
	m.entries[cache.Key(req)] = offers
	m.sets++
	return nil
}

func (m *memoryCache) Close() error { return nil }

func smallPlan() Plan {
	p := DefaultPlan()
	p.Direct.Origins = []string{"CDG"}
	p.Direct.Destinations = []string{"KIX"}
	p.Direct.Depart = dates.Window{From: dates.New(2026, time.January, 1), To: dates.New(2026, time.January, 2)}
	p.Direct.Return = dates.Window{From: dates.New(2026, time.April, 1), To: dates.New(2026, time.April, 2)}
	p.Combo.Origins = []string{"KIX"}
	p.Combo.Destinations = []string{"CDG"}
	p.Combo.Window = dates.Window{From: dates.New(2026, time.April, 1), To: dates.New(2026, time.April, 1)}
	return p
}

func roundTrip(price string, hours string, carriers ...string) models.RawOffer {
	return amadeustest.Offer(amadeustest.OfferSpec{
		Price:       price,
		Carriers:    carriers,
		CheckedBags: 1,
		Itineraries: []amadeustest.Itinerary{{Duration: hours, Segments: 2}, {Duration: hours, Segments: 2}},
	})
}

func oneWay(price string, bags int) models.RawOffer {
	return amadeustest.Offer(amadeustest.OfferSpec{
		Price:       price,
		Carriers:    []string{"5J"},
		CheckedBags: bags,
		Itineraries: []amadeustest.Itinerary{{Duration: "PT5H", Segments: 1}},
	})
}

func TestRun_RanksAndAlerts(t *testing.T) {
	s := newFakeSearcher()
	s.add("CDG", "KIX", "2026-01-01",
		roundTrip("720.00", "PT11H", "TK"),
		roundTrip("640.00", "PT8H", "TK"),
		// two stops each way, rejected
		amadeustest.Offer(amadeustest.OfferSpec{Price: "300.00", CheckedBags: 1, Itineraries: []amadeustest.Itinerary{{Duration: "PT10H", Segments: 3}}}),
	)
	s.add("CDG", "KIX", "2026-01-02",
		roundTrip("655.00", "PT8H", "AF"),
		roundTrip("640.00", "PT9H", "CX"),
	)
	s.add("KIX", "CEB", "2026-04-01", oneWay("150.00", 1), oneWay("90.00", 0))
	s.add("CEB", "CDG", "2026-04-15", oneWay("500.00", 1), oneWay("450.00", 1))

	reg := metrics.NewRegistry("farewatch")
	w := NewWatcher(s, Config{Plan: smallPlan(), Currency: "EUR", Logger: logger.NewNop(), Metrics: reg})

	res, err := w.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(s.requests) != 4 {
		t.Errorf("expected 4 searches, got %d", len(s.requests))
	}
	first := s.requests[0]
	if first.ReturnDate == nil || *first.ReturnDate != "2026-04-01" {
		t.Errorf("direct search must carry the return date, got %+v", first.ReturnDate)
	}
	if first.Adults != 2 || first.Currency != "EUR" || first.Max != 20 {
		t.Errorf("unexpected direct request: %+v", first)
	}
	if s.requests[2].ReturnDate != nil {
		t.Error("combo legs must be one-way")
	}

	if len(res.TopDirect) != 3 {
		t.Fatalf("expected 3 direct offers, got %d", len(res.TopDirect))
	}
	wantPrices := []string{"640", "640", "655"}
	for i, p := range wantPrices {
		if !res.TopDirect[i].Price.Equal(decimal.RequireFromString(p)) {
			t.Errorf("direct %d: expected %s, got %s", i, p, res.TopDirect[i].Price)
		}
	}
	if res.TopDirect[0].Carriers != "TK" || res.TopDirect[1].Carriers != "CX" {
		t.Errorf("equal prices must keep discovery order, got %s then %s", res.TopDirect[0].Carriers, res.TopDirect[1].Carriers)
	}
	if res.TopDirect[0].Hours != 16 || res.TopDirect[0].Stops != 1 {
		t.Errorf("unexpected compact offer: %+v", res.TopDirect[0])
	}

	if len(res.TopCombos) != 2 {
		t.Fatalf("expected 2 combos, got %d", len(res.TopCombos))
	}
	if !res.TopCombos[0].Total.Equal(decimal.RequireFromString("600")) {
		t.Errorf("expected cheapest combo 600, got %s", res.TopCombos[0].Total)
	}
	if res.TopCombos[0].Dates.FirstLeg != "2026-04-01" || res.TopCombos[0].Dates.SecondLeg != "2026-04-15" {
		t.Errorf("unexpected combo dates: %+v", res.TopCombos[0].Dates)
	}

	if res.Alerts.Direct == nil || res.Alerts.Direct.Reason != "≤650€" {
		t.Errorf("expected threshold alert, got %+v", res.Alerts.Direct)
	}
	if res.Alerts.Combo == nil {
		t.Fatal("expected combo alert: 600 < 640 + 300")
	}
	if !res.Alerts.Combo.VsRef.Equal(decimal.RequireFromString("940")) {
		t.Errorf("expected reference 940, got %s", res.Alerts.Combo.VsRef)
	}
}

func TestRun_OfferWithoutPriceIsDiscarded(t *testing.T) {
	s := newFakeSearcher()
	s.add("CDG", "KIX", "2026-01-01",
		roundTrip("900.00", "PT10H", "TK"),
		models.RawOffer(`{"id": "2", "itineraries": [{"duration": "PT10H", "segments": [{}]}], "validatingAirlineCodes": ["TK"], "travelerPricings": [{"fareDetailsBySegment": [{"includedCheckedBags": {"quantity": 1}}]}]}`),
	)

	w := NewWatcher(s, Config{Plan: smallPlan(), Currency: "EUR"})
	res, err := w.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.TopDirect) != 1 || !res.TopDirect[0].Price.Equal(decimal.RequireFromString("900")) {
		t.Fatalf("expected only the priced offer, got %+v", res.TopDirect)
	}
	if res.Alerts.Direct != nil {
		t.Errorf("expected no direct alert at 900, got %+v", res.Alerts.Direct)
	}
}

func TestRun_NoOffers(t *testing.T) {
	w := NewWatcher(newFakeSearcher(), Config{Plan: smallPlan(), Currency: "EUR"})

	res, err := w.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TopDirect == nil || res.TopCombos == nil {
		t.Error("empty results must be empty lists, not nil")
	}
	if len(res.TopDirect) != 0 || len(res.TopCombos) != 0 || res.Alerts.Any() {
		t.Errorf("expected an empty result, got %+v", res)
	}
}

func TestRun_SearchFailureAbortsRun(t *testing.T) {
	s := newFakeSearcher()
	s.add("CDG", "KIX", "2026-01-01", roundTrip("500.00", "PT8H", "TK"))
	s.failOn = routeKey("CEB", "CDG", "2026-04-15")

	w := NewWatcher(s, Config{Plan: smallPlan(), Currency: "EUR"})
	res, err := w.Run(context.Background())
	if err == nil {
		t.Fatal("expected the run to fail")
	}
	if res != nil {
		t.Error("a failed run must not return partial results")
	}
}

func TestRun_UsesCache(t *testing.T) {
	s := newFakeSearcher()
	s.add("CDG", "KIX", "2026-01-01", roundTrip("500.00", "PT8H", "TK"))
	mc := &memoryCache{entries: make(map[string][]models.RawOffer)}

	w := NewWatcher(s, Config{Plan: smallPlan(), Currency: "EUR", Cache: mc})
	if _, err := w.Run(context.Background()); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if mc.sets != 4 {
		t.Errorf("expected 4 cached responses, got %d", mc.sets)
	}

	res, err := w.Run(context.Background())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if len(s.requests) != 4 {
		t.Errorf("second run must be served from cache, searcher saw %d requests", len(s.requests))
	}
	if len(res.TopDirect) != 1 {
		t.Errorf("expected the cached offer, got %d", len(res.TopDirect))
	}
}

func TestRun_AgainstFakeAPI(t *testing.T) {
	srv := amadeustest.NewServer()
	defer srv.Close()

	srv.SetOffers("CDG", "KIX", "2026-01-02", "2026-04-02", roundTrip("690.00", "PT8H", "NH"))
	srv.SetOffers("KIX", "CEB", "2026-04-01", "", oneWay("120.00", 1))
	srv.SetOffers("CEB", "CDG", "2026-04-15", "", oneWay("520.00", 1))
	srv.RevokeTokens()

	client := amadeus.NewClient(amadeus.Config{
		BaseURL:      srv.URL,
		ClientID:     amadeustest.ClientID,
		ClientSecret: amadeustest.ClientSecret,
		Currency:     "EUR",
		MaxRetries:   6,
	}, logger.NewNop(), nil)

	w := NewWatcher(client, Config{Plan: smallPlan(), Currency: "EUR"})
	res, err := w.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if srv.TokenRequests() != 1 {
		t.Errorf("expected one authentication for the whole run, got %d", srv.TokenRequests())
	}
	if len(res.TopDirect) != 1 || len(res.TopCombos) != 1 {
		t.Fatalf("unexpected result sizes: %d direct, %d combos", len(res.TopDirect), len(res.TopCombos))
	}
	if res.Alerts.Direct == nil || res.Alerts.Direct.Reason != "651–700€ exceptional" {
		t.Errorf("expected exceptional alert for 690 with 16h and a premium carrier, got %+v", res.Alerts.Direct)
	}
	if res.Alerts.Combo == nil {
		t.Error("expected combo alert: 640 < 990")
	}
}

func TestPlan_DefaultSearchCount(t *testing.T) {
	p := DefaultPlan()
	if err := p.Validate(); err != nil {
		t.Fatalf("default plan is invalid: %v", err)
	}
	if n := len(p.DirectPairs()); n != 15 {
		t.Errorf("expected 15 date pairs, got %d", n)
	}
	// 15 pairs x 2 x 3 direct, 15 days x (3 + 2) combo legs
	if n := p.SearchCount(); n != 165 {
		t.Errorf("expected 165 searches, got %d", n)
	}
}

func TestPlan_Validate(t *testing.T) {
	p := DefaultPlan()
	p.Combo.Via = ""
	if err := p.Validate(); err == nil {
		t.Error("expected missing via airport to be rejected")
	}

	p = DefaultPlan()
	p.Direct.Depart = dates.Window{From: dates.New(2026, time.February, 1), To: dates.New(2026, time.January, 1)}
	if err := p.Validate(); err == nil {
		t.Error("expected reversed window to be rejected")
	}
}
