package watcher

import (
	"context"
	"time"

	"github.com/farewatch/farewatch/internal/alert"
	"github.com/farewatch/farewatch/internal/cache"
	"github.com/farewatch/farewatch/internal/dates"
	"github.com/farewatch/farewatch/internal/filter"
	"github.com/farewatch/farewatch/internal/metrics"
	"github.com/farewatch/farewatch/internal/models"
	"github.com/farewatch/farewatch/internal/ranking"
	"github.com/farewatch/farewatch/pkg/logger"
)

const (
	phaseDirect = "direct"
	phaseCombo  = "combo"
)

// Searcher runs a single flight-offers search.
type Searcher interface {
	SearchOffers(ctx context.Context, req models.SearchRequest) ([]models.RawOffer, error)
}

type Config struct {
	Plan     Plan
	Currency string
	Cache    cache.Cache
	Logger   logger.Logger
	Metrics  *metrics.Registry
}

// Watcher drives one run: the direct phase, then the combo phase, strictly in
// sequence. Any search error aborts the run.
type Watcher struct {
	searcher  Searcher
	plan      Plan
	currency  string
	cache     cache.Cache
	evaluator *filter.Evaluator
	log       logger.Logger
	metrics   *metrics.Registry
}

func NewWatcher(searcher Searcher, cfg Config) *Watcher {
	if cfg.Cache == nil {
		cfg.Cache = cache.NewNoOpCache()
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	return &Watcher{
		searcher:  searcher,
		plan:      cfg.Plan,
		currency:  cfg.Currency,
		cache:     cfg.Cache,
		evaluator: filter.NewEvaluator(cfg.Plan.Rules),
		log:       cfg.Logger,
		metrics:   cfg.Metrics,
	}
}

func (w *Watcher) Run(ctx context.Context) (*models.RunResult, error) {
	started := time.Now()

	direct, err := w.searchDirect(ctx)
	if err != nil {
		return nil, err
	}

	combos, err := w.searchCombos(ctx)
	if err != nil {
		return nil, err
	}

	topDirect := ranking.CompactAll(ranking.TopOffers(direct, w.plan.TopN))
	topCombos := ranking.TopCombos(combos, w.plan.TopN)

	result := &models.RunResult{
		TopDirect: topDirect,
		TopCombos: topCombos,
		Alerts:    alert.Derive(topDirect, topCombos, w.plan.Alerts),
	}

	w.metrics.ObserveRun(started, time.Now())
	w.log.Info("run completed",
		"direct_offers", len(direct),
		"combos", len(combos),
		"direct_alert", result.Alerts.Direct != nil,
		"combo_alert", result.Alerts.Combo != nil,
		"elapsed", time.Since(started).String())

	return result, nil
}

func (w *Watcher) searchDirect(ctx context.Context) ([]models.EvaluatedOffer, error) {
	pairs := w.plan.DirectPairs()
	w.log.Info("direct phase started", "date_pairs", len(pairs))

	var valid []models.EvaluatedOffer
	for _, pair := range pairs {
		ret := pair.Return.String()
		for _, origin := range w.plan.Direct.Origins {
			for _, destination := range w.plan.Direct.Destinations {
				req := w.request(origin, destination, pair.Outbound, &ret)
				offers, err := w.fetch(ctx, phaseDirect, req)
				if err != nil {
					return nil, err
				}
				valid = append(valid, offers...)
			}
		}
	}

	w.log.Info("direct phase finished", "valid_offers", len(valid))
	return valid, nil
}

func (w *Watcher) searchCombos(ctx context.Context) ([]models.ComboItinerary, error) {
	p := w.plan.Combo
	w.log.Info("combo phase started", "days", p.Window.Days(), "via", p.Via)

	var combos []models.ComboItinerary
	for _, day := range dates.Range(p.Window) {
		second := day.AddDays(p.GapDays)

		var firstLegs []models.EvaluatedOffer
		for _, origin := range p.Origins {
			offers, err := w.fetch(ctx, phaseCombo, w.request(origin, p.Via, day, nil))
			if err != nil {
				return nil, err
			}
			firstLegs = append(firstLegs, offers...)
		}

		var secondLegs []models.EvaluatedOffer
		for _, destination := range p.Destinations {
			offers, err := w.fetch(ctx, phaseCombo, w.request(p.Via, destination, second, nil))
			if err != nil {
				return nil, err
			}
			secondLegs = append(secondLegs, offers...)
		}

		combos = append(combos, ranking.BuildCombos(firstLegs, secondLegs, day.String(), second.String(), w.currency)...)
	}

	w.log.Info("combo phase finished", "combos", len(combos))
	return combos, nil
}

func (w *Watcher) request(origin, destination string, depart dates.Date, ret *string) models.SearchRequest {
	return models.SearchRequest{
		Origin:        origin,
		Destination:   destination,
		DepartureDate: depart.String(),
		ReturnDate:    ret,
		Adults:        w.plan.Adults,
		Currency:      w.currency,
		Max:           w.plan.MaxResults,
	}
}

// fetch searches (through the cache) and keeps the offers that pass the rule
// set, in the order the API returned them.
func (w *Watcher) fetch(ctx context.Context, phase string, req models.SearchRequest) ([]models.EvaluatedOffer, error) {
	raw, err := w.search(ctx, req)
	if err != nil {
		return nil, err
	}

	var passed []models.EvaluatedOffer
	for _, r := range raw {
		ok, offer, m, err := w.evaluator.Evaluate(r)
		if err != nil {
			w.log.Warn("discarding malformed offer",
				"phase", phase,
				"origin", req.Origin,
				"destination", req.Destination,
				"error", err)
		}
		w.metrics.ObserveEvaluation(phase, ok)
		if ok {
			passed = append(passed, models.EvaluatedOffer{Offer: offer, Metrics: m})
		}
	}

	w.log.Debug("offers evaluated",
		"phase", phase,
		"origin", req.Origin,
		"destination", req.Destination,
		"departure_date", req.DepartureDate,
		"received", len(raw),
		"passed", len(passed))

	return passed, nil
}

func (w *Watcher) search(ctx context.Context, req models.SearchRequest) ([]models.RawOffer, error) {
	if cached, ok := w.cache.Get(ctx, req); ok {
		w.metrics.ObserveCache(true)
		return cached, nil
	}
	w.metrics.ObserveCache(false)

	raw, err := w.searcher.SearchOffers(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := w.cache.Set(ctx, req, raw); err != nil {
		w.log.Warn("failed to cache search response", "origin", req.Origin, "destination", req.Destination, "error", err)
	}
	return raw, nil
}
