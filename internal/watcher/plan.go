package watcher

import (
	"fmt"
	"time"

	"github.com/farewatch/farewatch/internal/alert"
	"github.com/farewatch/farewatch/internal/dates"
	"github.com/farewatch/farewatch/internal/filter"
	"github.com/farewatch/farewatch/internal/ranking"
)

// DirectPlan describes the round-trip searches: every departure day paired
// with the day StayDays later, kept when the return lands in Return.
type DirectPlan struct {
	Origins      []string     `yaml:"origins"`
	Destinations []string     `yaml:"destinations"`
	Depart       dates.Window `yaml:"depart"`
	StayDays     int          `yaml:"stay_days"`
	Return       dates.Window `yaml:"return"`
}

// ComboPlan describes two one-way legs through Via: Origins to Via on each day
// of Window, then Via to Destinations GapDays later.
type ComboPlan struct {
	Origins      []string     `yaml:"origins"`
	Via          string       `yaml:"via"`
	Destinations []string     `yaml:"destinations"`
	Window       dates.Window `yaml:"window"`
	GapDays      int          `yaml:"gap_days"`
}

type Plan struct {
	Adults     int              `yaml:"adults"`
	MaxResults int              `yaml:"max_results"`
	TopN       int              `yaml:"top_n"`
	Direct     DirectPlan       `yaml:"direct"`
	Combo      ComboPlan        `yaml:"combo"`
	Rules      filter.Rules     `yaml:"rules"`
	Alerts     alert.Thresholds `yaml:"alerts"`
}

// DefaultPlan watches Paris to Osaka for an exact 90-day stay, plus an
// Osaka - Cebu - Paris return two weeks later.
func DefaultPlan() Plan {
	paris := []string{"CDG", "ORY"}
	osaka := []string{"KIX", "ITM", "UKB"}

	return Plan{
		Adults:     2,
		MaxResults: 20,
		TopN:       ranking.DefaultTopN,
		Direct: DirectPlan{
			Origins:      paris,
			Destinations: osaka,
			Depart:       dates.Window{From: dates.New(2026, time.January, 1), To: dates.New(2026, time.January, 15)},
			StayDays:     90,
			Return:       dates.Window{From: dates.New(2026, time.April, 1), To: dates.New(2026, time.April, 15)},
		},
		Combo: ComboPlan{
			Origins:      osaka,
			Via:          "CEB",
			Destinations: paris,
			Window:       dates.Window{From: dates.New(2026, time.April, 1), To: dates.New(2026, time.April, 15)},
			GapDays:      14,
		},
		Rules:  filter.DefaultRules(),
		Alerts: alert.DefaultThresholds(),
	}
}

func (p Plan) Validate() error {
	if p.Adults <= 0 {
		return fmt.Errorf("plan: adults must be positive")
	}
	if p.TopN <= 0 {
		return fmt.Errorf("plan: top_n must be positive")
	}
	if len(p.Direct.Origins) == 0 || len(p.Direct.Destinations) == 0 {
		return fmt.Errorf("plan: direct origins and destinations are required")
	}
	if err := p.Direct.Depart.Validate(); err != nil {
		return fmt.Errorf("plan: direct depart: %w", err)
	}
	if err := p.Direct.Return.Validate(); err != nil {
		return fmt.Errorf("plan: direct return: %w", err)
	}
	if p.Direct.StayDays <= 0 {
		return fmt.Errorf("plan: direct stay_days must be positive")
	}
	if len(p.Combo.Origins) == 0 || len(p.Combo.Destinations) == 0 || p.Combo.Via == "" {
		return fmt.Errorf("plan: combo origins, via and destinations are required")
	}
	if err := p.Combo.Window.Validate(); err != nil {
		return fmt.Errorf("plan: combo window: %w", err)
	}
	if p.Combo.GapDays < 0 {
		return fmt.Errorf("plan: combo gap_days must not be negative")
	}
	return nil
}

// DirectPairs lists the outbound/return days searched in the direct phase.
func (p Plan) DirectPairs() []dates.Pair {
	return dates.GeneratePairs(p.Direct.Depart, p.Direct.StayDays, p.Direct.Return)
}

// SearchCount is the number of API searches a full run issues.
func (p Plan) SearchCount() int {
	direct := len(p.DirectPairs()) * len(p.Direct.Origins) * len(p.Direct.Destinations)
	combo := p.Combo.Window.Days() * (len(p.Combo.Origins) + len(p.Combo.Destinations))
	return direct + combo
}
