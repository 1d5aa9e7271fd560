package alert

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/farewatch/farewatch/internal/filter"
	"github.com/farewatch/farewatch/internal/models"
)

type Thresholds struct {
	Main         float64 `yaml:"main"`
	ExceptionMin float64 `yaml:"exception_min"`
	ExceptionMax float64 `yaml:"exception_max"`
	ComboMargin  float64 `yaml:"combo_margin"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Main:         650,
		ExceptionMin: 651,
		ExceptionMax: 700,
		ComboMargin:  300,
	}
}

// ThresholdReason reads "≤650€" with the default thresholds.
func (t Thresholds) ThresholdReason() string {
	return fmt.Sprintf("≤%s€", formatAmount(t.Main))
}

// ExceptionalReason reads "651–700€ exceptional" with the default thresholds.
func (t Thresholds) ExceptionalReason() string {
	return fmt.Sprintf("%s–%s€ exceptional", formatAmount(t.ExceptionMin), formatAmount(t.ExceptionMax))
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Derive computes the alerts of a run from the ranked, compacted results.
// The best direct offer is judged on its compacted fields only: rounded hours
// and no layover detail.
func Derive(direct []models.CompactOffer, combos []models.ComboItinerary, t Thresholds) models.Alerts {
	var alerts models.Alerts
	if len(direct) == 0 {
		return alerts
	}

	best := direct[0]
	price := best.Price
	switch {
	case price.LessThanOrEqual(decimal.NewFromFloat(t.Main)):
		alerts.Direct = &models.DirectAlert{Reason: t.ThresholdReason(), Best: best}
	case price.GreaterThanOrEqual(decimal.NewFromFloat(t.ExceptionMin)) &&
		price.LessThanOrEqual(decimal.NewFromFloat(t.ExceptionMax)) &&
		filter.IsExceptional(best.Hours, nil, best.Premium):
		alerts.Direct = &models.DirectAlert{Reason: t.ExceptionalReason(), Best: best}
	}

	if len(combos) > 0 {
		ref := price.Add(decimal.NewFromFloat(t.ComboMargin))
		if combos[0].Total.LessThan(ref) {
			alerts.Combo = &models.ComboAlert{Best: combos[0], VsRef: ref}
		}
	}

	return alerts
}
