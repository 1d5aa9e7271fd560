package models

import "github.com/shopspring/decimal"

type ComboDates struct {
	FirstLeg  string `json:"first_leg"`
	SecondLeg string `json:"second_leg"`
}

// ComboItinerary pairs two independently priced one-way legs. Total is the sum
// of both leg prices rounded to cents.
type ComboItinerary struct {
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
	FirstLeg  CompactOffer    `json:"first_leg"`
	SecondLeg CompactOffer    `json:"second_leg"`
	Dates     ComboDates      `json:"dates"`
}

type DirectAlert struct {
	Reason string       `json:"reason"`
	Best   CompactOffer `json:"best"`
}

type ComboAlert struct {
	Best  ComboItinerary  `json:"best"`
	VsRef decimal.Decimal `json:"vs_ref"`
}

type Alerts struct {
	Direct *DirectAlert `json:"direct"`
	Combo  *ComboAlert  `json:"combo"`
}

func (a Alerts) Any() bool {
	return a.Direct != nil || a.Combo != nil
}

// RunResult is produced fresh by every run and never persisted.
type RunResult struct {
	TopDirect []CompactOffer   `json:"top_direct"`
	TopCombos []ComboItinerary `json:"top_combos"`
	Alerts    Alerts           `json:"alerts"`
}
