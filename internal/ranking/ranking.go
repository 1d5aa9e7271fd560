package ranking

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/farewatch/farewatch/internal/models"
)

const DefaultTopN = 3

// TopOffers returns the n cheapest offers. Ties keep discovery order. The input
// slice is left untouched.
func TopOffers(offers []models.EvaluatedOffer, n int) []models.EvaluatedOffer {
	sorted := make([]models.EvaluatedOffer, len(offers))
	copy(sorted, offers)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Price().LessThan(sorted[j].Price())
	})

	return head(sorted, n)
}

// TopCombos returns the n cheapest combos by total. Ties keep discovery order.
func TopCombos(combos []models.ComboItinerary, n int) []models.ComboItinerary {
	sorted := make([]models.ComboItinerary, len(combos))
	copy(sorted, combos)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Total.LessThan(sorted[j].Total)
	})

	return head(sorted, n)
}

func head[T any](items []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}

// BuildCombos forms the cross product of first and second legs in discovery
// order. The combo currency is the first leg's, or fallbackCurrency when the
// offer does not carry one.
func BuildCombos(first, second []models.EvaluatedOffer, firstDate, secondDate, fallbackCurrency string) []models.ComboItinerary {
	combos := make([]models.ComboItinerary, 0, len(first)*len(second))
	for _, a := range first {
		currency := a.Offer.Price.Currency
		if currency == "" {
			currency = fallbackCurrency
		}
		for _, b := range second {
			combos = append(combos, models.ComboItinerary{
				Total:     combinedPrice(a.Price(), b.Price()),
				Currency:  currency,
				FirstLeg:  a.Compact(),
				SecondLeg: b.Compact(),
				Dates: models.ComboDates{
					FirstLeg:  firstDate,
					SecondLeg: secondDate,
				},
			})
		}
	}
	return combos
}

func combinedPrice(a, b decimal.Decimal) decimal.Decimal {
	return a.Add(b).Round(2)
}

// CompactAll converts ranked offers to their reporting shape.
func CompactAll(offers []models.EvaluatedOffer) []models.CompactOffer {
	out := make([]models.CompactOffer, len(offers))
	for i, o := range offers {
		out[i] = o.Compact()
	}
	return out
}
