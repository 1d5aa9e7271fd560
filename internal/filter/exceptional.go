package filter

const (
	exceptionalMinHours = 15.0
	exceptionalMaxHours = 18.0
	shortLayoverMin     = 0.75
	shortLayoverMax     = 2.5
)

// IsExceptional reports whether an itinerary is good enough to justify a fare
// slightly above the alert threshold: a 15-18h total, a 45-150min connection,
// or a premium carrier.
func IsExceptional(hours float64, layovers []float64, premium bool) bool {
	if hours >= exceptionalMinHours && hours <= exceptionalMaxHours {
		return true
	}
	for _, l := range layovers {
		if l >= shortLayoverMin && l <= shortLayoverMax {
			return true
		}
	}
	return premium
}
