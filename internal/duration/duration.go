package duration

import (
	"regexp"
	"strconv"
	"strings"
)

// Amadeus itinerary durations look like PT13H25M. Day designators are not
// used by the search API, seconds show up rarely.
var isoPattern = regexp.MustCompile(`^PT(?:(\d+(?:\.\d+)?)H)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)S)?$`)

// ParseHours converts a PTxHyM duration into hours. Empty or malformed input
// yields 0 so that a missing duration never rejects an otherwise valid offer.
func ParseHours(s string) float64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0
	}

	m := isoPattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}

	hours := parseComponent(m[1])
	minutes := parseComponent(m[2])
	seconds := parseComponent(m[3])

	return hours + minutes/60 + seconds/3600
}

func parseComponent(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
