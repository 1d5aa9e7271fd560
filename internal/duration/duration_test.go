package duration

import (
	"math"
	"testing"
)

func TestParseHours(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"PT2H30M", 2.5},
		{"PT45M", 0.75},
		{"PT10H", 10},
		{"PT", 0},
		{"", 0},
		{"pt1h15m", 1.25},
		{"PT26H", 26},
		{"PT1H30M36S", 1.51},
		{"2H30M", 0},
		{"PTxH", 0},
		{"PT1H-5M", 0},
	}

	for _, c := range cases {
		got := ParseHours(c.in)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("ParseHours(%q) = %v, expected %v", c.in, got, c.want)
		}
	}
}
