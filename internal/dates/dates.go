package dates

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

const Layout = "2006-01-02"

// Date is a calendar day in UTC.
type Date struct {
	time.Time
}

func New(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func Parse(s string) (Date, error) {
	t, err := time.ParseInLocation(Layout, s, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

func (d Date) String() string {
	return d.Format(Layout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Window is an inclusive range of days.
type Window struct {
	From Date `yaml:"from" json:"from"`
	To   Date `yaml:"to" json:"to"`
}

func (w Window) Contains(d Date) bool {
	return !d.Before(w.From.Time) && !d.After(w.To.Time)
}

// Days is the number of days in the window, 0 when To precedes From.
func (w Window) Days() int {
	if w.To.Before(w.From.Time) {
		return 0
	}
	return int(w.To.Sub(w.From.Time).Hours()/24) + 1
}

func (w Window) Validate() error {
	if w.From.IsZero() || w.To.IsZero() {
		return fmt.Errorf("window bounds are required")
	}
	if w.To.Before(w.From.Time) {
		return fmt.Errorf("window ends (%s) before it starts (%s)", w.To, w.From)
	}
	return nil
}

// Range returns every day of w in ascending order.
func Range(w Window) []Date {
	n := w.Days()
	out := make([]Date, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, w.From.AddDays(i))
	}
	return out
}

// Pair is an outbound/return date couple.
type Pair struct {
	Outbound Date `json:"outbound"`
	Return   Date `json:"return"`
}

// GeneratePairs pairs each day of depart with the day stayDays later and keeps
// the pair when the return day falls inside accept. An empty result is valid.
func GeneratePairs(depart Window, stayDays int, accept Window) []Pair {
	pairs := make([]Pair, 0, depart.Days())
	for _, d0 := range Range(depart) {
		d1 := d0.AddDays(stayDays)
		if accept.Contains(d1) {
			pairs = append(pairs, Pair{Outbound: d0, Return: d1})
		}
	}
	return pairs
}
