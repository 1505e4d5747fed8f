package catalog

import (
	"fmt"
	"time"
)

// Window is a half-open time interval [From, To) over which usage metrics
// are computed.
type Window struct {
	Name string    `json:"name,omitempty"`
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Named window identifiers accepted by analyze_usage.
const (
	WindowLast7Days  = "last_7_days"
	WindowLast30Days = "last_30_days"
	WindowLast90Days = "last_90_days"
	WindowLastYear   = "last_year"
)

// ParseWindow resolves a named window relative to now. An empty name
// defaults to last_90_days, matching the original bridge behavior.
func ParseWindow(name string, now time.Time) (Window, error) {
	if name == "" {
		name = WindowLast90Days
	}
	var days int
	switch name {
	case WindowLast7Days:
		days = 7
	case WindowLast30Days:
		days = 30
	case WindowLast90Days:
		days = 90
	case WindowLastYear:
		days = 365
	default:
		return Window{}, fmt.Errorf("unknown time window %q", name)
	}
	return Window{
		Name: name,
		From: now.AddDate(0, 0, -days),
		To:   now,
	}, nil
}

// WindowCustom names an explicitly bounded window.
const WindowCustom = "custom"

// ExplicitWindow builds a window from caller-supplied bounds.
func ExplicitWindow(from, to time.Time) (Window, error) {
	if from.IsZero() || to.IsZero() {
		return Window{}, fmt.Errorf("explicit window needs both bounds")
	}
	if !from.Before(to) {
		return Window{}, fmt.Errorf("explicit window start %s is not before end %s",
			from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	return Window{Name: WindowCustom, From: from, To: to}, nil
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}
