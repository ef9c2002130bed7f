package trainstatus

import (
	"fmt"
	"strings"
)

// Outcome is what a report ended up describing.
type Outcome int

const (
	OutcomeListing Outcome = iota
	OutcomeSummary
	OutcomeNoTrains
	OutcomeTimetableUnavailable
	OutcomeUnknownStation
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSummary:
		return "summary"
	case OutcomeNoTrains:
		return "no_trains"
	case OutcomeTimetableUnavailable:
		return "timetable_unavailable"
	case OutcomeUnknownStation:
		return "unknown_station"
	default:
		return "listing"
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Report is the compiled result for one query.
type Report struct {
	Query           Query         `json:"-"`
	Origin          Station       `json:"origin"`
	Destination     Station       `json:"destination"`
	Trains          []TrainStatus `json:"trains"`
	Outcome         Outcome       `json:"outcome"`
	DelaysAvailable bool          `json:"delays_available"`
	Err             error         `json:"-"`
}

// decide picks the outcome for a non-empty compile.
func decide(mode Mode, trains []TrainStatus) Outcome {
	if len(trains) == 0 {
		return OutcomeNoTrains
	}
	if mode.IsCommute() && !HasDelay(trains) {
		return OutcomeSummary
	}
	return OutcomeListing
}

// Render produces the final user-facing text. It never returns an empty string.
func (r *Report) Render() string {
	title := r.Query.Title()

	switch r.Outcome {
	case OutcomeUnknownStation:
		if r.Err != nil {
			return fmt.Sprintf("Error: %v", r.Err)
		}
		return "Error: unknown station."
	case OutcomeTimetableUnavailable:
		return fmt.Sprintf("%s\nno timetable data available right now (TDX did not respond).", title)
	case OutcomeNoTrains:
		return fmt.Sprintf("%s\nno trains in this window.", title)
	case OutcomeSummary:
		return fmt.Sprintf("%s\n%s all %d trains running on schedule.", title, TierOnTime.Marker(), len(r.Trains))
	}

	lines := make([]string, 0, len(r.Trains)+1)
	lines = append(lines, title)
	for _, t := range r.Trains {
		lines = append(lines, FormatLine(t))
	}
	return strings.Join(lines, "\n")
}

// FormatLine renders one train, e.g. "🟠 07:41 > 31 min >> 08:12 +5 (TC)".
func FormatLine(t TrainStatus) string {
	delay := ""
	if t.DelayMinutes > 0 {
		delay = fmt.Sprintf(" +%d", t.DelayMinutes)
	}
	return fmt.Sprintf("%s %s > %02d min >> %s%s%s",
		t.Tier.Marker(), t.Departure, t.DurationMinutes, t.Arrival, delay, t.Class.Marker())
}
