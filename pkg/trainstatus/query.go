package trainstatus

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects which stations and time window a report covers.
type Mode int

const (
	ModeCheck    Mode = iota // ad-hoc check on the return leg, next hour
	ModeMorning              // morning commute, fixed window
	ModeEvening              // evening commute, fixed window
	ModeExplicit             // caller supplied both stations, next hour
)

// ParseMode maps the tool argument strings to a Mode. Anything unrecognised is a
// plain check. ModeExplicit is never parsed; it is chosen when both stations are given.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "routine_morning", "morning":
		return ModeMorning
	case "routine_evening", "evening":
		return ModeEvening
	default:
		return ModeCheck
	}
}

func (m Mode) String() string {
	switch m {
	case ModeMorning:
		return "routine_morning"
	case ModeEvening:
		return "routine_evening"
	case ModeExplicit:
		return "explicit"
	default:
		return "check"
	}
}

// IsCommute reports whether the mode is one of the recurring commute queries.
func (m Mode) IsCommute() bool {
	return m == ModeMorning || m == ModeEvening
}

func (m Mode) label() string {
	switch m {
	case ModeMorning:
		return "Morning commute"
	case ModeEvening:
		return "Evening commute"
	default:
		return "Live status"
	}
}

// Clock is a time of day with minute precision.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM".
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return Clock{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// On places the clock on the calendar date of day, in day's location.
func (c Clock) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, day.Location())
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ClockWindow is an inclusive time-of-day range on a single date.
type ClockWindow struct {
	Start Clock
	End   Clock
}

// ParseClockWindow parses a pair of "HH:MM" strings.
func ParseClockWindow(start, end string) (ClockWindow, error) {
	s, err := ParseClock(start)
	if err != nil {
		return ClockWindow{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return ClockWindow{}, err
	}
	return ClockWindow{Start: s, End: e}, nil
}

// Commute is the preconfigured route. The evening query runs it in reverse.
type Commute struct {
	Origin      string
	Destination string
	Morning     ClockWindow
	Evening     ClockWindow
}

// DefaultCommute is Yingge to Taipei with the usual office-hour windows.
func DefaultCommute() Commute {
	return Commute{
		Origin:      "鶯歌",
		Destination: "台北",
		Morning:     ClockWindow{Start: Clock{7, 40}, End: Clock{8, 10}},
		Evening:     ClockWindow{Start: Clock{18, 0}, End: Clock{18, 50}},
	}
}

// lookAhead is the window length for live checks.
const lookAhead = time.Hour

// Request is what a caller asks for: a mode and optional station overrides.
type Request struct {
	Mode        Mode
	Origin      string
	Destination string
}

// Query is a Request resolved against the commute settings and the current time.
type Query struct {
	Mode        Mode
	Origin      string
	Destination string
	Start       time.Time
	End         time.Time
}

// ResolveQuery applies the mode decision table. Both overrides must be present to
// take effect; a single override is ignored and the mode decides.
func ResolveQuery(req Request, commute Commute, now time.Time) Query {
	origin := strings.TrimSpace(req.Origin)
	dest := strings.TrimSpace(req.Destination)

	if origin != "" && dest != "" {
		return Query{Mode: ModeExplicit, Origin: origin, Destination: dest, Start: now, End: now.Add(lookAhead)}
	}

	switch req.Mode {
	case ModeMorning:
		return Query{
			Mode:        ModeMorning,
			Origin:      commute.Origin,
			Destination: commute.Destination,
			Start:       commute.Morning.Start.On(now),
			End:         commute.Morning.End.On(now),
		}
	case ModeEvening:
		return Query{
			Mode:        ModeEvening,
			Origin:      commute.Destination,
			Destination: commute.Origin,
			Start:       commute.Evening.Start.On(now),
			End:         commute.Evening.End.On(now),
		}
	default:
		return Query{
			Mode:        ModeCheck,
			Origin:      commute.Destination,
			Destination: commute.Origin,
			Start:       now,
			End:         now.Add(lookAhead),
		}
	}
}

// Title is the first line of every report for this query.
func (q Query) Title() string {
	return fmt.Sprintf("%s [%s >> %s]", q.Mode.label(), q.Origin, q.Destination)
}
