package exporter

import (
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"railctl/pkg/trainstatus"
)

// uidNamespace keeps event UIDs stable across exports of the same train and day, so
// calendar clients update an event instead of duplicating it.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("railctl/train"))

// GenerateICS writes one event per train in the report. Delayed trains are shifted by
// their current delay and flagged in the summary.
func GenerateICS(report *trainstatus.Report, w io.Writer) error {
	if report == nil {
		return fmt.Errorf("no report to export")
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//railctl//train status//EN")

	now := time.Now()
	for _, t := range report.Trains {
		if t.DepartureTime.IsZero() || t.ArrivalTime.IsZero() {
			continue // Skip trains without resolved times
		}

		delay := time.Duration(t.DelayMinutes) * time.Minute
		uid := uuid.NewSHA1(uidNamespace, []byte(t.TrainNo+"@"+t.DepartureTime.Format("2006-01-02")))

		event := cal.AddEvent(uid.String())
		event.SetCreatedTime(now)
		event.SetDtStampTime(now)
		event.SetModifiedAt(now)
		event.SetStartAt(t.DepartureTime.Add(delay))
		event.SetEndAt(t.ArrivalTime.Add(delay))
		event.SetSummary(eventSummary(report, t))
		event.SetLocation(report.Origin.Name)

		description := fmt.Sprintf("Train: %s\nScheduled: %s > %s\nDelay: %d min (%s)",
			t.TrainNo, t.Departure, t.Arrival, t.DelayMinutes, t.Tier)
		event.SetDescription(description)
	}

	return cal.SerializeTo(w)
}

func eventSummary(report *trainstatus.Report, t trainstatus.TrainStatus) string {
	s := fmt.Sprintf("%s %s → %s", t.TrainNo, report.Origin.Name, report.Destination.Name)
	if t.DelayMinutes > 0 {
		s += fmt.Sprintf(" (+%d)", t.DelayMinutes)
	}
	return s
}
