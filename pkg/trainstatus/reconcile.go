package trainstatus

import (
	"sort"
	"strings"
	"time"
)

const clockLayout = "15:04"

// Reconcile joins the timetable with the delay feed and keeps the trains that depart
// within [start, end], both ends inclusive. Times are read as clock times on start's
// date; a train whose departure cannot be read that way is skipped. An arrival
// earlier than the departure is taken to be on the next day.
// The result is sorted by departure, then train number.
func Reconcile(trains []ScheduledTrain, delays DelayMap, start, end time.Time) []TrainStatus {
	var result []TrainStatus

	for _, t := range trains {
		dep, ok := clockOn(start, t.Departure)
		if !ok {
			continue
		}
		if dep.Before(start) || dep.After(end) {
			continue
		}

		arr, ok := clockOn(start, t.Arrival)
		if !ok {
			continue
		}
		if arr.Before(dep) {
			arr = arr.AddDate(0, 0, 1)
		}

		delay := delays.Delay(t.TrainNo)

		result = append(result, TrainStatus{
			TrainNo:         t.TrainNo,
			Departure:       dep.Format(clockLayout),
			Arrival:         arr.Format(clockLayout),
			DurationMinutes: int(arr.Sub(dep) / time.Minute),
			DelayMinutes:    delay,
			Tier:            TierFor(delay),
			Class:           ClassOf(t.TypeName),
			DepartureTime:   dep,
			ArrivalTime:     arr,
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].DepartureTime.Equal(result[j].DepartureTime) {
			return result[i].DepartureTime.Before(result[j].DepartureTime)
		}
		return result[i].TrainNo < result[j].TrainNo
	})

	return result
}

// HasDelay reports whether any train is in a delayed tier.
func HasDelay(statuses []TrainStatus) bool {
	for _, s := range statuses {
		if s.Tier.Delayed() {
			return true
		}
	}
	return false
}

// clockOn parses an "HH:MM" string as a time on day's date.
func clockOn(day time.Time, s string) (time.Time, bool) {
	t, err := time.Parse(clockLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), true
}
