package trainstatus

import (
	"strings"
	"time"
)

// Station is a resolved station name and its TDX station code.
type Station struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// ScheduledTrain is one train serving the queried origin/destination pair, with the
// raw "HH:MM" times at the requested stops.
type ScheduledTrain struct {
	TrainNo   string
	Departure string // departure at the origin
	Arrival   string // arrival at the destination
	TypeName  string // e.g. "自強(3000)"
}

// DelayMap maps a train number to its current delay in minutes. A train that is
// absent from the map is assumed to be on time.
type DelayMap map[string]int

// Delay returns the delay for trainNo, zero when unknown.
func (m DelayMap) Delay(trainNo string) int {
	if d, ok := m[trainNo]; ok && d > 0 {
		return d
	}
	return 0
}

// Tier is the severity bucket for a delay.
type Tier int

const (
	TierOnTime Tier = iota
	TierMinor
	TierMajor
)

// minorDelayLimit is the largest delay still reported as minor.
const minorDelayLimit = 10

// TierFor buckets a delay in minutes.
func TierFor(delayMinutes int) Tier {
	switch {
	case delayMinutes <= 0:
		return TierOnTime
	case delayMinutes <= minorDelayLimit:
		return TierMinor
	default:
		return TierMajor
	}
}

func (t Tier) String() string {
	switch t {
	case TierMinor:
		return "minor"
	case TierMajor:
		return "major"
	default:
		return "on-time"
	}
}

// Marker is the status light printed in front of each train.
func (t Tier) Marker() string {
	switch t {
	case TierMinor:
		return "🟠"
	case TierMajor:
		return "🔴"
	default:
		return "🟢"
	}
}

// Delayed reports whether the tier counts as a delay for the commute summary.
func (t Tier) Delayed() bool {
	return t != TierOnTime
}

func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Class groups TRA train types by stopping pattern.
type Class int

const (
	ClassLocal   Class = iota
	ClassExpress       // limited-stop: Tze-Chiang, Puyuma, Taroko
	ClassMidTier       // Chu-Kuang
)

var (
	expressTypes = []string{"自強", "普悠瑪", "太魯閣", "Tze-Chiang", "Puyuma", "Taroko"}
	midTierTypes = []string{"莒光", "Chu-Kuang"}
)

// ClassOf maps a TRA train type name to its class.
func ClassOf(typeName string) Class {
	for _, t := range expressTypes {
		if strings.Contains(typeName, t) {
			return ClassExpress
		}
	}
	for _, t := range midTierTypes {
		if strings.Contains(typeName, t) {
			return ClassMidTier
		}
	}
	return ClassLocal
}

func (c Class) String() string {
	switch c {
	case ClassExpress:
		return "express"
	case ClassMidTier:
		return "mid-tier"
	default:
		return "local"
	}
}

// Marker is the short annotation appended to a report line.
func (c Class) Marker() string {
	switch c {
	case ClassExpress:
		return " (TC)"
	case ClassMidTier:
		return " (CK)"
	default:
		return ""
	}
}

func (c Class) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// TrainStatus is a scheduled train joined with its live delay.
type TrainStatus struct {
	TrainNo         string    `json:"train_no"`
	Departure       string    `json:"departure"`
	Arrival         string    `json:"arrival"`
	DurationMinutes int       `json:"duration_minutes"`
	DelayMinutes    int       `json:"delay_minutes"`
	Tier            Tier      `json:"tier"`
	Class           Class     `json:"class"`
	DepartureTime   time.Time `json:"-"`
	ArrivalTime     time.Time `json:"-"`
}
