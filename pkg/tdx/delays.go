package tdx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"railctl/pkg/trainstatus"
)

// ErrUnknownFeed is returned when the delay payload matches no known schema.
var ErrUnknownFeed = errors.New("unrecognised live delay feed")

// feedSchema tags which upstream version produced a delay payload.
type feedSchema int

const (
	schemaFlatList feedSchema = iota + 1 // v2: top-level array of entries
	schemaEnvelope                       // v3: {"LiveTrainDelayTimes": [...]}
)

// delayFeed is a decoded payload before normalisation. Entries stay raw so each
// one can fail on its own.
type delayFeed struct {
	schema  feedSchema
	entries []json.RawMessage
}

type delayEnvelope struct {
	LiveTrainDelayTimes *[]json.RawMessage `json:"LiveTrainDelayTimes"`
}

func decodeDelayFeed(body []byte) (delayFeed, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return delayFeed{}, fmt.Errorf("%w: empty body", ErrUnknownFeed)
	}

	switch trimmed[0] {
	case '[':
		var entries []json.RawMessage
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return delayFeed{}, fmt.Errorf("failed to decode delay list: %w", err)
		}
		return delayFeed{schema: schemaFlatList, entries: entries}, nil
	case '{':
		var env delayEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return delayFeed{}, fmt.Errorf("failed to decode delay envelope: %w", err)
		}
		if env.LiveTrainDelayTimes == nil {
			return delayFeed{}, fmt.Errorf("%w: object without LiveTrainDelayTimes", ErrUnknownFeed)
		}
		return delayFeed{schema: schemaEnvelope, entries: *env.LiveTrainDelayTimes}, nil
	default:
		return delayFeed{}, fmt.Errorf("%w: unexpected leading %q", ErrUnknownFeed, trimmed[0])
	}
}

// normalize turns the entries into a DelayMap, returning how many were skipped.
// A later entry for the same train overwrites an earlier one.
func (f delayFeed) normalize() (trainstatus.DelayMap, int) {
	delays := make(trainstatus.DelayMap, len(f.entries))
	skipped := 0

	for _, raw := range f.entries {
		var e DelayEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			skipped++
			continue
		}
		trainNo := strings.TrimSpace(e.TrainNo)
		if trainNo == "" {
			skipped++
			continue
		}
		delay := 0
		if e.DelayTime != nil {
			delay = *e.DelayTime
		}
		if delay < 0 {
			skipped++
			continue
		}
		delays[trainNo] = delay
	}

	return delays, skipped
}

// ParseDelayFeed accepts either delay feed schema and returns the normalised map
// plus the number of entries that were skipped as malformed.
func ParseDelayFeed(body []byte) (trainstatus.DelayMap, int, error) {
	feed, err := decodeDelayFeed(body)
	if err != nil {
		return nil, 0, err
	}
	delays, skipped := feed.normalize()
	return delays, skipped, nil
}
