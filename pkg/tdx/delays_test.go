package tdx

import (
	"errors"
	"reflect"
	"testing"

	"railctl/pkg/trainstatus"
)

func TestParseDelayFeed_FlatList(t *testing.T) {
	body := []byte(`[
		{"TrainNo": "1107", "DelayTime": 4},
		{"TrainNo": "1105"},
		{"TrainNo": "", "DelayTime": 9},
		{"TrainNo": "2201", "DelayTime": "late"},
		{"TrainNo": "2203", "DelayTime": -2},
		"garbage",
		{"TrainNo": "1107", "DelayTime": 6}
	]`)

	delays, skipped, err := ParseDelayFeed(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := trainstatus.DelayMap{"1107": 6, "1105": 0}
	if !reflect.DeepEqual(delays, want) {
		t.Errorf("got %v, want %v", delays, want)
	}
	if skipped != 4 {
		t.Errorf("expected 4 skipped entries, got %d", skipped)
	}
}

func TestParseDelayFeed_NonIntegerDelayDropsOnlyItsEntry(t *testing.T) {
	body := []byte(`{"LiveTrainDelayTimes": [
		{"TrainNo": "1", "DelayTime": 2.5},
		{"TrainNo": "2", "DelayTime": 3},
		{"TrainNo": "3", "DelayTime": "7"}
	]}`)

	delays, skipped, err := ParseDelayFeed(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(delays, trainstatus.DelayMap{"2": 3}) {
		t.Errorf("got %v, want only train 2", delays)
	}
	if skipped != 2 {
		t.Errorf("expected 2 skipped entries, got %d", skipped)
	}
}

func TestParseDelayFeed_Envelope(t *testing.T) {
	body := []byte(`{"UpdateTime": "2026-03-02T07:50:00+08:00", "LiveTrainDelayTimes": [{"TrainNo": "1203", "DelayTime": 12}]}`)

	delays, _, err := ParseDelayFeed(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(delays, trainstatus.DelayMap{"1203": 12}) {
		t.Errorf("unexpected delays: %v", delays)
	}
}

func TestParseDelayFeed_EmptyFeeds(t *testing.T) {
	for _, body := range []string{`[]`, `{"LiveTrainDelayTimes": []}`} {
		delays, _, err := ParseDelayFeed([]byte(body))
		if err != nil {
			t.Errorf("%s: unexpected error: %v", body, err)
		}
		if delays == nil || len(delays) != 0 {
			t.Errorf("%s: expected empty non-nil map, got %v", body, delays)
		}
	}
}

func TestParseDelayFeed_Unknown(t *testing.T) {
	for _, body := range []string{``, `{"Trains": []}`, `"text"`, `42`} {
		if _, _, err := ParseDelayFeed([]byte(body)); !errors.Is(err, ErrUnknownFeed) {
			t.Errorf("%q: expected ErrUnknownFeed, got %v", body, err)
		}
	}
}
