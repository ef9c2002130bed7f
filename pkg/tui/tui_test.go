package tui

import (
	"strings"
	"testing"
	"time"

	"railctl/pkg/config"
	"railctl/pkg/trainstatus"
)

func TestParseWindow(t *testing.T) {
	w, err := ParseWindow(" 7:05-08:10 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != (config.Window{Start: "07:05", End: "08:10"}) {
		t.Errorf("expected normalised window, got %+v", w)
	}

	for _, bad := range []string{"", "07:40", "07:40-", "25:00-26:00", "morning"} {
		if _, err := ParseWindow(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestValidateHex(t *testing.T) {
	if err := validateHex("#1E90FF"); err != nil {
		t.Errorf("expected valid hex, got %v", err)
	}
	for _, bad := range []string{"1E90FF", "#1E90F", "#GGGGGG"} {
		if err := validateHex(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestRenderReport_KeepsText(t *testing.T) {
	dep := time.Date(2026, 3, 2, 7, 45, 0, 0, time.UTC)
	rep := &trainstatus.Report{
		Query:           trainstatus.Query{Mode: trainstatus.ModeMorning, Origin: "鶯歌", Destination: "台北"},
		Outcome:         trainstatus.OutcomeListing,
		DelaysAvailable: true,
		Trains: []trainstatus.TrainStatus{
			{TrainNo: "1105", Departure: "07:45", Arrival: "08:16", DurationMinutes: 31, DelayMinutes: 12,
				Tier: trainstatus.TierMajor, Class: trainstatus.ClassMidTier, DepartureTime: dep, ArrivalTime: dep.Add(31 * time.Minute)},
		},
	}

	out := RenderReport(rep)
	for _, want := range []string{"Morning commute [鶯歌 >> 台北]", "🔴 07:45 > 31 min >> 08:16 +12 (CK)"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in rendered report, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "live delays unavailable") {
		t.Errorf("did not expect the missing delay note")
	}

	rep.DelaysAvailable = false
	if !strings.Contains(RenderReport(rep), "live delays unavailable") {
		t.Errorf("expected note when delays are unavailable")
	}
}

func TestRenderReport_Summary(t *testing.T) {
	rep := &trainstatus.Report{
		Query:   trainstatus.Query{Mode: trainstatus.ModeEvening, Origin: "台北", Destination: "鶯歌"},
		Outcome: trainstatus.OutcomeSummary,
		Trains:  make([]trainstatus.TrainStatus, 3),
	}
	out := RenderReport(rep)
	if !strings.Contains(out, "Evening commute [台北 >> 鶯歌]") || !strings.Contains(out, "all 3 trains running on schedule") {
		t.Errorf("unexpected summary rendering:\n%s", out)
	}
}

func TestDescribeConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := config.Defaults()
	cfg.TokenStore = config.TokenStoreMemory
	out := describeConfig(cfg)

	for _, want := range []string{"Commute: 鶯歌 >> 台北", "Morning window: 07:40-08:10", "Token cache: memory\n", "Accent Color: default"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}
