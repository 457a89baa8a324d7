package anomaly

import (
	"context"
	"math"
	"testing"

	"github.com/sentinelops/mission-intel-platform/internal/contracts"
)

func testAlert() contracts.Alert {
	return contracts.Alert{
		ID:          "a1",
		Level:       contracts.LevelCritical,
		Title:       "Unidentified Vehicle Detected",
		Timestamp:   "2024-07-31 23:15:03 UTC",
		Location:    "Sector 4, Grid 8B",
		Coordinates: contracts.Coordinates{Lat: 31.776, Lng: -106.511},
		Status:      contracts.StatusPending,
	}
}

func TestRuleScorerAllRulesFire(t *testing.T) {
	scorer := NewRuleScorer(nil)
	got := scorer.Score(context.Background(), testAlert())

	if !got.IsAnomaly {
		t.Error("expected anomaly")
	}
	if got.Confidence != 0.95 {
		t.Errorf("confidence: got %v, want 0.95", got.Confidence)
	}
	if got.Priority != contracts.PriorityHigh {
		t.Errorf("priority: got %q, want %q", got.Priority, contracts.PriorityHigh)
	}
	if len(got.Explanation) != 4 {
		t.Fatalf("explanation count: got %d, want 4", len(got.Explanation))
	}
	want := []string{
		"Activity during high-risk night hours (22:00-06:00)",
		"Located in known smuggling route (90% risk zone)",
		"Critical severity level detected",
		"High-priority threat type detected",
	}
	for i, reason := range want {
		if got.Explanation[i] != reason {
			t.Errorf("explanation[%d]: got %q, want %q", i, got.Explanation[i], reason)
		}
	}
}

func TestRuleScorerQuietAlert(t *testing.T) {
	alert := contracts.Alert{
		ID:          "a4",
		Level:       contracts.LevelInfo,
		Title:       "Scheduled Maintenance",
		Timestamp:   "2024-07-31 14:05:00 UTC",
		Coordinates: contracts.Coordinates{Lat: 31.70, Lng: -106.30},
	}

	scorer := NewRuleScorer(nil)
	got := scorer.Score(context.Background(), alert)

	if got.IsAnomaly {
		t.Error("expected no anomaly")
	}
	if math.Abs(got.Confidence-0.1) > 1e-9 {
		t.Errorf("confidence: got %v, want 0.1", got.Confidence)
	}
	if got.Priority != contracts.PriorityLow {
		t.Errorf("priority: got %q, want %q", got.Priority, contracts.PriorityLow)
	}
	if len(got.Explanation) != 1 || got.Explanation[0] != "Normal activity pattern detected" {
		t.Errorf("explanation: got %v", got.Explanation)
	}
}

func TestRuleScorerRiskScoreExactlyHalfIsNotAnomaly(t *testing.T) {
	// Night window plus critical severity sums to exactly 0.5; the anomaly
	// cut is strict.
	alert := contracts.Alert{
		ID:          "a9",
		Level:       contracts.LevelCritical,
		Title:       "Perimeter Breach",
		Timestamp:   "2024-07-31 23:00:00 UTC",
		Coordinates: contracts.Coordinates{Lat: 31.70, Lng: -106.30},
	}

	got := NewRuleScorer(nil).Score(context.Background(), alert)
	if got.IsAnomaly {
		t.Error("risk score of exactly 0.5 must not be an anomaly")
	}
	if got.Priority != contracts.PriorityMedium {
		t.Errorf("priority: got %q, want %q", got.Priority, contracts.PriorityMedium)
	}
}

func TestNightWindowBounds(t *testing.T) {
	cases := []struct {
		hour string
		want bool
	}{
		{"22", true},
		{"23", true},
		{"00", true},
		{"06", true},
		{"07", false},
		{"14", false},
		{"21", false},
	}

	for _, tc := range cases {
		ts := "2024-07-31 " + tc.hour + ":30:00 UTC"
		if got := isNightHour(ts); got != tc.want {
			t.Errorf("isNightHour(hour %s): got %v, want %v", tc.hour, got, tc.want)
		}
	}

	if isNightHour("not a timestamp") {
		t.Error("unparseable timestamp must not match the night window")
	}
}

func TestPriorityThresholdsAreStrict(t *testing.T) {
	cases := []struct {
		confidence float64
		want       contracts.AnomalyPriority
	}{
		{0.95, contracts.PriorityHigh},
		{0.76, contracts.PriorityHigh},
		{0.75, contracts.PriorityMedium},
		{0.51, contracts.PriorityMedium},
		{0.5, contracts.PriorityLow},
		{0.1, contracts.PriorityLow},
	}

	for _, tc := range cases {
		if got := priorityFromConfidence(tc.confidence); got != tc.want {
			t.Errorf("priorityFromConfidence(%v): got %q, want %q", tc.confidence, got, tc.want)
		}
	}
}

func TestHighRiskZoneBoundary(t *testing.T) {
	scorer := NewRuleScorer([]Zone{{Lat: 10, Lng: 10, Radius: 0.01}})

	if !scorer.inHighRiskZone(10.005, 10) {
		t.Error("point inside the zone radius should match")
	}
	if scorer.inHighRiskZone(10.01, 10) {
		t.Error("point at exactly the zone radius must not match")
	}
	if scorer.inHighRiskZone(10.5, 10.5) {
		t.Error("distant point must not match")
	}
}

func TestKeywordRuleIsCaseInsensitive(t *testing.T) {
	alert := contracts.Alert{
		ID:          "a7",
		Level:       contracts.LevelInfo,
		Title:       "THERMAL Signature Detected",
		Timestamp:   "2024-07-31 14:00:00 UTC",
		Coordinates: contracts.Coordinates{Lat: 31.70, Lng: -106.30},
	}

	got := NewRuleScorer(nil).Score(context.Background(), alert)
	if len(got.Explanation) != 1 || got.Explanation[0] != "High-priority threat type detected" {
		t.Errorf("explanation: got %v", got.Explanation)
	}
	if math.Abs(got.Confidence-0.25) > 1e-9 {
		t.Errorf("confidence: got %v, want 0.25", got.Confidence)
	}
}
