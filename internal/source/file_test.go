package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sentinelops/mission-intel-platform/internal/contracts"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestFileSourceLoadEvents(t *testing.T) {
	dir := t.TempDir()
	events := writeFile(t, dir, "events.json", `[
		{"event_id":"ev-1","timestamp":"2024-07-31 22:15:03 UTC","latitude":31.776,"longitude":-106.511,"event_type":"thermal_signature","priority":"HIGH"}
	]`)

	src := NewFileSource(events, "")
	got, err := src.LoadEvents(context.Background())
	if err != nil {
		t.Fatalf("load events: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("events: got %d, want 1", len(got))
	}
	if got[0].EventID != "ev-1" || got[0].EventType != "thermal_signature" {
		t.Errorf("event decoded wrong: %+v", got[0])
	}
	if got[0].Priority != contracts.PriorityHigh {
		t.Errorf("priority: got %q, want %q", got[0].Priority, contracts.PriorityHigh)
	}
}

func TestFileSourceMissingFileYieldsEmpty(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "absent.json"), "")
	got, err := src.LoadEvents(context.Background())
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("events: got %d, want 0", len(got))
	}
}

func TestFileSourceMalformedFileYieldsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.json", `{"not":"an array"`)

	src := NewFileSource(path, path)
	if got, err := src.LoadEvents(context.Background()); err != nil || len(got) != 0 {
		t.Errorf("events from malformed file: got %d, err %v", len(got), err)
	}
	if got, err := src.LoadPrecomputed(context.Background()); err != nil || len(got) != 0 {
		t.Errorf("anomalies from malformed file: got %d, err %v", len(got), err)
	}
}

func TestFileSourceLoadPrecomputed(t *testing.T) {
	dir := t.TempDir()
	anomalies := writeFile(t, dir, "anomalies.json", `[
		{"event_id":"ev-1","anomaly_score":0.91,"priority":"HIGH","reasons":["outlier"]},
		{"event_id":"ev-2","anomaly_score":0.55,"priority":"MEDIUM"}
	]`)

	src := NewFileSource("", anomalies)
	got, err := src.LoadPrecomputed(context.Background())
	if err != nil {
		t.Fatalf("load precomputed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("anomalies: got %d, want 2", len(got))
	}
	if got[0].AnomalyScore != 0.91 || len(got[0].Reasons) != 1 {
		t.Errorf("anomaly decoded wrong: %+v", got[0])
	}
	if got[1].Reasons != nil {
		t.Errorf("absent reasons should stay nil, got %v", got[1].Reasons)
	}
}
