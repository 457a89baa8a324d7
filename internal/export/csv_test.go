package export

import (
	"strings"
	"testing"

	"github.com/sentinelops/mission-intel-platform/internal/contracts"
)

func TestWriteCSV(t *testing.T) {
	alerts := []contracts.Alert{
		{
			ID:          "a1",
			Level:       contracts.LevelCritical,
			Title:       "Unidentified Vehicle, \"white pickup\"",
			Timestamp:   "2024-07-31 22:15:03 UTC",
			Location:    "Sector 4, Grid 8B",
			Status:      contracts.StatusPending,
			Hash:        "0x6d61b3f8",
			Coordinates: contracts.Coordinates{Lat: 31.776, Lng: -106.511},
			DispatchLog: []contracts.ChatMessage{{ID: "m1", Text: "should not appear"}},
			Evidence:    []contracts.Evidence{{ID: "e1", FileName: "also hidden"}},
		},
	}

	var b strings.Builder
	if err := WriteCSV(&b, alerts); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines: got %d, want 2", len(lines))
	}
	if lines[0] != "id,level,title,timestamp,location,status,hash,latitude,longitude" {
		t.Errorf("header: got %q", lines[0])
	}
	if !strings.Contains(lines[1], "31.776") || !strings.Contains(lines[1], "-106.511") {
		t.Errorf("coordinates not flattened: %q", lines[1])
	}
	if strings.Contains(b.String(), "should not appear") || strings.Contains(b.String(), "also hidden") {
		t.Error("dispatch log or evidence leaked into the export")
	}
	if !strings.Contains(lines[1], `"Unidentified Vehicle, ""white pickup"""`) {
		t.Errorf("quoting: got %q", lines[1])
	}
}

func TestWriteCSVEmptySnapshot(t *testing.T) {
	var b strings.Builder
	if err := WriteCSV(&b, nil); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if strings.TrimSpace(b.String()) != "id,level,title,timestamp,location,status,hash,latitude,longitude" {
		t.Errorf("empty export: got %q", b.String())
	}
}
