package narrate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sentinelops/mission-intel-platform/internal/contracts"
)

func TestNarrateUnconfigured(t *testing.T) {
	c := NewClient("http://localhost:0", "", "sentinel-describe-1")

	_, err := c.Narrate(context.Background(), "anything")
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("unconfigured client: got %v, want ErrServiceUnavailable", err)
	}
}

func TestNarrateSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header: got %q", got)
		}
		w.Write([]byte(`{"text":"two incidents share a corridor"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-key", "sentinel-describe-1")
	got, err := c.Narrate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("narrate: %v", err)
	}
	if got != "two incidents share a corridor" {
		t.Errorf("text: got %q", got)
	}
}

func TestNarrateRemoteErrorIsServiceUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-key", "sentinel-describe-1")
	_, err := c.Narrate(context.Background(), "prompt")
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("remote error: got %v, want ErrServiceUnavailable", err)
	}
}

func TestNarrateTransportErrorIsServiceUnavailable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "test-key", "sentinel-describe-1")

	_, err := c.Narrate(context.Background(), "prompt")
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("transport error: got %v, want ErrServiceUnavailable", err)
	}
}

func TestPrompts(t *testing.T) {
	alert := contracts.Alert{
		Title:     "Unidentified Vehicle Detected",
		Level:     contracts.LevelCritical,
		Location:  "Sector 4, Grid 8B",
		Timestamp: "2024-07-31 22:15:03 UTC",
		DispatchLog: []contracts.ChatMessage{
			{Sender: contracts.SenderCommand, Text: "Agent 7, investigate."},
		},
		Evidence: []contracts.Evidence{
			{FileName: "photo.jpg"},
		},
	}

	assessment := ThreatAssessmentPrompt([]contracts.Alert{alert})
	for _, want := range []string{"Unidentified Vehicle Detected", "Sector 4, Grid 8B", "Critical"} {
		if !strings.Contains(assessment, want) {
			t.Errorf("assessment prompt missing %q", want)
		}
	}

	explain := ExplainAlertPrompt(alert)
	if !strings.Contains(explain, "- Severity: Critical") {
		t.Errorf("explain prompt missing severity line:\n%s", explain)
	}

	summary := MissionSummaryPrompt(alert)
	for _, want := range []string{"[Command] Agent 7, investigate.", "File: photo.jpg"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary prompt missing %q", want)
		}
	}

	empty := MissionSummaryPrompt(contracts.Alert{Title: "Quiet", Location: "Gate 3"})
	for _, want := range []string{"No dispatch messages.", "No evidence uploaded."} {
		if !strings.Contains(empty, want) {
			t.Errorf("empty summary prompt missing %q", want)
		}
	}
}
