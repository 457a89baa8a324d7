// Package source implements the event and precomputed-anomaly collaborators
// that feed the mission store and the lookup scorer. Persistence lives here,
// not in the core.
package source

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/sentinelops/mission-intel-platform/internal/contracts"
)

// FileSource reads the ML-generated JSON documents from disk. A missing or
// malformed file yields an empty result, never an error: downstream keeps
// serving with what it has.
type FileSource struct {
	EventsPath    string
	AnomaliesPath string
}

func NewFileSource(eventsPath, anomaliesPath string) *FileSource {
	return &FileSource{EventsPath: eventsPath, AnomaliesPath: anomaliesPath}
}

func (s *FileSource) LoadEvents(_ context.Context) ([]contracts.RawEvent, error) {
	var events []contracts.RawEvent
	if !readJSONFile(s.EventsPath, &events) {
		return nil, nil
	}
	return events, nil
}

func (s *FileSource) LoadPrecomputed(_ context.Context) ([]contracts.PrecomputedAnomaly, error) {
	var anomalies []contracts.PrecomputedAnomaly
	if !readJSONFile(s.AnomaliesPath, &anomalies) {
		return nil, nil
	}
	return anomalies, nil
}

func readJSONFile(path string, dst any) bool {
	if path == "" {
		return false
	}

	body, err := os.ReadFile(path)
	if err != nil {
		log.Printf("source: read %s: %v", path, err)
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		log.Printf("source: decode %s: %v", path, err)
		return false
	}
	return true
}
