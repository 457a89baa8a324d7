package anomaly

import (
	"context"
	"log"
	"sync"

	"github.com/sentinelops/mission-intel-platform/internal/contracts"
)

// PrecomputedLoader supplies externally computed model results. An event
// absent from the result set means "normal".
type PrecomputedLoader interface {
	LoadPrecomputed(ctx context.Context) ([]contracts.PrecomputedAnomaly, error)
}

// LookupScorer serves precomputed model results. The result set is loaded
// once, on first use; concurrent first callers share a single load, and a
// load failure degrades to an empty set rather than an error.
type LookupScorer struct {
	loader PrecomputedLoader

	once    sync.Once
	results map[string]contracts.PrecomputedAnomaly
}

func NewLookupScorer(loader PrecomputedLoader) *LookupScorer {
	return &LookupScorer{loader: loader}
}

func (s *LookupScorer) init(ctx context.Context) {
	s.once.Do(func() {
		records, err := s.loader.LoadPrecomputed(ctx)
		if err != nil {
			log.Printf("anomaly: precomputed results unavailable, treating all events as normal: %v", err)
		}

		s.results = make(map[string]contracts.PrecomputedAnomaly, len(records))
		for _, r := range records {
			s.results[r.EventID] = r
		}
	})
}

func (s *LookupScorer) Score(ctx context.Context, alert contracts.Alert) contracts.AnomalyDetection {
	s.init(ctx)

	if result, ok := s.results[alert.ID]; ok {
		reasons := result.Reasons
		if len(reasons) == 0 {
			reasons = []string{
				"Detected by ML model",
				"Statistical outlier pattern identified",
			}
		}

		return contracts.AnomalyDetection{
			EventID:     alert.ID,
			IsAnomaly:   true,
			Confidence:  result.AnomalyScore,
			Priority:    result.Priority,
			Explanation: reasons,
		}
	}

	return contracts.AnomalyDetection{
		EventID:     alert.ID,
		IsAnomaly:   false,
		Confidence:  normalConfidence(alert),
		Priority:    contracts.PriorityLow,
		Explanation: []string{"Normal activity pattern detected by ML"},
	}
}

// normalConfidence is a fixed heuristic for events the model did not flag.
func normalConfidence(alert contracts.Alert) float64 {
	if alert.Level == contracts.LevelInfo {
		return 0.25
	}
	return 0.30
}

// Stats summarizes the loaded model results.
type Stats struct {
	Total         int     `json:"total"`
	High          int     `json:"high"`
	Medium        int     `json:"medium"`
	Low           int     `json:"low"`
	AvgConfidence float64 `json:"avg_confidence"`
}

func (s *LookupScorer) Stats(ctx context.Context) Stats {
	s.init(ctx)

	var stats Stats
	var sum float64
	for _, r := range s.results {
		stats.Total++
		sum += r.AnomalyScore
		switch r.Priority {
		case contracts.PriorityHigh:
			stats.High++
		case contracts.PriorityMedium:
			stats.Medium++
		case contracts.PriorityLow:
			stats.Low++
		}
	}

	if stats.Total > 0 {
		stats.AvgConfidence = sum / float64(stats.Total)
	}
	return stats
}
