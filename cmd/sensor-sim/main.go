package main

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/sentinelops/mission-intel-platform/internal/config"
	"github.com/sentinelops/mission-intel-platform/internal/contracts"
	"github.com/sentinelops/mission-intel-platform/internal/httpx"
	"github.com/sentinelops/mission-intel-platform/internal/mq"
)

const eventStampLayout = "2006-01-02 15:04:05 MST"

func main() {
	cfg := config.Load()

	writer := mq.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopicEvents)
	defer writer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SimulatorTick > 0 {
		go runSimulator(ctx, writer, cfg.SimulatorTick)
	}

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "sensor-sim"})
	})

	router.Post("/v1/events", func(w http.ResponseWriter, r *http.Request) {
		var payload contracts.RawEvent
		if err := httpx.DecodeJSON(r, &payload); err != nil {
			httpx.WriteJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}

		if strings.TrimSpace(payload.EventType) == "" {
			httpx.WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "event_type is required"})
			return
		}

		enrichEvent(&payload)
		if err := mq.PublishJSON(r.Context(), writer, payload.EventID, payload); err != nil {
			httpx.WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}

		httpx.WriteJSON(w, http.StatusAccepted, payload)
	})

	router.Post("/v1/simulate", func(w http.ResponseWriter, r *http.Request) {
		type req struct {
			Count int `json:"count"`
		}
		body := req{Count: 10}
		_ = httpx.DecodeJSON(r, &body)

		if body.Count <= 0 {
			body.Count = 10
		}
		if body.Count > 500 {
			body.Count = 500
		}

		sent := 0
		for i := 0; i < body.Count; i++ {
			event := randomEvent()
			if err := mq.PublishJSON(r.Context(), writer, event.EventID, event); err != nil {
				log.Printf("simulate publish error: %v", err)
				break
			}
			sent++
		}

		httpx.WriteJSON(w, http.StatusAccepted, map[string]any{"requested": body.Count, "published": sent})
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("sensor-sim listening on %s", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("sensor-sim server error: %v", err)
	}
}

func runSimulator(ctx context.Context, writer *kafka.Writer, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			event := randomEvent()
			if err := mq.PublishJSON(ctx, writer, event.EventID, event); err != nil {
				log.Printf("simulator publish error: %v", err)
			}
		}
	}
}

func enrichEvent(ev *contracts.RawEvent) {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	if ev.Timestamp == "" {
		ev.Timestamp = time.Now().UTC().Format(eventStampLayout)
	}
	ev.EventType = strings.ToLower(strings.TrimSpace(ev.EventType))
	switch ev.Priority {
	case contracts.PriorityHigh, contracts.PriorityMedium, contracts.PriorityLow:
	default:
		ev.Priority = contracts.PriorityLow
	}
}

func randomEvent() contracts.RawEvent {
	eventTypes := []string{"thermal_signature", "drone_detection", "camera_alert", "motion_sensor", "seismic_activity"}
	priorities := []contracts.AnomalyPriority{
		contracts.PriorityHigh,
		contracts.PriorityMedium,
		contracts.PriorityLow,
	}

	return contracts.RawEvent{
		EventID:   uuid.NewString(),
		Timestamp: time.Now().UTC().Format(eventStampLayout),
		Latitude:  31.70 + rand.Float64()*0.15,
		Longitude: -106.55 + rand.Float64()*0.10,
		EventType: eventTypes[rand.Intn(len(eventTypes))],
		Priority:  priorities[rand.Intn(len(priorities))],
	}
}
