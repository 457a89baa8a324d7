package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sentinelops/mission-intel-platform/internal/anomaly"
	"github.com/sentinelops/mission-intel-platform/internal/config"
	"github.com/sentinelops/mission-intel-platform/internal/contracts"
	"github.com/sentinelops/mission-intel-platform/internal/evidence"
	"github.com/sentinelops/mission-intel-platform/internal/export"
	"github.com/sentinelops/mission-intel-platform/internal/fingerprint"
	"github.com/sentinelops/mission-intel-platform/internal/httpx"
	"github.com/sentinelops/mission-intel-platform/internal/mission"
	"github.com/sentinelops/mission-intel-platform/internal/mq"
	"github.com/sentinelops/mission-intel-platform/internal/narrate"
	"github.com/sentinelops/mission-intel-platform/internal/source"
	"github.com/sentinelops/mission-intel-platform/internal/ws"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		events      mission.EventLoader
		precomputed anomaly.PrecomputedLoader
		pg          *source.PostgresSource
	)

	if cfg.DatabaseURL != "" {
		pool, err := source.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("mission-api database error: %v", err)
		}
		defer pool.Close()

		if err := source.RunMigrations(ctx, pool); err != nil {
			log.Fatalf("mission-api migration error: %v", err)
		}

		pg = source.NewPostgresSource(pool)
		events, precomputed = pg, pg
	} else {
		fs := source.NewFileSource(cfg.EventsPath, cfg.AnomaliesPath)
		events, precomputed = fs, fs
	}

	store := mission.NewStore(events)
	ruleScorer := anomaly.NewRuleScorer(nil)
	modelScorer := anomaly.NewLookupScorer(precomputed)
	narrator := narrate.NewClient(cfg.NarrateEndpoint, cfg.NarrateAPIKey, cfg.NarrateModel)

	var vault *evidence.Vault
	if cfg.MinioEndpoint != "" {
		var err error
		vault, err = evidence.NewVault(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("mission-api evidence vault error: %v", err)
		}
	}

	hub := ws.NewHub()
	go hub.Run(ctx)

	unsubscribe := store.Subscribe(func() {
		hub.BroadcastAlerts(store.Alerts(context.Background()))
	})
	defer unsubscribe()

	if len(cfg.KafkaBrokers) > 0 {
		go consumeSensorEvents(ctx, cfg, store, pg)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(15 * time.Second))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "mission-api"})
	})

	router.Get("/v1/system/health", func(w http.ResponseWriter, _ *http.Request) {
		components := []contracts.ComponentHealth{
			{Name: "Event Source", Status: contracts.SystemOperational},
			{Name: "Live Feed", Status: feedStatus(len(cfg.KafkaBrokers) > 0)},
			{Name: "Narration", Status: feedStatus(narrator.Configured())},
			{Name: "Evidence Vault", Status: feedStatus(vault != nil)},
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"components": components})
	})

	router.Get("/v1/alerts", func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		alerts := store.Alerts(r.Context())
		if status != "" {
			filtered := alerts[:0:0]
			for _, a := range alerts {
				if strings.EqualFold(string(a.Status), status) {
					filtered = append(filtered, a)
				}
			}
			alerts = filtered
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": alerts})
	})

	router.Get("/v1/alerts/{id}", func(w http.ResponseWriter, r *http.Request) {
		alert, ok := store.Alert(r.Context(), chi.URLParam(r, "id"))
		if !ok {
			httpx.WriteJSON(w, http.StatusNotFound, map[string]any{"error": "alert not found"})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, alert)
	})

	router.Patch("/v1/alerts/{id}/ack", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := store.Acknowledge(id); err != nil {
			handleMutateError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"id": id, "status": contracts.StatusAcknowledged})
	})

	router.Patch("/v1/alerts/{id}/resolve", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := store.Resolve(id); err != nil {
			handleMutateError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"id": id, "status": contracts.StatusResolved})
	})

	router.Post("/v1/alerts/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		type req struct {
			Sender contracts.Sender `json:"sender"`
			Text   string           `json:"text"`
		}
		var body req
		if err := httpx.DecodeJSON(r, &body); err != nil {
			httpx.WriteJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		if strings.TrimSpace(body.Text) == "" {
			httpx.WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "text is required"})
			return
		}
		if body.Sender != contracts.SenderCommand && body.Sender != contracts.SenderAgent {
			body.Sender = contracts.SenderAgent
		}

		id := chi.URLParam(r, "id")
		if err := store.AddMessage(id, body.Sender, body.Text); err != nil {
			handleMutateError(w, err)
			return
		}
		alert, _ := store.Alert(r.Context(), id)
		httpx.WriteJSON(w, http.StatusOK, alert)
	})

	router.Post("/v1/alerts/{id}/evidence", func(w http.ResponseWriter, r *http.Request) {
		type req struct {
			FileName      string `json:"file_name"`
			Size          int64  `json:"size"`
			LastModified  int64  `json:"last_modified"`
			ContentBase64 string `json:"content_base64"`
		}
		var body req
		if err := httpx.DecodeJSON(r, &body); err != nil {
			httpx.WriteJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		if strings.TrimSpace(body.FileName) == "" {
			httpx.WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "file_name is required"})
			return
		}

		id := chi.URLParam(r, "id")
		hash := fingerprint.File(body.FileName, body.Size, body.LastModified)
		objectKey := ""

		if vault != nil && body.ContentBase64 != "" {
			data, err := base64.StdEncoding.DecodeString(body.ContentBase64)
			if err != nil {
				httpx.WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "content_base64 is not valid base64"})
				return
			}
			key, storedHash, err := vault.Put(r.Context(), id, body.FileName, body.Size, body.LastModified, bytes.NewReader(data))
			if err != nil {
				httpx.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			objectKey, hash = key, storedHash
		}

		if err := store.AddEvidence(id, body.FileName, hash); err != nil {
			handleMutateError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, map[string]any{"id": id, "file_name": body.FileName, "hash": hash, "object_key": objectKey})
	})

	router.Get("/v1/alerts/{id}/anomaly", func(w http.ResponseWriter, r *http.Request) {
		alert, ok := store.Alert(r.Context(), chi.URLParam(r, "id"))
		if !ok {
			httpx.WriteJSON(w, http.StatusNotFound, map[string]any{"error": "alert not found"})
			return
		}

		detection := ruleScorer.Score(r.Context(), alert)
		if r.URL.Query().Get("engine") == "model" {
			detection = modelScorer.Score(r.Context(), alert)
		}
		httpx.WriteJSON(w, http.StatusOK, detection)
	})

	router.Get("/v1/anomalies/stats", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, modelScorer.Stats(r.Context()))
	})

	router.Post("/v1/narrate/assessment", func(w http.ResponseWriter, r *http.Request) {
		type req struct {
			AlertIDs []string `json:"alert_ids"`
		}
		var body req
		if err := httpx.DecodeJSON(r, &body); err != nil {
			httpx.WriteJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}

		selected := make([]contracts.Alert, 0, len(body.AlertIDs))
		for _, id := range body.AlertIDs {
			if alert, ok := store.Alert(r.Context(), id); ok {
				selected = append(selected, alert)
			}
		}
		if len(selected) == 0 {
			httpx.WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "no matching alerts"})
			return
		}

		text, err := narrator.Narrate(r.Context(), narrate.ThreatAssessmentPrompt(selected))
		if err != nil {
			handleNarrateError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"assessment": text})
	})

	router.Get("/v1/alerts/{id}/explain", func(w http.ResponseWriter, r *http.Request) {
		alert, ok := store.Alert(r.Context(), chi.URLParam(r, "id"))
		if !ok {
			httpx.WriteJSON(w, http.StatusNotFound, map[string]any{"error": "alert not found"})
			return
		}
		text, err := narrator.Narrate(r.Context(), narrate.ExplainAlertPrompt(alert))
		if err != nil {
			handleNarrateError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"explanation": text})
	})

	router.Get("/v1/alerts/{id}/summary", func(w http.ResponseWriter, r *http.Request) {
		alert, ok := store.Alert(r.Context(), chi.URLParam(r, "id"))
		if !ok {
			httpx.WriteJSON(w, http.StatusNotFound, map[string]any{"error": "alert not found"})
			return
		}
		text, err := narrator.Narrate(r.Context(), narrate.MissionSummaryPrompt(alert))
		if err != nil {
			handleNarrateError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"summary": text})
	})

	router.Get("/v1/export/alerts.csv", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="alerts.csv"`)
		if err := export.WriteCSV(w, store.Alerts(r.Context())); err != nil {
			log.Printf("mission-api csv export error: %v", err)
		}
	})

	router.Get("/v1/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.Serve(hub, w, r)
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

	log.Printf("mission-api listening on %s", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("mission-api server error: %v", err)
	}
}

func consumeSensorEvents(ctx context.Context, cfg config.Config, store *mission.Store, pg *source.PostgresSource) {
	reader := mq.NewReader(cfg.KafkaBrokers, cfg.KafkaTopicEvents, cfg.ConsumerGroupPrefix+"-mission-api")
	defer reader.Close()

	log.Printf("mission-api consuming %s", cfg.KafkaTopicEvents)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Println("mission-api feed shutting down")
				return
			}
			log.Printf("mission-api read error: %v", err)
			time.Sleep(500 * time.Millisecond)
			continue
		}

		raw, err := mq.ParseMessageJSON[contracts.RawEvent](msg)
		if err != nil {
			log.Printf("mission-api decode event error: %v", err)
			continue
		}

		alert := store.Ingest(ctx, raw)
		log.Printf("alert ingested id=%s level=%s title=%q", alert.ID, alert.Level, alert.Title)

		if pg != nil {
			if err := pg.InsertEvent(ctx, raw); err != nil {
				log.Printf("mission-api persist event error: %v", err)
			}
		}
	}
}

func feedStatus(configured bool) contracts.SystemStatus {
	if configured {
		return contracts.SystemOperational
	}
	return contracts.SystemOffline
}

func handleMutateError(w http.ResponseWriter, err error) {
	if errors.Is(err, mission.ErrNotFound) {
		httpx.WriteJSON(w, http.StatusNotFound, map[string]any{"error": "alert not found"})
		return
	}
	httpx.WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
}

func handleNarrateError(w http.ResponseWriter, err error) {
	if errors.Is(err, narrate.ErrServiceUnavailable) {
		httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"error": err.Error()})
		return
	}
	httpx.WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
}
