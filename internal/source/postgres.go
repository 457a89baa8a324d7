package source

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sentinelops/mission-intel-platform/internal/contracts"
)

//go:embed sql/*.sql
var migrationFS embed.FS

func Open(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	entries, err := migrationFS.ReadDir("sql")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		body, err := migrationFS.ReadFile("sql/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		if _, err := pool.Exec(ctx, string(body)); err != nil {
			return fmt.Errorf("exec migration %s: %w", name, err)
		}
	}

	return nil
}

// PostgresSource serves recorded sensor events and model results from
// Postgres. Errors surface to the caller; the store and scorer recover by
// substituting empty results.
type PostgresSource struct {
	pool *pgxpool.Pool
}

func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

const eventStampLayout = "2006-01-02 15:04:05 MST"

func (s *PostgresSource) LoadEvents(ctx context.Context) ([]contracts.RawEvent, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT event_id, event_ts, latitude, longitude, event_type, priority
        FROM surveillance_events
        ORDER BY event_ts
    `)
	if err != nil {
		return nil, fmt.Errorf("query surveillance events: %w", err)
	}
	defer rows.Close()

	var events []contracts.RawEvent
	for rows.Next() {
		var ev contracts.RawEvent
		var ts time.Time
		if err := rows.Scan(&ev.EventID, &ts, &ev.Latitude, &ev.Longitude, &ev.EventType, &ev.Priority); err != nil {
			return nil, fmt.Errorf("scan surveillance event: %w", err)
		}
		ev.Timestamp = ts.UTC().Format(eventStampLayout)
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate surveillance events: %w", err)
	}
	return events, nil
}

func (s *PostgresSource) LoadPrecomputed(ctx context.Context) ([]contracts.PrecomputedAnomaly, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT event_id, anomaly_score, priority, COALESCE(reasons, '[]'::jsonb)
        FROM detected_anomalies
    `)
	if err != nil {
		return nil, fmt.Errorf("query detected anomalies: %w", err)
	}
	defer rows.Close()

	var anomalies []contracts.PrecomputedAnomaly
	for rows.Next() {
		var a contracts.PrecomputedAnomaly
		var reasonsRaw []byte
		if err := rows.Scan(&a.EventID, &a.AnomalyScore, &a.Priority, &reasonsRaw); err != nil {
			return nil, fmt.Errorf("scan detected anomaly: %w", err)
		}
		_ = json.Unmarshal(reasonsRaw, &a.Reasons)
		anomalies = append(anomalies, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate detected anomalies: %w", err)
	}
	return anomalies, nil
}

// InsertEvent records a live event so a later process start replays it.
func (s *PostgresSource) InsertEvent(ctx context.Context, ev contracts.RawEvent) error {
	ts, err := time.Parse(eventStampLayout, ev.Timestamp)
	if err != nil {
		ts = time.Now().UTC()
	}

	_, err = s.pool.Exec(ctx, `
        INSERT INTO surveillance_events
            (event_id, event_ts, latitude, longitude, event_type, priority)
        VALUES
            ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (event_id) DO NOTHING
    `, ev.EventID, ts, ev.Latitude, ev.Longitude, ev.EventType, ev.Priority)
	if err != nil {
		return fmt.Errorf("insert surveillance event: %w", err)
	}
	return nil
}
