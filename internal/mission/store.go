// Package mission owns the authoritative alert collection. The store is the
// only writer; every reader gets an independent snapshot, and every mutation
// replaces the collection wholesale so old snapshots are never disturbed.
package mission

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/sentinelops/mission-intel-platform/internal/contracts"
)

// ErrNotFound is returned when a mutation targets an unknown alert id. The
// collection is left untouched.
var ErrNotFound = errors.New("alert not found")

// EventLoader supplies the initial alert population. A loader that fails
// yields an empty store, never a broken one.
type EventLoader interface {
	LoadEvents(ctx context.Context) ([]contracts.RawEvent, error)
}

type Store struct {
	loader EventLoader

	loadOnce      sync.Once
	initialNotify atomic.Bool

	mu        sync.RWMutex
	alerts    []contracts.Alert
	listeners map[int]func()
	nextID    int
}

func NewStore(loader EventLoader) *Store {
	return &Store{
		loader:    loader,
		listeners: make(map[int]func()),
	}
}

// ensureLoaded runs the loader at most once, no matter how many callers race
// the first read. Listeners registered before the load completes hear about
// it exactly once.
func (s *Store) ensureLoaded(ctx context.Context) {
	s.loadOnce.Do(func() {
		var events []contracts.RawEvent
		if s.loader != nil {
			var err error
			events, err = s.loader.LoadEvents(ctx)
			if err != nil {
				log.Printf("mission: event load failed, serving empty alert list: %v", err)
				events = nil
			}
		}

		alerts := make([]contracts.Alert, 0, len(events))
		for _, ev := range events {
			alerts = append(alerts, AlertFromRaw(ev))
		}

		s.mu.Lock()
		s.alerts = alerts
		s.mu.Unlock()

		if len(alerts) > 0 {
			s.initialNotify.Store(true)
		}
	})

	if s.initialNotify.CompareAndSwap(true, false) {
		s.notify()
	}
}

// Alerts returns an independent snapshot. Mutating the result never affects
// store state.
func (s *Store) Alerts(ctx context.Context) []contracts.Alert {
	s.ensureLoaded(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]contracts.Alert, len(s.alerts))
	for i, a := range s.alerts {
		out[i] = a.Clone()
	}
	return out
}

// Alert returns a snapshot of a single alert.
func (s *Store) Alert(ctx context.Context, id string) (contracts.Alert, bool) {
	s.ensureLoaded(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.alerts {
		if a.ID == id {
			return a.Clone(), true
		}
	}
	return contracts.Alert{}, false
}

// Subscribe registers a callback invoked after every mutation. The returned
// function removes exactly that listener; calling it twice is harmless.
// The first subscription kicks off the initial load in the background.
func (s *Store) Subscribe(listener func()) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	s.mu.Unlock()

	go s.ensureLoaded(context.Background())

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Acknowledge sets the alert status to acknowledged.
func (s *Store) Acknowledge(id string) error {
	return s.mutate(id, func(a contracts.Alert) contracts.Alert {
		a.Status = contracts.StatusAcknowledged
		return a
	})
}

// Resolve sets the alert status to resolved.
func (s *Store) Resolve(id string) error {
	return s.mutate(id, func(a contracts.Alert) contracts.Alert {
		a.Status = contracts.StatusResolved
		return a
	})
}

// AddMessage appends a dispatch-log entry with a fresh id and timestamp.
func (s *Store) AddMessage(alertID string, sender contracts.Sender, text string) error {
	return s.mutate(alertID, func(a contracts.Alert) contracts.Alert {
		a.DispatchLog = append(a.DispatchLog, contracts.ChatMessage{
			ID:        uuid.NewString(),
			Sender:    sender,
			Text:      text,
			Timestamp: nowStamp(),
		})
		return a
	})
}

// AddEvidence appends an evidence entry with a fresh id and timestamp.
func (s *Store) AddEvidence(alertID, fileName, hash string) error {
	return s.mutate(alertID, func(a contracts.Alert) contracts.Alert {
		a.Evidence = append(a.Evidence, contracts.Evidence{
			ID:        uuid.NewString(),
			FileName:  fileName,
			Hash:      hash,
			Timestamp: nowStamp(),
		})
		return a
	})
}

// Ingest maps a live raw event into an alert and appends it.
func (s *Store) Ingest(ctx context.Context, raw contracts.RawEvent) contracts.Alert {
	s.ensureLoaded(ctx)

	alert := AlertFromRaw(raw)

	s.mu.Lock()
	next := make([]contracts.Alert, len(s.alerts), len(s.alerts)+1)
	copy(next, s.alerts)
	s.alerts = append(next, alert)
	s.mu.Unlock()

	s.notify()
	return alert.Clone()
}

// mutate applies a copy-on-write update to one alert, then notifies
// listeners. The apply function receives a clone, so the previous collection
// is never written in place.
func (s *Store) mutate(id string, apply func(contracts.Alert) contracts.Alert) error {
	s.ensureLoaded(context.Background())

	s.mu.Lock()

	idx := -1
	for i, a := range s.alerts {
		if a.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}

	next := make([]contracts.Alert, len(s.alerts))
	copy(next, s.alerts)
	next[idx] = apply(s.alerts[idx].Clone())
	s.alerts = next

	s.mu.Unlock()

	s.notify()
	return nil
}

// notify invokes every registered listener exactly once. Listeners run
// outside the store lock, so they may call back into the store and will
// observe the post-mutation state.
func (s *Store) notify() {
	s.mu.RLock()
	callbacks := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		callbacks = append(callbacks, fn)
	}
	s.mu.RUnlock()

	for _, fn := range callbacks {
		fn()
	}
}

func nowStamp() string {
	return time.Now().UTC().Format("2006-01-02 15:04:05 MST")
}
