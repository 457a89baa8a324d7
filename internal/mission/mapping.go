package mission

import (
	"fmt"
	"math"

	"github.com/sentinelops/mission-intel-platform/internal/contracts"
	"github.com/sentinelops/mission-intel-platform/internal/fingerprint"
)

// eventTitles maps sensor event types to display titles.
var eventTitles = map[string]string{
	"thermal_signature": "Thermal Signature Detected",
	"drone_detection":   "Unidentified Drone Activity",
	"camera_alert":      "Camera Motion Alert",
	"motion_sensor":     "Motion Sensor Triggered",
	"seismic_activity":  "Seismic Activity Detected",
}

// AlertFromRaw maps a raw sensor event into an alert, stamping the origin
// fingerprint. The hash covers id, timestamp and display location only, so
// later status, dispatch or evidence changes cannot alter it.
func AlertFromRaw(ev contracts.RawEvent) contracts.Alert {
	title, ok := eventTitles[ev.EventType]
	if !ok {
		title = "Unknown Event"
	}

	location := gridLocation(ev.Latitude, ev.Longitude)

	return contracts.Alert{
		ID:        ev.EventID,
		Level:     levelFromPriority(ev.Priority),
		Title:     title,
		Timestamp: ev.Timestamp,
		Location:  location,
		Coordinates: contracts.Coordinates{
			Lat: ev.Latitude,
			Lng: ev.Longitude,
		},
		Status:      contracts.StatusPending,
		Hash:        fingerprint.Digest(fmt.Sprintf("%s-%s-%s", ev.EventID, ev.Timestamp, location)),
		DispatchLog: []contracts.ChatMessage{},
		Evidence:    []contracts.Evidence{},
	}
}

func levelFromPriority(p contracts.AnomalyPriority) contracts.AlertLevel {
	switch p {
	case contracts.PriorityHigh:
		return contracts.LevelCritical
	case contracts.PriorityMedium:
		return contracts.LevelWarning
	default:
		return contracts.LevelInfo
	}
}

// gridLocation derives the sector/grid display string from coordinates.
func gridLocation(lat, lng float64) string {
	sector := int(math.Floor(lat*10))%9 + 1
	grid := rune('A' + int(math.Floor(lng*10))%8)
	return fmt.Sprintf("Sector %d, Grid %c", sector, grid)
}
