package contracts

type AlertLevel string

const (
	LevelCritical AlertLevel = "Critical"
	LevelWarning  AlertLevel = "Warning"
	LevelInfo     AlertLevel = "Info"
)

type AlertStatus string

const (
	StatusPending      AlertStatus = "Pending"
	StatusAcknowledged AlertStatus = "Acknowledged"
	StatusResolved     AlertStatus = "Resolved"
)

type Sender string

const (
	SenderCommand Sender = "Command"
	SenderAgent   Sender = "Agent"
)

type ChatMessage struct {
	ID        string `json:"id"`
	Sender    Sender `json:"sender"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

type Evidence struct {
	ID        string `json:"id"`
	FileName  string `json:"file_name"`
	Hash      string `json:"hash"`
	Timestamp string `json:"timestamp"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Alert is a single sensor-originated incident. Hash is stamped once when the
// alert enters the store and attests to the original event record; later
// status, dispatch log, or evidence changes never touch it.
type Alert struct {
	ID          string        `json:"id"`
	Level       AlertLevel    `json:"level"`
	Title       string        `json:"title"`
	Timestamp   string        `json:"timestamp"`
	Location    string        `json:"location"`
	Coordinates Coordinates   `json:"coordinates"`
	Status      AlertStatus   `json:"status"`
	Hash        string        `json:"hash"`
	DispatchLog []ChatMessage `json:"dispatch_log"`
	Evidence    []Evidence    `json:"evidence"`
}

// Clone returns a copy that shares no slice storage with the receiver.
func (a Alert) Clone() Alert {
	out := a
	if a.DispatchLog != nil {
		out.DispatchLog = make([]ChatMessage, len(a.DispatchLog))
		copy(out.DispatchLog, a.DispatchLog)
	}
	if a.Evidence != nil {
		out.Evidence = make([]Evidence, len(a.Evidence))
		copy(out.Evidence, a.Evidence)
	}
	return out
}

type AnomalyPriority string

const (
	PriorityHigh   AnomalyPriority = "HIGH"
	PriorityMedium AnomalyPriority = "MEDIUM"
	PriorityLow    AnomalyPriority = "LOW"
)

// AnomalyDetection is derived on every query and never persisted on the alert.
type AnomalyDetection struct {
	EventID     string          `json:"event_id"`
	IsAnomaly   bool            `json:"is_anomaly"`
	Confidence  float64         `json:"confidence"`
	Priority    AnomalyPriority `json:"priority"`
	Explanation []string        `json:"explanation"`
}

// RawEvent is what the external event source yields before the store maps it
// into an Alert.
type RawEvent struct {
	EventID   string          `json:"event_id"`
	Timestamp string          `json:"timestamp"`
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
	EventType string          `json:"event_type"`
	Priority  AnomalyPriority `json:"priority"`
}

// PrecomputedAnomaly is one externally supplied model result. Events absent
// from the result set are treated as normal.
type PrecomputedAnomaly struct {
	EventID      string          `json:"event_id"`
	AnomalyScore float64         `json:"anomaly_score"`
	Priority     AnomalyPriority `json:"priority"`
	Reasons      []string        `json:"reasons,omitempty"`
}

type SystemStatus string

const (
	SystemOperational SystemStatus = "Operational"
	SystemDegraded    SystemStatus = "Degraded"
	SystemOffline     SystemStatus = "Offline"
)

type ComponentHealth struct {
	Name   string       `json:"name"`
	Status SystemStatus `json:"status"`
}
