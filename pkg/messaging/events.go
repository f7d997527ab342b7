package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	// EventSyncStatus is broadcast once per reconciliation run, carrying the
	// run outcome. All subscribers of the reorder exchange receive it.
	EventSyncStatus = "reorder.sync.status"

	// EventThresholdUpdated is published when a reorder level is edited
	EventThresholdUpdated = "reorder.threshold.updated"
)

// Exchange names
const (
	ExchangeReorderEvents = "reorder.events"
)

// Sync outcomes
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// SyncStatusEvent reports the outcome of one reconciliation run. Unlike a bare
// broadcast message, the run ID lets subscribers correlate outcomes when runs
// overlap.
type SyncStatusEvent struct {
	RunID      string `json:"run_id"`
	Outcome    string `json:"outcome"`
	Message    string `json:"message"`
	TupleCount int    `json:"tuple_count"`
	ActorID    int64  `json:"actor_id"`
}

// ThresholdUpdatedEvent is published after a user edits reorder levels
type ThresholdUpdatedEvent struct {
	IDs     []int64 `json:"ids"`
	ActorID int64   `json:"actor_id"`
}
