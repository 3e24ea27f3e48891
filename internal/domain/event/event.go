package event

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a domain event emitted by the night-audit core.
// Observers receive events push-only; the core never waits on them.
type Event struct {
	ID            string                 `json:"id"`
	Type          Type                   `json:"type"`
	SessionID     string                 `json:"session_id"`
	HotelID       string                 `json:"hotel_id"`
	Payload       map[string]interface{} `json:"payload"`
	Timestamp     time.Time              `json:"timestamp"`
	CorrelationID string                 `json:"correlation_id"`
}

// New creates a domain event with a fresh ID, timestamp and correlation ID
func New(eventType Type, sessionID, hotelID string, payload map[string]interface{}) *Event {
	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		SessionID:     sessionID,
		HotelID:       hotelID,
		Payload:       payload,
		Timestamp:     time.Now().UTC(),
		CorrelationID: uuid.NewString(),
	}
}

// NewWithCorrelation creates an event linked to an existing correlation chain
func NewWithCorrelation(eventType Type, sessionID, hotelID string, payload map[string]interface{}, correlationID string) *Event {
	e := New(eventType, sessionID, hotelID, payload)
	e.CorrelationID = correlationID
	return e
}

// PayloadString retrieves a string value from the payload
func (e *Event) PayloadString(key string) string {
	if val, ok := e.Payload[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// PayloadInt retrieves an integer value from the payload
func (e *Event) PayloadInt(key string) int64 {
	if val, ok := e.Payload[key]; ok {
		switch v := val.(type) {
		case int64:
			return v
		case int:
			return int64(v)
		case float64:
			return int64(v)
		}
	}
	return 0
}

// PayloadBool retrieves a bool value from the payload
func (e *Event) PayloadBool(key string) bool {
	if val, ok := e.Payload[key]; ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return false
}
