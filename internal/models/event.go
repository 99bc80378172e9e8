// internal/models/event.go
package models

import "time"

type EventType string

const (
	EventSessionStarted   EventType = "session_started"
	EventStepChanged      EventType = "step_changed"
	EventValidationFailed EventType = "validation_failed"
	EventFormSubmitted    EventType = "form_submitted"
)

type TrackingEvent struct {
	Type         EventType `json:"type"`
	SessionID    string    `json:"sessionId,omitempty"`
	ContactID    string    `json:"contactId,omitempty"`
	MarketType   string    `json:"marketType"`
	TargetMarket string    `json:"targetMarket"`
	Step         int       `json:"step"`
	Phase        string    `json:"phase"`
	Messages     []string  `json:"messages,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}
