package models

import "time"

// MaxPhotos is the number of photos in one strip
const MaxPhotos = 4

// State is the phase a booth session is in
type State string

const (
	StateIdle      State = "idle"
	StateCapturing State = "capturing"
	StateComposing State = "composing"
	StateReviewing State = "reviewing"
	StateFailed    State = "failed"
)

// Photo is one captured, encoded snapshot. It is never mutated after capture.
type Photo struct {
	Index      int       `json:"index"`
	Data       []byte    `json:"-"`
	MimeType   string    `json:"mime_type"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	CapturedAt time.Time `json:"captured_at"`
}

// Notice is a user-visible message that dismisses itself at ExpiresAt
type Notice struct {
	Message   string    `json:"message"`
	RaisedAt  time.Time `json:"raised_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Active reports whether the notice should still be shown at t
func (n *Notice) Active(t time.Time) bool {
	return n != nil && t.Before(n.ExpiresAt)
}

// SessionView is the read-only JSON representation of a booth session
type SessionView struct {
	ID         string    `json:"id"`
	State      State     `json:"state"`
	Count      int       `json:"count"`
	MaxPhotos  int       `json:"max_photos"`
	Generation int       `json:"generation"`
	Photos     []Photo   `json:"photos"`
	Notice     *Notice   `json:"notice,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// EventType names a state-change notification
type EventType string

const (
	EventTick              EventType = "tick"
	EventCountdownComplete EventType = "countdown_complete"
	EventFlash             EventType = "flash"
	EventCaptured          EventType = "captured"
	EventComposing         EventType = "composing"
	EventReady             EventType = "ready"
	EventFailed            EventType = "failed"
	EventRetake            EventType = "retake"
	EventSaved             EventType = "saved"
	EventError             EventType = "error"
)

// Event is emitted by a session for a display layer to react to
type Event struct {
	Type       EventType `json:"type"`
	Session    string    `json:"session"`
	Generation int       `json:"generation"`
	Count      int       `json:"count"`
	Remaining  int       `json:"remaining,omitempty"` // countdown value for tick events
	Message    string    `json:"message,omitempty"`
	At         time.Time `json:"at"`
}
