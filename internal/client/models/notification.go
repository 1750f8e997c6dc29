package models

import "time"

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is a locally synthesized alert, produced by background
// polling when it sees a state change.
type Notification struct {
	ID        string
	Title     string
	Message   string
	Severity  Severity
	CreatedAt time.Time
	Read      bool
}
