package model

import "time"

// SessionAction names a user-triggered workspace operation recorded in the
// local session journal.
type SessionAction string

const (
	ActionOpen      SessionAction = "open"
	ActionExtract   SessionAction = "extract"
	ActionReextract SessionAction = "reextract"
	ActionSelect    SessionAction = "select"
	ActionCompare   SessionAction = "compare"
	ActionTagAdd    SessionAction = "tag_add"
	ActionTagRemove SessionAction = "tag_remove"
	ActionSave      SessionAction = "save"
	ActionRisk      SessionAction = "risk"
)

// SessionRecord is one journaled workspace session for a document.
type SessionRecord struct {
	ID           string     `json:"id"`
	DocumentID   string     `json:"document_id"`
	DocumentName string     `json:"document_name"`
	OpenedAt     time.Time  `json:"opened_at"`
	ClosedAt     *time.Time `json:"closed_at,omitempty"`
}

// ActionRecord is one journaled action within a session. Error is empty for
// successful actions.
type ActionRecord struct {
	ID        string        `json:"id"`
	SessionID string        `json:"session_id"`
	Action    SessionAction `json:"action"`
	Detail    string        `json:"detail,omitempty"`
	Error     string        `json:"error,omitempty"`
	At        time.Time     `json:"at"`
}
