// Package store journals workspace sessions and the actions taken in them
// to a local database, so `workbench history` can show what was analyzed
// and when. The journal records identifiers and outcomes only; document
// content and clause text are never persisted locally.
package store

import (
	"context"

	"github.com/clauselens/workbench-cli/internal/model"
)

// SessionFilter specifies criteria for listing journaled sessions.
type SessionFilter struct {
	DocumentID string `json:"document_id,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
}

// Store defines the session journal interface.
type Store interface {
	// Sessions
	CreateSession(ctx context.Context, doc model.Document) (*model.SessionRecord, error)
	CloseSession(ctx context.Context, sessionID string) error
	GetSession(ctx context.Context, sessionID string) (*model.SessionRecord, error)
	ListSessions(ctx context.Context, filter SessionFilter) ([]model.SessionRecord, error)

	// Actions
	RecordAction(ctx context.Context, sessionID string, action model.SessionAction, detail, errMsg string) (*model.ActionRecord, error)
	ListActions(ctx context.Context, sessionID string) ([]model.ActionRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
