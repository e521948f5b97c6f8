package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/clauselens/workbench-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS sessions (
	id            TEXT PRIMARY KEY,
	document_id   TEXT NOT NULL,
	document_name TEXT NOT NULL,
	opened_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	closed_at     DATETIME
);

CREATE TABLE IF NOT EXISTS session_actions (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES sessions(id),
	action     TEXT NOT NULL,
	detail     TEXT,
	error      TEXT,
	at         DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_sessions_document_id ON sessions(document_id);
CREATE INDEX IF NOT EXISTS idx_sessions_opened_at ON sessions(opened_at);
CREATE INDEX IF NOT EXISTS idx_session_actions_session_id ON session_actions(session_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateSession(ctx context.Context, doc model.Document) (*model.SessionRecord, error) {
	rec := &model.SessionRecord{
		ID:           uuid.New().String(),
		DocumentID:   doc.ID,
		DocumentName: doc.Name,
		OpenedAt:     time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, document_id, document_name, opened_at) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.DocumentID, rec.DocumentName, rec.OpenedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert session")
	}
	return rec, nil
}

func (s *SQLiteStore) CloseSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET closed_at = ? WHERE id = ?`,
		time.Now().UTC(), sessionID,
	)
	return eris.Wrap(err, "sqlite: close session")
}

func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*model.SessionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, document_id, document_name, opened_at, closed_at FROM sessions WHERE id = ?`,
		sessionID,
	)
	var rec model.SessionRecord
	var closedAt sql.NullTime
	if err := row.Scan(&rec.ID, &rec.DocumentID, &rec.DocumentName, &rec.OpenedAt, &closedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, eris.Wrap(err, "sqlite: get session")
	}
	if closedAt.Valid {
		rec.ClosedAt = &closedAt.Time
	}
	return &rec, nil
}

func (s *SQLiteStore) ListSessions(ctx context.Context, filter SessionFilter) ([]model.SessionRecord, error) {
	query := `SELECT id, document_id, document_name, opened_at, closed_at FROM sessions`
	args := []any{}
	if filter.DocumentID != "" {
		query += ` WHERE document_id = ?`
		args = append(args, filter.DocumentID)
	}
	query += ` ORDER BY opened_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list sessions")
	}
	defer rows.Close()

	var records []model.SessionRecord
	for rows.Next() {
		var rec model.SessionRecord
		var closedAt sql.NullTime
		if err := rows.Scan(&rec.ID, &rec.DocumentID, &rec.DocumentName, &rec.OpenedAt, &closedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan session")
		}
		if closedAt.Valid {
			rec.ClosedAt = &closedAt.Time
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: iterate sessions")
}

func (s *SQLiteStore) RecordAction(ctx context.Context, sessionID string, action model.SessionAction, detail, errMsg string) (*model.ActionRecord, error) {
	rec := &model.ActionRecord{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Action:    action,
		Detail:    detail,
		Error:     errMsg,
		At:        time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_actions (id, session_id, action, detail, error, at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SessionID, string(rec.Action), rec.Detail, rec.Error, rec.At,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert action")
	}
	return rec, nil
}

func (s *SQLiteStore) ListActions(ctx context.Context, sessionID string) ([]model.ActionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, action, detail, error, at FROM session_actions WHERE session_id = ? ORDER BY at ASC`,
		sessionID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list actions")
	}
	defer rows.Close()

	var records []model.ActionRecord
	for rows.Next() {
		var rec model.ActionRecord
		var action string
		if err := rows.Scan(&rec.ID, &rec.SessionID, &action, &rec.Detail, &rec.Error, &rec.At); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan action")
		}
		rec.Action = model.SessionAction(action)
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: iterate actions")
}
