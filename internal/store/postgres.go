package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/clauselens/workbench-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the journal uses. pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 4
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool, for tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS sessions (
	id            TEXT PRIMARY KEY,
	document_id   TEXT NOT NULL,
	document_name TEXT NOT NULL,
	opened_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	closed_at     TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS session_actions (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES sessions(id),
	action     TEXT NOT NULL,
	detail     TEXT,
	error      TEXT,
	at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_sessions_document_id ON sessions(document_id);
CREATE INDEX IF NOT EXISTS idx_sessions_opened_at ON sessions(opened_at);
CREATE INDEX IF NOT EXISTS idx_session_actions_session_id ON session_actions(session_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateSession(ctx context.Context, doc model.Document) (*model.SessionRecord, error) {
	rec := &model.SessionRecord{
		ID:           uuid.New().String(),
		DocumentID:   doc.ID,
		DocumentName: doc.Name,
		OpenedAt:     time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sessions (id, document_id, document_name, opened_at) VALUES ($1, $2, $3, $4)`,
		rec.ID, rec.DocumentID, rec.DocumentName, rec.OpenedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert session")
	}
	return rec, nil
}

func (s *PostgresStore) CloseSession(ctx context.Context, sessionID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE sessions SET closed_at = $1 WHERE id = $2`,
		time.Now().UTC(), sessionID,
	)
	return eris.Wrap(err, "postgres: close session")
}

func (s *PostgresStore) GetSession(ctx context.Context, sessionID string) (*model.SessionRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, document_id, document_name, opened_at, closed_at FROM sessions WHERE id = $1`,
		sessionID,
	)
	var rec model.SessionRecord
	if err := row.Scan(&rec.ID, &rec.DocumentID, &rec.DocumentName, &rec.OpenedAt, &rec.ClosedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get session")
	}
	return &rec, nil
}

func (s *PostgresStore) ListSessions(ctx context.Context, filter SessionFilter) ([]model.SessionRecord, error) {
	query := `SELECT id, document_id, document_name, opened_at, closed_at FROM sessions`
	args := []any{}
	if filter.DocumentID != "" {
		query += ` WHERE document_id = $1`
		args = append(args, filter.DocumentID)
	}
	query += ` ORDER BY opened_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list sessions")
	}
	defer rows.Close()

	var records []model.SessionRecord
	for rows.Next() {
		var rec model.SessionRecord
		if err := rows.Scan(&rec.ID, &rec.DocumentID, &rec.DocumentName, &rec.OpenedAt, &rec.ClosedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan session")
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "postgres: iterate sessions")
}

func (s *PostgresStore) RecordAction(ctx context.Context, sessionID string, action model.SessionAction, detail, errMsg string) (*model.ActionRecord, error) {
	rec := &model.ActionRecord{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Action:    action,
		Detail:    detail,
		Error:     errMsg,
		At:        time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO session_actions (id, session_id, action, detail, error, at) VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.SessionID, string(rec.Action), rec.Detail, rec.Error, rec.At,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert action")
	}
	return rec, nil
}

func (s *PostgresStore) ListActions(ctx context.Context, sessionID string) ([]model.ActionRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, session_id, action, detail, error, at FROM session_actions WHERE session_id = $1 ORDER BY at ASC`,
		sessionID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list actions")
	}
	defer rows.Close()

	var records []model.ActionRecord
	for rows.Next() {
		var rec model.ActionRecord
		var action string
		if err := rows.Scan(&rec.ID, &rec.SessionID, &action, &rec.Detail, &rec.Error, &rec.At); err != nil {
			return nil, eris.Wrap(err, "postgres: scan action")
		}
		rec.Action = model.SessionAction(action)
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "postgres: iterate actions")
}
