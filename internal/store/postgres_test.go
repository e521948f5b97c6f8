package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clauselens/workbench-cli/internal/model"
)

func newTestPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresWithPool(mock), mock
}

func TestPostgres_Migrate(t *testing.T) {
	st, mock := newTestPostgresStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS sessions").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, st.Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CreateSession(t *testing.T) {
	st, mock := newTestPostgresStore(t)

	mock.ExpectExec("INSERT INTO sessions").
		WithArgs(pgxmock.AnyArg(), "D1", "msa.pdf", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	rec, err := st.CreateSession(context.Background(), model.Document{ID: "D1", Name: "msa.pdf"})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "D1", rec.DocumentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CloseSession(t *testing.T) {
	st, mock := newTestPostgresStore(t)

	mock.ExpectExec("UPDATE sessions SET closed_at").
		WithArgs(pgxmock.AnyArg(), "S1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, st.CloseSession(context.Background(), "S1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetSession(t *testing.T) {
	st, mock := newTestPostgresStore(t)
	openedAt := time.Now().UTC()

	mock.ExpectQuery("SELECT id, document_id, document_name, opened_at, closed_at FROM sessions").
		WithArgs("S1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "document_id", "document_name", "opened_at", "closed_at"}).
			AddRow("S1", "D1", "msa.pdf", openedAt, (*time.Time)(nil)))

	rec, err := st.GetSession(context.Background(), "S1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "D1", rec.DocumentID)
	assert.Nil(t, rec.ClosedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetSession_Missing(t *testing.T) {
	st, mock := newTestPostgresStore(t)

	mock.ExpectQuery("SELECT id, document_id, document_name, opened_at, closed_at FROM sessions").
		WithArgs("nonexistent").
		WillReturnRows(pgxmock.NewRows([]string{"id", "document_id", "document_name", "opened_at", "closed_at"}))

	rec, err := st.GetSession(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, rec)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListSessions(t *testing.T) {
	st, mock := newTestPostgresStore(t)
	openedAt := time.Now().UTC()

	mock.ExpectQuery("SELECT id, document_id, document_name, opened_at, closed_at FROM sessions WHERE document_id").
		WithArgs("D1", 10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "document_id", "document_name", "opened_at", "closed_at"}).
			AddRow("S2", "D1", "msa.pdf", openedAt, (*time.Time)(nil)).
			AddRow("S1", "D1", "msa.pdf", openedAt.Add(-time.Hour), (*time.Time)(nil)))

	records, err := st.ListSessions(context.Background(), SessionFilter{DocumentID: "D1", Limit: 10})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "S2", records[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListSessions_DefaultLimit(t *testing.T) {
	st, mock := newTestPostgresStore(t)

	mock.ExpectQuery("SELECT id, document_id, document_name, opened_at, closed_at FROM sessions").
		WithArgs(50).
		WillReturnRows(pgxmock.NewRows([]string{"id", "document_id", "document_name", "opened_at", "closed_at"}))

	records, err := st.ListSessions(context.Background(), SessionFilter{})
	require.NoError(t, err)
	assert.Empty(t, records)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_RecordAndListActions(t *testing.T) {
	st, mock := newTestPostgresStore(t)
	at := time.Now().UTC()

	mock.ExpectExec("INSERT INTO session_actions").
		WithArgs(pgxmock.AnyArg(), "S1", "extract", "5 clauses", "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	rec, err := st.RecordAction(context.Background(), "S1", model.ActionExtract, "5 clauses", "")
	require.NoError(t, err)
	assert.Equal(t, model.ActionExtract, rec.Action)

	mock.ExpectQuery("SELECT id, session_id, action, detail, error, at FROM session_actions").
		WithArgs("S1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "session_id", "action", "detail", "error", "at"}).
			AddRow("A1", "S1", "extract", "5 clauses", "", at).
			AddRow("A2", "S1", "select", "clause 2", "", at.Add(time.Second)))

	actions, err := st.ListActions(context.Background(), "S1")
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, model.ActionSelect, actions[1].Action)
	require.NoError(t, mock.ExpectationsWereMet())
}
