package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/etnz/finasync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPgConn is a mock implementation of PgConn for testing.
type MockPgConn struct {
	mock.Mock
}

func (m *MockPgConn) Query(ctx context.Context, sql string, args ...any) (PgRows, error) {
	arguments := []any{ctx, sql}
	arguments = append(arguments, args...)
	ret := m.Called(arguments...)
	return ret.Get(0).(PgRows), ret.Error(1)
}

func (m *MockPgConn) Exec(ctx context.Context, sql string, args ...any) error {
	arguments := []any{ctx, sql}
	arguments = append(arguments, args...)
	ret := m.Called(arguments...)
	return ret.Error(0)
}

func (m *MockPgConn) Close(ctx context.Context) error {
	ret := m.Called(ctx)
	return ret.Error(0)
}

// fakeRows iterates over fixed (key, value, updated_at) rows.
type fakeRows struct {
	rows   [][3]any
	i      int
	closed bool
}

func (r *fakeRows) Next() bool {
	if r.i >= len(r.rows) {
		return false
	}
	r.i++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.i-1]
	*dest[0].(*string) = row[0].(string)
	*dest[1].(*string) = row[1].(string)
	*dest[2].(*time.Time) = row[2].(time.Time)
	return nil
}

func (r *fakeRows) Err() error { return nil }
func (r *fakeRows) Close()     { r.closed = true }

func newMockPgStore(t *testing.T) (*PgStore, *MockPgConn) {
	t.Helper()
	conn := new(MockPgConn)
	// table creation.
	conn.On("Exec", mock.Anything, mock.Anything).Return(nil).Once()

	s, err := NewPgStore(t.Context(), PgParams{
		Scope: Scope{App: "app", User: "user", Session: "s"},
		Conn:  conn,
	})
	require.NoError(t, err)
	return s, conn
}

func TestPgStore_Put(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	fixClock(t, at)
	s, conn := newMockPgStore(t)

	conn.On("Exec", mock.Anything, mock.Anything,
		"app", "user", "s", "financial:expenses", "Total: $5", at,
	).Return(nil).Once()

	require.NoError(t, s.Put(t.Context(), finasync.Expenses, "Total: $5"))
	conn.AssertExpectations(t)
}

func TestPgStore_PutFailure(t *testing.T) {
	s, conn := newMockPgStore(t)
	conn.On("Exec", mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything,
	).Return(errors.New("connection reset")).Once()

	err := s.Put(t.Context(), finasync.Expenses, "Total: $5")
	assert.ErrorContains(t, err, "connection reset")
}

func TestPgStore_GetAll(t *testing.T) {
	s, conn := newMockPgStore(t)
	older := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	rows := &fakeRows{rows: [][3]any{
		{"financial:expenses", "Total: $500", older},
		{"financial:investments", "Total: $2000", newer},
	}}
	conn.On("Query", mock.Anything, mock.Anything, "app", "user", "s", "financial:%").Return(rows, nil).Once()

	snap, err := s.GetAll(t.Context())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"expenses":    "Total: $500",
		"investments": "Total: $2000",
	}, snap.Map())
	assert.Equal(t, newer, snap.LastUpdated)
	assert.True(t, rows.closed)
}

func TestPgStore_CreateTableFailureCloses(t *testing.T) {
	conn := new(MockPgConn)
	conn.On("Exec", mock.Anything, mock.Anything).Return(errors.New("permission denied")).Once()
	conn.On("Close", mock.Anything).Return(nil).Once()

	_, err := NewPgStore(t.Context(), PgParams{Conn: conn})
	assert.ErrorContains(t, err, "permission denied")
	conn.AssertExpectations(t)
}

func TestPgStore_RequiresConnectionString(t *testing.T) {
	_, err := NewPgStore(t.Context(), PgParams{})
	assert.Error(t, err)
}
