package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/registration-bot/internal/model"
)

type execCall struct {
	sql  string
	args []any
}

type fakeExecer struct {
	calls []execCall
	err   error
}

func (f *fakeExecer) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, execCall{sql: sql, args: args})
	if f.err != nil {
		return pgconn.CommandTag{}, f.err
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func testMember() model.Member {
	return model.Member{
		NetID:     "abc123",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.edu",
		DiscordID: "555",
	}
}

func TestMemberStore_EnsureSchema(t *testing.T) {
	db := &fakeExecer{}
	s := NewMemberStore(db, nil)

	require.NoError(t, s.EnsureSchema(context.Background()))
	require.Len(t, db.calls, 1)
	assert.Contains(t, db.calls[0].sql, "CREATE TABLE IF NOT EXISTS members")
}

func TestMemberStore_EnsureSchemaError(t *testing.T) {
	db := &fakeExecer{err: errors.New("permission denied")}
	s := NewMemberStore(db, nil)

	err := s.EnsureSchema(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "create members table")
	assert.ErrorIs(t, err, db.err)
}

func TestMemberStore_CreateMember(t *testing.T) {
	db := &fakeExecer{}
	s := NewMemberStore(db, nil)
	fixed := time.Date(2026, 9, 1, 12, 0, 0, 0, time.FixedZone("CDT", -5*3600))
	s.now = func() time.Time { return fixed }

	require.NoError(t, s.CreateMember(context.Background(), testMember()))
	require.Len(t, db.calls, 1)

	args := db.calls[0].args
	require.Len(t, args, 8)
	assert.IsType(t, uuid.UUID{}, args[0])
	assert.Equal(t, []any{"abc123", "Ada", "Lovelace", "ada@example.edu", "", "555"}, args[1:7])

	createdAt, ok := args[7].(time.Time)
	require.True(t, ok, "created_at should be a time.Time, got %T", args[7])
	assert.True(t, createdAt.Equal(fixed))
	assert.Equal(t, time.UTC, createdAt.Location())
}

func TestMemberStore_CreateMemberKeepsCreatedAt(t *testing.T) {
	db := &fakeExecer{}
	s := NewMemberStore(db, nil)

	m := testMember()
	m.CreatedAt = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, s.CreateMember(context.Background(), m))
	got := db.calls[0].args[7].(time.Time)
	assert.True(t, got.Equal(m.CreatedAt), "created_at = %v, want %v", got, m.CreatedAt)
}

func TestMemberStore_CreateMemberDuplicate(t *testing.T) {
	db := &fakeExecer{err: &pgconn.PgError{Code: "23505", Message: "duplicate key"}}
	s := NewMemberStore(db, nil)

	assert.ErrorIs(t, s.CreateMember(context.Background(), testMember()), ErrDuplicateMember)
}

func TestMemberStore_CreateMemberError(t *testing.T) {
	db := &fakeExecer{err: errors.New("connection reset")}
	s := NewMemberStore(db, nil)

	err := s.CreateMember(context.Background(), testMember())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateMember, "generic failure should not be a duplicate")
	assert.ErrorContains(t, err, "insert member")
}
