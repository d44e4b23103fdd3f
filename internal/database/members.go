package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rickgao/registration-bot/internal/model"
)

// ErrDuplicateMember is returned when the netid is already registered.
var ErrDuplicateMember = errors.New("member already registered")

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

const createMembersTable = `
CREATE TABLE IF NOT EXISTS members (
    id          UUID PRIMARY KEY,
    netid       TEXT NOT NULL UNIQUE,
    first_name  TEXT NOT NULL,
    last_name   TEXT NOT NULL,
    email       TEXT NOT NULL,
    national_id TEXT NOT NULL DEFAULT '',
    discord_id  TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL
)`

const insertMember = `
INSERT INTO members (id, netid, first_name, last_name, email, national_id, discord_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// Execer is the subset of pgxpool.Pool used by MemberStore.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// MemberStore writes members to the members table.
type MemberStore struct {
	db     Execer
	logger *slog.Logger
	now    func() time.Time
}

// NewMemberStore creates a store over db.
func NewMemberStore(db Execer, logger *slog.Logger) *MemberStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemberStore{
		db:     db,
		logger: logger.With("component", "member_store"),
		now:    time.Now,
	}
}

// EnsureSchema creates the members table if it does not exist.
func (s *MemberStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createMembersTable); err != nil {
		return fmt.Errorf("create members table: %w", err)
	}
	return nil
}

// CreateMember inserts m. A missing CreatedAt is filled with the current time.
func (s *MemberStore) CreateMember(ctx context.Context, m model.Member) error {
	createdAt := m.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	id := uuid.New()
	_, err := s.db.Exec(ctx, insertMember,
		id,
		m.NetID,
		m.FirstName,
		m.LastName,
		m.Email,
		m.NationalID,
		m.DiscordID,
		createdAt.UTC(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: %s", ErrDuplicateMember, m.NetID)
		}
		return fmt.Errorf("insert member: %w", err)
	}

	s.logger.Debug("member inserted", append(m.LogAttrs(), "id", id)...)
	return nil
}
