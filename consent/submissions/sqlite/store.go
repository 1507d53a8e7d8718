// Package sqlite persists consent submissions in a SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/carhire-site/consent/submissions"
	apperrors "github.com/jrsteele09/carhire-site/internal/errors"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS cookie_consents (
	id            TEXT PRIMARY KEY,
	session_id    TEXT NOT NULL UNIQUE,
	ip_address    TEXT NOT NULL DEFAULT '',
	user_agent    TEXT NOT NULL DEFAULT '',
	necessary     INTEGER NOT NULL DEFAULT 1,
	analytics     INTEGER NOT NULL DEFAULT 0,
	marketing     INTEGER NOT NULL DEFAULT 0,
	functional    INTEGER NOT NULL DEFAULT 0,
	consented_at  INTEGER NOT NULL,
	last_updated  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cookie_consents_consented_at ON cookie_consents (consented_at DESC);
`

var _ submissions.Repo = (*Store)(nil)

// Store persists submissions in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens (creating if needed) the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Upsert(ctx context.Context, submission *submissions.Submission) (created bool, err error) {
	if submission == nil {
		return false, errors.New("submission cannot be nil")
	}
	sessionID := strings.TrimSpace(submission.SessionID)
	if sessionID == "" {
		return false, errors.New("session id cannot be empty")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := toMillis(submissions.NowTimeFunc())
	var existingID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM cookie_consents WHERE session_id = ?`, sessionID).Scan(&existingID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		id := submission.ID
		if id == "" {
			id = uuid.NewString()
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO cookie_consents
				(id, session_id, ip_address, user_agent, necessary, analytics, marketing, functional, consented_at, last_updated)
			VALUES (?, ?, ?, ?, 1, ?, ?, ?, ?, ?)`,
			id, sessionID, submission.IPAddress, submission.UserAgent,
			submission.Analytics, submission.Marketing, submission.Functional, now, now)
		if err != nil {
			return false, fmt.Errorf("insert submission: %w", err)
		}
		created = true
	case err != nil:
		return false, fmt.Errorf("lookup submission: %w", err)
	default:
		_, err = tx.ExecContext(ctx, `
			UPDATE cookie_consents
			SET analytics = ?, marketing = ?, functional = ?, last_updated = ?
			WHERE session_id = ?`,
			submission.Analytics, submission.Marketing, submission.Functional, now, sessionID)
		if err != nil {
			return false, fmt.Errorf("update submission: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit submission: %w", err)
	}
	return created, nil
}

const selectColumns = `id, session_id, ip_address, user_agent, necessary, analytics, marketing, functional, consented_at, last_updated`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*submissions.Submission, error) {
	var (
		s                     submissions.Submission
		consentedAt, lastUpdt int64
	)
	if err := row.Scan(&s.ID, &s.SessionID, &s.IPAddress, &s.UserAgent,
		&s.Necessary, &s.Analytics, &s.Marketing, &s.Functional, &consentedAt, &lastUpdt); err != nil {
		return nil, err
	}
	s.ConsentedAt = fromMillis(consentedAt)
	s.LastUpdated = fromMillis(lastUpdt)
	return &s, nil
}

func (s *Store) Get(ctx context.Context, sessionID string) (*submissions.Submission, error) {
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM cookie_consents WHERE session_id = ?`, sessionID)
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return sub, nil
}

func (s *Store) List(ctx context.Context, offset, limit int) ([]*submissions.Submission, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = -1 // no limit
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM cookie_consents ORDER BY consented_at DESC, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	result := make([]*submissions.Submission, 0)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		result = append(result, sub)
	}
	return result, rows.Err()
}
