// Package session keeps the API bearer token and small UI preferences in the
// local SQLite database.
package session

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/alexanderramin/shiftdash/internal/db"
)

// ErrNoSession is returned by Current when nobody is signed in or the
// stored session has expired.
var ErrNoSession = errors.New("no active session")

// Session is a stored sign-in.
type Session struct {
	ID        string
	Token     string
	Username  string
	APIURL    string
	CreatedAt time.Time
	ExpiresAt *time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

// Store persists the single active session.
type Store struct {
	conn  db.DBTX
	uow   db.UnitOfWork
	clock clockwork.Clock
}

// NewStore creates a Store. A nil clock uses the real clock.
func NewStore(conn *sql.DB, clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{conn: conn, uow: db.NewSQLiteUnitOfWork(conn), clock: clock}
}

// WithUnitOfWork returns a copy of s that runs its writes through uow.
func (s *Store) WithUnitOfWork(uow db.UnitOfWork) *Store {
	cp := *s
	cp.uow = uow
	return &cp
}

// Save replaces any stored session with a new one. A zero ttl never
// expires.
func (s *Store) Save(ctx context.Context, token, username, apiURL string, ttl time.Duration) (*Session, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}
	now := s.clock.Now().UTC()
	sess := &Session{
		ID:        uuid.NewString(),
		Token:     token,
		Username:  username,
		APIURL:    apiURL,
		CreatedAt: now,
	}
	var expires sql.NullString
	if ttl > 0 {
		at := now.Add(ttl)
		sess.ExpiresAt = &at
		expires = sql.NullString{String: at.Format(time.RFC3339Nano), Valid: true}
	}

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
			return errors.Wrap(err, "clearing sessions")
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO sessions (id, token, username, api_url, created_at, expires_at) VALUES (?, ?, ?, ?, ?, ?)`,
			sess.ID, sess.Token, sess.Username, sess.APIURL, now.Format(time.RFC3339Nano), expires)
		if err != nil {
			return errors.Wrap(err, "inserting session")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Current returns the active session or ErrNoSession.
func (s *Store) Current(ctx context.Context) (*Session, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, token, username, api_url, created_at, expires_at FROM sessions ORDER BY created_at DESC LIMIT 1`)

	var (
		sess    Session
		created string
		expires sql.NullString
	)
	if err := row.Scan(&sess.ID, &sess.Token, &sess.Username, &sess.APIURL, &created, &expires); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSession
		}
		return nil, errors.Wrap(err, "reading session")
	}
	var err error
	if sess.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, errors.Wrap(err, "parsing session created_at")
	}
	if expires.Valid {
		at, err := time.Parse(time.RFC3339Nano, expires.String)
		if err != nil {
			return nil, errors.Wrap(err, "parsing session expires_at")
		}
		sess.ExpiresAt = &at
	}
	if sess.Expired(s.clock.Now()) {
		return nil, ErrNoSession
	}
	return &sess, nil
}

// Token implements the API client's token source. No session yields an
// empty token so the client can fail before sending anything.
func (s *Store) Token(ctx context.Context) (string, error) {
	sess, err := s.Current(ctx)
	if errors.Is(err, ErrNoSession) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return sess.Token, nil
}

// Clear removes the stored session.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return errors.Wrap(err, "clearing sessions")
	}
	return nil
}

// Preference returns a stored UI preference.
func (s *Store) Preference(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.conn.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "reading preference %s", key)
	}
	return v, true, nil
}

// SetPreference stores a UI preference.
func (s *Store) SetPreference(ctx context.Context, key, value string) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.clock.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return errors.Wrapf(err, "writing preference %s", key)
	}
	return nil
}

// PrefPageSize is the preference key for the record table page size.
const PrefPageSize = "browser.page_size"

// PageSize returns the stored page size, or fallback.
func (s *Store) PageSize(ctx context.Context, fallback int) int {
	v, ok, err := s.Preference(ctx, PrefPageSize)
	if err != nil || !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
