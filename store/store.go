// Package store is the local key-value persistence for the dashboard: the
// account record, settings, backup, device id and sync state, each kept
// under its own key in a SQLite table.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Keys, one per slot.
const (
	KeyAccount      = "creditSpreadsData"
	KeySync         = "creditSpreadsSync"
	KeySettings     = "creditSpreadsSettings"
	KeyBackup       = "creditSpreadsBackup"
	KeyDeviceID     = "deviceId"
	KeyGoogleClient = "googleClientId"
	KeyGoogleToken  = "googleAccessToken"
)

var ErrNotFound = errors.New("store: key not found")

type Store struct {
	db  *sql.DB
	log *zap.Logger
	now func() time.Time
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l.Named("store") }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens (creating if needed) the database at path and applies
// migrations.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, log: zap.NewNop(), now: time.Now}
	for _, o := range opts {
		o(s)
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("sqlite migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("migration instance: %w", err)
	}

	// m.Close would also close s.db.
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			s.log.Debug("no new store migrations")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}
	s.log.Info("store migrations applied")
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value under key, or ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.now().UTC())
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes keys. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, k); err != nil {
			return fmt.Errorf("delete %s: %w", k, err)
		}
	}
	return nil
}

// Info summarizes what is stored.
type Info struct {
	HasData   bool `json:"hasData"`
	HasSync   bool `json:"hasSync"`
	HasBackup bool `json:"hasBackup"`
	DataSize  int  `json:"dataSize"`
	TotalSize int  `json:"totalSize"`
}

func (s *Store) Info(ctx context.Context) (Info, error) {
	sizes := map[string]int{}
	rows, err := s.db.QueryContext(ctx, `SELECT key, length(value) FROM kv WHERE key IN (?, ?, ?)`,
		KeyAccount, KeySync, KeyBackup)
	if err != nil {
		return Info{}, fmt.Errorf("store info: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			k string
			n int
		)
		if err := rows.Scan(&k, &n); err != nil {
			return Info{}, err
		}
		sizes[k] = n
	}
	if err := rows.Err(); err != nil {
		return Info{}, err
	}

	_, hasData := sizes[KeyAccount]
	_, hasSync := sizes[KeySync]
	_, hasBackup := sizes[KeyBackup]
	return Info{
		HasData:   hasData,
		HasSync:   hasSync,
		HasBackup: hasBackup,
		DataSize:  sizes[KeyAccount],
		TotalSize: sizes[KeyAccount] + sizes[KeySync] + sizes[KeyBackup],
	}, nil
}
