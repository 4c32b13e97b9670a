// Package store keeps findings, one summary per category.
//
// All backends share the same semantics: a write replaces the category's
// summary entirely and moves the store-wide last-updated time; reading
// returns every known category, the ones never written holding
// finasync.NoData. Nothing is ever deleted.
//
// No backend serializes writers beyond its own integrity needs. The pipeline
// runs its stages one after the other and is the only writer.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/etnz/finasync"
	"github.com/etnz/finasync/config"
)

// Store is a category to summary mapping.
type Store interface {
	// Put replaces the summary of category.
	Put(ctx context.Context, category finasync.Category, summary string) error
	// GetAll returns the current content of the store.
	GetAll(ctx context.Context) (finasync.Snapshot, error)
	Close() error
}

// ErrReservedCategory is returned when writing a category that collides with
// the store metadata.
var ErrReservedCategory = errors.New("reserved category")

// validate rejects categories that cannot be stored.
func validate(category finasync.Category) error {
	c := strings.TrimSpace(string(category))
	if c == "" {
		return errors.New("empty category")
	}
	if c == finasync.LastUpdatedKey {
		return fmt.Errorf("%w %q", ErrReservedCategory, c)
	}
	return nil
}

// sessionPrefix namespaces findings among the other values of a session.
const sessionPrefix = "financial:"

func sessionKey(c finasync.Category) string { return sessionPrefix + string(c) }

func categoryOf(key string) (finasync.Category, bool) {
	c, ok := strings.CutPrefix(key, sessionPrefix)
	return finasync.Category(c), ok
}

// Scope identifies a conversation session in session backends.
type Scope struct {
	App     string
	User    string
	Session string
}

// Open returns the store selected by the configuration.
func Open(ctx context.Context, c config.Store) (Store, error) {
	scope := Scope{App: c.App, User: c.User, Session: c.Session}
	switch c.Backend {
	case config.BackendFile:
		return NewFileStore(c.Path), nil
	case config.BackendMemory:
		return NewMemoryStore(), nil
	case config.BackendSQLite:
		return NewSQLiteStore(ctx, SQLiteParams{DSN: c.DSN, Scope: scope})
	case config.BackendPostgres:
		return NewPgStore(ctx, PgParams{ConnectionString: c.DSN, Scope: scope})
	default:
		return nil, fmt.Errorf("unknown store backend %q", c.Backend)
	}
}

// clock is replaced in tests.
var clock = time.Now
