package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	_ "modernc.org/sqlite"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/interfaces"
	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = model.ErrNotFound

// SQLite is a single node backend storing everything in one database file.
// The connection pool is limited to a single connection, which serializes
// transactions and makes the quota check-and-record atomic.
type SQLite struct {
	db             *sql.DB
	path           string
	relationship   *relationshipRepository
	memory         *memoryRepository
	dailySelection *dailySelectionRepository
	reactionQuota  *reactionQuotaRepository
}

var _ interfaces.Repository = &SQLite{}

// Open opens (or creates) the SQLite database at the given path,
// configures pragmas, and runs migrations.
func Open(ctx context.Context, path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, goerr.Wrap(err, "failed to create database directory", goerr.V("path", path))
	}

	return open(ctx, path, []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	})
}

// OpenMemory opens an in-memory SQLite database for testing.
func OpenMemory(ctx context.Context) (*SQLite, error) {
	return open(ctx, ":memory:", []string{
		"PRAGMA foreign_keys=ON",
	})
}

func open(ctx context.Context, path string, pragmas []string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite", goerr.V("path", path))
	}
	db.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, goerr.Wrap(err, "failed to apply pragma", goerr.V("pragma", p))
		}
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to migrate", goerr.V("path", path))
	}

	memoryRepo := &memoryRepository{db: db}
	return &SQLite{
		db:             db,
		path:           path,
		relationship:   &relationshipRepository{db: db},
		memory:         memoryRepo,
		dailySelection: &dailySelectionRepository{db: db},
		reactionQuota:  &reactionQuotaRepository{db: db},
	}, nil
}

func (s *SQLite) Relationship() interfaces.RelationshipRepository {
	return s.relationship
}

func (s *SQLite) Memory() interfaces.MemoryRepository {
	return s.memory
}

func (s *SQLite) DailySelection() interfaces.DailySelectionRepository {
	return s.dailySelection
}

func (s *SQLite) ReactionQuota() interfaces.ReactionQuotaRepository {
	return s.reactionQuota
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// Timestamps are stored as unix nanoseconds in UTC
func toUnix(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}
