package sqlite

import (
	"context"
	"database/sql"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Neperienx/souvella-web-sub000/pkg/utils/safe"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "relationships and members",
		SQL: `
CREATE TABLE relationships (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL DEFAULT '',
    invite_code TEXT NOT NULL UNIQUE,
    created_at  INTEGER NOT NULL
);

CREATE TABLE relationship_members (
    relationship_id TEXT NOT NULL REFERENCES relationships(id),
    user_id         TEXT NOT NULL,
    joined_at       INTEGER NOT NULL,
    PRIMARY KEY (relationship_id, user_id)
);

CREATE INDEX idx_members_user ON relationship_members(user_id);
`,
	},
	{
		Version:     2,
		Description: "memories",
		SQL: `
CREATE TABLE memories (
    id              TEXT PRIMARY KEY,
    relationship_id TEXT NOT NULL,
    author_id       TEXT NOT NULL,
    kind            TEXT NOT NULL CHECK (kind IN ('text', 'image', 'audio')),
    body            TEXT NOT NULL DEFAULT '',
    media_ref       TEXT NOT NULL DEFAULT '',
    reaction_count  INTEGER NOT NULL DEFAULT 0 CHECK (reaction_count >= 0),
    is_new          INTEGER NOT NULL DEFAULT 1,
    created_at      INTEGER NOT NULL
);

CREATE INDEX idx_memories_relationship ON memories(relationship_id, created_at DESC);
`,
	},
	{
		Version:     3,
		Description: "daily selections and reactions",
		SQL: `
CREATE TABLE daily_selections (
    relationship_id TEXT NOT NULL,
    date            TEXT NOT NULL,
    memory_ids      TEXT NOT NULL,
    created_at      INTEGER NOT NULL,
    PRIMARY KEY (relationship_id, date)
);

CREATE TABLE reactions (
    user_id    TEXT NOT NULL,
    date       TEXT NOT NULL,
    memory_id  TEXT NOT NULL REFERENCES memories(id),
    created_at INTEGER NOT NULL,
    PRIMARY KEY (user_id, date, memory_id)
);
`,
	},
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return goerr.Wrap(err, "failed to create schema_versions")
	}

	for _, m := range migrations {
		var count int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count); err != nil {
			return goerr.Wrap(err, "failed to check migration", goerr.V("version", m.Version))
		}
		if count > 0 {
			continue
		}

		if err := applyMigration(ctx, db, m); err != nil {
			return err
		}
	}
	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin migration", goerr.V("version", m.Version))
	}
	defer safe.Rollback(ctx, tx)

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return goerr.Wrap(err, "failed to apply migration",
			goerr.V("version", m.Version), goerr.V("description", m.Description))
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
		m.Version, m.Description,
	); err != nil {
		return goerr.Wrap(err, "failed to record migration", goerr.V("version", m.Version))
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit migration", goerr.V("version", m.Version))
	}
	return nil
}

// SchemaVersion returns the current schema version.
func (s *SQLite) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version); err != nil {
		return 0, goerr.Wrap(err, "failed to get schema version")
	}
	return version, nil
}
