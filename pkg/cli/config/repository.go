package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/interfaces"
	"github.com/Neperienx/souvella-web-sub000/pkg/repository/firestore"
	"github.com/Neperienx/souvella-web-sub000/pkg/repository/memory"
	"github.com/Neperienx/souvella-web-sub000/pkg/repository/redis"
	"github.com/Neperienx/souvella-web-sub000/pkg/repository/sqlite"
	"github.com/Neperienx/souvella-web-sub000/pkg/utils/logging"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend    string
	projectID  string
	databaseID string
	sqlitePath string

	redisAddr     string
	redisPassword string
	redisDB       int
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (firestore, sqlite or memory)",
			Value:       "firestore",
			Sources:     cli.EnvVars("SOUVELLA_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Sources:     cli.EnvVars("SOUVELLA_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Sources:     cli.EnvVars("SOUVELLA_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "sqlite-path",
			Usage:       "SQLite database file (sqlite backend)",
			Value:       "souvella.db",
			Sources:     cli.EnvVars("SOUVELLA_SQLITE_PATH"),
			Destination: &r.sqlitePath,
		},
		&cli.StringFlag{
			Name:        "redis-addr",
			Usage:       "Redis address for caching daily selections (disabled when empty)",
			Category:    "Redis",
			Sources:     cli.EnvVars("SOUVELLA_REDIS_ADDR"),
			Destination: &r.redisAddr,
		},
		&cli.StringFlag{
			Name:        "redis-password",
			Usage:       "Redis password",
			Category:    "Redis",
			Sources:     cli.EnvVars("SOUVELLA_REDIS_PASSWORD"),
			Destination: &r.redisPassword,
		},
		&cli.IntFlag{
			Name:        "redis-db",
			Usage:       "Redis database number",
			Category:    "Redis",
			Sources:     cli.EnvVars("SOUVELLA_REDIS_DB"),
			Destination: &r.redisDB,
		},
	}
}

func (r Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", r.backend),
		slog.String("firestore_project_id", r.projectID),
		slog.String("firestore_database_id", r.databaseID),
		slog.String("sqlite_path", r.sqlitePath),
		slog.String("redis_addr", r.redisAddr),
		slog.Int("redis_password.len", len(r.redisPassword)),
	)
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// ProjectID returns the Firestore project ID
func (r *Repository) ProjectID() string {
	return r.projectID
}

// DatabaseID returns the Firestore database ID
func (r *Repository) DatabaseID() string {
	return r.databaseID
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	base, err := r.configureBase(ctx)
	if err != nil {
		return nil, err
	}

	if r.redisAddr == "" {
		return base, nil
	}

	cached, err := redis.New(ctx, base, &goredis.Options{
		Addr:     r.redisAddr,
		Password: r.redisPassword,
		DB:       r.redisDB,
	})
	if err != nil {
		if cerr := base.Close(); cerr != nil {
			logging.Default().Error("failed to close repository", "error", cerr)
		}
		return nil, goerr.Wrap(err, "failed to initialize redis cache")
	}
	logging.Default().Info("Daily selection cache enabled", "redis_addr", r.redisAddr)
	return cached, nil
}

func (r *Repository) configureBase(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case "firestore":
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrInvalidConfig, "firestore-project-id is required when using firestore backend")
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case "sqlite":
		if r.sqlitePath == "" {
			return nil, goerr.Wrap(ErrInvalidConfig, "sqlite-path is required when using sqlite backend")
		}
		repo, err := sqlite.Open(ctx, r.sqlitePath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize sqlite repository")
		}
		logging.Default().Info("Using SQLite repository", "path", r.sqlitePath)
		return repo, nil

	case "memory":
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "invalid repository backend", goerr.V(BackendKey, r.backend))
	}
}
