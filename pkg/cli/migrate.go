package cli

import (
	"context"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/Neperienx/souvella-web-sub000/pkg/repository/sqlite"
	"github.com/Neperienx/souvella-web-sub000/pkg/utils/logging"
)

func cmdMigrate() *cli.Command {
	var projectID string
	var databaseID string
	var sqlitePath string
	var dryRun bool

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrate Firestore indexes, or the SQLite schema with --sqlite-path",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "firestore-project-id",
				Usage:       "Firestore Project ID",
				Sources:     cli.EnvVars("SOUVELLA_FIRESTORE_PROJECT_ID"),
				Destination: &projectID,
			},
			&cli.StringFlag{
				Name:        "firestore-database-id",
				Usage:       "Firestore Database ID",
				Sources:     cli.EnvVars("SOUVELLA_FIRESTORE_DATABASE_ID"),
				Destination: &databaseID,
			},
			&cli.StringFlag{
				Name:        "sqlite-path",
				Usage:       "SQLite database file to migrate instead of Firestore",
				Destination: &sqlitePath,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Preview changes without applying",
				Destination: &dryRun,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if sqlitePath != "" {
				return migrateSQLite(ctx, sqlitePath)
			}
			if projectID == "" {
				return goerr.New("firestore-project-id or sqlite-path is required")
			}
			return migrateFirestore(ctx, projectID, databaseID, dryRun)
		},
	}
}

func migrateFirestore(ctx context.Context, projectID, databaseID string, dryRun bool) error {
	logger := logging.Default()

	logger.Info("Migrate configuration",
		"projectID", projectID,
		"databaseID", databaseID,
		"dryRun", dryRun)

	indexConfig := getIndexConfig()

	client, err := fireconf.NewClient(ctx, projectID, databaseID)
	if err != nil {
		return goerr.Wrap(err, "failed to create fireconf client")
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close fireconf client", "error", err.Error())
		}
	}()

	if dryRun {
		logger.Info("Dry run mode - previewing changes")
		plan, err := client.GetMigrationPlan(ctx, indexConfig)
		if err != nil {
			return goerr.Wrap(err, "failed to create migration plan")
		}

		if len(plan.Steps) == 0 {
			logger.Info("No changes required")
			return nil
		}

		for _, step := range plan.Steps {
			logger.Info("Migration step",
				"collection", step.Collection,
				"operation", step.Operation,
				"description", step.Description,
				"destructive", step.Destructive)
		}
		return nil
	}

	logger.Info("Applying migrations")
	if err := client.Migrate(ctx, indexConfig); err != nil {
		return goerr.Wrap(err, "failed to apply migrations")
	}
	logger.Info("Migrations applied successfully")
	return nil
}

// migrateSQLite opens the database, which applies pending schema migrations
func migrateSQLite(ctx context.Context, path string) error {
	db, err := sqlite.Open(ctx, path)
	if err != nil {
		return goerr.Wrap(err, "failed to migrate sqlite database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Default().Error("failed to close sqlite database", "error", err.Error())
		}
	}()

	version, err := db.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	logging.Default().Info("SQLite schema is up to date", "path", path, "version", version)
	return nil
}

// getIndexConfig returns the Firestore index configuration
func getIndexConfig() *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: "memories",
				Indexes: []fireconf.Index{
					// ListByRelationship: relationship_id ASC, created_at DESC
					{
						Fields: []fireconf.IndexField{
							{Path: "relationship_id", Order: fireconf.OrderAscending},
							{Path: "created_at", Order: fireconf.OrderDescending},
						},
					},
				},
			},
		},
	}
}
