package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/Neperienx/souvella-web-sub000/pkg/cli/config"
	"github.com/Neperienx/souvella-web-sub000/pkg/utils/errutil"
	"github.com/Neperienx/souvella-web-sub000/pkg/utils/logging"
)

func Run(ctx context.Context, args []string, version string) error {
	var loggerCfg config.Logger
	var sentryCfg config.Sentry
	var closer func()

	// Env sources are read while parsing flags, so .env files load first
	dotenvFiles, dotenvErr := config.LoadDotEnv("")

	app := &cli.Command{
		Name:    "souvella",
		Usage:   "Souvella shared memory jar",
		Version: version,
		Flags:   append(loggerCfg.Flags(), sentryCfg.Flags()...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closer = f

			if dotenvErr != nil {
				logging.Default().Warn("failed to load .env files", "error", dotenvErr)
			}
			if err := sentryCfg.Configure(version); err != nil {
				return ctx, err
			}

			logging.Default().Info("Starting souvella",
				"logger", loggerCfg,
				"sentry", sentryCfg,
				"dotenv", dotenvFiles,
			)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			errutil.FlushSentry()
			if closer != nil {
				closer()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdMigrate(),
			cmdGems(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}
