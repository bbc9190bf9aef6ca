package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/Neperienx/souvella-web-sub000/pkg/cli/config"
	httpctrl "github.com/Neperienx/souvella-web-sub000/pkg/controller/http"
	"github.com/Neperienx/souvella-web-sub000/pkg/usecase"
	"github.com/Neperienx/souvella-web-sub000/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var userHeader string
	var repoCfg config.Repository
	var policyCfg config.Policy
	var mediaCfg config.Media

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("SOUVELLA_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "user-header",
			Usage:       "Request header carrying the authenticated user ID",
			Value:       httpctrl.DefaultUserHeader,
			Sources:     cli.EnvVars("SOUVELLA_USER_HEADER"),
			Destination: &userHeader,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)
	flags = append(flags, mediaCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			policy, err := policyCfg.Configure(c)
			if err != nil {
				return goerr.Wrap(err, "failed to load policy")
			}

			// Initialize repository based on backend type
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			ucOpts := []usecase.Option{
				usecase.WithPolicy(policy),
			}

			mediaStore, err := mediaCfg.Configure(ctx)
			if err != nil {
				return err
			}
			if mediaStore != nil {
				defer func() {
					if err := mediaStore.Close(); err != nil {
						logging.Default().Error("failed to close media store", "error", err.Error())
					}
				}()
				ucOpts = append(ucOpts, usecase.WithMediaStore(mediaStore))
				logging.Default().Info("Media verification enabled", "media", mediaCfg)
			}

			uc := usecase.New(repo, ucOpts...)

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpctrl.WithUserHeader(userHeader)),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server",
					"addr", addr,
					"repository", repoCfg,
					"policy", policyCfg,
				)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
