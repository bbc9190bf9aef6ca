package errutil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"

	"github.com/Neperienx/souvella-web-sub000/pkg/utils/logging"
	"github.com/Neperienx/souvella-web-sub000/pkg/utils/safe"
)

var sentryEnabled atomic.Bool

// InitSentry enables error reporting to Sentry. An empty DSN leaves reporting
// disabled and is not an error.
func InitSentry(dsn, env, release string) error {
	if dsn == "" {
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: env,
		Release:     release,
	}); err != nil {
		return goerr.Wrap(err, "failed to initialize sentry")
	}
	sentryEnabled.Store(true)
	return nil
}

// FlushSentry waits for buffered events to be delivered
func FlushSentry() {
	if sentryEnabled.Load() {
		sentry.Flush(2 * time.Second)
	}
}

func report(err error) {
	if !sentryEnabled.Load() {
		return
	}

	hub := sentry.CurrentHub().Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		var ge *goerr.Error
		if errors.As(err, &ge) {
			scope.SetContext("goerr", ge.Values())
		}
		hub.CaptureException(err)
	})
}

// Handle logs the error with a message and reports it to Sentry.
// The error is returned as-is so callers can keep propagating it.
func Handle(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error(msg,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error(msg, "error", err.Error())
	}

	report(err)
	return err
}

// HandleHTTP logs the error and writes a JSON error response. Only 5xx
// errors are reported to Sentry; 4xx errors are client mistakes.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int) {
	if err == nil {
		return
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if statusCode >= 500 {
		if errors.As(err, &ge) {
			logger.Error("HTTP error",
				"status", statusCode,
				"error", err.Error(),
				"values", ge.Values(),
				"stack", ge.Stacks(),
			)
		} else {
			logger.Error("HTTP error",
				"status", statusCode,
				"error", err.Error(),
			)
		}
		report(err)
	} else {
		logger.Warn("HTTP client error",
			"status", statusCode,
			"error", err.Error(),
		)
	}

	WriteJSONError(ctx, w, statusCode, publicMessage(err, statusCode))
}

// WriteJSONError writes {"error": msg} with the status code
func WriteJSONError(ctx context.Context, w http.ResponseWriter, statusCode int, msg string) {
	body, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		logging.From(ctx).Error("failed to encode error response", "error", err)
		body = []byte(`{"error":"internal server error"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	safe.Write(ctx, w, body)
}

// publicMessage hides internal details of server errors from clients
func publicMessage(err error, statusCode int) string {
	switch {
	case statusCode == http.StatusServiceUnavailable:
		return "try again"
	case statusCode >= 500:
		return "internal server error"
	default:
		return err.Error()
	}
}
