package safe

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"

	"github.com/Neperienx/souvella-web-sub000/pkg/utils/logging"
)

// Close closes an io.Closer and logs any errors. Nil closers are ignored.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Error("Failed to close", slog.Any("error", err))
	}
}

// Write writes data to an io.Writer and logs any errors. Nil writers are ignored.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.From(ctx).Error("Failed to write", slog.Any("error", err))
	}
}

// Rollback rolls back a transaction that was not committed. It is meant to
// be deferred right after BeginTx; rolling back a committed transaction is
// silently ignored.
func Rollback(ctx context.Context, tx *sql.Tx) {
	if tx == nil {
		return
	}
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logging.From(ctx).Error("Failed to rollback", slog.Any("error", err))
	}
}
