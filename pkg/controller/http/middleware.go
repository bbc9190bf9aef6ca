package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
	"github.com/Neperienx/souvella-web-sub000/pkg/usecase"
	"github.com/Neperienx/souvella-web-sub000/pkg/utils/errutil"
	"github.com/Neperienx/souvella-web-sub000/pkg/utils/logging"
)

type ctxKey int

const (
	userIDKey ctxKey = iota
	relationshipKey
)

// requestLogger attaches a logger carrying the request ID to the context
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.From(r.Context()).With("request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(logging.With(r.Context(), logger)))
	})
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.From(r.Context()).Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// identityMiddleware reads the caller's user ID set by the upstream proxy
func identityMiddleware(header string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := strings.TrimSpace(r.Header.Get(header))
			if userID == "" {
				errutil.HandleHTTP(r.Context(), w, goerr.New("authentication required", goerr.V("header", header)), http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = logging.With(ctx, logging.From(ctx).With("user_id", userID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// membershipMiddleware loads the relationship in the URL and rejects callers
// who are not members of it
func membershipMiddleware(uc *usecase.RelationshipUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := model.RelationshipID(chi.URLParam(r, "relationshipID"))

			rel, err := uc.RequireMember(r.Context(), id, userIDFrom(r.Context()))
			if err != nil {
				handleError(r.Context(), w, err)
				return
			}

			ctx := context.WithValue(r.Context(), relationshipKey, rel)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func userIDFrom(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}

func relationshipFrom(ctx context.Context) *model.Relationship {
	rel, _ := ctx.Value(relationshipKey).(*model.Relationship)
	return rel
}
