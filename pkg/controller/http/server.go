package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Neperienx/souvella-web-sub000/pkg/usecase"
)

// DefaultUserHeader carries the caller's user ID. The server sits behind an
// authenticating proxy which sets it; requests without it are rejected.
const DefaultUserHeader = "X-Souvella-User"

type Server struct {
	router     *chi.Mux
	uc         *usecase.UseCases
	userHeader string
}

type Options func(*Server)

// WithUserHeader changes the header the caller identity is read from
func WithUserHeader(name string) Options {
	return func(s *Server) {
		s.userHeader = name
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:     r,
		uc:         uc,
		userHeader: DefaultUserHeader,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(identityMiddleware(s.userHeader))

		r.Route("/relationships", func(r chi.Router) {
			r.Get("/", s.listRelationships)
			r.Post("/", s.createRelationship)
			r.Post("/join", s.joinRelationship)

			r.Route("/{relationshipID}", func(r chi.Router) {
				r.Use(membershipMiddleware(uc.Relationship))

				r.Get("/", s.getRelationship)
				r.Get("/memories", s.listTimeline)
				r.Post("/memories", s.createMemory)
				r.Get("/memories/new", s.listNewMemories)
				r.Post("/memories/viewed", s.markMemoriesViewed)
				r.Get("/gems", s.getGems)
				r.Post("/gems/reroll", s.rerollGems)
			})
		})

		r.Get("/memories/{memoryID}", s.getMemory)
		r.Post("/memories/{memoryID}/reactions", s.reactToMemory)
		r.Get("/reactions/remaining", s.remainingReactions)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
