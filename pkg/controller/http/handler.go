package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
	"github.com/Neperienx/souvella-web-sub000/pkg/domain/types"
	"github.com/Neperienx/souvella-web-sub000/pkg/usecase"
)

// maxSelectionCount bounds the count query parameter of the gems endpoints
const maxSelectionCount = 50

type createRelationshipRequest struct {
	Name string `json:"name"`
}

type joinRelationshipRequest struct {
	InviteCode string `json:"invite_code"`
}

type createMemoryRequest struct {
	Kind     string `json:"kind"`
	Body     string `json:"body"`
	MediaRef string `json:"media_ref"`
}

func (s *Server) listRelationships(w http.ResponseWriter, r *http.Request) {
	rels, err := s.uc.Relationship.ListRelationshipsForUser(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}

	resp := make([]relationshipResponse, 0, len(rels))
	for _, rel := range rels {
		resp = append(resp, toRelationshipResponse(rel))
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"relationships": resp})
}

func (s *Server) createRelationship(w http.ResponseWriter, r *http.Request) {
	var req createRelationshipRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(r.Context(), w, err)
		return
	}

	rel, err := s.uc.Relationship.CreateRelationship(r.Context(), userIDFrom(r.Context()), req.Name)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toRelationshipResponse(rel))
}

func (s *Server) joinRelationship(w http.ResponseWriter, r *http.Request) {
	var req joinRelationshipRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(r.Context(), w, err)
		return
	}

	rel, err := s.uc.Relationship.JoinRelationship(r.Context(), userIDFrom(r.Context()), req.InviteCode)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toRelationshipResponse(rel))
}

func (s *Server) getRelationship(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, toRelationshipResponse(relationshipFrom(r.Context())))
}

func (s *Server) listTimeline(w http.ResponseWriter, r *http.Request) {
	rel := relationshipFrom(r.Context())

	memories, err := s.uc.Memory.ListTimeline(r.Context(), rel.ID)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, memoriesResponse{Memories: toMemoryResponses(memories)})
}

func (s *Server) createMemory(w http.ResponseWriter, r *http.Request) {
	rel := relationshipFrom(r.Context())

	var req createMemoryRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(r.Context(), w, err)
		return
	}

	kind := types.MemoryKind(req.Kind)
	if req.Kind == "" {
		kind = types.MemoryKindText
	}

	mem, err := s.uc.Memory.CreateMemory(r.Context(), rel.ID, userIDFrom(r.Context()), usecase.CreateMemoryInput{
		Kind:     kind,
		Body:     req.Body,
		MediaRef: req.MediaRef,
	})
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toMemoryResponse(mem))
}

func (s *Server) listNewMemories(w http.ResponseWriter, r *http.Request) {
	rel := relationshipFrom(r.Context())

	memories, err := s.uc.Freshness.ListNewMemories(r.Context(), rel.ID)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, memoriesResponse{Memories: toMemoryResponses(memories)})
}

func (s *Server) markMemoriesViewed(w http.ResponseWriter, r *http.Request) {
	rel := relationshipFrom(r.Context())

	updated, err := s.uc.Freshness.MarkRelationshipMemoriesViewed(r.Context(), rel.ID)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, viewedResponse{Updated: updated})
}

func (s *Server) getGems(w http.ResponseWriter, r *http.Request) {
	rel := relationshipFrom(r.Context())

	count, err := parseCount(r, 0)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}

	date := s.uc.Today()
	if v := r.URL.Query().Get("date"); v != "" {
		date, err = model.ParseDay(v)
		if err != nil {
			handleError(r.Context(), w, goerr.Wrap(errBadRequest, "invalid date", goerr.V("date", v)))
			return
		}
	}

	memories, err := s.uc.Selection.ComputeOrFetchDailySelection(r.Context(), rel.ID, date, count)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, gemsResponse{Date: date.String(), Memories: toMemoryResponses(memories)})
}

func (s *Server) rerollGems(w http.ResponseWriter, r *http.Request) {
	rel := relationshipFrom(r.Context())

	count, err := parseCount(r, s.uc.Policy().DefaultSelectionCount)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}

	memories, err := s.uc.Selection.RerollDailySelection(r.Context(), rel.ID, count)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, gemsResponse{Date: s.uc.Today().String(), Memories: toMemoryResponses(memories)})
}

func (s *Server) getMemory(w http.ResponseWriter, r *http.Request) {
	id := model.MemoryID(chi.URLParam(r, "memoryID"))

	mem, err := s.uc.Memory.GetMemory(r.Context(), id, userIDFrom(r.Context()))
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toMemoryResponse(mem))
}

func (s *Server) reactToMemory(w http.ResponseWriter, r *http.Request) {
	id := model.MemoryID(chi.URLParam(r, "memoryID"))

	result, err := s.uc.Reaction.ReactToMemory(r.Context(), id, userIDFrom(r.Context()))
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}

	// A rejected reaction is a normal outcome and is reported with 200
	writeJSON(w, r, http.StatusOK, reactionResponse{
		Accepted:  result.Accepted,
		Remaining: result.Remaining,
		Message:   result.Message,
	})
}

func (s *Server) remainingReactions(w http.ResponseWriter, r *http.Request) {
	remaining, err := s.uc.Reaction.GetRemainingReactions(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, remainingResponse{
		Date:      s.uc.Today().String(),
		Remaining: remaining,
		Limit:     s.uc.Reaction.Limit(),
	})
}

// parseCount reads the count query parameter, falling back to def when absent
func parseCount(r *http.Request, def int) (int, error) {
	v := r.URL.Query().Get("count")
	if v == "" {
		return def, nil
	}

	count, err := strconv.Atoi(v)
	if err != nil || count < 0 || count > maxSelectionCount {
		return 0, goerr.Wrap(errBadRequest, "count must be an integer between 0 and 50", goerr.V("count", v))
	}
	return count, nil
}
