package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
	"github.com/Neperienx/souvella-web-sub000/pkg/usecase"
	"github.com/Neperienx/souvella-web-sub000/pkg/utils/errutil"
	"github.com/Neperienx/souvella-web-sub000/pkg/utils/logging"
	"github.com/Neperienx/souvella-web-sub000/pkg/utils/safe"
)

// maxBodySize limits request bodies. Media is uploaded out of band, so
// request payloads only carry text and references.
const maxBodySize = 1 << 20

var errBadRequest = errors.New("bad request")

type relationshipResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	MemberIDs  []string  `json:"member_ids"`
	InviteCode string    `json:"invite_code"`
	CreatedAt  time.Time `json:"created_at"`
}

func toRelationshipResponse(rel *model.Relationship) relationshipResponse {
	return relationshipResponse{
		ID:         string(rel.ID),
		Name:       rel.Name,
		MemberIDs:  rel.MemberIDs,
		InviteCode: rel.InviteCode,
		CreatedAt:  rel.CreatedAt,
	}
}

type memoryResponse struct {
	ID             string    `json:"id"`
	RelationshipID string    `json:"relationship_id"`
	AuthorID       string    `json:"author_id"`
	Kind           string    `json:"kind"`
	Body           string    `json:"body"`
	MediaRef       string    `json:"media_ref,omitempty"`
	ReactionCount  int       `json:"reaction_count"`
	IsNew          bool      `json:"is_new"`
	CreatedAt      time.Time `json:"created_at"`
}

func toMemoryResponse(mem *model.Memory) memoryResponse {
	return memoryResponse{
		ID:             string(mem.ID),
		RelationshipID: string(mem.RelationshipID),
		AuthorID:       mem.AuthorID,
		Kind:           mem.Kind.String(),
		Body:           mem.Body,
		MediaRef:       mem.MediaRef,
		ReactionCount:  mem.ReactionCount,
		IsNew:          mem.IsNew,
		CreatedAt:      mem.CreatedAt,
	}
}

func toMemoryResponses(memories []*model.Memory) []memoryResponse {
	resp := make([]memoryResponse, 0, len(memories))
	for _, mem := range memories {
		resp = append(resp, toMemoryResponse(mem))
	}
	return resp
}

type memoriesResponse struct {
	Memories []memoryResponse `json:"memories"`
}

type gemsResponse struct {
	Date     string           `json:"date"`
	Memories []memoryResponse `json:"memories"`
}

type reactionResponse struct {
	Accepted  bool   `json:"accepted"`
	Remaining int    `json:"remaining"`
	Message   string `json:"message,omitempty"`
}

type remainingResponse struct {
	Date      string `json:"date"`
	Remaining int    `json:"remaining"`
	Limit     int    `json:"limit"`
}

type viewedResponse struct {
	Updated int `json:"updated"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to encode response"), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, body)
}

func decodeJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return goerr.Wrap(errors.Join(errBadRequest, err), "failed to read request body")
	}
	if len(body) == 0 {
		return goerr.Wrap(errBadRequest, "request body is required")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return goerr.Wrap(errors.Join(errBadRequest, err), "invalid JSON body")
	}
	return nil
}

// statusOf maps use case errors onto HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrRelationshipNotFound),
		errors.Is(err, usecase.ErrMemoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, usecase.ErrRelationshipFull):
		return http.StatusConflict
	case errors.Is(err, errBadRequest),
		errors.Is(err, usecase.ErrInvalidMemory),
		errors.Is(err, usecase.ErrInvalidMedia),
		errors.Is(err, usecase.ErrInvalidInviteCode):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func handleError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusServiceUnavailable {
		logging.From(ctx).Warn("store unavailable", "error", err)
	}
	errutil.HandleHTTP(ctx, w, err, status)
}
