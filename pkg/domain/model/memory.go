package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oklog/ulid/v2"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/types"
)

// MemoryID is a ULID-based identifier for Memory. ULIDs sort lexically in
// creation order, which gives the selection sampler a stable iteration order.
type MemoryID string

// NewMemoryID generates a new ULID MemoryID
func NewMemoryID() MemoryID {
	return MemoryID(ulid.Make().String())
}

// Memory represents a single entry posted by a member of a relationship.
type Memory struct {
	ID             MemoryID
	RelationshipID RelationshipID
	AuthorID       string
	Kind           types.MemoryKind
	Body           string // Text content, or caption for media memories
	MediaRef       string // URI of the stored media object; empty for text
	ReactionCount  int
	IsNew          bool
	CreatedAt      time.Time
}

// Weight returns the sampling weight of the memory. Every memory has weight of
// at least 1 so that memories without reactions can still be selected.
func (m *Memory) Weight() float64 {
	return float64(1 + m.ReactionCount)
}

// CreatedBefore reports whether the memory was created strictly before t.
func (m *Memory) CreatedBefore(t time.Time) bool {
	return m.CreatedAt.Before(t)
}

// Validate checks the structural invariants of a stored memory
func (m *Memory) Validate() error {
	if m.ID == "" {
		return goerr.Wrap(ErrInvalidDocument, "memory ID is required")
	}
	if m.RelationshipID == "" {
		return goerr.Wrap(ErrInvalidDocument, "relationship ID is required", goerr.V(MemoryIDKey, m.ID))
	}
	if m.AuthorID == "" {
		return goerr.Wrap(ErrInvalidDocument, "author ID is required", goerr.V(MemoryIDKey, m.ID))
	}
	if !m.Kind.IsValid() {
		return goerr.Wrap(ErrInvalidDocument, "invalid memory kind",
			goerr.V(MemoryIDKey, m.ID), goerr.V("kind", m.Kind))
	}
	if m.ReactionCount < 0 {
		return goerr.Wrap(ErrInvalidDocument, "reaction count must not be negative",
			goerr.V(MemoryIDKey, m.ID), goerr.V("reaction_count", m.ReactionCount))
	}
	if m.Kind.HasMedia() && m.MediaRef == "" {
		return goerr.Wrap(ErrInvalidDocument, "media memory requires media reference",
			goerr.V(MemoryIDKey, m.ID), goerr.V("kind", m.Kind))
	}
	if !m.Kind.HasMedia() && m.MediaRef != "" {
		return goerr.Wrap(ErrInvalidDocument, "text memory must not have media reference",
			goerr.V(MemoryIDKey, m.ID))
	}
	return nil
}
