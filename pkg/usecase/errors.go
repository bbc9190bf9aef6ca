package usecase

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
)

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrRelationshipNotFound = errors.New("relationship not found")
	ErrMemoryNotFound       = errors.New("memory not found")

	// Access control errors
	ErrAccessDenied = errors.New("user is not a member of the relationship")

	// Validation errors
	ErrInvalidMemory     = errors.New("invalid memory")
	ErrInvalidMedia      = errors.New("media reference does not resolve to a stored object")
	ErrInvalidInviteCode = errors.New("invalid invite code")
	ErrRelationshipFull  = errors.New("relationship is full")

	// ErrStoreUnavailable marks any I/O failure against the store. Callers
	// may retry; the use cases never retry on their own.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Context keys for error values
const (
	RelationshipIDKey = "relationship_id"
	MemoryIDKey       = "memory_id"
	UserIDKey         = "user_id"
	DateKey           = "date"
)

// storeError wraps an unexpected repository failure so that it matches
// ErrStoreUnavailable while keeping the original cause.
func storeError(err error, msg string, opts ...goerr.Option) error {
	return goerr.Wrap(errors.Join(ErrStoreUnavailable, err), msg, opts...)
}

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}
