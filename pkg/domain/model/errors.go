package model

import "github.com/m-mizutani/goerr/v2"

// Store boundary errors shared by all repository backends
var (
	ErrNotFound         = goerr.New("not found")
	ErrInvalidDocument  = goerr.New("invalid document")
	ErrQuotaExceeded    = goerr.New("daily reaction quota exceeded")
	ErrAlreadyReacted   = goerr.New("memory already reacted today")
	ErrRelationshipFull = goerr.New("relationship is full")
)

// Context keys for error values
const (
	MemoryIDKey       = "memory_id"
	RelationshipIDKey = "relationship_id"
	UserIDKey         = "user_id"
)
