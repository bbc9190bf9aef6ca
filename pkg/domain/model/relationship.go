package model

import (
	"crypto/rand"
	"math/big"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// RelationshipID is a UUID-based identifier for Relationship
type RelationshipID string

// NewRelationshipID generates a new UUID v4 RelationshipID
func NewRelationshipID() RelationshipID {
	return RelationshipID(uuid.New().String())
}

// InviteCodeLength is the number of characters in an invite code
const InviteCodeLength = 6

// inviteCodeAlphabet excludes characters that are easy to confuse when read
// aloud or typed (0/O, 1/I/L).
const inviteCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// NewInviteCode generates a random invite code
func NewInviteCode() (string, error) {
	code := make([]byte, InviteCodeLength)
	alphabetSize := big.NewInt(int64(len(inviteCodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", goerr.Wrap(err, "failed to generate invite code")
		}
		code[i] = inviteCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// IsValidInviteCode checks the format of an invite code
func IsValidInviteCode(code string) bool {
	if len(code) != InviteCodeLength {
		return false
	}
	for _, c := range code {
		if !strings.ContainsRune(inviteCodeAlphabet, c) {
			return false
		}
	}
	return true
}

// Relationship is the pairing of users sharing one memory stream
type Relationship struct {
	ID         RelationshipID
	Name       string
	MemberIDs  []string
	InviteCode string
	CreatedAt  time.Time
}

// HasMember reports whether the user belongs to the relationship
func (r *Relationship) HasMember(userID string) bool {
	return slices.Contains(r.MemberIDs, userID)
}

// Validate checks the structural invariants of a stored relationship
func (r *Relationship) Validate() error {
	if r.ID == "" {
		return goerr.Wrap(ErrInvalidDocument, "relationship ID is required")
	}
	if len(r.MemberIDs) == 0 {
		return goerr.Wrap(ErrInvalidDocument, "relationship requires at least one member",
			goerr.V(RelationshipIDKey, r.ID))
	}
	if !IsValidInviteCode(r.InviteCode) {
		return goerr.Wrap(ErrInvalidDocument, "invalid invite code",
			goerr.V(RelationshipIDKey, r.ID))
	}
	return nil
}
