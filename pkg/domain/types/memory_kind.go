package types

import "fmt"

// MemoryKind represents the content type of a memory
type MemoryKind string

const (
	MemoryKindText  MemoryKind = "text"
	MemoryKindImage MemoryKind = "image"
	MemoryKindAudio MemoryKind = "audio"
)

// AllMemoryKinds returns all valid memory kinds
func AllMemoryKinds() []MemoryKind {
	return []MemoryKind{
		MemoryKindText,
		MemoryKindImage,
		MemoryKindAudio,
	}
}

// IsValid checks if the memory kind is valid
func (k MemoryKind) IsValid() bool {
	switch k {
	case MemoryKindText,
		MemoryKindImage,
		MemoryKindAudio:
		return true
	default:
		return false
	}
}

// HasMedia reports whether memories of this kind carry an external media object
func (k MemoryKind) HasMedia() bool {
	return k == MemoryKindImage || k == MemoryKindAudio
}

// String returns the string representation of the memory kind
func (k MemoryKind) String() string {
	return string(k)
}

// ParseMemoryKind parses a string into a MemoryKind
func ParseMemoryKind(s string) (MemoryKind, error) {
	kind := MemoryKind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid memory kind: %s", s)
	}
	return kind, nil
}
