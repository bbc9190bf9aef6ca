package interfaces

// Repository defines the interface for data persistence. Every backend
// (in-memory, Firestore, SQLite) implements the full set of entity repositories.
type Repository interface {
	Relationship() RelationshipRepository
	Memory() MemoryRepository
	DailySelection() DailySelectionRepository
	ReactionQuota() ReactionQuotaRepository

	Close() error
}
