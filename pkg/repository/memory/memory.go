package memory

import (
	"github.com/Neperienx/souvella-web-sub000/pkg/domain/interfaces"
)

// Memory is the in-memory reference backend. It is used in tests and for
// local development with --repository-backend=memory.
type Memory struct {
	relationship   *relationshipRepository
	memory         *memoryRepository
	dailySelection *dailySelectionRepository
	reactionQuota  *reactionQuotaRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	memoryRepo := newMemoryRepository()

	return &Memory{
		relationship:   newRelationshipRepository(),
		memory:         memoryRepo,
		dailySelection: newDailySelectionRepository(),
		reactionQuota:  newReactionQuotaRepository(memoryRepo),
	}
}

func (m *Memory) Relationship() interfaces.RelationshipRepository {
	return m.relationship
}

func (m *Memory) Memory() interfaces.MemoryRepository {
	return m.memory
}

func (m *Memory) DailySelection() interfaces.DailySelectionRepository {
	return m.dailySelection
}

func (m *Memory) ReactionQuota() interfaces.ReactionQuotaRepository {
	return m.reactionQuota
}

func (m *Memory) Close() error {
	return nil
}
