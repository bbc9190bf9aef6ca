package usecase_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/interfaces"
	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
	"github.com/Neperienx/souvella-web-sub000/pkg/domain/types"
	"github.com/Neperienx/souvella-web-sub000/pkg/repository/memory"
	"github.com/Neperienx/souvella-web-sub000/pkg/usecase"
)

// testClock is a settable time source
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Now()}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fixture struct {
	repo  interfaces.Repository
	clock *testClock
	uc    *usecase.UseCases
}

func newFixture(t *testing.T, opts ...usecase.Option) *fixture {
	t.Helper()

	f := &fixture{
		repo:  memory.New(),
		clock: newTestClock(),
	}
	base := []usecase.Option{
		usecase.WithClock(f.clock.Now),
		usecase.WithRand(rand.New(rand.NewPCG(1, 2))),
	}
	f.uc = usecase.New(f.repo, append(base, opts...)...)
	return f
}

func (f *fixture) relationship(t *testing.T, members ...string) *model.Relationship {
	t.Helper()
	ctx := context.Background()

	rel, err := f.uc.Relationship.CreateRelationship(ctx, members[0], "us")
	gt.NoError(t, err).Required()
	for _, m := range members[1:] {
		rel, err = f.uc.Relationship.JoinRelationship(ctx, m, rel.InviteCode)
		gt.NoError(t, err).Required()
	}
	return rel
}

func (f *fixture) textMemory(t *testing.T, rel *model.Relationship, body string) *model.Memory {
	t.Helper()

	mem, err := f.uc.Memory.CreateMemory(context.Background(), rel.ID, rel.MemberIDs[0], usecase.CreateMemoryInput{
		Kind: types.MemoryKindText,
		Body: body,
	})
	gt.NoError(t, err).Required()
	return mem
}

// addReactions raises the memory's reaction count through the quota repository.
// Every reaction comes from its own user so no daily quota is shared.
func (f *fixture) addReactions(t *testing.T, id model.MemoryID, n int) {
	t.Helper()

	for i := range n {
		user := fmt.Sprintf("fan-%s-%d", id, i)
		_, err := f.repo.ReactionQuota().Consume(context.Background(), user, "2000-01-01", id, 1)
		gt.NoError(t, err).Required()
	}
}

func memoryIDs(memories []*model.Memory) []model.MemoryID {
	ids := make([]model.MemoryID, len(memories))
	for i, m := range memories {
		ids[i] = m.ID
	}
	return ids
}

func assertDistinct(t *testing.T, memories []*model.Memory) {
	t.Helper()

	seen := map[model.MemoryID]bool{}
	for _, m := range memories {
		gt.B(t, seen[m.ID]).Describef("duplicate memory %s", m.ID).False()
		seen[m.ID] = true
	}
}
