package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/interfaces"
	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
	"github.com/Neperienx/souvella-web-sub000/pkg/domain/types"
	"github.com/Neperienx/souvella-web-sub000/pkg/repository/firestore"
	"github.com/Neperienx/souvella-web-sub000/pkg/repository/memory"
	"github.com/Neperienx/souvella-web-sub000/pkg/repository/redis"
	"github.com/Neperienx/souvella-web-sub000/pkg/repository/sqlite"
)

type repoFactory func(t *testing.T) interfaces.Repository

func newMemoryRepository(t *testing.T) interfaces.Repository {
	return memory.New()
}

func newSQLiteRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	repo, err := sqlite.OpenMemory(context.Background())
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
	}

	ctx := context.Background()
	prefix := fmt.Sprintf("test_%d", time.Now().UnixNano())
	repo, err := firestore.New(ctx, projectID, databaseID, firestore.WithCollectionPrefix(prefix))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func newRedisRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	prefix := fmt.Sprintf("test_%d:", time.Now().UnixNano())
	repo, err := redis.New(ctx, memory.New(), &goredis.Options{Addr: addr}, redis.WithKeyPrefix(prefix), redis.WithTTL(time.Minute))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func forEachBackend(t *testing.T, run func(t *testing.T, newRepo repoFactory)) {
	t.Run("memory", func(t *testing.T) { run(t, newMemoryRepository) })
	t.Run("sqlite", func(t *testing.T) { run(t, newSQLiteRepository) })
	t.Run("firestore", func(t *testing.T) { run(t, newFirestoreRepository) })
	t.Run("redis", func(t *testing.T) { run(t, newRedisRepository) })
}

// Fixtures

func createRelationship(t *testing.T, repo interfaces.Repository, members ...string) *model.Relationship {
	t.Helper()

	code, err := model.NewInviteCode()
	gt.NoError(t, err).Required()

	rel, err := repo.Relationship().Create(context.Background(), &model.Relationship{
		Name:       "test couple",
		MemberIDs:  members,
		InviteCode: code,
	})
	gt.NoError(t, err).Required()
	return rel
}

func createTextMemory(t *testing.T, repo interfaces.Repository, relID model.RelationshipID, author, body string) *model.Memory {
	t.Helper()

	mem, err := repo.Memory().Create(context.Background(), &model.Memory{
		RelationshipID: relID,
		AuthorID:       author,
		Kind:           types.MemoryKindText,
		Body:           body,
	})
	gt.NoError(t, err).Required()
	return mem
}
