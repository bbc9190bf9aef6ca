package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
	"github.com/Neperienx/souvella-web-sub000/pkg/domain/types"
	"github.com/Neperienx/souvella-web-sub000/pkg/utils/safe"
)

const memoryColumns = "id, relationship_id, author_id, kind, body, media_ref, reaction_count, is_new, created_at"

type memoryRepository struct {
	db *sql.DB
}

func scanMemory(s rowScanner) (*model.Memory, error) {
	var (
		id, relationshipID, kind string
		isNew                    int
		createdAt                int64
		mem                      model.Memory
	)
	if err := s.Scan(&id, &relationshipID, &mem.AuthorID, &kind, &mem.Body, &mem.MediaRef,
		&mem.ReactionCount, &isNew, &createdAt); err != nil {
		return nil, err
	}
	mem.ID = model.MemoryID(id)
	mem.RelationshipID = model.RelationshipID(relationshipID)
	mem.Kind = types.MemoryKind(kind)
	mem.IsNew = isNew != 0
	mem.CreatedAt = fromUnix(createdAt)

	if err := mem.Validate(); err != nil {
		return nil, goerr.Wrap(err, "stored memory is invalid", goerr.V(model.MemoryIDKey, id))
	}
	return &mem, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (r *memoryRepository) Create(ctx context.Context, mem *model.Memory) (*model.Memory, error) {
	created := *mem
	if created.ID == "" {
		created.ID = model.NewMemoryID()
	}
	created.ReactionCount = 0
	created.IsNew = true
	created.CreatedAt = time.Now().UTC()

	if err := created.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid memory")
	}

	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO memories ("+memoryColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		string(created.ID), string(created.RelationshipID), created.AuthorID, created.Kind.String(),
		created.Body, created.MediaRef, created.ReactionCount, boolToInt(created.IsNew), toUnix(created.CreatedAt),
	); err != nil {
		return nil, goerr.Wrap(err, "failed to insert memory", goerr.V(model.MemoryIDKey, created.ID))
	}

	return &created, nil
}

func (r *memoryRepository) Get(ctx context.Context, id model.MemoryID) (*model.Memory, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+memoryColumns+" FROM memories WHERE id = ?", string(id))
	mem, err := scanMemory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(ErrNotFound, "memory not found", goerr.V(model.MemoryIDKey, id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get memory", goerr.V(model.MemoryIDKey, id))
	}
	return mem, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func (r *memoryRepository) GetByIDs(ctx context.Context, ids []model.MemoryID) (map[model.MemoryID]*model.Memory, error) {
	result := make(map[model.MemoryID]*model.Memory, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = string(id)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+memoryColumns+" FROM memories WHERE id IN ("+placeholders(len(ids))+")", args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get memories", goerr.V("count", len(ids)))
	}
	defer safe.Close(ctx, rows)

	for rows.Next() {
		mem, err := scanMemory(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan memory")
		}
		result[mem.ID] = mem
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate memories")
	}

	return result, nil
}

func (r *memoryRepository) ListByRelationship(ctx context.Context, relationshipID model.RelationshipID) ([]*model.Memory, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+memoryColumns+" FROM memories WHERE relationship_id = ? ORDER BY created_at DESC, id DESC",
		string(relationshipID))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list memories", goerr.V(model.RelationshipIDKey, relationshipID))
	}
	defer safe.Close(ctx, rows)

	result := make([]*model.Memory, 0)
	for rows.Next() {
		mem, err := scanMemory(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan memory", goerr.V(model.RelationshipIDKey, relationshipID))
		}
		result = append(result, mem)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate memories", goerr.V(model.RelationshipIDKey, relationshipID))
	}

	return result, nil
}

func (r *memoryRepository) MarkViewed(ctx context.Context, ids []model.MemoryID) error {
	if len(ids) == 0 {
		return nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = string(id)
	}

	if _, err := r.db.ExecContext(ctx,
		"UPDATE memories SET is_new = 0 WHERE id IN ("+placeholders(len(ids))+")", args...,
	); err != nil {
		return goerr.Wrap(err, "failed to mark memories viewed", goerr.V("count", len(ids)))
	}
	return nil
}
