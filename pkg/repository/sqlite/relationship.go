package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
	"github.com/Neperienx/souvella-web-sub000/pkg/utils/safe"
)

type relationshipRepository struct {
	db *sql.DB
}

func (r *relationshipRepository) Create(ctx context.Context, rel *model.Relationship) (*model.Relationship, error) {
	created := &model.Relationship{
		ID:         rel.ID,
		Name:       rel.Name,
		MemberIDs:  append([]string(nil), rel.MemberIDs...),
		InviteCode: rel.InviteCode,
		CreatedAt:  time.Now().UTC(),
	}
	if created.ID == "" {
		created.ID = model.NewRelationshipID()
	}
	if err := created.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid relationship")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to begin transaction")
	}
	defer safe.Rollback(ctx, tx)

	var inUse int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM relationships WHERE invite_code = ?", created.InviteCode,
	).Scan(&inUse); err != nil {
		return nil, goerr.Wrap(err, "failed to check invite code")
	}
	if inUse > 0 {
		return nil, goerr.New("invite code already in use", goerr.V("invite_code", created.InviteCode))
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO relationships (id, name, invite_code, created_at) VALUES (?, ?, ?, ?)",
		string(created.ID), created.Name, created.InviteCode, toUnix(created.CreatedAt),
	); err != nil {
		return nil, goerr.Wrap(err, "failed to insert relationship", goerr.V(model.RelationshipIDKey, created.ID))
	}

	for i, userID := range created.MemberIDs {
		// joined_at keeps member order stable for reads
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO relationship_members (relationship_id, user_id, joined_at) VALUES (?, ?, ?)",
			string(created.ID), userID, toUnix(created.CreatedAt)+int64(i),
		); err != nil {
			return nil, goerr.Wrap(err, "failed to insert member",
				goerr.V(model.RelationshipIDKey, created.ID), goerr.V(model.UserIDKey, userID))
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, goerr.Wrap(err, "failed to commit relationship", goerr.V(model.RelationshipIDKey, created.ID))
	}
	return created, nil
}

func (r *relationshipRepository) Get(ctx context.Context, id model.RelationshipID) (*model.Relationship, error) {
	return getRelationship(ctx, r.db, "id = ?", string(id))
}

func (r *relationshipRepository) GetByInviteCode(ctx context.Context, code string) (*model.Relationship, error) {
	return getRelationship(ctx, r.db, "invite_code = ?", code)
}

func (r *relationshipRepository) AddMember(ctx context.Context, id model.RelationshipID, userID string, maxMembers int) (*model.Relationship, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to begin transaction")
	}
	defer safe.Rollback(ctx, tx)

	rel, err := getRelationship(ctx, tx, "id = ?", string(id))
	if err != nil {
		return nil, err
	}
	if rel.HasMember(userID) {
		return rel, nil
	}
	if len(rel.MemberIDs) >= maxMembers {
		return nil, goerr.Wrap(model.ErrRelationshipFull, "relationship is full",
			goerr.V(model.RelationshipIDKey, id), goerr.V("max_members", maxMembers))
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO relationship_members (relationship_id, user_id, joined_at) VALUES (?, ?, ?)",
		string(id), userID, toUnix(time.Now()),
	); err != nil {
		return nil, goerr.Wrap(err, "failed to insert member",
			goerr.V(model.RelationshipIDKey, id), goerr.V(model.UserIDKey, userID))
	}

	if err := tx.Commit(); err != nil {
		return nil, goerr.Wrap(err, "failed to commit member", goerr.V(model.RelationshipIDKey, id))
	}

	rel.MemberIDs = append(rel.MemberIDs, userID)
	return rel, nil
}

func (r *relationshipRepository) ListByMember(ctx context.Context, userID string) ([]*model.Relationship, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id FROM relationships r
		JOIN relationship_members m ON m.relationship_id = r.id
		WHERE m.user_id = ?
		ORDER BY r.created_at ASC`, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list relationships", goerr.V(model.UserIDKey, userID))
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			safe.Close(ctx, rows)
			return nil, goerr.Wrap(err, "failed to scan relationship ID")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		safe.Close(ctx, rows)
		return nil, goerr.Wrap(err, "failed to iterate relationships")
	}
	// Close before issuing further queries on the single connection
	safe.Close(ctx, rows)

	result := make([]*model.Relationship, 0, len(ids))
	for _, id := range ids {
		rel, err := getRelationship(ctx, r.db, "id = ?", id)
		if err != nil {
			return nil, err
		}
		result = append(result, rel)
	}
	return result, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func getRelationship(ctx context.Context, q querier, where string, arg any) (*model.Relationship, error) {
	rel := &model.Relationship{}
	var id string
	var createdAt int64
	err := q.QueryRowContext(ctx,
		"SELECT id, name, invite_code, created_at FROM relationships WHERE "+where, arg,
	).Scan(&id, &rel.Name, &rel.InviteCode, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(ErrNotFound, "relationship not found", goerr.V("key", arg))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get relationship", goerr.V("key", arg))
	}
	rel.ID = model.RelationshipID(id)
	rel.CreatedAt = fromUnix(createdAt)

	rows, err := q.QueryContext(ctx,
		"SELECT user_id FROM relationship_members WHERE relationship_id = ? ORDER BY joined_at ASC", id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get members", goerr.V(model.RelationshipIDKey, id))
	}
	defer safe.Close(ctx, rows)

	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, goerr.Wrap(err, "failed to scan member", goerr.V(model.RelationshipIDKey, id))
		}
		rel.MemberIDs = append(rel.MemberIDs, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate members", goerr.V(model.RelationshipIDKey, id))
	}

	if err := rel.Validate(); err != nil {
		return nil, goerr.Wrap(err, "stored relationship is invalid", goerr.V(model.RelationshipIDKey, id))
	}
	return rel, nil
}
