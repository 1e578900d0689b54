package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"chatserver-backend/internal/models"
)

type ServerMemberRepository struct {
	db *sqlx.DB
}

func NewServerMemberRepository(db *sqlx.DB) *ServerMemberRepository {
	return &ServerMemberRepository{db: db}
}

func (r *ServerMemberRepository) Create(ctx context.Context, member models.NewServerMember) (*models.ServerMember, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO server_members (server_id, user_id, nickname)
		 VALUES ($1, $2, $3)`,
		member.ServerID, member.UserID, member.Nickname)
	if err != nil {
		return nil, classifyError(err)
	}

	return r.Find(ctx, member.ServerID, member.UserID)
}

func (r *ServerMemberRepository) Find(ctx context.Context, serverID, userID int64) (*models.ServerMember, error) {
	var member models.ServerMember
	err := r.db.GetContext(ctx, &member,
		`SELECT server_id, user_id, nickname, joined_at
		 FROM server_members WHERE server_id = $1 AND user_id = $2`, serverID, userID)
	if err != nil {
		return nil, classifyError(err)
	}
	return &member, nil
}

func (r *ServerMemberRepository) FindByServer(ctx context.Context, serverID int64) ([]models.ServerMember, error) {
	members := []models.ServerMember{}
	err := r.db.SelectContext(ctx, &members,
		`SELECT server_id, user_id, nickname, joined_at
		 FROM server_members WHERE server_id = $1 ORDER BY joined_at ASC, user_id ASC`, serverID)
	if err != nil {
		return nil, classifyError(err)
	}
	return members, nil
}

func (r *ServerMemberRepository) FindByUser(ctx context.Context, userID int64) ([]models.ServerMember, error) {
	members := []models.ServerMember{}
	err := r.db.SelectContext(ctx, &members,
		`SELECT server_id, user_id, nickname, joined_at
		 FROM server_members WHERE user_id = $1 ORDER BY joined_at ASC, server_id ASC`, userID)
	if err != nil {
		return nil, classifyError(err)
	}
	return members, nil
}

func (r *ServerMemberRepository) UpdateNickname(ctx context.Context, serverID, userID int64, nickname *string) (*models.ServerMember, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE server_members SET nickname = $1 WHERE server_id = $2 AND user_id = $3`,
		nickname, serverID, userID)
	if err != nil {
		return nil, classifyError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return r.Find(ctx, serverID, userID)
}

func (r *ServerMemberRepository) Delete(ctx context.Context, serverID, userID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM server_members WHERE server_id = $1 AND user_id = $2`, serverID, userID)
	if err != nil {
		return false, classifyError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *ServerMemberRepository) IsMember(ctx context.Context, serverID, userID int64) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM server_members WHERE server_id = $1 AND user_id = $2`, serverID, userID)
	if err != nil {
		return false, classifyError(err)
	}
	return count > 0, nil
}

func (r *ServerMemberRepository) CountMembers(ctx context.Context, serverID int64) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM server_members WHERE server_id = $1`, serverID)
	if err != nil {
		return 0, classifyError(err)
	}
	return count, nil
}
