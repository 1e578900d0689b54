package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"chatserver-backend/internal/models"
)

type ServerRepository struct {
	db *sqlx.DB
}

func NewServerRepository(db *sqlx.DB) *ServerRepository {
	return &ServerRepository{db: db}
}

func (r *ServerRepository) Create(ctx context.Context, server models.NewServer) (*models.Server, error) {
	var id int64
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO servers (server_name, owner_user_id, icon_url)
		 VALUES ($1, $2, $3)
		 RETURNING server_id`,
		server.ServerName, server.OwnerUserID, server.IconURL).Scan(&id)
	if err != nil {
		return nil, classifyError(err)
	}

	return r.FindByID(ctx, id)
}

func (r *ServerRepository) FindByID(ctx context.Context, id int64) (*models.Server, error) {
	var server models.Server
	err := r.db.GetContext(ctx, &server,
		`SELECT server_id, server_name, owner_user_id, icon_url, created_at, updated_at
		 FROM servers WHERE server_id = $1`, id)
	if err != nil {
		return nil, classifyError(err)
	}
	return &server, nil
}

func (r *ServerRepository) FindByOwner(ctx context.Context, ownerID int64) ([]models.Server, error) {
	servers := []models.Server{}
	err := r.db.SelectContext(ctx, &servers,
		`SELECT server_id, server_name, owner_user_id, icon_url, created_at, updated_at
		 FROM servers WHERE owner_user_id = $1 ORDER BY server_name ASC`, ownerID)
	if err != nil {
		return nil, classifyError(err)
	}
	return servers, nil
}

func (r *ServerRepository) FindAll(ctx context.Context) ([]models.Server, error) {
	servers := []models.Server{}
	err := r.db.SelectContext(ctx, &servers,
		`SELECT server_id, server_name, owner_user_id, icon_url, created_at, updated_at
		 FROM servers ORDER BY server_name ASC`)
	if err != nil {
		return nil, classifyError(err)
	}
	return servers, nil
}

// FindServersForUser lists servers the user belongs to through membership,
// regardless of ownership.
func (r *ServerRepository) FindServersForUser(ctx context.Context, userID int64) ([]models.Server, error) {
	servers := []models.Server{}
	err := r.db.SelectContext(ctx, &servers,
		`SELECT s.server_id, s.server_name, s.owner_user_id, s.icon_url, s.created_at, s.updated_at
		 FROM servers s
		 JOIN server_members sm ON sm.server_id = s.server_id
		 WHERE sm.user_id = $1
		 ORDER BY s.server_name ASC`, userID)
	if err != nil {
		return nil, classifyError(err)
	}
	return servers, nil
}

// GetServerMembers returns the public projection of every member. A server
// with no members yields an empty slice, which is not the same thing as the
// server not existing.
func (r *ServerRepository) GetServerMembers(ctx context.Context, serverID int64) ([]models.UserResponse, error) {
	rows := []models.User{}
	err := r.db.SelectContext(ctx, &rows,
		`SELECT u.user_id, u.username, u.email, u.password_hash, u.avatar_url, u.status, u.created_at, u.updated_at
		 FROM users u
		 JOIN server_members sm ON sm.user_id = u.user_id
		 WHERE sm.server_id = $1
		 ORDER BY u.username ASC`, serverID)
	if err != nil {
		return nil, classifyError(err)
	}

	members := make([]models.UserResponse, 0, len(rows))
	for _, u := range rows {
		members = append(members, u.Response())
	}
	return members, nil
}

// GetServerWithMembers bundles a server with its member list. A missing
// server comes back as ErrNotFound rather than a server with zero members.
func (r *ServerRepository) GetServerWithMembers(ctx context.Context, serverID int64) (*models.ServerWithMembers, error) {
	server, err := r.FindByID(ctx, serverID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	members, err := r.GetServerMembers(ctx, serverID)
	if err != nil {
		return nil, err
	}

	return &models.ServerWithMembers{Server: *server, Members: members}, nil
}

func (r *ServerRepository) Update(ctx context.Context, server models.Server) (*models.Server, error) {
	now := time.Now().UTC()

	result, err := r.db.ExecContext(ctx,
		`UPDATE servers
		 SET server_name = $1, owner_user_id = $2, icon_url = $3, updated_at = $4
		 WHERE server_id = $5`,
		server.ServerName, server.OwnerUserID, server.IconURL, now, server.ServerID)
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

	return r.FindByID(ctx, server.ServerID)
}

func (r *ServerRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM servers WHERE server_id = $1`, id)
	if err != nil {
		return false, classifyError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
