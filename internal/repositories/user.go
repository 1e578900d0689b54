package repositories

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"chatserver-backend/internal/models"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user whose password has already been hashed by the caller.
// Repositories never see plaintext passwords.
func (r *UserRepository) Create(ctx context.Context, user models.NewUser) (*models.User, error) {
	status := user.Status
	if status == "" {
		status = "offline"
	}

	var id int64
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO users (username, email, password_hash, avatar_url, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING user_id`,
		user.Username, user.Email, user.PasswordHash, user.AvatarURL, status).Scan(&id)
	if err != nil {
		return nil, classifyError(err)
	}

	return r.FindByID(ctx, id)
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT user_id, username, email, password_hash, avatar_url, status, created_at, updated_at
		 FROM users WHERE user_id = $1`, id)
	if err != nil {
		return nil, classifyError(err)
	}
	return &user, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT user_id, username, email, password_hash, avatar_url, status, created_at, updated_at
		 FROM users WHERE username = $1`, username)
	if err != nil {
		return nil, classifyError(err)
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT user_id, username, email, password_hash, avatar_url, status, created_at, updated_at
		 FROM users WHERE email = $1`, email)
	if err != nil {
		return nil, classifyError(err)
	}
	return &user, nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := r.db.SelectContext(ctx, &users,
		`SELECT user_id, username, email, password_hash, avatar_url, status, created_at, updated_at
		 FROM users ORDER BY username ASC`)
	if err != nil {
		return nil, classifyError(err)
	}
	return users, nil
}

// Update writes the full record back and stamps updated_at. The caller is
// expected to have merged any partial changes onto a freshly fetched row.
func (r *UserRepository) Update(ctx context.Context, user models.User) (*models.User, error) {
	now := time.Now().UTC()

	result, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET username = $1, email = $2, password_hash = $3, avatar_url = $4, status = $5, updated_at = $6
		 WHERE user_id = $7`,
		user.Username, user.Email, user.PasswordHash, user.AvatarURL, user.Status, now, user.UserID)
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

	return r.FindByID(ctx, user.UserID)
}

// Delete reports whether a row was removed. Deleting an absent user is not
// an error.
func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, id)
	if err != nil {
		return false, classifyError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
