package repositories

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"chatserver-backend/internal/models"
)

type MessageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, message models.NewMessage) (*models.Message, error) {
	var id int64
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (channel_id, author_user_id, content)
		 VALUES ($1, $2, $3)
		 RETURNING message_id`,
		message.ChannelID, message.AuthorUserID, message.Content).Scan(&id)
	if err != nil {
		return nil, classifyError(err)
	}

	return r.FindByID(ctx, id)
}

func (r *MessageRepository) FindByID(ctx context.Context, id int64) (*models.Message, error) {
	var message models.Message
	err := r.db.GetContext(ctx, &message,
		`SELECT message_id, channel_id, author_user_id, content, created_at, updated_at, edited_at
		 FROM messages WHERE message_id = $1`, id)
	if err != nil {
		return nil, classifyError(err)
	}
	return &message, nil
}

// FindByChannel returns the newest messages first. message_id breaks ties so
// rows inserted within the same timestamp keep a stable order.
func (r *MessageRepository) FindByChannel(ctx context.Context, channelID int64, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 50
	}

	messages := []models.Message{}
	err := r.db.SelectContext(ctx, &messages,
		`SELECT message_id, channel_id, author_user_id, content, created_at, updated_at, edited_at
		 FROM messages WHERE channel_id = $1
		 ORDER BY created_at DESC, message_id DESC
		 LIMIT $2`, channelID, limit)
	if err != nil {
		return nil, classifyError(err)
	}
	return messages, nil
}

type messageAuthorRow struct {
	MessageID       int64      `db:"message_id"`
	Content         string     `db:"content"`
	MessageCreated  time.Time  `db:"message_created_at"`
	EditedAt        *time.Time `db:"edited_at"`
	AuthorUserID    int64      `db:"author_user_id"`
	AuthorUsername  string     `db:"author_username"`
	AuthorEmail     string     `db:"author_email"`
	AuthorAvatarURL *string    `db:"author_avatar_url"`
	AuthorStatus    string     `db:"author_status"`
	AuthorCreated   time.Time  `db:"author_created_at"`
}

// FindByChannelWithAuthors joins each message with the public projection of
// its author.
func (r *MessageRepository) FindByChannelWithAuthors(ctx context.Context, channelID int64, limit int) ([]models.MessageWithAuthor, error) {
	if limit <= 0 {
		limit = 50
	}

	rows := []messageAuthorRow{}
	err := r.db.SelectContext(ctx, &rows,
		`SELECT m.message_id, m.content, m.created_at AS message_created_at, m.edited_at,
		        u.user_id AS author_user_id, u.username AS author_username,
		        u.email AS author_email, u.avatar_url AS author_avatar_url,
		        u.status AS author_status, u.created_at AS author_created_at
		 FROM messages m
		 JOIN users u ON u.user_id = m.author_user_id
		 WHERE m.channel_id = $1
		 ORDER BY m.created_at DESC, m.message_id DESC
		 LIMIT $2`, channelID, limit)
	if err != nil {
		return nil, classifyError(err)
	}

	messages := make([]models.MessageWithAuthor, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, models.MessageWithAuthor{
			MessageID: row.MessageID,
			Content:   row.Content,
			CreatedAt: row.MessageCreated,
			EditedAt:  row.EditedAt,
			Author: models.UserResponse{
				UserID:    row.AuthorUserID,
				Username:  row.AuthorUsername,
				Email:     row.AuthorEmail,
				AvatarURL: row.AuthorAvatarURL,
				Status:    row.AuthorStatus,
				CreatedAt: row.AuthorCreated,
			},
		})
	}
	return messages, nil
}

// UpdateContent rewrites the message body and stamps updated_at and
// edited_at together so an edit is always visible as one.
func (r *MessageRepository) UpdateContent(ctx context.Context, id int64, content string) (*models.Message, error) {
	now := time.Now().UTC()

	result, err := r.db.ExecContext(ctx,
		`UPDATE messages SET content = $1, updated_at = $2, edited_at = $2 WHERE message_id = $3`,
		content, now, id)
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

	return r.FindByID(ctx, id)
}

func (r *MessageRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE message_id = $1`, id)
	if err != nil {
		return false, classifyError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *MessageRepository) CountByChannel(ctx context.Context, channelID int64) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM messages WHERE channel_id = $1`, channelID)
	if err != nil {
		return 0, classifyError(err)
	}
	return count, nil
}

func (r *MessageRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM messages WHERE author_user_id = $1`, userID)
	if err != nil {
		return 0, classifyError(err)
	}
	return count, nil
}
