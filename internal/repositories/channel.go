package repositories

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"chatserver-backend/internal/models"
)

type ChannelRepository struct {
	db *sqlx.DB

	// messages is optional. GetChannelWithMessages needs it and fails with
	// ErrUnconfigured when it was never attached.
	messages *MessageRepository
}

func NewChannelRepository(db *sqlx.DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

// AttachMessageRepository wires in the message repository used by
// GetChannelWithMessages.
func (r *ChannelRepository) AttachMessageRepository(messages *MessageRepository) {
	r.messages = messages
}

func (r *ChannelRepository) Create(ctx context.Context, channel models.NewChannel) (*models.Channel, error) {
	channelType := channel.ChannelType
	if channelType == "" {
		channelType = models.ChannelTypeStandard
	}

	var id int64
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO channels (server_id, name, type)
		 VALUES ($1, $2, $3)
		 RETURNING channel_id`,
		channel.ServerID, channel.Name, channelType).Scan(&id)
	if err != nil {
		return nil, classifyError(err)
	}

	return r.FindByID(ctx, id)
}

func (r *ChannelRepository) FindByID(ctx context.Context, id int64) (*models.Channel, error) {
	var channel models.Channel
	err := r.db.GetContext(ctx, &channel,
		`SELECT channel_id, server_id, name, type, created_at, updated_at
		 FROM channels WHERE channel_id = $1`, id)
	if err != nil {
		return nil, classifyError(err)
	}
	return &channel, nil
}

func (r *ChannelRepository) FindByServer(ctx context.Context, serverID int64) ([]models.Channel, error) {
	channels := []models.Channel{}
	err := r.db.SelectContext(ctx, &channels,
		`SELECT channel_id, server_id, name, type, created_at, updated_at
		 FROM channels WHERE server_id = $1 ORDER BY name ASC`, serverID)
	if err != nil {
		return nil, classifyError(err)
	}
	return channels, nil
}

// FindDirectMessageChannels lists the dm channels a user is a member of.
func (r *ChannelRepository) FindDirectMessageChannels(ctx context.Context, userID int64) ([]models.Channel, error) {
	channels := []models.Channel{}
	err := r.db.SelectContext(ctx, &channels,
		`SELECT c.channel_id, c.server_id, c.name, c.type, c.created_at, c.updated_at
		 FROM channels c
		 JOIN direct_message_members dm ON dm.channel_id = c.channel_id
		 WHERE dm.user_id = $1 AND c.type = $2
		 ORDER BY c.channel_id ASC`, userID, models.ChannelTypeDM)
	if err != nil {
		return nil, classifyError(err)
	}
	return channels, nil
}

// Update renames the channel. server_id and type are fixed at creation.
func (r *ChannelRepository) Update(ctx context.Context, id int64, name string) (*models.Channel, error) {
	now := time.Now().UTC()

	result, err := r.db.ExecContext(ctx,
		`UPDATE channels SET name = $1, updated_at = $2 WHERE channel_id = $3`,
		name, now, id)
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

func (r *ChannelRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM channels WHERE channel_id = $1`, id)
	if err != nil {
		return false, classifyError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// GetChannelWithMessages bundles a channel with its latest messages. Calling
// it without an attached message repository is a wiring bug, reported as
// ErrUnconfigured so it can't be mistaken for a missing channel.
func (r *ChannelRepository) GetChannelWithMessages(ctx context.Context, id int64, limit int) (*models.ChannelWithMessages, error) {
	if r.messages == nil {
		return nil, ErrUnconfigured
	}

	channel, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	messages, err := r.messages.FindByChannelWithAuthors(ctx, id, limit)
	if err != nil {
		return nil, err
	}

	return &models.ChannelWithMessages{Channel: *channel, Messages: messages}, nil
}

func (r *ChannelRepository) IsDirectMessageMember(ctx context.Context, channelID, userID int64) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM direct_message_members WHERE channel_id = $1 AND user_id = $2`,
		channelID, userID)
	if err != nil {
		return false, classifyError(err)
	}
	return count > 0, nil
}

// AddDirectMessageMember is idempotent, adding again does nothing.
func (r *ChannelRepository) AddDirectMessageMember(ctx context.Context, channelID, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO direct_message_members (channel_id, user_id)
		 VALUES ($1, $2)
		 ON CONFLICT (channel_id, user_id) DO NOTHING`,
		channelID, userID)
	return classifyError(err)
}

func (r *ChannelRepository) RemoveDirectMessageMember(ctx context.Context, channelID, userID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM direct_message_members WHERE channel_id = $1 AND user_id = $2`,
		channelID, userID)
	if err != nil {
		return false, classifyError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
