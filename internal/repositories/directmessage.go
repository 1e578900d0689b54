package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"chatserver-backend/internal/models"
)

type DirectMessageRepository struct {
	db       *sqlx.DB
	channels *ChannelRepository
}

func NewDirectMessageRepository(db *sqlx.DB, channels *ChannelRepository) *DirectMessageRepository {
	return &DirectMessageRepository{db: db, channels: channels}
}

// CreateDmChannel creates a dm channel and both membership rows in a single
// transaction. If anything fails nothing is left behind.
func (r *DirectMessageRepository) CreateDmChannel(ctx context.Context, userA, userB int64, name string) (*models.Channel, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var channelID int64
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO channels (server_id, name, type)
		 VALUES (NULL, $1, $2)
		 RETURNING channel_id`,
		name, models.ChannelTypeDM).Scan(&channelID)
	if err != nil {
		return nil, classifyError(err)
	}

	for _, userID := range []int64{userA, userB} {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO direct_message_members (channel_id, user_id) VALUES ($1, $2)`,
			channelID, userID)
		if err != nil {
			return nil, classifyError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return r.channels.FindByID(ctx, channelID)
}

// FindDmChannel looks up the dm channel both users belong to, if any.
func (r *DirectMessageRepository) FindDmChannel(ctx context.Context, userA, userB int64) (*models.Channel, error) {
	var channel models.Channel
	err := r.db.GetContext(ctx, &channel,
		`SELECT c.channel_id, c.server_id, c.name, c.type, c.created_at, c.updated_at
		 FROM channels c
		 JOIN direct_message_members a ON a.channel_id = c.channel_id AND a.user_id = $1
		 JOIN direct_message_members b ON b.channel_id = c.channel_id AND b.user_id = $2
		 WHERE c.type = $3
		 LIMIT 1`, userA, userB, models.ChannelTypeDM)
	if err != nil {
		return nil, classifyError(err)
	}
	return &channel, nil
}

// FindOrCreateDmChannel returns the existing dm channel for the pair, or
// creates one named after the two user ids. Two concurrent callers for the
// same new pair can each create a channel, the lookup and the create are not
// one atomic step.
func (r *DirectMessageRepository) FindOrCreateDmChannel(ctx context.Context, userA, userB int64) (*models.Channel, error) {
	channel, err := r.FindDmChannel(ctx, userA, userB)
	if err == nil {
		return channel, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	low, high := userA, userB
	if low > high {
		low, high = high, low
	}

	return r.CreateDmChannel(ctx, userA, userB, fmt.Sprintf("dm_%d_%d", low, high))
}

func (r *DirectMessageRepository) AddDmMember(ctx context.Context, channelID, userID int64) error {
	return r.channels.AddDirectMessageMember(ctx, channelID, userID)
}

func (r *DirectMessageRepository) RemoveDmMember(ctx context.Context, channelID, userID int64) (bool, error) {
	return r.channels.RemoveDirectMessageMember(ctx, channelID, userID)
}

func (r *DirectMessageRepository) FindDmMembers(ctx context.Context, channelID int64) ([]models.DirectMessageMember, error) {
	members := []models.DirectMessageMember{}
	err := r.db.SelectContext(ctx, &members,
		`SELECT channel_id, user_id
		 FROM direct_message_members WHERE channel_id = $1 ORDER BY user_id ASC`, channelID)
	if err != nil {
		return nil, classifyError(err)
	}
	return members, nil
}

func (r *DirectMessageRepository) FindDmMember(ctx context.Context, channelID, userID int64) (*models.DirectMessageMember, error) {
	var member models.DirectMessageMember
	err := r.db.GetContext(ctx, &member,
		`SELECT channel_id, user_id
		 FROM direct_message_members WHERE channel_id = $1 AND user_id = $2`, channelID, userID)
	if err != nil {
		return nil, classifyError(err)
	}
	return &member, nil
}

func (r *DirectMessageRepository) GetDmChannelsForUser(ctx context.Context, userID int64) ([]models.Channel, error) {
	return r.channels.FindDirectMessageChannels(ctx, userID)
}

// DeleteDmChannel removes the memberships, the messages, and the channel row
// in one transaction. The final delete is scoped to type 'dm', so a standard
// channel id comes back as not deleted with its rows untouched.
func (r *DirectMessageRepository) DeleteDmChannel(ctx context.Context, channelID int64) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var result sql.Result

	_, err = tx.ExecContext(ctx,
		`DELETE FROM direct_message_members
		 WHERE channel_id = $1
		   AND channel_id IN (SELECT channel_id FROM channels WHERE type = $2)`,
		channelID, models.ChannelTypeDM)
	if err != nil {
		return false, classifyError(err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM messages
		 WHERE channel_id = $1
		   AND channel_id IN (SELECT channel_id FROM channels WHERE type = $2)`,
		channelID, models.ChannelTypeDM)
	if err != nil {
		return false, classifyError(err)
	}

	result, err = tx.ExecContext(ctx,
		`DELETE FROM channels WHERE channel_id = $1 AND type = $2`,
		channelID, models.ChannelTypeDM)
	if err != nil {
		return false, classifyError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}

	return affected > 0, nil
}
