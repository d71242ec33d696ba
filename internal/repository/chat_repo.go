package repository

import (
	"context"

	"github.com/rs/xid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-dating/internal/db"
)

// ChatRepository stores thread messages and thread summaries.
type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(database *gorm.DB) *ChatRepository {
	return &ChatRepository{db: database}
}

// AppendMessage inserts msg with a generated id and returns the stored row.
func (r *ChatRepository) AppendMessage(ctx context.Context, msg db.Message) (db.Message, error) {
	msg.ID = xid.New().String()
	if err := r.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return db.Message{}, err
	}
	return msg, nil
}

// MergeSummary upserts the thread summary, touching only summary fields.
func (r *ChatRepository) MergeSummary(ctx context.Context, chat db.Chat) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"participant_a", "participant_b", "last_message", "last_message_timestamp",
			}),
		}).
		Create(&chat).Error
}

// ListMessages returns the thread's messages, oldest first.
// Ties on timestamp fall back to id, which xid keeps time-ordered.
func (r *ChatRepository) ListMessages(ctx context.Context, threadID string) ([]db.Message, error) {
	var msgs []db.Message
	err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("timestamp ASC, id ASC").
		Find(&msgs).Error
	return msgs, err
}

// ListSummaries returns summaries containing userID, most recent first.
func (r *ChatRepository) ListSummaries(ctx context.Context, userID string) ([]db.Chat, error) {
	var chats []db.Chat
	err := r.db.WithContext(ctx).
		Where("participant_a = ? OR participant_b = ?", userID, userID).
		Order("last_message_timestamp DESC, id ASC").
		Find(&chats).Error
	return chats, err
}
