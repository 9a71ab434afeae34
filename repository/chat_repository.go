package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"threads-server/models"
)

// ConversationStore is the persistence contract for two-participant threads.
type ConversationStore interface {
	// FindByParticipants returns nil, nil when no conversation exists for
	// the pair. Argument order does not matter.
	FindByParticipants(ctx context.Context, userA, userB string) (*models.Conversation, error)
	Create(ctx context.Context, userA, userB, lastText, lastSender string) (*models.Conversation, error)
	UpdateLastMessage(ctx context.Context, conversationID, text, sender string) error
	ListForUser(ctx context.Context, userID string) ([]models.Conversation, error)
}

// MessageStore is the persistence contract for individual messages.
type MessageStore interface {
	Create(ctx context.Context, message *models.Message) error
	ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error)
	// MarkSeen flips every unseen message in the conversation. Idempotent.
	MarkSeen(ctx context.Context, conversationID string) error
}

// SortPair normalizes a participant pair so both orderings address the
// same conversation row.
func SortPair(userA, userB string) (string, string) {
	if userB < userA {
		return userB, userA
	}
	return userA, userB
}

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) FindByParticipants(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	a, b := SortPair(userA, userB)

	var conversation models.Conversation
	err := r.db.WithContext(ctx).
		Where("participant_a = ? AND participant_b = ?", a, b).
		First(&conversation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *ConversationRepository) Create(ctx context.Context, userA, userB, lastText, lastSender string) (*models.Conversation, error) {
	a, b := SortPair(userA, userB)

	conversation := models.Conversation{
		ParticipantA:      a,
		ParticipantB:      b,
		LastMessageText:   lastText,
		LastMessageSender: lastSender,
	}
	if err := r.db.WithContext(ctx).Create(&conversation).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *ConversationRepository) UpdateLastMessage(ctx context.Context, conversationID, text, sender string) error {
	return r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"last_message_text":   text,
			"last_message_sender": sender,
		}).Error
}

func (r *ConversationRepository) ListForUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := r.db.WithContext(ctx).
		Preload("ParticipantAUser").
		Preload("ParticipantBUser").
		Where("participant_a = ? OR participant_b = ?", userID, userID).
		Order("created_at DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}
	return conversations, nil
}

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *MessageRepository) MarkSeen(ctx context.Context, conversationID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("conversation_id = ? AND seen = ?", conversationID, false).
		Update("seen", true).Error
}
