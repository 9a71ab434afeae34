package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message belongs to exactly one conversation. Seen only ever flips
// false -> true.
type Message struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"_id"`
	ConversationID string    `gorm:"type:varchar(36);index;not null" json:"conversationId"`
	Sender         string    `gorm:"type:varchar(36);not null" json:"sender"`
	Text           string    `json:"text"`
	Image          string    `json:"image"`
	Seen           bool      `gorm:"default:false" json:"seen"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
