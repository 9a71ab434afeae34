package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is a private thread between exactly two users. The
// participant pair is stored sorted so (a,b) and (b,a) hit the same row.
// LastMessageText/LastMessageSender denormalize the most recent message.
type Conversation struct {
	ID                string    `gorm:"primaryKey;type:varchar(36)" json:"_id"`
	ParticipantA      string    `gorm:"type:varchar(36);index:idx_participants" json:"-"`
	ParticipantB      string    `gorm:"type:varchar(36);index:idx_participants" json:"-"`
	LastMessageText   string    `json:"-"`
	LastMessageSender string    `gorm:"type:varchar(36)" json:"-"`
	CreatedAt         time.Time `json:"createdAt"`

	ParticipantAUser User `gorm:"foreignKey:ParticipantA;references:ID" json:"-"`
	ParticipantBUser User `gorm:"foreignKey:ParticipantB;references:ID" json:"-"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
