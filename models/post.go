package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxPostTextLength caps post bodies.
const MaxPostTextLength = 500

type Post struct {
	ID        string      `gorm:"primaryKey;type:varchar(36)" json:"_id"`
	PostedBy  string      `gorm:"type:varchar(36);index;not null" json:"postedBy"`
	Text      string      `gorm:"type:varchar(500)" json:"text"`
	Image     string      `json:"image"`
	Likes     []PostLike  `gorm:"foreignKey:PostID" json:"likes"`
	Replies   []PostReply `gorm:"foreignKey:PostID" json:"replies"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

type PostLike struct {
	PostID    string    `gorm:"primaryKey;type:varchar(36)" json:"postId"`
	UserID    string    `gorm:"primaryKey;type:varchar(36)" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostReply carries denormalized author fields so the feed can render
// replies without joining users.
type PostReply struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"_id"`
	PostID         string    `gorm:"type:varchar(36);index;not null" json:"postId"`
	UserID         string    `gorm:"type:varchar(36);index;not null" json:"userId"`
	Text           string    `gorm:"type:varchar(500);not null" json:"text"`
	Name           string    `json:"name"`
	Username       string    `json:"username"`
	ProfilePicture string    `json:"profilePicture"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (r *PostReply) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
