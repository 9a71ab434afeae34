package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User account. Password is bcrypt-hashed and never serialized.
type User struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"_id"`
	Name           string    `json:"name"`
	Username       string    `gorm:"uniqueIndex;type:varchar(64);not null" json:"username"`
	Email          string    `gorm:"uniqueIndex;type:varchar(255);not null" json:"email"`
	Password       string    `gorm:"not null" json:"-"`
	Biography      string    `json:"biography"`
	ProfilePicture string    `json:"profilePicture"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Follow records that FollowerID follows FollowedID.
type Follow struct {
	FollowerID string    `gorm:"primaryKey;type:varchar(36)" json:"followerId"`
	FollowedID string    `gorm:"primaryKey;type:varchar(36)" json:"followedId"`
	CreatedAt  time.Time `json:"createdAt"`
}
