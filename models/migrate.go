package models

import (
	"log"

	"gorm.io/gorm"
)

// Migrate runs automigration for every model.
func Migrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&User{},
		&Follow{},
		&Post{},
		&PostLike{},
		&PostReply{},
		&Conversation{},
		&Message{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
}
