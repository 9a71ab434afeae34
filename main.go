package main

import (
	"log"

	"threads-server/config"
	"threads-server/controllers"
	"threads-server/middlewares"
	"threads-server/models"
	"threads-server/repository"
	"threads-server/routes"
	"threads-server/services"
)

func main() {
	cfg := config.Load()

	config.InitDB(cfg.DatabaseDSN)
	models.Migrate(config.DB)

	var media services.MediaUploader
	if cfg.CloudinaryURL == "" {
		log.Println("CLOUDINARY_URL not set, media uploads are disabled")
		media = services.NewDisabledUploader()
	} else {
		uploader, err := services.NewCloudinaryUploader(cfg.CloudinaryURL)
		if err != nil {
			log.Fatalf("Failed to configure media uploader: %v", err)
		}
		media = uploader
	}

	users := repository.NewUserRepository(config.DB)
	posts := repository.NewPostRepository(config.DB)
	conversations := repository.NewConversationRepository(config.DB)
	messages := repository.NewMessageRepository(config.DB)

	registry := services.NewRegistry()
	chat := services.NewChatService(conversations, messages, media, registry)

	auth := middlewares.TokenAuth(users, cfg.JWTSecret)

	r := routes.RegisterRoutes(
		controllers.NewUserController(users, posts, media, cfg.JWTSecret),
		controllers.NewPostController(posts, users, media),
		controllers.NewMessageController(chat),
		controllers.NewWSController(registry, chat),
		auth,
	)

	log.Printf("Server is running on port: %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
