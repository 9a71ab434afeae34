package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"threads-server/controllers"
)

// RegisterRoutes wires the HTTP surface and the realtime endpoint.
func RegisterRoutes(
	userController *controllers.UserController,
	postController *controllers.PostController,
	messageController *controllers.MessageController,
	wsController *controllers.WSController,
	auth gin.HandlerFunc,
) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/ws", wsController.Handle)

	api := r.Group("/api")

	user := api.Group("/user")
	{
		user.POST("/sign-up", userController.SignUp)
		user.POST("/sign-in", userController.SignIn)
		user.POST("/sign-out", userController.SignOut)
		user.GET("/profile/:query", userController.GetProfile)
		user.GET("/suggested", auth, userController.GetSuggestedUsers)
		user.POST("/follow/:id", auth, userController.FollowUser)
		user.POST("/unfollow/:id", auth, userController.UnfollowUser)
		user.PUT("/update/:id", auth, userController.UpdateProfile)
	}

	post := api.Group("/post")
	{
		post.GET("/get/:id", postController.Get)
		post.GET("/get-all/:username", postController.GetAllByUsername)
		post.GET("/feed", auth, postController.Feed)
		post.POST("/create", auth, postController.Create)
		post.DELETE("/delete/:id", auth, postController.Delete)
		post.POST("/like/:id", auth, postController.Like)
		post.POST("/unlike/:id", auth, postController.Unlike)
		post.POST("/reply/:id", auth, postController.Reply)
	}

	message := api.Group("/message", auth)
	{
		message.POST("/send", messageController.Send)
		message.GET("/get-all/:id", messageController.GetAllMessage)
		message.GET("/get-all-conversation", messageController.GetAllConversation)
	}

	return r
}
