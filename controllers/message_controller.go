package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"threads-server/services"
	"threads-server/utils"
)

type MessageController struct {
	chat *services.ChatService
}

func NewMessageController(chat *services.ChatService) *MessageController {
	return &MessageController{chat: chat}
}

// Send persists a message to the recipient and pushes it live when they
// are connected.
func (mc *MessageController) Send(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input struct {
		RecipientID string `json:"recipientId" binding:"required"`
		Text        string `json:"text"`
		Image       string `json:"image"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := mc.chat.SendMessage(c.Request.Context(), user.ID, input.RecipientID, input.Text, input.Image)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Message sent successfully", message)
}

// GetAllMessage returns the caller's history with the user in the path,
// oldest first. 404 when no conversation exists yet; the client treats
// that as an empty first-time chat.
func (mc *MessageController) GetAllMessage(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	messages, err := mc.chat.GetMessages(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Messages found successfully", messages)
}

// GetAllConversation lists the caller's conversations with the caller
// filtered out of the participants.
func (mc *MessageController) GetAllConversation(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	conversations, err := mc.chat.GetConversations(c.Request.Context(), user.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Conversations found successfully", conversations)
}
