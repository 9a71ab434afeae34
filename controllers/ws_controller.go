package controllers

import (
	"github.com/gin-gonic/gin"

	"threads-server/services"
)

type WSController struct {
	registry *services.Registry
	chat     *services.ChatService
}

func NewWSController(registry *services.Registry, chat *services.ChatService) *WSController {
	return &WSController{registry: registry, chat: chat}
}

func (wc *WSController) Handle(c *gin.Context) {
	services.HandleWebSocket(c, wc.registry, wc.chat)
}
