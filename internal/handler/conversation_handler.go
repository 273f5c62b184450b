package handler

import (
	"net/http"
	"strconv"

	"Vibe_Tribe/internal/service"

	"github.com/gin-gonic/gin"
)

type ConversationHandler struct {
	svc *service.ConversationService
}

type CreateConversationReq struct {
	CommunityID *uint64 `json:"community_id"`
	EventID     *uint64 `json:"event_id"`
	Title       string  `json:"title"`
	Content     string  `json:"content"`
}

func NewConversationHandler(svc *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

// Create 创建会话接口，community_id 缺省即自由会话
func (h *ConversationHandler) Create(c *gin.Context) {
	userIDAny, _ := c.Get("user_id")
	userID := userIDAny.(uint64)

	var req CreateConversationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	conv, err := h.svc.CreateConversation(c.Request.Context(), userID, req.CommunityID, req.EventID, req.Title, req.Content)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": conv.ID})
}

// Reply 回复接口
func (h *ConversationHandler) Reply(c *gin.Context) {
	userIDAny, _ := c.Get("user_id")
	userID := userIDAny.(uint64)

	idStr := c.Param("id")
	conversationID, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || conversationID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid conversation id"})
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	reply, err := h.svc.Reply(c.Request.Context(), userID, conversationID, req.Content)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": reply.ID})
}

// Delete 删除接口（幂等）
func (h *ConversationHandler) Delete(c *gin.Context) {
	userIDAny, _ := c.Get("user_id")
	userID := userIDAny.(uint64)

	idStr := c.Param("id")
	conversationID, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || conversationID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid conversation id"})
		return
	}

	if err := h.svc.DeleteConversation(userID, conversationID); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"msg": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}
