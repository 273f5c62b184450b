package handler

import (
	"errors"
	"net/http"
	"strconv"

	"Vibe_Tribe/internal/model"
	"Vibe_Tribe/internal/service"

	"github.com/gin-gonic/gin"
)

type CommunityHandler struct {
	svc *service.CommunityService
}

type CommunityCreateReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Private     bool   `json:"private"`
}

type CommunityJoinReq struct {
	CommunityID uint64 `json:"community_id"`
	InviteCode  string `json:"invite_code"`
}

func NewCommunityHandler(svc *service.CommunityService) *CommunityHandler {
	return &CommunityHandler{svc: svc}
}

func (h *CommunityHandler) Create(c *gin.Context) {
	userIDAny, _ := c.Get("user_id")
	userID := userIDAny.(uint64)

	var req CommunityCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	visibility := model.VisibilityPublic
	if req.Private {
		visibility = model.VisibilityPrivate
	}

	community, err := h.svc.CreateCommunity(c.Request.Context(), userID, req.Name, req.Description, visibility)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          community.ID,
		"name":        community.Name,
		"description": community.Description,
		"visibility":  community.Visibility,
	})
}

func (h *CommunityHandler) Join(c *gin.Context) {
	userIDAny, _ := c.Get("user_id")
	userID := userIDAny.(uint64)

	var req CommunityJoinReq
	if err := c.ShouldBindJSON(&req); err != nil || req.CommunityID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	if err := h.svc.JoinCommunity(c.Request.Context(), userID, req.CommunityID, req.InviteCode); err != nil {
		if errors.Is(err, service.ErrInviteRequired) {
			c.JSON(http.StatusForbidden, gin.H{"msg": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *CommunityHandler) Leave(c *gin.Context) {
	userIDAny, _ := c.Get("user_id")
	userID := userIDAny.(uint64)

	idStr := c.Param("id")
	communityID, _ := strconv.ParseUint(idStr, 10, 64)

	if err := h.svc.LeaveCommunity(c.Request.Context(), userID, communityID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

// Invite 管理员给私有社区签发邀请码
func (h *CommunityHandler) Invite(c *gin.Context) {
	userIDAny, _ := c.Get("user_id")
	userID := userIDAny.(uint64)

	idStr := c.Param("id")
	communityID, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || communityID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid community id"})
		return
	}

	code, err := h.svc.IssueInvite(c.Request.Context(), userID, communityID)
	if err != nil {
		if errors.Is(err, service.ErrNotAdmin) {
			c.JSON(http.StatusForbidden, gin.H{"msg": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"msg": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": code})
}

func (h *CommunityHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))

	list, err := h.svc.ListCommunities(page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"list": list})
}
