package handler

import (
	"net/http"
	"strconv"
	"time"

	"Vibe_Tribe/internal/service"

	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	svc *service.EventService
}

type CreateEventReq struct {
	CommunityID *uint64 `json:"community_id"`
	Title       string  `json:"title"`
	Location    string  `json:"location"`
	StartsAt    string  `json:"starts_at"` // RFC3339
}

func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

func (h *EventHandler) Create(c *gin.Context) {
	userIDAny, _ := c.Get("user_id")
	userID := userIDAny.(uint64)

	var req CreateEventReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid starts_at"})
		return
	}

	event, err := h.svc.CreateEvent(c.Request.Context(), userID, req.CommunityID, req.Title, req.Location, startsAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": event.ID})
}

// RSVP 活动回复接口
func (h *EventHandler) RSVP(c *gin.Context) {
	userIDAny, _ := c.Get("user_id")
	userID := userIDAny.(uint64)

	idStr := c.Param("id")
	eventID, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || eventID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid event id"})
		return
	}

	var req struct {
		RSVP int8 `json:"rsvp"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	if err := h.svc.RSVP(c.Request.Context(), userID, eventID, req.RSVP); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *EventHandler) Guests(c *gin.Context) {
	idStr := c.Param("id")
	eventID, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || eventID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid event id"})
		return
	}

	guests, err := h.svc.Guests(c.Request.Context(), eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"list": guests})
}
