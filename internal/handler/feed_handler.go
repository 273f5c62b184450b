package handler

import (
	"errors"
	"net/http"
	"strconv"

	"Vibe_Tribe/internal/service"

	"github.com/gin-gonic/gin"
)

type FeedHandler struct {
	feed    *service.FeedService
	circles *service.CircleService
}

func NewFeedHandler(feed *service.FeedService, circles *service.CircleService) *FeedHandler {
	return &FeedHandler{feed: feed, circles: circles}
}

// Feed GET /api/feed?circle=&page=&per_page=&filter=
// 匿名访客拿到的是空 feed（invalid viewer 语义），不报错
func (h *FeedHandler) Feed(c *gin.Context) {
	userIDAny, _ := c.Get("user_id")
	viewerID := userIDAny.(uint64)

	circle := service.Circle(c.DefaultQuery("circle", string(service.CircleInner)))
	page, _ := strconv.Atoi(c.Query("page"))
	perPage, _ := strconv.Atoi(c.Query("per_page"))
	filter := c.Query("filter")

	result, err := h.feed.List(c.Request.Context(), viewerID, circle, service.FeedOptions{
		Page:    page,
		PerPage: perPage,
		Filter:  filter,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCircle) || errors.Is(err, service.ErrInvalidFilter) {
			c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "feed failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Scope GET /api/circle/scope
// 登录用户看三层圈子；匿名访客看 public scope
func (h *FeedHandler) Scope(c *gin.Context) {
	userIDAny, _ := c.Get("user_id")
	viewerID := userIDAny.(uint64)

	if viewerID == 0 {
		scope, err := h.circles.PublicScope(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "scope failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"public": scopeJSON(scope)})
		return
	}

	circles, err := h.circles.ResolveCached(c.Request.Context(), viewerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "scope failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"inner":    scopeJSON(circles.Inner),
		"trusted":  scopeJSON(circles.Trusted),
		"extended": scopeJSON(circles.Extended),
	})
}

// scopeJSON 集合转有序数组，响应稳定可比
func scopeJSON(scope service.Scope) gin.H {
	return gin.H{
		"users":       scope.UserIDs(),
		"communities": scope.CommunityIDs(),
	}
}
