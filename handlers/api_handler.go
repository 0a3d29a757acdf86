package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"social-blog/helper"
	"social-blog/middleware"
	"social-blog/models"
	"social-blog/services"

	"github.com/gin-gonic/gin"
)

const APIPrefix = "/api/v1.0"

// APIHandler serves the JSON API.
type APIHandler struct {
	authService    services.AuthService
	userService    services.UserService
	postService    services.PostService
	commentService services.CommentService
	pageSizes      PageSizes
	tokenTTL       time.Duration
	Helper         *helper.HTTPHelper
}

func NewAPIHandler(
	authService services.AuthService,
	userService services.UserService,
	postService services.PostService,
	commentService services.CommentService,
	pageSizes PageSizes,
	tokenTTL time.Duration,
	httpHelper *helper.HTTPHelper,
) *APIHandler {
	return &APIHandler{
		authService:    authService,
		userService:    userService,
		postService:    postService,
		commentService: commentService,
		pageSizes:      pageSizes,
		tokenTTL:       tokenTTL,
		Helper:         httpHelper,
	}
}

func (h *APIHandler) url(c *gin.Context, format string, args ...interface{}) string {
	return h.Helper.ExternalURL(c, APIPrefix+fmt.Sprintf(format, args...))
}

func (h *APIHandler) paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		h.Helper.SendNotFoundError(c, "not found")
		return 0, false
	}
	return uint(id), true
}

func (h *APIHandler) sendList(c *gin.Context, key string, items interface{}, page, perPage int, total int64) {
	prev, next := h.Helper.GeneratePaging(c, helper.NewPagination(page, perPage, total))
	c.JSON(http.StatusOK, gin.H{
		key:     items,
		"prev":  prev,
		"next":  next,
		"count": total,
	})
}

// GetToken issues an API token. Requests authenticated by a token are
// refused so that tokens cannot renew themselves.
func (h *APIHandler) GetToken(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil || middleware.TokenUsed(c) {
		h.Helper.SendUnauthorizedError(c, "Invalid credentials")
		return
	}

	ttl := h.tokenTTL
	if raw := c.Query("expiration"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 && time.Duration(seconds)*time.Second < ttl {
			ttl = time.Duration(seconds) * time.Second
		}
	}

	token, err := h.authService.GenerateAPIToken(user, ttl)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.TokenResponse{Token: token, Expiration: int(ttl.Seconds())})
}

func (h *APIHandler) userJSON(c *gin.Context, user *models.User) (models.UserResponse, error) {
	stats, err := h.userService.Stats(user)
	if err != nil {
		return models.UserResponse{}, err
	}
	return models.UserResponse{
		URL:           h.url(c, "/users/%d", user.ID),
		Username:      user.Username,
		MemberSince:   user.MemberSince,
		LastSeen:      user.LastSeen,
		Posts:         h.url(c, "/users/%d/posts/", user.ID),
		FollowedPosts: h.url(c, "/users/%d/timeline/", user.ID),
		PostCount:     stats.Posts,
	}, nil
}

func (h *APIHandler) postJSON(c *gin.Context, post *models.Post, commentCount int64) models.PostResponse {
	return models.PostResponse{
		URL:          h.url(c, "/posts/%d", post.ID),
		Body:         post.Body,
		BodyHTML:     post.BodyHTML,
		Timestamp:    post.Timestamp,
		Author:       h.url(c, "/users/%d", post.AuthorID),
		Comments:     h.url(c, "/posts/%d/comments/", post.ID),
		CommentCount: commentCount,
	}
}

func (h *APIHandler) postsJSON(c *gin.Context, posts []models.Post) ([]models.PostResponse, error) {
	counts, err := h.postService.CommentCounts(posts)
	if err != nil {
		return nil, err
	}
	out := make([]models.PostResponse, 0, len(posts))
	for i := range posts {
		out = append(out, h.postJSON(c, &posts[i], counts[posts[i].ID]))
	}
	return out, nil
}

func (h *APIHandler) commentJSON(c *gin.Context, comment *models.Comment) models.CommentResponse {
	return models.CommentResponse{
		URL:       h.url(c, "/comments/%d", comment.ID),
		Post:      h.url(c, "/posts/%d", comment.PostID),
		Body:      comment.Body,
		BodyHTML:  comment.BodyHTML,
		Timestamp: comment.Timestamp,
		Author:    h.url(c, "/users/%d", comment.AuthorID),
	}
}

func (h *APIHandler) commentsJSON(c *gin.Context, comments []models.Comment) []models.CommentResponse {
	out := make([]models.CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, h.commentJSON(c, &comments[i]))
	}
	return out
}
