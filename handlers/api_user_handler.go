package handlers

import (
	"net/http"

	"social-blog/helper"
	"social-blog/models"

	"github.com/gin-gonic/gin"
)

func (h *APIHandler) lookupUser(c *gin.Context) (*models.User, bool) {
	id, ok := h.paramID(c)
	if !ok {
		return nil, false
	}
	user, err := h.userService.GetByID(id)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return nil, false
	}
	return user, true
}

func (h *APIHandler) GetUser(c *gin.Context) {
	user, ok := h.lookupUser(c)
	if !ok {
		return
	}
	body, err := h.userJSON(c, user)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, body)
}

func (h *APIHandler) GetUserPosts(c *gin.Context) {
	user, ok := h.lookupUser(c)
	if !ok {
		return
	}
	page := helper.ParsePage(c)
	posts, total, err := h.postService.ListByAuthor(user.ID, page, h.pageSizes.Posts)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	items, err := h.postsJSON(c, posts)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.sendList(c, "posts", items, page, h.pageSizes.Posts, total)
}

// GetUserTimeline lists the posts of everyone the user follows, the user
// included.
func (h *APIHandler) GetUserTimeline(c *gin.Context) {
	user, ok := h.lookupUser(c)
	if !ok {
		return
	}
	page := helper.ParsePage(c)
	posts, total, err := h.postService.ListFollowed(user.ID, page, h.pageSizes.Posts)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	items, err := h.postsJSON(c, posts)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.sendList(c, "posts", items, page, h.pageSizes.Posts, total)
}
