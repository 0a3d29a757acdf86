package handlers

import (
	"net/http"

	"social-blog/helper"
	"social-blog/middleware"
	"social-blog/models"

	"github.com/gin-gonic/gin"
)

func (h *APIHandler) lookupPost(c *gin.Context) (*models.Post, bool) {
	id, ok := h.paramID(c)
	if !ok {
		return nil, false
	}
	post, err := h.postService.GetByID(id)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return nil, false
	}
	return post, true
}

func (h *APIHandler) sendPost(c *gin.Context, status int, post *models.Post) {
	count, err := h.postService.CountComments(post.ID)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	body := h.postJSON(c, post, count)
	if status == http.StatusCreated {
		c.Header("Location", body.URL)
	}
	c.JSON(status, body)
}

func (h *APIHandler) GetPosts(c *gin.Context) {
	page := helper.ParsePage(c)
	posts, total, err := h.postService.List(page, h.pageSizes.Posts)
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

func (h *APIHandler) GetPost(c *gin.Context) {
	post, ok := h.lookupPost(c)
	if !ok {
		return
	}
	h.sendPost(c, http.StatusOK, post)
}

func (h *APIHandler) NewPost(c *gin.Context) {
	var req models.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "post does not have a body")
		return
	}
	post, err := h.postService.Create(middleware.CurrentUser(c), req.Body)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.sendPost(c, http.StatusCreated, post)
}

// EditPost replaces the body of a post owned by the caller. Administrators
// may edit any post.
func (h *APIHandler) EditPost(c *gin.Context) {
	post, ok := h.lookupPost(c)
	if !ok {
		return
	}
	var req models.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "post does not have a body")
		return
	}
	if err := h.postService.Update(middleware.CurrentUser(c), post, req.Body); err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.sendPost(c, http.StatusOK, post)
}
