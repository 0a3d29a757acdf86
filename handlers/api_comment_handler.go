package handlers

import (
	"net/http"

	"social-blog/helper"
	"social-blog/middleware"
	"social-blog/models"

	"github.com/gin-gonic/gin"
)

func (h *APIHandler) GetComments(c *gin.Context) {
	page := helper.ParsePage(c)
	comments, total, err := h.commentService.List(page, h.pageSizes.Comments)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.sendList(c, "comments", h.commentsJSON(c, comments), page, h.pageSizes.Comments, total)
}

func (h *APIHandler) GetComment(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}
	comment, err := h.commentService.GetByID(id)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.commentJSON(c, comment))
}

func (h *APIHandler) GetPostComments(c *gin.Context) {
	post, ok := h.lookupPost(c)
	if !ok {
		return
	}
	comments, total, page, err := h.commentService.ListByPost(post.ID, helper.ParsePage(c), h.pageSizes.Comments)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	h.sendList(c, "comments", h.commentsJSON(c, comments), page, h.pageSizes.Comments, total)
}

func (h *APIHandler) NewPostComment(c *gin.Context) {
	post, ok := h.lookupPost(c)
	if !ok {
		return
	}
	var req models.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "comment does not have a body")
		return
	}
	comment, err := h.commentService.Create(middleware.CurrentUser(c), post, req.Body)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	body := h.commentJSON(c, comment)
	c.Header("Location", body.URL)
	c.JSON(http.StatusCreated, body)
}
