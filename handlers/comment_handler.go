package handlers

import (
	"newsroom-cms/helper"
	"newsroom-cms/middleware"
	"newsroom-cms/models"
	"newsroom-cms/services"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService services.CommentService
	Helper         *helper.HTTPHelper
}

func NewCommentHandler(commentService services.CommentService, h *helper.HTTPHelper) *CommentHandler {
	return &CommentHandler{commentService: commentService, Helper: h}
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	articleID, ok := h.Helper.ParamID(c, "id")
	if !ok {
		return
	}

	var req models.CreateCommentRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.AddComment(c.Request.Context(), middleware.Actor(c), articleID, req.Body)
	if err != nil {
		h.Helper.SendErrorFromErr(c, err)
		return
	}

	h.Helper.SendCreated(c, "Comment added", comment)
}

func (h *CommentHandler) GetComments(c *gin.Context) {
	articleID, ok := h.Helper.ParamID(c, "id")
	if !ok {
		return
	}

	comments, err := h.commentService.GetComments(c.Request.Context(), articleID)
	if err != nil {
		h.Helper.SendErrorFromErr(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", comments)
}

func (h *CommentHandler) VoteComment(c *gin.Context) {
	commentID, ok := h.Helper.ParamID(c, "id")
	if !ok {
		return
	}

	var req models.VoteRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.Vote(c.Request.Context(), middleware.Actor(c), commentID, *req.Positive)
	if err != nil {
		h.Helper.SendErrorFromErr(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Vote recorded", comment)
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	commentID, ok := h.Helper.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.commentService.DeleteComment(c.Request.Context(), middleware.Actor(c), commentID); err != nil {
		h.Helper.SendErrorFromErr(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Comment deleted", h.Helper.EmptyJsonMap())
}
