package handlers

import (
	"newsroom-cms/helper"
	"newsroom-cms/middleware"
	"newsroom-cms/models"
	"newsroom-cms/services"

	"github.com/gin-gonic/gin"
)

type ArticleHandler struct {
	articleService    services.ArticleService
	moderationService services.ModerationService
	Helper            *helper.HTTPHelper
}

func NewArticleHandler(articleService services.ArticleService, moderationService services.ModerationService, h *helper.HTTPHelper) *ArticleHandler {
	return &ArticleHandler{
		articleService:    articleService,
		moderationService: moderationService,
		Helper:            h,
	}
}

func (h *ArticleHandler) CreateArticle(c *gin.Context) {
	var req models.CreateArticleRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	article, err := h.articleService.SubmitArticle(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		h.Helper.SendErrorFromErr(c, err)
		return
	}

	h.Helper.SendCreated(c, "Article submitted for review", article)
}

func (h *ArticleHandler) GetArticles(c *gin.Context) {
	var params models.ArticleListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.Helper.SendBadRequest(c, err.Error(), h.Helper.EmptyJsonMap())
		return
	}
	params.Normalize()

	articles, total, err := h.articleService.GetArticles(c.Request.Context(), middleware.Actor(c), params)
	if err != nil {
		h.Helper.SendErrorFromErr(c, err)
		return
	}

	h.Helper.SendPaginated(c, "Success", articles, params.Page, params.Limit, total)
}

func (h *ArticleHandler) GetPublicArticles(c *gin.Context) {
	var params models.ArticleListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.Helper.SendBadRequest(c, err.Error(), h.Helper.EmptyJsonMap())
		return
	}
	params.Normalize()

	articles, total, err := h.articleService.GetPublicArticles(c.Request.Context(), params)
	if err != nil {
		h.Helper.SendErrorFromErr(c, err)
		return
	}

	h.Helper.SendPaginated(c, "Success", articles, params.Page, params.Limit, total)
}

func (h *ArticleHandler) GetArticle(c *gin.Context) {
	id, ok := h.Helper.ParamID(c, "id")
	if !ok {
		return
	}

	article, err := h.articleService.GetArticle(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		h.Helper.SendErrorFromErr(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", article)
}

func (h *ArticleHandler) GetPublicArticle(c *gin.Context) {
	id, ok := h.Helper.ParamID(c, "id")
	if !ok {
		return
	}

	article, err := h.articleService.GetPublicArticle(c.Request.Context(), id)
	if err != nil {
		h.Helper.SendErrorFromErr(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", article)
}

func (h *ArticleHandler) UpdateArticle(c *gin.Context) {
	id, ok := h.Helper.ParamID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateArticleRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	article, err := h.articleService.UpdateArticle(c.Request.Context(), middleware.Actor(c), id, req)
	if err != nil {
		h.Helper.SendErrorFromErr(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article updated successfully", article)
}

func (h *ArticleHandler) SetArticleTags(c *gin.Context) {
	id, ok := h.Helper.ParamID(c, "id")
	if !ok {
		return
	}

	var req models.SetTagsRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	article, err := h.articleService.SetTags(c.Request.Context(), middleware.Actor(c), id, req.TagIDs)
	if err != nil {
		h.Helper.SendErrorFromErr(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Tags updated successfully", article)
}

func (h *ArticleHandler) DeleteArticle(c *gin.Context) {
	id, ok := h.Helper.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.articleService.DeleteArticle(c.Request.Context(), middleware.Actor(c), id); err != nil {
		h.Helper.SendErrorFromErr(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article deleted successfully", h.Helper.EmptyJsonMap())
}

func (h *ArticleHandler) ApproveArticle(c *gin.Context) {
	id, ok := h.Helper.ParamID(c, "id")
	if !ok {
		return
	}

	event, err := h.moderationService.Approve(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		h.Helper.SendErrorFromErr(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article approved", event)
}

func (h *ArticleHandler) RejectArticle(c *gin.Context) {
	id, ok := h.Helper.ParamID(c, "id")
	if !ok {
		return
	}

	event, err := h.moderationService.Reject(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		h.Helper.SendErrorFromErr(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article rejected", event)
}

func (h *ArticleHandler) GetArticleStatus(c *gin.Context) {
	id, ok := h.Helper.ParamID(c, "id")
	if !ok {
		return
	}

	// Visibility first: the status of a hidden article is not public.
	if _, err := h.articleService.GetArticle(c.Request.Context(), middleware.Actor(c), id); err != nil {
		h.Helper.SendErrorFromErr(c, err)
		return
	}

	status, err := h.moderationService.EffectiveStatus(c.Request.Context(), id)
	if err != nil {
		h.Helper.SendErrorFromErr(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", gin.H{"article_id": id, "status": status})
}

func (h *ArticleHandler) GetArticleValidations(c *gin.Context) {
	id, ok := h.Helper.ParamID(c, "id")
	if !ok {
		return
	}

	events, err := h.moderationService.History(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		h.Helper.SendErrorFromErr(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", events)
}
