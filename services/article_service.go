package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"newsroom-cms/cache"
	"newsroom-cms/helper"
	"newsroom-cms/models"
	"newsroom-cms/repositories"

	"github.com/rs/zerolog"
)

type ArticleService interface {
	SubmitArticle(ctx context.Context, actor models.Actor, req models.CreateArticleRequest) (*models.Article, error)
	UpdateArticle(ctx context.Context, actor models.Actor, id uint, req models.UpdateArticleRequest) (*models.Article, error)
	SetTags(ctx context.Context, actor models.Actor, id uint, tagIDs []uint) (*models.Article, error)
	DeleteArticle(ctx context.Context, actor models.Actor, id uint) error
	GetArticle(ctx context.Context, actor models.Actor, id uint) (*models.Article, error)
	GetArticles(ctx context.Context, actor models.Actor, params models.ArticleListParams) ([]models.Article, int64, error)
	GetPublicArticles(ctx context.Context, params models.ArticleListParams) ([]models.Article, int64, error)
	GetPublicArticle(ctx context.Context, id uint) (*models.Article, error)
}

type articleService struct {
	articleRepo repositories.ArticleRepository
	tagRepo     repositories.TagRepository
	feed        cache.FeedCache
	log         zerolog.Logger
}

func NewArticleService(articleRepo repositories.ArticleRepository, tagRepo repositories.TagRepository, feed cache.FeedCache, log zerolog.Logger) ArticleService {
	return &articleService{
		articleRepo: articleRepo,
		tagRepo:     tagRepo,
		feed:        feed,
		log:         log.With().Str("component", "articles").Logger(),
	}
}

// SubmitArticle stores a new article together with its initial pending
// validation event. It stays out of the public feed until approved.
func (s *articleService) SubmitArticle(ctx context.Context, actor models.Actor, req models.CreateArticleRequest) (*models.Article, error) {
	if err := requireRole(actor, models.RoleWriter, "submit articles"); err != nil {
		return nil, err
	}

	article := &models.Article{
		Title:    strings.TrimSpace(req.Title),
		Subtitle: strings.TrimSpace(req.Subtitle),
		Body:     strings.TrimSpace(req.Body),
		ImageURL: strings.TrimSpace(req.ImageURL),
		AuthorID: actor.ID,
	}
	if err := validateArticleContent(article); err != nil {
		return nil, err
	}

	if err := s.articleRepo.CreateWithInitialEvent(ctx, article, req.TagIDs); err != nil {
		if errors.Is(err, repositories.ErrUnknownTag) {
			return nil, models.ErrorValidation{Field: "tag_ids", Message: "unknown tag"}
		}
		s.log.Warn().
			Err(err).
			Str("image_url", article.ImageURL).
			Msg("Article insert failed, uploaded image may be orphaned")
		return nil, storeError(err, "article not found")
	}

	s.log.Info().Uint("article_id", article.ID).Uint("author_id", actor.ID).Msg("Article submitted")

	return s.load(ctx, article.ID)
}

// UpdateArticle is allowed for the author while the article is pending and
// for admins at any time. Editing does not change the publication status.
func (s *articleService) UpdateArticle(ctx context.Context, actor models.Actor, id uint, req models.UpdateArticleRequest) (*models.Article, error) {
	article, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canEdit(actor, article); err != nil {
		return nil, err
	}

	article.Title = strings.TrimSpace(req.Title)
	article.Subtitle = strings.TrimSpace(req.Subtitle)
	article.Body = strings.TrimSpace(req.Body)
	article.ImageURL = strings.TrimSpace(req.ImageURL)
	if err := validateArticleContent(article); err != nil {
		return nil, err
	}

	if err := s.articleRepo.Update(ctx, article, req.TagIDs, actor.Role != models.RoleAdmin); err != nil {
		if errors.Is(err, repositories.ErrUnknownTag) {
			return nil, models.ErrorValidation{Field: "tag_ids", Message: "unknown tag"}
		}
		return nil, storeError(err, "article not found")
	}
	s.invalidate(ctx)

	return s.load(ctx, id)
}

// SetTags replaces the article's tag set atomically.
func (s *articleService) SetTags(ctx context.Context, actor models.Actor, id uint, tagIDs []uint) (*models.Article, error) {
	article, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canEdit(actor, article); err != nil {
		return nil, err
	}

	if tagIDs == nil {
		tagIDs = []uint{}
	}
	if err := s.tagRepo.ReplaceArticleTags(ctx, id, tagIDs, actor.Role != models.RoleAdmin); err != nil {
		if errors.Is(err, repositories.ErrUnknownTag) {
			return nil, models.ErrorValidation{Field: "tag_ids", Message: "unknown tag"}
		}
		return nil, storeError(err, "article not found")
	}
	s.invalidate(ctx)

	return s.load(ctx, id)
}

// DeleteArticle is allowed for admins, and for the author while pending.
func (s *articleService) DeleteArticle(ctx context.Context, actor models.Actor, id uint) error {
	article, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := canEdit(actor, article); err != nil {
		return err
	}

	if err := s.articleRepo.Delete(ctx, id, actor.Role != models.RoleAdmin); err != nil {
		return storeError(err, "article not found")
	}
	s.invalidate(ctx)

	s.log.Info().Uint("article_id", id).Uint("actor_id", actor.ID).Msg("Article deleted")
	return nil
}

// GetArticle returns any article to its author and to editors; everyone
// else only sees approved ones.
func (s *articleService) GetArticle(ctx context.Context, actor models.Actor, id uint) (*models.Article, error) {
	article, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if canReview(actor, article) || article.CurrentStatus == models.StatusApproved {
		return article, nil
	}
	return nil, models.ErrorNotFound{Message: "article not found"}
}

// GetArticles is the management listing. Writers and readers see their own
// articles only.
func (s *articleService) GetArticles(ctx context.Context, actor models.Actor, params models.ArticleListParams) ([]models.Article, int64, error) {
	if actor.IsAnonymous() {
		return nil, 0, models.ErrorUnauthorized{Message: "authentication required"}
	}
	params.Normalize()
	if params.Status != "" && !models.ArticleStatus(params.Status).Valid() {
		return nil, 0, models.ErrorValidation{Field: "status", Message: "unknown status"}
	}

	scope := repositories.ListScope{}
	if !actor.Role.AtLeast(models.RoleEditor) {
		scope.OwnerID = actor.ID
	}

	articles, total, err := s.articleRepo.GetList(ctx, params, scope)
	if err != nil {
		return nil, 0, storeError(err, "article not found")
	}
	return articles, total, nil
}

type publicPage struct {
	Articles []models.Article `json:"articles"`
	Total    int64            `json:"total"`
}

// GetPublicArticles lists approved articles, newest first.
func (s *articleService) GetPublicArticles(ctx context.Context, params models.ArticleListParams) ([]models.Article, int64, error) {
	params.Normalize()
	params.Status = ""
	params.AuthorID = 0

	key := fmt.Sprintf("articles:tag=%d:page=%d:limit=%d", params.TagID, params.Page, params.Limit)

	var page publicPage
	gen, hit, err := s.feed.Get(ctx, key, &page)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Feed cache read failed")
	}
	if hit {
		return page.Articles, page.Total, nil
	}

	articles, total, err := s.articleRepo.GetList(ctx, params, repositories.ListScope{PublicOnly: true})
	if err != nil {
		return nil, 0, storeError(err, "article not found")
	}

	if err := s.feed.Set(ctx, gen, key, publicPage{Articles: articles, Total: total}); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Feed cache write failed")
	}
	return articles, total, nil
}

func (s *articleService) GetPublicArticle(ctx context.Context, id uint) (*models.Article, error) {
	article, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if article.CurrentStatus != models.StatusApproved {
		return nil, models.ErrorNotFound{Message: "article not found"}
	}
	article.BodyHTML = helper.RenderMarkdown(article.Body)
	return article, nil
}

func (s *articleService) load(ctx context.Context, id uint) (*models.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "article not found")
	}
	return article, nil
}

func (s *articleService) invalidate(ctx context.Context) {
	if err := s.feed.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Feed cache invalidation failed")
	}
}

func validateArticleContent(a *models.Article) error {
	switch {
	case a.Title == "":
		return models.ErrorValidation{Field: "title", Message: "is required"}
	case a.Subtitle == "":
		return models.ErrorValidation{Field: "subtitle", Message: "is required"}
	case a.Body == "":
		return models.ErrorValidation{Field: "body", Message: "is required"}
	case a.ImageURL == "":
		return models.ErrorValidation{Field: "image_url", Message: "is required"}
	}
	return nil
}

func canEdit(actor models.Actor, article *models.Article) error {
	if actor.IsAnonymous() {
		return models.ErrorUnauthorized{Message: "authentication required"}
	}
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if article.AuthorID != actor.ID {
		return models.ErrorForbidden{Message: "only the author or an admin may modify this article"}
	}
	if article.CurrentStatus != models.StatusPending {
		return models.ErrorForbidden{Message: "article is no longer pending"}
	}
	return nil
}

func canReview(actor models.Actor, article *models.Article) bool {
	if actor.IsAnonymous() {
		return false
	}
	return actor.ID == article.AuthorID || actor.Role.AtLeast(models.RoleEditor)
}
