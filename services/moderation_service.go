package services

import (
	"context"

	"newsroom-cms/cache"
	"newsroom-cms/models"
	"newsroom-cms/repositories"

	"github.com/rs/zerolog"
)

// ModerationService drives the pending -> approved/rejected workflow. No state
// is terminal: any decision may be superseded by a later one. Concurrent
// decisions on the same article are applied in lock order and the last one
// wins.
type ModerationService interface {
	Approve(ctx context.Context, actor models.Actor, articleID uint) (*models.ValidationEvent, error)
	Reject(ctx context.Context, actor models.Actor, articleID uint) (*models.ValidationEvent, error)
	EffectiveStatus(ctx context.Context, articleID uint) (models.ArticleStatus, error)
	History(ctx context.Context, actor models.Actor, articleID uint) ([]models.ValidationEvent, error)
}

type moderationService struct {
	articleRepo repositories.ArticleRepository
	feed        cache.FeedCache
	log         zerolog.Logger
}

func NewModerationService(articleRepo repositories.ArticleRepository, feed cache.FeedCache, log zerolog.Logger) ModerationService {
	return &moderationService{
		articleRepo: articleRepo,
		feed:        feed,
		log:         log.With().Str("component", "moderation").Logger(),
	}
}

func (s *moderationService) Approve(ctx context.Context, actor models.Actor, articleID uint) (*models.ValidationEvent, error) {
	return s.decide(ctx, actor, articleID, models.StatusApproved)
}

func (s *moderationService) Reject(ctx context.Context, actor models.Actor, articleID uint) (*models.ValidationEvent, error) {
	return s.decide(ctx, actor, articleID, models.StatusRejected)
}

func (s *moderationService) decide(ctx context.Context, actor models.Actor, articleID uint, status models.ArticleStatus) (*models.ValidationEvent, error) {
	if err := requireRole(actor, models.RoleEditor, "review articles"); err != nil {
		return nil, err
	}

	event, err := s.articleRepo.AppendValidation(ctx, articleID, actor.ID, status)
	if err != nil {
		return nil, storeError(err, "article not found")
	}

	if err := s.feed.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Feed cache invalidation failed")
	}

	s.log.Info().
		Uint("article_id", articleID).
		Uint("reviewer_id", actor.ID).
		Str("status", string(status)).
		Msg("Article reviewed")

	return event, nil
}

// EffectiveStatus recomputes the status from the event log rather than
// trusting the denormalized column.
func (s *moderationService) EffectiveStatus(ctx context.Context, articleID uint) (models.ArticleStatus, error) {
	if _, err := s.articleRepo.GetByID(ctx, articleID); err != nil {
		return "", storeError(err, "article not found")
	}

	events, err := s.articleRepo.GetValidations(ctx, articleID)
	if err != nil {
		return "", storeError(err, "article not found")
	}
	return models.EffectiveStatus(events), nil
}

// History returns the decisions on an article, newest first. Visible to the
// author and to editors.
func (s *moderationService) History(ctx context.Context, actor models.Actor, articleID uint) ([]models.ValidationEvent, error) {
	article, err := s.articleRepo.GetByID(ctx, articleID)
	if err != nil {
		return nil, storeError(err, "article not found")
	}
	if actor.IsAnonymous() {
		return nil, models.ErrorUnauthorized{Message: "authentication required"}
	}
	if !canReview(actor, article) {
		return nil, models.ErrorForbidden{Message: "only the author or an editor may view the review history"}
	}

	events, err := s.articleRepo.GetValidations(ctx, articleID)
	if err != nil {
		return nil, storeError(err, "article not found")
	}
	return events, nil
}
