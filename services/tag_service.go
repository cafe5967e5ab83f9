package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"newsroom-cms/cache"
	"newsroom-cms/models"
	"newsroom-cms/repositories"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const defaultTrendingLimit = 10

type TagService interface {
	CreateTag(ctx context.Context, actor models.Actor, req models.TagRequest) (*models.Tag, error)
	RenameTag(ctx context.Context, actor models.Actor, id uint, req models.TagRequest) (*models.Tag, error)
	DeleteTag(ctx context.Context, actor models.Actor, id uint) error
	GetTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uint) (*models.Tag, error)
	GetTrending(ctx context.Context, limit int) ([]models.TrendingTag, error)
}

type tagService struct {
	tagRepo repositories.TagRepository
	feed    cache.FeedCache
	log     zerolog.Logger
}

func NewTagService(tagRepo repositories.TagRepository, feed cache.FeedCache, log zerolog.Logger) TagService {
	return &tagService{
		tagRepo: tagRepo,
		feed:    feed,
		log:     log.With().Str("component", "tags").Logger(),
	}
}

// CreateTag relies on the unique index on tags.name; there is no lookup
// before the insert.
func (s *tagService) CreateTag(ctx context.Context, actor models.Actor, req models.TagRequest) (*models.Tag, error) {
	if err := requireRole(actor, models.RoleAdmin, "manage tags"); err != nil {
		return nil, err
	}
	name, err := tagName(req.Name)
	if err != nil {
		return nil, err
	}

	tag := &models.Tag{Name: name}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, tagStoreError(err, name)
	}
	return tag, nil
}

func (s *tagService) RenameTag(ctx context.Context, actor models.Actor, id uint, req models.TagRequest) (*models.Tag, error) {
	if err := requireRole(actor, models.RoleAdmin, "manage tags"); err != nil {
		return nil, err
	}
	name, err := tagName(req.Name)
	if err != nil {
		return nil, err
	}

	tag := &models.Tag{ID: id, Name: name}
	if err := s.tagRepo.Update(ctx, tag); err != nil {
		return nil, tagStoreError(err, name)
	}
	s.invalidate(ctx)

	return s.GetTag(ctx, id)
}

func (s *tagService) DeleteTag(ctx context.Context, actor models.Actor, id uint) error {
	if err := requireRole(actor, models.RoleAdmin, "manage tags"); err != nil {
		return err
	}
	if err := s.tagRepo.Delete(ctx, id); err != nil {
		return storeError(err, "tag not found")
	}
	s.invalidate(ctx)
	return nil
}

func (s *tagService) GetTags(ctx context.Context) ([]models.Tag, error) {
	tags, err := s.tagRepo.GetAll(ctx)
	if err != nil {
		return nil, storeError(err, "tag not found")
	}
	return tags, nil
}

func (s *tagService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	tag, err := s.tagRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "tag not found")
	}
	return tag, nil
}

// GetTrending ranks tags by the number of approved articles carrying them.
func (s *tagService) GetTrending(ctx context.Context, limit int) ([]models.TrendingTag, error) {
	if limit <= 0 || limit > 50 {
		limit = defaultTrendingLimit
	}

	key := fmt.Sprintf("tags:trending:limit=%d", limit)
	var trending []models.TrendingTag
	gen, hit, err := s.feed.Get(ctx, key, &trending)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Feed cache read failed")
	}
	if hit {
		return trending, nil
	}

	trending, err = s.tagRepo.Trending(ctx, limit)
	if err != nil {
		return nil, storeError(err, "tag not found")
	}
	if err := s.feed.Set(ctx, gen, key, trending); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Feed cache write failed")
	}
	return trending, nil
}

func (s *tagService) invalidate(ctx context.Context) {
	if err := s.feed.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Feed cache invalidation failed")
	}
}

func tagName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", models.ErrorValidation{Field: "name", Message: "is required"}
	}
	return name, nil
}

func tagStoreError(err error, name string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.ErrorConflict{Message: "tag " + name + " already exists"}
	}
	return storeError(err, "tag not found")
}
