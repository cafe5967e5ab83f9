package repositories

import (
	"context"
	"errors"

	"newsroom-cms/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrUnknownTag is returned when a tag link references a tag that does not exist.
var ErrUnknownTag = errors.New("unknown tag")

type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	GetByID(ctx context.Context, id uint) (*models.Tag, error)
	GetAll(ctx context.Context) ([]models.Tag, error)
	Update(ctx context.Context, tag *models.Tag) error
	Delete(ctx context.Context, id uint) error
	ReplaceArticleTags(ctx context.Context, articleID uint, tagIDs []uint, pendingOnly bool) error
	GetArticleTagIDs(ctx context.Context, articleID uint) ([]uint, error)
	Trending(ctx context.Context, limit int) ([]models.TrendingTag, error)
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

func (r *tagRepository) GetByID(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).First(&tag, id).Error
	return &tag, err
}

func (r *tagRepository) GetAll(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.WithContext(ctx).Order("name asc").Find(&tags).Error
	return tags, err
}

func (r *tagRepository) Update(ctx context.Context, tag *models.Tag) error {
	res := r.db.WithContext(ctx).Model(tag).Update("name", tag.Name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *tagRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&models.ArticleTag{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Tag{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ReplaceArticleTags makes the article's tag set exactly tagIDs. With
// pendingOnly it fails with ErrNotPending once the article has been reviewed.
func (r *tagRepository) ReplaceArticleTags(ctx context.Context, articleID uint, tagIDs []uint, pendingOnly bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := touchArticle(tx, articleID, pendingOnly); err != nil {
			return err
		}
		return replaceArticleTags(tx, articleID, tagIDs)
	})
}

func (r *tagRepository) GetArticleTagIDs(ctx context.Context, articleID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.ArticleTag{}).
		Where("article_id = ?", articleID).
		Order("tag_id asc").
		Pluck("tag_id", &ids).Error
	return ids, err
}

// Trending counts approved articles per tag, most used first.
func (r *tagRepository) Trending(ctx context.Context, limit int) ([]models.TrendingTag, error) {
	var rows []struct {
		ID           uint
		Name         string
		ArticleCount int64
	}

	err := r.db.WithContext(ctx).
		Table("tags").
		Select("tags.id, tags.name, COUNT(articles.id) AS article_count").
		Joins("JOIN article_tags ON article_tags.tag_id = tags.id").
		Joins("JOIN articles ON articles.id = article_tags.article_id").
		Where("articles.current_status = ?", models.StatusApproved).
		Group("tags.id, tags.name").
		Order("article_count desc").
		Order("tags.name asc").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	trending := make([]models.TrendingTag, 0, len(rows))
	for _, row := range rows {
		trending = append(trending, models.TrendingTag{
			Tag:   models.Tag{ID: row.ID, Name: row.Name},
			Count: row.ArticleCount,
		})
	}
	return trending, nil
}

// replaceArticleTags diffs the current links against tagIDs inside tx: stale
// links are deleted and missing ones inserted, so readers never observe an
// empty intermediate set.
func replaceArticleTags(tx *gorm.DB, articleID uint, tagIDs []uint) error {
	wanted := uniqueIDs(tagIDs)

	if len(wanted) > 0 {
		var known int64
		if err := tx.Model(&models.Tag{}).Where("id IN ?", wanted).Count(&known).Error; err != nil {
			return err
		}
		if known != int64(len(wanted)) {
			return ErrUnknownTag
		}
	}

	stale := tx.Where("article_id = ?", articleID)
	if len(wanted) > 0 {
		stale = stale.Where("tag_id NOT IN ?", wanted)
	}
	if err := stale.Delete(&models.ArticleTag{}).Error; err != nil {
		return err
	}

	if len(wanted) == 0 {
		return nil
	}

	links := make([]models.ArticleTag, 0, len(wanted))
	for _, tagID := range wanted {
		links = append(links, models.ArticleTag{ArticleID: articleID, TagID: tagID})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
