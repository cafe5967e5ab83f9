package repositories

import (
	"context"
	"errors"
	"time"

	"newsroom-cms/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListScope narrows a listing beyond the caller-supplied params.
type ListScope struct {
	// PublicOnly restricts to approved articles and ignores params.Status.
	PublicOnly bool
	// OwnerID, when set, restricts to articles written by that user.
	OwnerID uint
}

// ErrNotPending is returned by guarded mutations when the article has already
// been reviewed.
var ErrNotPending = errors.New("article is no longer pending")

type ArticleRepository interface {
	CreateWithInitialEvent(ctx context.Context, article *models.Article, tagIDs []uint) error
	GetByID(ctx context.Context, id uint) (*models.Article, error)
	GetList(ctx context.Context, params models.ArticleListParams, scope ListScope) ([]models.Article, int64, error)
	Update(ctx context.Context, article *models.Article, tagIDs []uint, pendingOnly bool) error
	Delete(ctx context.Context, id uint, pendingOnly bool) error
	AppendValidation(ctx context.Context, articleID, reviewerID uint, status models.ArticleStatus) (*models.ValidationEvent, error)
	GetValidations(ctx context.Context, articleID uint) ([]models.ValidationEvent, error)
}

type articleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

// CreateWithInitialEvent inserts the article, its tag links and the initial
// pending validation event in one transaction.
func (r *articleRepository) CreateWithInitialEvent(ctx context.Context, article *models.Article, tagIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		article.CurrentStatus = models.StatusPending
		if err := tx.Omit(clause.Associations).Create(article).Error; err != nil {
			return err
		}

		event := models.ValidationEvent{
			ArticleID:  article.ID,
			ReviewerID: article.AuthorID,
			Status:     models.StatusPending,
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		return replaceArticleTags(tx, article.ID, tagIDs)
	})
}

func (r *articleRepository) GetByID(ctx context.Context, id uint) (*models.Article, error) {
	var article models.Article
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name asc") }).
		First(&article, id).Error
	return &article, err
}

func (r *articleRepository) GetList(ctx context.Context, params models.ArticleListParams, scope ListScope) ([]models.Article, int64, error) {
	var articles []models.Article
	var total int64

	filter := func(db *gorm.DB) *gorm.DB {
		if scope.PublicOnly {
			db = db.Where("articles.current_status = ?", models.StatusApproved)
		} else if params.Status != "" {
			db = db.Where("articles.current_status = ?", params.Status)
		}
		if scope.OwnerID > 0 {
			db = db.Where("articles.author_id = ?", scope.OwnerID)
		}
		if params.AuthorID > 0 {
			db = db.Where("articles.author_id = ?", params.AuthorID)
		}
		if params.TagID > 0 {
			db = db.Where("articles.id IN (?)",
				db.Session(&gorm.Session{NewDB: true}).
					Model(&models.ArticleTag{}).Select("article_id").Where("tag_id = ?", params.TagID))
		}
		return db
	}

	if err := r.db.WithContext(ctx).Model(&models.Article{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Scopes(filter).
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name asc") }).
		Order("articles.created_at desc").
		Order("articles.id desc").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&articles).Error

	return articles, total, err
}

// Update saves the editable columns. A nil tagIDs keeps the current links.
// With pendingOnly the write matches only a pending row, so a review that
// commits first turns the edit into ErrNotPending.
func (r *articleRepository) Update(ctx context.Context, article *models.Article, tagIDs []uint, pendingOnly bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&models.Article{}).Where("id = ?", article.ID)
		if pendingOnly {
			q = q.Where("current_status = ?", models.StatusPending)
		}
		res := q.Updates(map[string]interface{}{
			"title":     article.Title,
			"subtitle":  article.Subtitle,
			"body":      article.Body,
			"image_url": article.ImageURL,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return missingOrReviewed(tx, article.ID)
		}
		if tagIDs == nil {
			return nil
		}
		return replaceArticleTags(tx, article.ID, tagIDs)
	})
}

// Delete removes the article together with everything that references it.
func (r *articleRepository) Delete(ctx context.Context, id uint, pendingOnly bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := touchArticle(tx, id, pendingOnly); err != nil {
			return err
		}

		commentIDs := tx.Model(&models.Comment{}).Select("id").Where("article_id = ?", id)
		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&models.CommentVote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", id).Delete(&models.ArticleTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", id).Delete(&models.ValidationEvent{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Article{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// touchArticle bumps updated_at and, with pendingOnly, matches only a pending
// row. The UPDATE holds the row lock until tx ends, which orders it against
// AppendValidation.
func touchArticle(tx *gorm.DB, id uint, pendingOnly bool) error {
	q := tx.Model(&models.Article{}).Where("id = ?", id)
	if pendingOnly {
		q = q.Where("current_status = ?", models.StatusPending)
	}
	res := q.Update("updated_at", time.Now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return missingOrReviewed(tx, id)
	}
	return nil
}

// missingOrReviewed tells apart the two reasons a guarded write matched nothing.
func missingOrReviewed(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&models.Article{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return ErrNotPending
}

// AppendValidation records a review decision. The article row is locked for
// the duration of the transaction so concurrent reviewers are serialised and
// the denormalized status always matches the newest event. The event time
// never goes backwards within an article, even if this host's clock lags the
// one that wrote the previous event. If anything fails nothing is written.
func (r *articleRepository) AppendValidation(ctx context.Context, articleID, reviewerID uint, status models.ArticleStatus) (*models.ValidationEvent, error) {
	event := &models.ValidationEvent{
		ArticleID:  articleID,
		ReviewerID: reviewerID,
		Status:     status,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var article models.Article
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&article, articleID).Error; err != nil {
			return err
		}

		var latest []models.ValidationEvent
		if err := tx.Select("id", "created_at").
			Where("article_id = ?", articleID).
			Order("created_at desc").
			Order("id desc").
			Limit(1).
			Find(&latest).Error; err != nil {
			return err
		}
		event.CreatedAt = time.Now()
		if len(latest) > 0 && !event.CreatedAt.After(latest[0].CreatedAt) {
			event.CreatedAt = latest[0].CreatedAt
		}

		if err := tx.Create(event).Error; err != nil {
			return err
		}

		return tx.Model(&models.Article{}).
			Where("id = ?", articleID).
			Update("current_status", status).Error
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// GetValidations returns the event log, newest first.
func (r *articleRepository) GetValidations(ctx context.Context, articleID uint) ([]models.ValidationEvent, error) {
	var events []models.ValidationEvent
	err := r.db.WithContext(ctx).
		Preload("Reviewer").
		Where("article_id = ?", articleID).
		Order("created_at desc").
		Order("id desc").
		Find(&events).Error
	return events, err
}
