package repositories

import (
	"context"

	"newsroom-cms/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	GetByArticle(ctx context.Context, articleID uint) ([]models.Comment, error)
	AddVote(ctx context.Context, vote *models.CommentVote) (bool, error)
	DeleteWithVotes(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).Preload("Author").First(&comment, id).Error
	return &comment, err
}

func (r *commentRepository) GetByArticle(ctx context.Context, articleID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("article_id = ?", articleID).
		Order("created_at desc").
		Order("id desc").
		Find(&comments).Error
	return comments, err
}

// AddVote inserts the vote and bumps the matching counter in one transaction.
// It returns false, without touching the counter, when the voter already has
// a vote on that comment; the unique index decides, not a prior read.
func (r *commentRepository) AddVote(ctx context.Context, vote *models.CommentVote) (bool, error) {
	inserted := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(vote)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		column := "negative_votes"
		if vote.Positive {
			column = "positive_votes"
		}
		upd := tx.Model(&models.Comment{}).
			Where("id = ?", vote.CommentID).
			UpdateColumn(column, gorm.Expr(column+" + ?", 1))
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		inserted = true
		return nil
	})

	return inserted, err
}

func (r *commentRepository) DeleteWithVotes(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", id).Delete(&models.CommentVote{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Comment{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
