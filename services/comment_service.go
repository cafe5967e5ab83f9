package services

import (
	"context"
	"strings"

	"newsroom-cms/models"
	"newsroom-cms/repositories"

	"github.com/rs/zerolog"
)

type CommentService interface {
	AddComment(ctx context.Context, actor models.Actor, articleID uint, body string) (*models.Comment, error)
	GetComments(ctx context.Context, articleID uint) ([]models.Comment, error)
	Vote(ctx context.Context, actor models.Actor, commentID uint, positive bool) (*models.Comment, error)
	DeleteComment(ctx context.Context, actor models.Actor, commentID uint) error
}

type commentService struct {
	commentRepo repositories.CommentRepository
	articleRepo repositories.ArticleRepository
	log         zerolog.Logger
}

func NewCommentService(commentRepo repositories.CommentRepository, articleRepo repositories.ArticleRepository, log zerolog.Logger) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		articleRepo: articleRepo,
		log:         log.With().Str("component", "comments").Logger(),
	}
}

// AddComment appends a comment to an approved article. Comments are never
// edited.
func (s *commentService) AddComment(ctx context.Context, actor models.Actor, articleID uint, body string) (*models.Comment, error) {
	if actor.IsAnonymous() {
		return nil, models.ErrorUnauthorized{Message: "authentication required"}
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, models.ErrorValidation{Field: "body", Message: "is required"}
	}

	if err := s.requirePublished(ctx, articleID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ArticleID: articleID,
		AuthorID:  actor.ID,
		Body:      body,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, storeError(err, "comment not found")
	}

	return s.load(ctx, comment.ID)
}

func (s *commentService) GetComments(ctx context.Context, articleID uint) ([]models.Comment, error) {
	if err := s.requirePublished(ctx, articleID); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.GetByArticle(ctx, articleID)
	if err != nil {
		return nil, storeError(err, "comment not found")
	}
	return comments, nil
}

// Vote records one vote per (comment, voter). A second vote by the same
// user is rejected and leaves the counters untouched.
func (s *commentService) Vote(ctx context.Context, actor models.Actor, commentID uint, positive bool) (*models.Comment, error) {
	if actor.IsAnonymous() {
		return nil, models.ErrorUnauthorized{Message: "authentication required"}
	}
	if _, err := s.load(ctx, commentID); err != nil {
		return nil, err
	}

	inserted, err := s.commentRepo.AddVote(ctx, &models.CommentVote{
		CommentID: commentID,
		VoterID:   actor.ID,
		Positive:  positive,
	})
	if err != nil {
		return nil, storeError(err, "comment not found")
	}
	if !inserted {
		return nil, models.ErrDuplicateVote
	}

	return s.load(ctx, commentID)
}

// DeleteComment hard-deletes the comment and its votes. Only the comment's
// author or an admin may do it.
func (s *commentService) DeleteComment(ctx context.Context, actor models.Actor, commentID uint) error {
	if actor.IsAnonymous() {
		return models.ErrorUnauthorized{Message: "authentication required"}
	}

	comment, err := s.load(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != actor.ID && actor.Role != models.RoleAdmin {
		return models.ErrorForbidden{Message: "only the author or an admin may delete this comment"}
	}

	if err := s.commentRepo.DeleteWithVotes(ctx, commentID); err != nil {
		return storeError(err, "comment not found")
	}

	s.log.Info().Uint("comment_id", commentID).Uint("actor_id", actor.ID).Msg("Comment deleted")
	return nil
}

func (s *commentService) load(ctx context.Context, id uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "comment not found")
	}
	return comment, nil
}

func (s *commentService) requirePublished(ctx context.Context, articleID uint) error {
	article, err := s.articleRepo.GetByID(ctx, articleID)
	if err != nil {
		return storeError(err, "article not found")
	}
	if article.CurrentStatus != models.StatusApproved {
		return models.ErrorNotFound{Message: "article not found"}
	}
	return nil
}
