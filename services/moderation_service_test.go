package services

import (
	"errors"
	"sync/atomic"
	"testing"

	"newsroom-cms/models"
	"newsroom-cms/testhelper"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type ModerationTestSuite struct {
	ServiceTestSuite
}

func TestModerationSuite(t *testing.T) {
	suite.Run(t, new(ModerationTestSuite))
}

func (s *ModerationTestSuite) TestSubmitStartsPending() {
	article := s.submit("Fresh news")

	s.Equal(models.StatusPending, article.CurrentStatus)
	s.Equal(s.writer.ID, article.AuthorID)

	events, err := s.moderation.History(s.ctx, testhelper.ActorOf(s.writer), article.ID)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(models.StatusPending, events[0].Status)
	s.Equal(s.writer.ID, events[0].ReviewerID)

	status, err := s.moderation.EffectiveStatus(s.ctx, article.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, status)

	s.NotContains(s.publicIDs(models.ArticleListParams{}), article.ID)
}

func (s *ModerationTestSuite) TestReviewLifecycle() {
	article := s.submit("Lifecycle")
	editor := testhelper.ActorOf(s.editor)

	_, err := s.moderation.Reject(s.ctx, editor, article.ID)
	s.Require().NoError(err)
	s.NotContains(s.publicIDs(models.ArticleListParams{}), article.ID)

	_, err = s.moderation.Approve(s.ctx, editor, article.ID)
	s.Require().NoError(err)
	s.Contains(s.publicIDs(models.ArticleListParams{}), article.ID)

	_, err = s.moderation.Approve(s.ctx, editor, article.ID)
	s.Require().NoError(err)

	status, err := s.moderation.EffectiveStatus(s.ctx, article.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, status)

	events, err := s.moderation.History(s.ctx, editor, article.ID)
	s.Require().NoError(err)
	s.Require().Len(events, 4)

	approved := 0
	for _, e := range events {
		if e.Status == models.StatusApproved {
			approved++
		}
	}
	s.Equal(2, approved)
	s.Equal(models.StatusApproved, events[0].Status)
	s.Equal(models.StatusPending, events[len(events)-1].Status)
}

func (s *ModerationTestSuite) TestStatusColumnMatchesEventLog() {
	article := s.submit("Consistency")
	editor := testhelper.ActorOf(s.editor)

	steps := []func() (*models.ValidationEvent, error){
		func() (*models.ValidationEvent, error) { return s.moderation.Approve(s.ctx, editor, article.ID) },
		func() (*models.ValidationEvent, error) { return s.moderation.Reject(s.ctx, editor, article.ID) },
		func() (*models.ValidationEvent, error) { return s.moderation.Approve(s.ctx, editor, article.ID) },
		func() (*models.ValidationEvent, error) { return s.moderation.Reject(s.ctx, editor, article.ID) },
	}
	for _, step := range steps {
		_, err := step()
		s.Require().NoError(err)

		stored, err := s.articles.GetArticle(s.ctx, editor, article.ID)
		s.Require().NoError(err)
		effective, err := s.moderation.EffectiveStatus(s.ctx, article.ID)
		s.Require().NoError(err)
		s.Equal(effective, stored.CurrentStatus)
	}
}

func (s *ModerationTestSuite) TestPublicFeedOnlyApproved() {
	editor := testhelper.ActorOf(s.editor)
	pending := s.submit("Pending")
	rejected := s.submit("Rejected")
	approved := s.submit("Approved")

	_, err := s.moderation.Reject(s.ctx, editor, rejected.ID)
	s.Require().NoError(err)
	_, err = s.moderation.Approve(s.ctx, editor, approved.ID)
	s.Require().NoError(err)

	ids := s.publicIDs(models.ArticleListParams{})
	s.Equal([]uint{approved.ID}, ids)

	_, err = s.articles.GetPublicArticle(s.ctx, pending.ID)
	s.True(models.IsKind[models.ErrorNotFound](err))
	_, err = s.articles.GetPublicArticle(s.ctx, rejected.ID)
	s.True(models.IsKind[models.ErrorNotFound](err))

	public, err := s.articles.GetPublicArticle(s.ctx, approved.ID)
	s.Require().NoError(err)
	s.Contains(public.BodyHTML, "<h1>Heading</h1>")
}

func (s *ModerationTestSuite) TestRoleChecks() {
	_, err := s.articles.SubmitArticle(s.ctx, testhelper.ActorOf(s.reader), models.CreateArticleRequest{
		Title: "t", Subtitle: "s", Body: "b", ImageURL: "i",
	})
	s.True(models.IsKind[models.ErrorForbidden](err))

	_, err = s.articles.SubmitArticle(s.ctx, models.Anonymous, models.CreateArticleRequest{
		Title: "t", Subtitle: "s", Body: "b", ImageURL: "i",
	})
	s.True(models.IsKind[models.ErrorUnauthorized](err))

	article := s.submit("Needs review")
	_, err = s.moderation.Approve(s.ctx, testhelper.ActorOf(s.writer), article.ID)
	s.True(models.IsKind[models.ErrorForbidden](err))

	_, err = s.moderation.Approve(s.ctx, testhelper.ActorOf(s.admin), article.ID)
	s.NoError(err)
}

func (s *ModerationTestSuite) TestSubmitValidation() {
	_, err := s.articles.SubmitArticle(s.ctx, testhelper.ActorOf(s.writer), models.CreateArticleRequest{
		Title: "  ", Subtitle: "s", Body: "b", ImageURL: "i",
	})
	s.True(models.IsKind[models.ErrorValidation](err))

	_, err = s.articles.SubmitArticle(s.ctx, testhelper.ActorOf(s.writer), models.CreateArticleRequest{
		Title: "t", Subtitle: "s", Body: "b", ImageURL: "i", TagIDs: []uint{999},
	})
	s.True(models.IsKind[models.ErrorValidation](err))

	var count int64
	s.Require().NoError(s.db.Model(&models.Article{}).Count(&count).Error)
	s.Zero(count)
}

func (s *ModerationTestSuite) TestReviewUnknownArticle() {
	_, err := s.moderation.Approve(s.ctx, testhelper.ActorOf(s.editor), 4242)
	s.True(models.IsKind[models.ErrorNotFound](err))
}

func (s *ModerationTestSuite) TestFailedReviewLeavesStatusUnchanged() {
	article := s.submit("Atomic")

	var failing atomic.Bool
	err := s.db.Callback().Create().Before("gorm:create").Register("test:fail_validation_events", func(tx *gorm.DB) {
		if failing.Load() && tx.Statement.Table == "validation_events" {
			tx.AddError(errors.New("injected insert failure"))
		}
	})
	s.Require().NoError(err)

	failing.Store(true)
	_, err = s.moderation.Approve(s.ctx, testhelper.ActorOf(s.editor), article.ID)
	s.Require().Error(err)
	s.True(models.IsKind[models.ErrorInternalServer](err))
	failing.Store(false)

	status, err := s.moderation.EffectiveStatus(s.ctx, article.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, status)

	stored, err := s.articles.GetArticle(s.ctx, testhelper.ActorOf(s.editor), article.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, stored.CurrentStatus)

	s.NotContains(s.publicIDs(models.ArticleListParams{}), article.ID)
}

func (s *ModerationTestSuite) TestHistoryVisibility() {
	article := s.submit("Private history")

	_, err := s.moderation.History(s.ctx, testhelper.ActorOf(s.reader), article.ID)
	s.True(models.IsKind[models.ErrorForbidden](err))

	_, err = s.moderation.History(s.ctx, testhelper.ActorOf(s.editor), article.ID)
	s.NoError(err)
}
