package services

import (
	"testing"

	"newsroom-cms/models"
	"newsroom-cms/testhelper"

	"github.com/stretchr/testify/suite"
)

type TagTestSuite struct {
	ServiceTestSuite
}

func TestTagSuite(t *testing.T) {
	suite.Run(t, new(TagTestSuite))
}

func (s *TagTestSuite) tagNames(article *models.Article) []string {
	names := make([]string, 0, len(article.Tags))
	for _, t := range article.Tags {
		names = append(names, t.Name)
	}
	return names
}

func (s *TagTestSuite) TestCreateTagTrimsAndRejectsDuplicates() {
	admin := testhelper.ActorOf(s.admin)

	tag, err := s.tags.CreateTag(s.ctx, admin, models.TagRequest{Name: "  politics "})
	s.Require().NoError(err)
	s.Equal("politics", tag.Name)

	_, err = s.tags.CreateTag(s.ctx, admin, models.TagRequest{Name: "politics"})
	s.True(models.IsKind[models.ErrorConflict](err))

	_, err = s.tags.CreateTag(s.ctx, admin, models.TagRequest{Name: "   "})
	s.True(models.IsKind[models.ErrorValidation](err))

	_, err = s.tags.CreateTag(s.ctx, testhelper.ActorOf(s.editor), models.TagRequest{Name: "sports"})
	s.True(models.IsKind[models.ErrorForbidden](err))
}

func (s *TagTestSuite) TestRenameTag() {
	admin := testhelper.ActorOf(s.admin)
	a := testhelper.CreateTag(s.T(), s.db, "a")
	testhelper.CreateTag(s.T(), s.db, "b")

	renamed, err := s.tags.RenameTag(s.ctx, admin, a.ID, models.TagRequest{Name: "economy"})
	s.Require().NoError(err)
	s.Equal("economy", renamed.Name)

	_, err = s.tags.RenameTag(s.ctx, admin, a.ID, models.TagRequest{Name: "b"})
	s.True(models.IsKind[models.ErrorConflict](err))

	_, err = s.tags.RenameTag(s.ctx, admin, 999, models.TagRequest{Name: "ghost"})
	s.True(models.IsKind[models.ErrorNotFound](err))
}

func (s *TagTestSuite) TestSetTagsReplacesWholeSet() {
	writer := testhelper.ActorOf(s.writer)
	t1 := testhelper.CreateTag(s.T(), s.db, "t1")
	t2 := testhelper.CreateTag(s.T(), s.db, "t2")
	t3 := testhelper.CreateTag(s.T(), s.db, "t3")

	article := s.submit("Tagged", t1.ID, t3.ID)
	s.Equal([]string{"t1", "t3"}, s.tagNames(article))

	article, err := s.articles.SetTags(s.ctx, writer, article.ID, []uint{t1.ID, t2.ID, t2.ID})
	s.Require().NoError(err)
	s.Equal([]string{"t1", "t2"}, s.tagNames(article))

	article, err = s.articles.SetTags(s.ctx, writer, article.ID, []uint{})
	s.Require().NoError(err)
	s.Empty(article.Tags)

	var links int64
	s.Require().NoError(s.db.Model(&models.ArticleTag{}).Where("article_id = ?", article.ID).Count(&links).Error)
	s.Zero(links)
}

func (s *TagTestSuite) TestSetTagsUnknownTagWritesNothing() {
	t1 := testhelper.CreateTag(s.T(), s.db, "t1")
	article := s.submit("Tagged", t1.ID)

	_, err := s.articles.SetTags(s.ctx, testhelper.ActorOf(s.writer), article.ID, []uint{t1.ID, 777})
	s.True(models.IsKind[models.ErrorValidation](err))

	stored, err := s.articles.GetArticle(s.ctx, testhelper.ActorOf(s.writer), article.ID)
	s.Require().NoError(err)
	s.Equal([]string{"t1"}, s.tagNames(stored))
}

func (s *TagTestSuite) TestSetTagsRequiresEditRights() {
	article := s.submit("Locked")

	_, err := s.articles.SetTags(s.ctx, testhelper.ActorOf(s.reader), article.ID, []uint{})
	s.True(models.IsKind[models.ErrorForbidden](err))

	_, err = s.moderation.Approve(s.ctx, testhelper.ActorOf(s.editor), article.ID)
	s.Require().NoError(err)

	_, err = s.articles.SetTags(s.ctx, testhelper.ActorOf(s.writer), article.ID, []uint{})
	s.True(models.IsKind[models.ErrorForbidden](err))

	_, err = s.articles.SetTags(s.ctx, testhelper.ActorOf(s.admin), article.ID, []uint{})
	s.NoError(err)
}

func (s *TagTestSuite) TestDeleteTagRemovesLinks() {
	t1 := testhelper.CreateTag(s.T(), s.db, "t1")
	article := s.submit("Tagged", t1.ID)

	s.Require().NoError(s.tags.DeleteTag(s.ctx, testhelper.ActorOf(s.admin), t1.ID))

	stored, err := s.articles.GetArticle(s.ctx, testhelper.ActorOf(s.writer), article.ID)
	s.Require().NoError(err)
	s.Empty(stored.Tags)

	_, err = s.tags.GetTag(s.ctx, t1.ID)
	s.True(models.IsKind[models.ErrorNotFound](err))
}

func (s *TagTestSuite) TestTrendingCountsApprovedArticles() {
	editor := testhelper.ActorOf(s.editor)
	golang := testhelper.CreateTag(s.T(), s.db, "golang")
	api := testhelper.CreateTag(s.T(), s.db, "api")
	draft := testhelper.CreateTag(s.T(), s.db, "draft")

	a1 := s.submit("One", golang.ID, api.ID)
	a2 := s.submit("Two", golang.ID)
	s.submit("Three", draft.ID)

	for _, id := range []uint{a1.ID, a2.ID} {
		_, err := s.moderation.Approve(s.ctx, editor, id)
		s.Require().NoError(err)
	}

	trending, err := s.tags.GetTrending(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(trending, 2)
	s.Equal("golang", trending[0].Tag.Name)
	s.EqualValues(2, trending[0].Count)
	s.Equal("api", trending[1].Tag.Name)
	s.EqualValues(1, trending[1].Count)
}

func (s *TagTestSuite) TestPublicListFiltersByTag() {
	editor := testhelper.ActorOf(s.editor)
	golang := testhelper.CreateTag(s.T(), s.db, "golang")

	tagged := s.submit("Tagged", golang.ID)
	untagged := s.submit("Untagged")
	for _, id := range []uint{tagged.ID, untagged.ID} {
		_, err := s.moderation.Approve(s.ctx, editor, id)
		s.Require().NoError(err)
	}

	s.Equal([]uint{tagged.ID}, s.publicIDs(models.ArticleListParams{TagID: golang.ID}))
	s.Len(s.publicIDs(models.ArticleListParams{}), 2)
}
