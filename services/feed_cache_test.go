package services

import (
	"testing"
	"time"

	"newsroom-cms/cache"
	"newsroom-cms/models"
	"newsroom-cms/repositories"
	"newsroom-cms/testhelper"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

// CachedFeedTestSuite runs the public read paths through a redis feed cache.
type CachedFeedTestSuite struct {
	ServiceTestSuite
}

func TestCachedFeedSuite(t *testing.T) {
	suite.Run(t, new(CachedFeedTestSuite))
}

func (s *CachedFeedTestSuite) SetupTest() {
	s.ServiceTestSuite.SetupTest()

	mr := miniredis.RunT(s.T())
	client, err := cache.NewRedisClient(s.ctx, mr.Addr(), "", 0)
	s.Require().NoError(err)
	s.T().Cleanup(func() { client.Close() })

	feed := cache.NewRedisFeedCache(client, time.Minute)
	log := zerolog.Nop()
	articleRepo := repositories.NewArticleRepository(s.db)
	tagRepo := repositories.NewTagRepository(s.db)

	s.articles = NewArticleService(articleRepo, tagRepo, feed, log)
	s.moderation = NewModerationService(articleRepo, feed, log)
	s.tags = NewTagService(tagRepo, feed, log)
}

func (s *CachedFeedTestSuite) trendingNames() []string {
	trending, err := s.tags.GetTrending(s.ctx, 0)
	s.Require().NoError(err)

	names := make([]string, 0, len(trending))
	for _, t := range trending {
		names = append(names, t.Tag.Name)
	}
	return names
}

func (s *CachedFeedTestSuite) TestApprovalShowsUpInCachedListing() {
	golang := testhelper.CreateTag(s.T(), s.db, "golang")
	article := s.submit("Cached", golang.ID)

	s.Empty(s.publicIDs(models.ArticleListParams{}))
	s.Empty(s.trendingNames())

	_, err := s.moderation.Approve(s.ctx, testhelper.ActorOf(s.editor), article.ID)
	s.Require().NoError(err)

	s.Equal([]uint{article.ID}, s.publicIDs(models.ArticleListParams{}))
	s.Equal([]string{"golang"}, s.trendingNames())

	_, err = s.moderation.Reject(s.ctx, testhelper.ActorOf(s.editor), article.ID)
	s.Require().NoError(err)

	s.Empty(s.publicIDs(models.ArticleListParams{}))
	s.Empty(s.trendingNames())
}

func (s *CachedFeedTestSuite) TestListingIsServedFromCache() {
	article := s.submit("Served")
	_, err := s.moderation.Approve(s.ctx, testhelper.ActorOf(s.editor), article.ID)
	s.Require().NoError(err)
	s.Equal([]uint{article.ID}, s.publicIDs(models.ArticleListParams{}))

	// A write that skips the services leaves the cached page in place.
	s.Require().NoError(s.db.Model(&models.Article{}).Where("id = ?", article.ID).
		Update("current_status", models.StatusRejected).Error)
	s.Equal([]uint{article.ID}, s.publicIDs(models.ArticleListParams{}))

	s.Require().NoError(s.articles.DeleteArticle(s.ctx, testhelper.ActorOf(s.admin), article.ID))
	s.Empty(s.publicIDs(models.ArticleListParams{}))
}

func (s *CachedFeedTestSuite) TestTagChangesInvalidateFilteredListing() {
	golang := testhelper.CreateTag(s.T(), s.db, "golang")
	article := s.submit("Retagged")
	_, err := s.moderation.Approve(s.ctx, testhelper.ActorOf(s.editor), article.ID)
	s.Require().NoError(err)

	s.Empty(s.publicIDs(models.ArticleListParams{TagID: golang.ID}))

	_, err = s.articles.SetTags(s.ctx, testhelper.ActorOf(s.admin), article.ID, []uint{golang.ID})
	s.Require().NoError(err)

	s.Equal([]uint{article.ID}, s.publicIDs(models.ArticleListParams{TagID: golang.ID}))
	s.Equal([]string{"golang"}, s.trendingNames())
}
