package services

import (
	"context"
	"time"

	"newsroom-cms/cache"
	"newsroom-cms/models"
	"newsroom-cms/repositories"
	"newsroom-cms/testhelper"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type ServiceTestSuite struct {
	suite.Suite
	ctx context.Context
	db  *gorm.DB

	articles   ArticleService
	moderation ModerationService
	tags       TagService
	comments   CommentService
	auth       AuthService
	users      UserService

	admin  *models.User
	editor *models.User
	writer *models.User
	reader *models.User
}

func (s *ServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = testhelper.NewDB(s.T())

	log := zerolog.Nop()
	feed := cache.NewNopFeedCache()

	userRepo := repositories.NewUserRepository(s.db)
	articleRepo := repositories.NewArticleRepository(s.db)
	tagRepo := repositories.NewTagRepository(s.db)
	commentRepo := repositories.NewCommentRepository(s.db)

	s.articles = NewArticleService(articleRepo, tagRepo, feed, log)
	s.moderation = NewModerationService(articleRepo, feed, log)
	s.tags = NewTagService(tagRepo, feed, log)
	s.comments = NewCommentService(commentRepo, articleRepo, log)
	s.auth = NewAuthService(userRepo, NewTokenManager("test-secret", time.Hour))
	s.users = NewUserService(userRepo)

	s.admin = testhelper.CreateUser(s.T(), s.db, "admin@example.com", models.RoleAdmin)
	s.editor = testhelper.CreateUser(s.T(), s.db, "editor@example.com", models.RoleEditor)
	s.writer = testhelper.CreateUser(s.T(), s.db, "writer@example.com", models.RoleWriter)
	s.reader = testhelper.CreateUser(s.T(), s.db, "reader@example.com", models.RoleReader)
}

func (s *ServiceTestSuite) submit(title string, tagIDs ...uint) *models.Article {
	article, err := s.articles.SubmitArticle(s.ctx, testhelper.ActorOf(s.writer), models.CreateArticleRequest{
		Title:    title,
		Subtitle: "subtitle",
		Body:     "# Heading\n\nbody text",
		ImageURL: "http://localhost:8080/images/1_a.png",
		TagIDs:   tagIDs,
	})
	s.Require().NoError(err)
	return article
}

func (s *ServiceTestSuite) publicIDs(params models.ArticleListParams) []uint {
	articles, _, err := s.articles.GetPublicArticles(s.ctx, params)
	s.Require().NoError(err)

	ids := make([]uint, 0, len(articles))
	for _, a := range articles {
		ids = append(ids, a.ID)
	}
	return ids
}
