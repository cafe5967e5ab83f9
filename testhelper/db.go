// Package testhelper builds throwaway databases and fixtures for package
// tests. It is only imported from _test.go files.
package testhelper

import (
	"context"
	"fmt"
	"regexp"
	"sync/atomic"
	"testing"

	"newsroom-cms/config"
	"newsroom-cms/models"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	unsafeName = regexp.MustCompile(`[^A-Za-z0-9_]`)
	dbCounter  int64
)

// NewDB opens a private in-memory sqlite database with the full schema.
// A single connection is used, so callers must not issue queries on the
// outer handle while a transaction is open.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := fmt.Sprintf("%s_%d", unsafeName.ReplaceAllString(t.Name(), "_"), atomic.AddInt64(&dbCounter, 1))
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name)

	db, err := gorm.Open(sqlite.Open(dsn), config.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, config.RegisterModels(db))
	require.NoError(t, config.AutoMigrate(db))
	return db
}

// CreateUser inserts a user with password "password123".
func CreateUser(t *testing.T, db *gorm.DB, email string, role models.UserRole) *models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		FirstName: "Test",
		LastName:  string(role),
		Email:     email,
		Password:  string(hashed),
		Role:      role,
	}
	require.NoError(t, db.WithContext(context.Background()).Create(user).Error)
	return user
}

func CreateTag(t *testing.T, db *gorm.DB, name string) *models.Tag {
	t.Helper()

	tag := &models.Tag{Name: name}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

func ActorOf(u *models.User) models.Actor {
	return models.Actor{ID: u.ID, Role: u.Role}
}
