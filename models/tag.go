package models

import (
	"time"
)

type Tag struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ArticleTag struct {
	ArticleID uint      `json:"article_id" gorm:"primaryKey"`
	TagID     uint      `json:"tag_id" gorm:"primaryKey;index"`
	CreatedAt time.Time `json:"created_at"`
}

// TrendingTag is a tag together with how many approved articles carry it.
type TrendingTag struct {
	Tag   Tag   `json:"tag"`
	Count int64 `json:"count"`
}
