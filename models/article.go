package models

import (
	"time"
)

type ArticleStatus string

const (
	StatusPending  ArticleStatus = "pending"
	StatusApproved ArticleStatus = "approved"
	StatusRejected ArticleStatus = "rejected"
)

func (s ArticleStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type Article struct {
	ID            uint              `json:"id" gorm:"primarykey"`
	Title         string            `json:"title" gorm:"not null"`
	Subtitle      string            `json:"subtitle" gorm:"not null"`
	Body          string            `json:"body" gorm:"type:text;not null"`
	BodyHTML      string            `json:"body_html,omitempty" gorm:"-"`
	ImageURL      string            `json:"image_url" gorm:"not null"`
	AuthorID      uint              `json:"author_id" gorm:"not null;index"`
	Author        User              `json:"author" gorm:"foreignKey:AuthorID"`
	CurrentStatus ArticleStatus     `json:"status" gorm:"type:varchar(16);not null;default:'pending';index"`
	Tags          []Tag             `json:"tags" gorm:"many2many:article_tags;"`
	Validations   []ValidationEvent `json:"validations,omitempty" gorm:"foreignKey:ArticleID"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
