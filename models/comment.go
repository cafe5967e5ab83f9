package models

import "time"

type Comment struct {
	ID            uint      `json:"id" gorm:"primarykey"`
	ArticleID     uint      `json:"article_id" gorm:"not null;index"`
	AuthorID      uint      `json:"author_id" gorm:"not null"`
	Author        User      `json:"author" gorm:"foreignKey:AuthorID"`
	Body          string    `json:"body" gorm:"type:text;not null"`
	PositiveVotes int       `json:"positive_votes" gorm:"not null;default:0"`
	NegativeVotes int       `json:"negative_votes" gorm:"not null;default:0"`
	CreatedAt     time.Time `json:"created_at"`
}

// CommentVote is unique per (comment, voter); the index is what enforces it.
type CommentVote struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CommentID uint      `json:"comment_id" gorm:"not null;uniqueIndex:idx_comment_votes_comment_voter,priority:1"`
	VoterID   uint      `json:"voter_id" gorm:"not null;uniqueIndex:idx_comment_votes_comment_voter,priority:2"`
	Positive  bool      `json:"positive"`
	CreatedAt time.Time `json:"created_at"`
}
