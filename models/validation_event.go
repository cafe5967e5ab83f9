package models

import "time"

// ValidationEvent is one reviewer decision on an article. Rows are only ever
// inserted; the article's current status is the status of its latest row.
type ValidationEvent struct {
	ID         uint          `json:"id" gorm:"primarykey"`
	ArticleID  uint          `json:"article_id" gorm:"not null;index:idx_validation_article_created,priority:1"`
	ReviewerID uint          `json:"reviewer_id" gorm:"not null"`
	Reviewer   *User         `json:"reviewer,omitempty" gorm:"foreignKey:ReviewerID"`
	Status     ArticleStatus `json:"status" gorm:"type:varchar(16);not null"`
	CreatedAt  time.Time     `json:"created_at" gorm:"index:idx_validation_article_created,priority:2"`
}

// EffectiveStatus reduces an event log to the article's publication status:
// the event with the latest CreatedAt wins, and on equal timestamps the one
// inserted last (higher ID) wins. An empty log is pending.
func EffectiveStatus(events []ValidationEvent) ArticleStatus {
	if len(events) == 0 {
		return StatusPending
	}

	latest := events[0]
	for _, e := range events[1:] {
		if e.CreatedAt.After(latest.CreatedAt) ||
			(e.CreatedAt.Equal(latest.CreatedAt) && e.ID > latest.ID) {
			latest = e
		}
	}
	return latest.Status
}
