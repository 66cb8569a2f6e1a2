package models

import "time"

// Answer - an answer to a question post
type Answer struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    int64     `gorm:"index" json:"postId"`
	AuthorID  int64     `gorm:"index" json:"authorId"`
	Content   string    `gorm:"type:text" json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Answer) TableName() string {
	return "answers"
}

// Comment - a comment on a post, on an answer (AnswerID set), or a reply to
// another comment (ParentID set). PostID is always set so responder
// aggregation can attribute comments at any depth to their post; only rows
// with ParentID and AnswerID both NULL count as top-level post comments.
type Comment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    int64     `gorm:"index" json:"postId"`
	AnswerID  *int64    `gorm:"index" json:"answerId,omitempty"`
	ParentID  *int64    `gorm:"index" json:"parentId,omitempty"`
	AuthorID  int64     `gorm:"index" json:"authorId"`
	Content   string    `gorm:"type:text" json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Comment) TableName() string {
	return "comments"
}
