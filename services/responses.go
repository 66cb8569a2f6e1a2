package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vkconnect/db"
	"vkconnect/models"

	"gorm.io/gorm"
)

var (
	ErrAnswerNotFound    = errors.New("answer not found")
	ErrNotQuestionPost   = errors.New("post is not a question")
	ErrAnswerPostsDiffer = errors.New("answer does not belong to post")
)

type AnswerService struct{}

func NewAnswerService() *AnswerService {
	return &AnswerService{}
}

// CreateAnswer answers a question post and notifies its author over
// WebSocket if connected.
func (as *AnswerService) CreateAnswer(ctx context.Context, authorID, postID int64, content string) (*models.Answer, error) {
	var post models.Post
	err := db.GetReadOnlyDB(ctx).First(&post, postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	if post.Type != models.PostTypeQuestion {
		return nil, ErrNotQuestionPost
	}

	answer := &models.Answer{
		PostID:    postID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.GetWriteDB(ctx).Create(answer).Error; err != nil {
		return nil, fmt.Errorf("failed to create answer: %w", err)
	}

	if post.AuthorID != authorID {
		_ = SendWsNotify(post.AuthorID, "answer", "New answer on: "+post.Title)
	}
	return answer, nil
}

// CreateComment attaches a comment to a post, to one of its answers
// (answerID), or as a reply to another comment (parentID). PostID is always
// recorded for responder aggregation.
func (as *AnswerService) CreateComment(ctx context.Context, authorID, postID int64, answerID, parentID *int64, content string) (*models.Comment, error) {
	var post models.Post
	err := db.GetReadOnlyDB(ctx).First(&post, postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to load post: %w", err)
	}

	if answerID != nil {
		var answer models.Answer
		err := db.GetReadOnlyDB(ctx).First(&answer, *answerID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAnswerNotFound
			}
			return nil, fmt.Errorf("failed to load answer: %w", err)
		}
		if answer.PostID != postID {
			return nil, ErrAnswerPostsDiffer
		}
	}

	comment := &models.Comment{
		PostID:    postID,
		AnswerID:  answerID,
		ParentID:  parentID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := db.GetWriteDB(ctx).Create(comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

// AdoptAnswer marks an answer as adopted and resolves the question. Only the
// post author may adopt.
func (as *AnswerService) AdoptAnswer(ctx context.Context, userID, postID, answerID int64) error {
	var post models.Post
	err := db.GetWriteDB(ctx).First(&post, postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("failed to load post: %w", err)
	}
	if post.AuthorID != userID {
		return ErrNotPostAuthor
	}
	if post.Type != models.PostTypeQuestion {
		return ErrNotQuestionPost
	}

	var answer models.Answer
	err = db.GetReadOnlyDB(ctx).First(&answer, answerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAnswerNotFound
		}
		return fmt.Errorf("failed to load answer: %w", err)
	}
	if answer.PostID != postID {
		return ErrAnswerPostsDiffer
	}

	err = db.GetWriteDB(ctx).Model(&post).Updates(map[string]interface{}{
		"adopted_answer_id": answerID,
		"is_resolved":       true,
		"updated_at":        time.Now(),
	}).Error
	if err != nil {
		return fmt.Errorf("failed to adopt answer: %w", err)
	}

	if answer.AuthorID != userID {
		_ = SendWsNotify(answer.AuthorID, "adopted", "Your answer was adopted: "+post.Title)
	}
	return nil
}
