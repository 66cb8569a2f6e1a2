package services

import (
	"context"
	"testing"

	"vkconnect/db"
	"vkconnect/models"

	"github.com/stretchr/testify/require"
)

func TestCreateAnswerOnlyOnQuestions(t *testing.T) {
	setupPostsTestDB(t)
	author := createTestUser(t, nil)
	responder := createTestUser(t, nil)

	question := createTestPost(t, func(p *models.Post) { p.AuthorID = author.ID })
	share := createTestPost(t, func(p *models.Post) {
		p.AuthorID = author.ID
		p.Type = models.PostTypeShare
	})

	service := NewAnswerService()

	answer, err := service.CreateAnswer(context.Background(), responder.ID, question.ID, "try the immigration office")
	require.NoError(t, err)
	require.Equal(t, question.ID, answer.PostID)

	_, err = service.CreateAnswer(context.Background(), responder.ID, share.ID, "nope")
	require.ErrorIs(t, err, ErrNotQuestionPost)

	_, err = service.CreateAnswer(context.Background(), responder.ID, share.ID+999, "nope")
	require.ErrorIs(t, err, ErrPostNotFound)
}

func TestCreateCommentAlwaysRecordsPost(t *testing.T) {
	setupPostsTestDB(t)
	author := createTestUser(t, nil)
	responder := createTestUser(t, nil)

	post := createTestPost(t, func(p *models.Post) { p.AuthorID = author.ID })
	otherPost := createTestPost(t, func(p *models.Post) { p.AuthorID = author.ID })

	service := NewAnswerService()
	answer, err := service.CreateAnswer(context.Background(), responder.ID, post.ID, "an answer")
	require.NoError(t, err)

	// Comment on the answer still carries the post id
	comment, err := service.CreateComment(context.Background(), author.ID, post.ID, &answer.ID, nil, "thanks")
	require.NoError(t, err)
	require.Equal(t, post.ID, comment.PostID)
	require.NotNil(t, comment.AnswerID)

	// Answer must belong to the addressed post
	_, err = service.CreateComment(context.Background(), author.ID, otherPost.ID, &answer.ID, nil, "thanks")
	require.ErrorIs(t, err, ErrAnswerPostsDiffer)
}

func TestAdoptAnswer(t *testing.T) {
	setupPostsTestDB(t)
	author := createTestUser(t, nil)
	responder := createTestUser(t, nil)

	post := createTestPost(t, func(p *models.Post) { p.AuthorID = author.ID })
	service := NewAnswerService()

	answer, err := service.CreateAnswer(context.Background(), responder.ID, post.ID, "the fix")
	require.NoError(t, err)

	// Only the post author can adopt
	require.ErrorIs(t, service.AdoptAnswer(context.Background(), responder.ID, post.ID, answer.ID), ErrNotPostAuthor)

	require.NoError(t, service.AdoptAnswer(context.Background(), author.ID, post.ID, answer.ID))

	var reloaded models.Post
	require.NoError(t, db.ORM.First(&reloaded, post.ID).Error)
	require.True(t, reloaded.IsResolved)
	require.NotNil(t, reloaded.AdoptedAnswerID)
	require.Equal(t, answer.ID, *reloaded.AdoptedAnswerID)

	require.ErrorIs(t, service.AdoptAnswer(context.Background(), author.ID, post.ID, answer.ID+999), ErrAnswerNotFound)
}
