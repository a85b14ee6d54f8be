package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"blogicum/internal/models"
	"blogicum/internal/policy"
	"blogicum/internal/store"
)

type CommentService struct {
	store *store.Store
}

func NewCommentService(st *store.Store) *CommentService {
	return &CommentService{store: st}
}

// AddComment posts text under postID as viewer. The post only has to exist.
func (s *CommentService) AddComment(ctx context.Context, viewer *models.User, postID uint, text string, now time.Time) (*models.Comment, error) {
	if viewer == nil {
		return nil, ErrAuthRequired
	}
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, notFound(err, "post", postID)
	}

	text, err = validateCommentText(text)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:    post.ID,
		AuthorID:  viewer.ID,
		Author:    *viewer,
		Text:      text,
		CreatedAt: now.UTC(),
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "comment added", "comment_id", comment.ID, "post_id", post.ID, "author_id", viewer.ID)
	return comment, nil
}

// CommentForEdit loads a comment of postID that viewer is about to change.
// A comment that belongs to another post is not found.
func (s *CommentService) CommentForEdit(ctx context.Context, viewer *models.User, postID, commentID uint) (*models.Comment, error) {
	if viewer == nil {
		return nil, ErrAuthRequired
	}
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return nil, notFound(err, "comment", commentID)
	}
	if comment.PostID != postID {
		return nil, NewNotFoundError("comment", commentID)
	}
	if !policy.CanMutateComment(comment, viewer) {
		return nil, &PermissionDeniedError{Redirect: policy.DeniedRedirect(comment)}
	}
	return comment, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, viewer *models.User, postID, commentID uint, text string) (*models.Comment, error) {
	comment, err := s.CommentForEdit(ctx, viewer, postID, commentID)
	if err != nil {
		return nil, err
	}

	text, err = validateCommentText(text)
	if err != nil {
		return nil, err
	}
	comment.Text = text
	if err := s.store.SaveComment(ctx, comment); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "comment updated", "comment_id", comment.ID)
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, viewer *models.User, postID, commentID uint) error {
	comment, err := s.CommentForEdit(ctx, viewer, postID, commentID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteComment(ctx, comment.ID); err != nil {
		return notFound(err, "comment", commentID)
	}

	slog.InfoContext(ctx, "comment deleted", "comment_id", comment.ID, "post_id", postID)
	return nil
}

func validateCommentText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &ValidationError{Fields: map[string]string{"text": "This field is required."}}
	}
	return text, nil
}
