package store

import (
	"context"

	"blogicum/internal/models"
)

// 帖子详情下的评论固定按时间正序
const commentThreadOrder = "comments.created_at ASC, comments.id ASC"

// ListComments returns the comments of a post, oldest first, with authors.
func (s *Store) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.conn(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order(commentThreadOrder).
		Find(&comments).Error
	return comments, translate("list comments", err)
}

func (s *Store) CountComments(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error
	return count, translate("count comments", err)
}

func (s *Store) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.conn(ctx).Preload("Author").First(&comment, id).Error; err != nil {
		return nil, translate("get comment", err)
	}
	return &comment, nil
}

func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	return s.create(ctx, "create comment", comment)
}

func (s *Store) SaveComment(ctx context.Context, comment *models.Comment) error {
	return s.save(ctx, "save comment", comment)
}

func (s *Store) DeleteComment(ctx context.Context, id uint) error {
	res := s.conn(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return translate("delete comment", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
