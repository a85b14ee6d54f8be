package store

import (
	"context"
	"time"

	"blogicum/internal/models"
	"blogicum/internal/policy"

	"gorm.io/gorm"
)

// PostFilter is a resolved listing scope. Zero fields do not filter.
type PostFilter struct {
	CategoryID uint
	AuthorID   uint

	// VisibleAt restricts the result to posts publicly visible at that time.
	// Nil disables the visibility filter (an author reading their own profile).
	VisibleAt *time.Time
}

func (f PostFilter) scope(tx *gorm.DB) *gorm.DB {
	if f.VisibleAt != nil {
		tx = policy.VisibleScope(*f.VisibleAt)(tx)
	}
	if f.CategoryID != 0 {
		tx = tx.Where("posts.category_id = ?", f.CategoryID)
	}
	if f.AuthorID != 0 {
		tx = tx.Where("posts.author_id = ?", f.AuthorID)
	}
	return tx
}

// 列表默认排序：发布时间倒序，id 保证分页稳定
const postOrder = "posts.pub_date DESC, posts.id DESC"

// CountPosts counts the posts matching f.
func (s *Store) CountPosts(ctx context.Context, f PostFilter) (int64, error) {
	var total int64
	err := s.conn(ctx).Model(&models.Post{}).Scopes(f.scope).Count(&total).Error
	return total, translate("count posts", err)
}

// ListPosts returns one window of the posts matching f, newest first, with
// author, category, location and comment count filled in.
func (s *Store) ListPosts(ctx context.Context, f PostFilter, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := s.conn(ctx).
		Model(&models.Post{}).
		Scopes(f.scope).
		Preload("Author").Preload("Category").Preload("Location").
		Order(postOrder).
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, translate("list posts", err)
	}

	if err := s.fillCommentCounts(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// fillCommentCounts 批量填充帖子的评论数量
func (s *Store) fillCommentCounts(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countResult struct {
		PostID uint
		Count  int
	}
	var results []countResult
	err := s.conn(ctx).Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&results).Error
	if err != nil {
		return translate("count comments", err)
	}

	countMap := make(map[uint]int, len(results))
	for _, r := range results {
		countMap[r.PostID] = r.Count
	}
	for i := range posts {
		posts[i].CommentCount = countMap[posts[i].ID]
	}
	return nil
}

// GetPost loads a post with its author, category and location.
func (s *Store) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := s.conn(ctx).
		Preload("Author").Preload("Category").Preload("Location").
		First(&post, id).Error
	if err != nil {
		return nil, translate("get post", err)
	}
	return &post, nil
}

func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	return s.create(ctx, "create post", post)
}

func (s *Store) SavePost(ctx context.Context, post *models.Post) error {
	return s.save(ctx, "save post", post)
}

// DeletePost deletes a post and its comments. A missing post gives ErrNotFound.
func (s *Store) DeletePost(ctx context.Context, id uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return translate("delete post comments", err)
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return translate("delete post", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
