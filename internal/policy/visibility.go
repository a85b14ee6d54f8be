// Package policy decides who may read and who may change posts and comments.
//
// Every function here is pure: the caller passes the viewer and the
// timestamp taken once for the current request. A nil viewer is anonymous.
package policy

import (
	"time"

	"blogicum/internal/models"

	"gorm.io/gorm"
)

// IsAuthor reports whether viewer is the user with the given id.
func IsAuthor(viewer *models.User, authorID uint) bool {
	return viewer != nil && viewer.ID != 0 && viewer.ID == authorID
}

// IsPubliclyVisible is the non-author branch of the visibility rule:
// published, pub_date not in the future, and no unpublished category.
// The post's Category must be loaded when CategoryID is set.
func IsPubliclyVisible(post *models.Post, now time.Time) bool {
	if !post.IsPublished {
		return false
	}
	if post.PubDate.After(now) {
		return false
	}
	if post.CategoryID != nil && (post.Category == nil || !post.Category.IsPublished) {
		return false
	}
	return true
}

// IsPostVisible reports whether viewer may read post at time now.
// Authors always see their own posts.
func IsPostVisible(post *models.Post, viewer *models.User, now time.Time) bool {
	if IsAuthor(viewer, post.AuthorID) {
		return true
	}
	return IsPubliclyVisible(post, now)
}

// VisibleScope is IsPubliclyVisible as a gorm scope over the posts table.
func VisibleScope(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.
			Joins("LEFT JOIN categories ON categories.id = posts.category_id").
			Where("posts.is_published = ?", true).
			Where("posts.pub_date <= ?", now).
			Where("(posts.category_id IS NULL OR categories.is_published = ?)", true)
	}
}
