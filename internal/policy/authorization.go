package policy

import (
	"fmt"

	"blogicum/internal/models"
)

// CanMutatePost reports whether viewer may edit or delete post.
func CanMutatePost(post *models.Post, viewer *models.User) bool {
	return IsAuthor(viewer, post.AuthorID)
}

// CanMutateComment reports whether viewer may edit or delete comment.
func CanMutateComment(comment *models.Comment, viewer *models.User) bool {
	return IsAuthor(viewer, comment.AuthorID)
}

// PostDetailPath is the canonical URL of a post.
func PostDetailPath(postID uint) string {
	return fmt.Sprintf("/posts/%d/", postID)
}

// DeniedRedirect returns where a viewer is sent after a refused mutation:
// the detail page of the post that owns entity. Denial never renders an
// error page, the content stays readable.
func DeniedRedirect(entity any) string {
	switch e := entity.(type) {
	case *models.Post:
		return PostDetailPath(e.ID)
	case *models.Comment:
		return PostDetailPath(e.PostID)
	default:
		return "/"
	}
}
