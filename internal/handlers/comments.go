package handlers

import (
	"net/http"

	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/policy"
	"blogicum/internal/services"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// AddRedirect 评论只能通过详情页提交，GET 直接跳回详情页
func (h *CommentHandler) AddRedirect(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	c.Redirect(http.StatusFound, policy.PostDetailPath(id))
}

func (h *CommentHandler) Add(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	text := c.PostForm("text")

	_, err := h.comments.AddComment(c.Request.Context(), middleware.CurrentUser(c), id, text, middleware.RequestTime(c))
	if fields, invalid := validationErrors(err); invalid {
		Render(c, http.StatusBadRequest, "blog/comment.html", gin.H{
			"PostID": id,
			"Text":   text,
			"Errors": fields,
			"Action": c.Request.URL.Path,
		})
		return
	}
	if err != nil {
		handleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, policy.PostDetailPath(id))
}

func (h *CommentHandler) ShowEdit(c *gin.Context) {
	comment, ok := h.load(c)
	if !ok {
		return
	}
	h.render(c, http.StatusOK, comment, comment.Text, nil, false)
}

func (h *CommentHandler) Update(c *gin.Context) {
	postID, commentID, ok := commentParams(c)
	if !ok {
		return
	}
	text := c.PostForm("text")

	comment, err := h.comments.UpdateComment(c.Request.Context(), middleware.CurrentUser(c), postID, commentID, text)
	if fields, invalid := validationErrors(err); invalid {
		// 取回原评论用于重新渲染表单
		original, lerr := h.comments.CommentForEdit(c.Request.Context(), middleware.CurrentUser(c), postID, commentID)
		if lerr != nil {
			handleError(c, lerr)
			return
		}
		h.render(c, http.StatusBadRequest, original, text, fields, false)
		return
	}
	if err != nil {
		handleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, policy.PostDetailPath(comment.PostID))
}

func (h *CommentHandler) ShowDelete(c *gin.Context) {
	comment, ok := h.load(c)
	if !ok {
		return
	}
	h.render(c, http.StatusOK, comment, comment.Text, nil, true)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	postID, commentID, ok := commentParams(c)
	if !ok {
		return
	}
	if err := h.comments.DeleteComment(c.Request.Context(), middleware.CurrentUser(c), postID, commentID); err != nil {
		handleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, policy.PostDetailPath(postID))
}

func (h *CommentHandler) load(c *gin.Context) (*models.Comment, bool) {
	postID, commentID, ok := commentParams(c)
	if !ok {
		return nil, false
	}
	comment, err := h.comments.CommentForEdit(c.Request.Context(), middleware.CurrentUser(c), postID, commentID)
	if err != nil {
		handleError(c, err)
		return nil, false
	}
	return comment, true
}

func (h *CommentHandler) render(c *gin.Context, code int, comment *models.Comment, text string, fields map[string]string, confirmDelete bool) {
	Render(c, code, "blog/comment.html", gin.H{
		"Comment":       comment,
		"PostID":        comment.PostID,
		"Text":          text,
		"Errors":        fields,
		"ConfirmDelete": confirmDelete,
		"Action":        c.Request.URL.Path,
	})
}

func commentParams(c *gin.Context) (postID, commentID uint, ok bool) {
	if postID, ok = paramID(c, "id"); !ok {
		return 0, 0, false
	}
	if commentID, ok = paramID(c, "comment_id"); !ok {
		return 0, 0, false
	}
	return postID, commentID, true
}
