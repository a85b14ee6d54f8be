package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"blogicum/internal/middleware"
	"blogicum/internal/services"
	"blogicum/internal/utils"

	"github.com/gin-gonic/gin"
)

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user := middleware.CurrentUser(c); user != nil {
		obj["CurrentUser"] = user
	}
	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// NotFound renders the 404 page. Hidden and missing content look the same.
func NotFound(c *gin.Context) {
	Render(c, http.StatusNotFound, "pages/404.html", nil)
}

// ServerError logs err and renders the 500 page.
func ServerError(c *gin.Context, err error) {
	slog.ErrorContext(c.Request.Context(), "request failed",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"error", err,
	)
	Render(c, http.StatusInternalServerError, "pages/500.html", nil)
}

// handleError maps a service error to its response. Validation errors are
// handled by the form handlers themselves.
func handleError(c *gin.Context, err error) {
	var denied *services.PermissionDeniedError
	switch {
	case errors.Is(err, services.ErrAuthRequired):
		c.Redirect(http.StatusFound, middleware.LoginURL(c.Request.URL.RequestURI()))
	case errors.As(err, &denied):
		// 无权限时不报错，直接回到帖子详情页
		c.Redirect(http.StatusFound, denied.Redirect)
	case errors.Is(err, services.ErrNotFound):
		NotFound(c)
	default:
		ServerError(c, err)
	}
}

// validationErrors extracts field messages; ok is false for other errors.
func validationErrors(err error) (map[string]string, bool) {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		return ve.Fields, true
	}
	return nil, false
}

// paramID parses a numeric route parameter. A malformed id is a 404.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, ok := utils.ParseID(c.Param(name))
	if !ok {
		NotFound(c)
	}
	return id, ok
}

// safeNext only allows local redirect targets.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}

func profilePath(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}
