package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

func (h *PageHandler) About(c *gin.Context) {
	Render(c, http.StatusOK, "pages/about.html", nil)
}

func (h *PageHandler) Rules(c *gin.Context) {
	Render(c, http.StatusOK, "pages/rules.html", nil)
}

// NoRoute 未匹配的路由
func (h *PageHandler) NoRoute(c *gin.Context) {
	NotFound(c)
}

// Recovery renders the 500 page for a panicking handler.
func (h *PageHandler) Recovery(c *gin.Context, recovered any) {
	ServerError(c, fmt.Errorf("panic: %v", recovered))
	c.Abort()
}
