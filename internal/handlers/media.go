package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// 盗链提醒 SVG 图片
const hotlinkSVG = `<svg width="200" height="200" xmlns="http://www.w3.org/2000/svg">
  <rect width="100%" height="100%" fill="#f8f9fa"/>
  <text x="50%" y="50%" font-family="Arial" font-size="14" fill="#6c757d" text-anchor="middle">
    Blogicum
  </text>
</svg>`

// MediaHandler serves uploaded post images.
type MediaHandler struct {
	fs http.FileSystem
}

func NewMediaHandler(root string) *MediaHandler {
	return &MediaHandler{fs: http.Dir(root)}
}

// Serve 处理 GET /media/*filepath
// 使用 Sec-Fetch-* 头部检测盗链
func (h *MediaHandler) Serve(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("filepath"), "/")
	if name == "" || strings.HasSuffix(name, "/") {
		NotFound(c)
		return
	}

	if !isAllowedRequest(c) {
		c.Header("Content-Type", "image/svg+xml")
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.String(http.StatusOK, hotlinkSVG)
		return
	}

	f, err := h.fs.Open("/" + name)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	info, err := f.Stat()
	f.Close()
	if err != nil || info.IsDir() {
		c.Status(http.StatusNotFound)
		return
	}

	c.Header("Cache-Control", "public, max-age=604800")
	c.Header("Vary", "Sec-Fetch-Site, Sec-Fetch-Mode")
	c.FileFromFS("/"+name, h.fs)
}

// isAllowedRequest 使用 Sec-Fetch-* 头部检测是否为合法请求
func isAllowedRequest(c *gin.Context) bool {
	switch c.GetHeader("Sec-Fetch-Site") {
	// 没有头部（旧浏览器或直接访问）、同源、同站、地址栏直接访问
	case "", "same-origin", "same-site", "none":
		return true
	}
	// 允许在新标签页打开图片
	return c.GetHeader("Sec-Fetch-Mode") == "navigate"
}
