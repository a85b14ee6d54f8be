package handlers

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"blogicum/internal/middleware"
	"blogicum/internal/policy"
	"blogicum/internal/services"
	"blogicum/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	sitemapLimit = 500
	feedLimit    = 20
)

// SEOHandler 只暴露任何人都能看到的内容
type SEOHandler struct {
	posts    *services.PostService
	siteURL  string
	siteName string
}

func NewSEOHandler(posts *services.PostService, siteURL, siteName string) *SEOHandler {
	return &SEOHandler{
		posts:    posts,
		siteURL:  strings.TrimRight(siteURL, "/"),
		siteName: siteName,
	}
}

// RobotsTxt 返回robots.txt内容
func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /

# 禁止爬取登录注册和编辑页面
Disallow: /auth/
Disallow: /profile/edit/
Disallow: /posts/create/

Sitemap: %s/sitemap.xml
`, h.siteURL)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// SitemapXML lists the home page, published categories and the newest
// public posts.
func (h *SEOHandler) SitemapXML(c *gin.Context) {
	ctx := c.Request.Context()
	now := middleware.RequestTime(c)
	today := now.Format("2006-01-02")

	categories, err := h.posts.Categories(ctx)
	if err != nil {
		ServerError(c, err)
		return
	}
	posts, err := h.posts.RecentPublic(ctx, now, sitemapLimit)
	if err != nil {
		ServerError(c, err)
		return
	}

	set := urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	set.URLs = append(set.URLs, sitemapURL{Loc: h.siteURL + "/", LastMod: today, ChangeFreq: "daily", Priority: "1.0"})
	for _, category := range categories {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        h.siteURL + "/category/" + url.PathEscape(category.Slug) + "/",
			LastMod:    today,
			ChangeFreq: "daily",
			Priority:   "0.7",
		})
	}
	for _, post := range posts {
		// 根据文章新旧程度调整优先级
		priority, changefreq := "0.6", "weekly"
		if age := now.Sub(post.PubDate); age < 7*24*time.Hour {
			priority, changefreq = "0.8", "daily"
		} else if age < 30*24*time.Hour {
			priority = "0.7"
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        h.siteURL + policy.PostDetailPath(post.ID),
			LastMod:    post.PubDate.Format("2006-01-02"),
			ChangeFreq: changefreq,
			Priority:   priority,
		})
	}

	h.writeXML(c, "application/xml; charset=utf-8", set)
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	Description cdata   `xml:"description"`
	Author      string  `xml:"author,omitempty"`
	Category    string  `xml:"category,omitempty"`
	PubDate     string  `xml:"pubDate"`
	GUID        rssGUID `xml:"guid"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type cdata struct {
	Value string `xml:",cdata"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

// RSSFeed 生成RSS 2.0 feed
func (h *SEOHandler) RSSFeed(c *gin.Context) {
	now := middleware.RequestTime(c)
	posts, err := h.posts.RecentPublic(c.Request.Context(), now, feedLimit)
	if err != nil {
		ServerError(c, err)
		return
	}

	feed := rssFeed{
		Version: "2.0",
		Channel: rssChannel{
			Title:         h.siteName,
			Link:          h.siteURL + "/",
			Description:   h.siteName + ": latest posts",
			LastBuildDate: now.Format(time.RFC1123Z),
		},
	}
	for _, post := range posts {
		link := h.siteURL + policy.PostDetailPath(post.ID)
		item := rssItem{
			Title:       post.Title,
			Link:        link,
			Description: cdata{Value: string(utils.RenderMarkdown(post.Text))},
			Author:      post.Author.Username,
			PubDate:     post.PubDate.Format(time.RFC1123Z),
			GUID:        rssGUID{IsPermaLink: true, Value: link},
		}
		if post.Category != nil {
			item.Category = post.Category.Title
		}
		feed.Channel.Items = append(feed.Channel.Items, item)
	}

	h.writeXML(c, "application/rss+xml; charset=utf-8", feed)
}

func (h *SEOHandler) writeXML(c *gin.Context, contentType string, v any) {
	out, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		ServerError(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, append([]byte(xml.Header), out...))
}
