package router

import (
	"time"

	"blogicum/internal/handlers"
	"blogicum/internal/middleware"
	"blogicum/internal/services"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const sessionName = "blogicum_session"

// Deps is everything the routes need.
type Deps struct {
	Posts    *services.PostService
	Comments *services.CommentService
	Users    *services.UserService
	Images   *services.ImageStore
	Sessions sessions.Store

	SiteURL  string
	SiteName string

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// New builds the engine with middleware and routes. Templates and static
// files are attached by the caller.
func New(deps Deps) *gin.Engine {
	pageHandler := handlers.NewPageHandler()

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.CustomRecovery(pageHandler.Recovery))
	// 上传的图片本身已压缩
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/media/", "/static/img/"})))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestClock(deps.Clock))
	r.Use(sessions.Sessions(sessionName, deps.Sessions))
	r.Use(middleware.LoadUser(deps.Users))

	RegisterRoutes(r, deps, pageHandler)
	return r
}

func RegisterRoutes(r *gin.Engine, deps Deps, pageHandler *handlers.PageHandler) {
	// Handlers
	postHandler := handlers.NewPostHandler(deps.Posts, deps.Images)
	commentHandler := handlers.NewCommentHandler(deps.Comments)
	userHandler := handlers.NewUserHandler(deps.Users)
	authHandler := handlers.NewAuthHandler(deps.Users)
	seoHandler := handlers.NewSEOHandler(deps.Posts, deps.SiteURL, deps.SiteName)
	mediaHandler := handlers.NewMediaHandler(deps.Images.Root())

	// 公共路由 (Public Routes)
	r.GET("/", postHandler.Index)                            // 首页
	r.GET("/category/:slug/", postHandler.Category)          // 分类下的帖子
	r.GET("/profile/:username/", postHandler.Profile)        // 用户主页
	r.GET("/posts/:id/", postHandler.Detail)                 // 帖子详情
	r.GET("/posts/:id/comment/", commentHandler.AddRedirect) // 评论只接受 POST

	r.GET("/pages/about/", pageHandler.About)
	r.GET("/pages/rules/", pageHandler.Rules)

	r.GET("/robots.txt", seoHandler.RobotsTxt)
	r.GET("/sitemap.xml", seoHandler.SitemapXML)
	r.GET("/feed.xml", seoHandler.RSSFeed)
	r.GET("/media/*filepath", mediaHandler.Serve)

	auth := r.Group("/auth")
	{
		auth.GET("/login/", authHandler.ShowLogin)
		auth.POST("/login/", authHandler.Login)
		auth.GET("/logout/", authHandler.Logout)
		auth.POST("/logout/", authHandler.Logout)
		auth.GET("/registration/", authHandler.ShowRegister)
		auth.POST("/registration/", authHandler.Register)
	}

	// 受保护路由 (Protected Routes)
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/profile/edit/", userHandler.ShowEditProfile)
		authorized.POST("/profile/edit/", userHandler.UpdateProfile)

		authorized.GET("/posts/create/", postHandler.ShowCreate)
		authorized.POST("/posts/create/", postHandler.Create)
		authorized.GET("/posts/:id/edit/", postHandler.ShowEdit)
		authorized.POST("/posts/:id/edit/", postHandler.Update)
		authorized.GET("/posts/:id/delete/", postHandler.ShowDelete)
		authorized.POST("/posts/:id/delete/", postHandler.Delete)

		authorized.POST("/posts/:id/comment/", commentHandler.Add)
		authorized.GET("/posts/:id/edit_comment/:comment_id/", commentHandler.ShowEdit)
		authorized.POST("/posts/:id/edit_comment/:comment_id/", commentHandler.Update)
		authorized.GET("/posts/:id/delete_comment/:comment_id/", commentHandler.ShowDelete)
		authorized.POST("/posts/:id/delete_comment/:comment_id/", commentHandler.Delete)
	}

	r.NoRoute(pageHandler.NoRoute)
}
