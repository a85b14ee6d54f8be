package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/policy"
	"blogicum/internal/services"
	"blogicum/internal/utils"

	"github.com/gin-gonic/gin"
)

// datetime-local 输入框的格式
const dateTimeLayout = "2006-01-02T15:04"

var dateTimeLayouts = []string{dateTimeLayout, "2006-01-02T15:04:05", "2006-01-02 15:04", "2006-01-02 15:04:05"}

type PostHandler struct {
	posts  *services.PostService
	images *services.ImageStore
}

func NewPostHandler(posts *services.PostService, images *services.ImageStore) *PostHandler {
	return &PostHandler{posts: posts, images: images}
}

// postForm is the post form as submitted, kept as strings so an invalid
// submission is shown back unchanged.
type postForm struct {
	Title       string
	Text        string
	PubDate     string
	IsPublished bool
	Category    string
	Location    string
	Image       string // 当前图片
}

func readPostForm(c *gin.Context) postForm {
	return postForm{
		Title:       c.PostForm("title"),
		Text:        c.PostForm("text"),
		PubDate:     c.PostForm("pub_date"),
		IsPublished: checkbox(c.PostForm("is_published")),
		Category:    c.PostForm("category"),
		Location:    c.PostForm("location"),
	}
}

func formFromPost(post *models.Post) postForm {
	f := postForm{
		Title:       post.Title,
		Text:        post.Text,
		PubDate:     post.PubDate.UTC().Format(dateTimeLayout),
		IsPublished: post.IsPublished,
		Image:       post.Image,
	}
	if post.CategoryID != nil {
		f.Category = strconv.FormatUint(uint64(*post.CategoryID), 10)
	}
	if post.LocationID != nil {
		f.Location = strconv.FormatUint(uint64(*post.LocationID), 10)
	}
	return f
}

func (f postForm) input() services.PostInput {
	category, _ := utils.ParseID(f.Category)
	location, _ := utils.ParseID(f.Location)
	return services.PostInput{
		Title:       f.Title,
		Text:        f.Text,
		PubDate:     parseDateTime(f.PubDate),
		IsPublished: f.IsPublished,
		CategoryID:  category,
		LocationID:  location,
	}
}

// parseDateTime reads a form timestamp as UTC; zero when unparsable.
func parseDateTime(s string) time.Time {
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t
		}
	}
	return time.Time{}
}

func checkbox(v string) bool {
	switch v {
	case "on", "true", "1":
		return true
	}
	return false
}

// Index 首页：所有公开帖子
func (h *PostHandler) Index(c *gin.Context) {
	h.list(c, services.AllPosts(), "blog/index.html")
}

func (h *PostHandler) Category(c *gin.Context) {
	h.list(c, services.ByCategory(c.Param("slug")), "blog/category.html")
}

func (h *PostHandler) Profile(c *gin.Context) {
	h.list(c, services.ByAuthor(c.Param("username")), "blog/profile.html")
}

func (h *PostHandler) list(c *gin.Context, scope services.Scope, tmpl string) {
	listing, err := h.posts.ListPosts(
		c.Request.Context(),
		scope,
		middleware.CurrentUser(c),
		c.Query("page"),
		middleware.RequestTime(c),
	)
	if err != nil {
		handleError(c, err)
		return
	}

	Render(c, http.StatusOK, tmpl, gin.H{
		"Page":     listing.Page,
		"Posts":    listing.Page.Items,
		"Category": listing.Category,
		"Profile":  listing.Profile,
		"IsOwner":  listing.IsOwner,
	})
}

func (h *PostHandler) Detail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	detail, err := h.posts.GetPostDetail(c.Request.Context(), id, middleware.CurrentUser(c), middleware.RequestTime(c))
	if err != nil {
		handleError(c, err)
		return
	}

	Render(c, http.StatusOK, "blog/detail.html", gin.H{
		"Post":     detail.Post,
		"Comments": detail.Comments,
		"CanEdit":  detail.CanEdit,
		"Title":    detail.Post.Title,
	})
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	form := postForm{
		PubDate:     middleware.RequestTime(c).Format(dateTimeLayout),
		IsPublished: true,
	}
	h.renderForm(c, http.StatusOK, form, nil, gin.H{"Action": "/posts/create/"})
}

func (h *PostHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	viewer := middleware.CurrentUser(c)
	form := readPostForm(c)
	extra := gin.H{"Action": "/posts/create/"}

	in := form.input()
	image, err := h.saveImage(c)
	if err != nil {
		h.formError(c, form, err, extra)
		return
	}
	in.Image = image

	if _, err := h.posts.CreatePost(ctx, viewer, in, middleware.RequestTime(c)); err != nil {
		h.images.Remove(image)
		h.formError(c, form, err, extra)
		return
	}
	c.Redirect(http.StatusFound, profilePath(viewer.Username))
}

func (h *PostHandler) ShowEdit(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	post, err := h.posts.PostForEdit(c.Request.Context(), id, middleware.CurrentUser(c))
	if err != nil {
		handleError(c, err)
		return
	}
	h.renderForm(c, http.StatusOK, formFromPost(post), nil, gin.H{"Action": c.Request.URL.Path, "Post": post})
}

func (h *PostHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	viewer := middleware.CurrentUser(c)

	// 先做权限检查，避免无权限用户上传文件
	post, err := h.posts.PostForEdit(ctx, id, viewer)
	if err != nil {
		handleError(c, err)
		return
	}

	form := readPostForm(c)
	form.Image = post.Image
	extra := gin.H{"Action": c.Request.URL.Path, "Post": post}

	in := form.input()
	image, err := h.saveImage(c)
	if err != nil {
		h.formError(c, form, err, extra)
		return
	}
	in.Image = image

	if _, err := h.posts.UpdatePost(ctx, viewer, id, in); err != nil {
		h.images.Remove(image)
		h.formError(c, form, err, extra)
		return
	}
	// 换了新图，旧图不再被引用
	if image != "" && post.Image != image {
		h.images.Remove(post.Image)
	}
	c.Redirect(http.StatusFound, policy.PostDetailPath(id))
}

// ShowDelete renders the detail page in confirmation mode.
func (h *PostHandler) ShowDelete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	post, err := h.posts.PostForEdit(c.Request.Context(), id, middleware.CurrentUser(c))
	if err != nil {
		handleError(c, err)
		return
	}
	Render(c, http.StatusOK, "blog/detail.html", gin.H{
		"Post":          post,
		"ConfirmDelete": true,
		"CanEdit":       true,
		"Title":         post.Title,
	})
}

func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	post, err := h.posts.DeletePost(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		handleError(c, err)
		return
	}
	h.images.Remove(post.Image)
	c.Redirect(http.StatusFound, "/")
}

// saveImage stores the optional "image" upload and returns its media path.
func (h *PostHandler) saveImage(c *gin.Context) (string, error) {
	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", &services.ValidationError{Fields: map[string]string{"image": "Upload a valid image."}}
	}
	if header.Filename == "" && header.Size == 0 {
		return "", nil
	}
	return h.images.Save(header)
}

func (h *PostHandler) formError(c *gin.Context, form postForm, err error, extra gin.H) {
	fields, ok := validationErrors(err)
	if !ok {
		handleError(c, err)
		return
	}
	h.renderForm(c, http.StatusBadRequest, form, fields, extra)
}

func (h *PostHandler) renderForm(c *gin.Context, code int, form postForm, fields map[string]string, extra gin.H) {
	categories, locations, err := h.posts.FormChoices(c.Request.Context())
	if err != nil {
		ServerError(c, err)
		return
	}

	data := gin.H{
		"Form":       form,
		"Errors":     fields,
		"Categories": categories,
		"Locations":  locations,
	}
	for k, v := range extra {
		data[k] = v
	}
	Render(c, code, "blog/create.html", data)
}
