package handlers_test

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"blogicum/internal/models"
	"blogicum/internal/router"
	"blogicum/internal/services"
	"blogicum/internal/store"
	"blogicum/internal/store/storetest"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const password = "s3cret-pass"

// recorder stands in for the template renderer: it keeps the last template
// name and data and writes the name as the body.
type recorder struct {
	name string
	data gin.H
}

func (r *recorder) Instance(name string, data any) render.Render {
	r.name = name
	r.data, _ = data.(gin.H)
	return recorded{name: name}
}

type recorded struct {
	name string
}

func (r recorded) Render(w http.ResponseWriter) error {
	r.WriteContentType(w)
	_, err := w.Write([]byte(r.name))
	return err
}

func (r recorded) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

type app struct {
	t      *testing.T
	engine *gin.Engine
	store  *store.Store
	users  *services.UserService
	render *recorder
	media  string
}

func newApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := storetest.New(t)
	users := services.NewUserService(st)
	rec := &recorder{}
	media := t.TempDir()

	engine := router.New(router.Deps{
		Posts:    services.NewPostService(st, 10),
		Comments: services.NewCommentService(st),
		Users:    users,
		Images:   services.NewImageStore(media),
		Sessions: cookie.NewStore([]byte("test-secret")),
		SiteURL:  "https://blog.example.com",
		SiteName: "Blogicum",
		Clock:    func() time.Time { return storetest.Now },
	})
	engine.HTMLRender = rec

	return &app{t: t, engine: engine, store: st, users: users, render: rec, media: media}
}

// register creates a user that can log in with password.
func (a *app) register(username string) *models.User {
	a.t.Helper()
	user, err := a.users.Register(context.Background(), services.RegisterInput{
		Username:        username,
		Password:        password,
		PasswordConfirm: password,
	}, storetest.Now)
	require.NoError(a.t, err)
	return user
}

// client is a browser session against the app.
type client struct {
	app     *app
	cookies []*http.Cookie
}

func (a *app) anonymous() *client {
	return &client{app: a}
}

func (a *app) login(username string) *client {
	a.t.Helper()
	c := &client{app: a}
	w := c.post("/auth/login/", url.Values{"username": {username}, "password": {password}})
	require.Equal(a.t, http.StatusFound, w.Code, "login %s", username)
	return c
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	c.app.engine.ServeHTTP(w, req)
	if set := w.Result().Cookies(); len(set) > 0 {
		c.cookies = set
	}
	return w
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func TestIndexListsOnlyPublicPosts(t *testing.T) {
	a := newApp(t)
	alice := a.register("alice")
	storetest.Post(t, a.store, alice, storetest.PostOpts{Title: "public"})
	storetest.Post(t, a.store, alice, storetest.PostOpts{Title: "draft", Hidden: true})

	w := a.login("alice").get("/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "blog/index.html", a.render.name)

	posts := a.render.data["Posts"].([]models.Post)
	require.Len(t, posts, 1)
	assert.Equal(t, "public", posts[0].Title)
	assert.NotNil(t, a.render.data["CurrentUser"])
}

func TestListingPageOutOfRange(t *testing.T) {
	a := newApp(t)
	alice := a.register("alice")
	storetest.Post(t, a.store, alice, storetest.PostOpts{})

	for _, page := range []string{"0", "-1", "abc", "99"} {
		w := a.anonymous().get("/?page=" + page)
		assert.Equal(t, http.StatusOK, w.Code, page)
	}
}

func TestUnknownScopesAreNotFound(t *testing.T) {
	a := newApp(t)
	storetest.Category(t, a.store, "closed", false)

	for _, path := range []string{"/category/closed/", "/category/missing/", "/profile/nobody/", "/posts/999/", "/posts/abc/", "/no/such/page"} {
		w := a.anonymous().get(path)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, "pages/404.html", a.render.name, path)
	}
}

func TestProfileOwnerSeesDrafts(t *testing.T) {
	a := newApp(t)
	alice := a.register("alice")
	a.register("bob")
	storetest.Post(t, a.store, alice, storetest.PostOpts{Title: "draft", Hidden: true})

	a.login("alice").get("/profile/alice/")
	assert.Len(t, a.render.data["Posts"].([]models.Post), 1)
	assert.Equal(t, true, a.render.data["IsOwner"])

	a.login("bob").get("/profile/alice/")
	assert.Empty(t, a.render.data["Posts"].([]models.Post))
}

func TestDetailOfUnpublishedPost(t *testing.T) {
	a := newApp(t)
	alice := a.register("alice")
	a.register("bob")
	draft := storetest.Post(t, a.store, alice, storetest.PostOpts{Hidden: true})
	storetest.Comment(t, a.store, draft, alice, "note", storetest.Now)
	path := fmt.Sprintf("/posts/%d/", draft.ID)

	assert.Equal(t, http.StatusNotFound, a.anonymous().get(path).Code)
	assert.Equal(t, http.StatusNotFound, a.login("bob").get(path).Code)

	w := a.login("alice").get(path)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "blog/detail.html", a.render.name)
	assert.Len(t, a.render.data["Comments"].([]models.Comment), 1)
}

func TestMutationsRequireLogin(t *testing.T) {
	a := newApp(t)
	alice := a.register("alice")
	post := storetest.Post(t, a.store, alice, storetest.PostOpts{})

	w := a.anonymous().get("/posts/create/")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=%2Fposts%2Fcreate%2F", w.Header().Get("Location"))

	w = a.anonymous().post(fmt.Sprintf("/posts/%d/comment/", post.ID), url.Values{"text": {"hi"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/auth/login/"))

	comments, err := a.store.ListComments(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestCreatePost(t *testing.T) {
	a := newApp(t)
	a.register("alice")
	travel := storetest.Category(t, a.store, "travel", true)
	alice := a.login("alice")

	w := alice.get("/posts/create/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "blog/create.html", a.render.name)

	w = alice.post("/posts/create/", url.Values{
		"title":        {"Trip"},
		"text":         {"We went"},
		"pub_date":     {"2024-04-30T10:00"},
		"is_published": {"on"},
		"category":     {fmt.Sprint(travel.ID)},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/alice/", w.Header().Get("Location"))

	alice.get("/category/travel/")
	posts := a.render.data["Posts"].([]models.Post)
	require.Len(t, posts, 1)
	assert.Equal(t, "Trip", posts[0].Title)
}

func TestCreatePostInvalid(t *testing.T) {
	a := newApp(t)
	a.register("alice")

	w := a.login("alice").post("/posts/create/", url.Values{"title": {""}, "pub_date": {"yesterday"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "blog/create.html", a.render.name)

	fields := a.render.data["Errors"].(map[string]string)
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "pub_date")
	assert.Contains(t, fields, "category")
}

func TestEditPostByOtherUserRedirects(t *testing.T) {
	a := newApp(t)
	alice := a.register("alice")
	a.register("bob")
	post := storetest.Post(t, a.store, alice, storetest.PostOpts{Title: "mine"})
	detail := fmt.Sprintf("/posts/%d/", post.ID)

	bob := a.login("bob")
	w := bob.get(detail + "edit/")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, detail, w.Header().Get("Location"))

	w = bob.post(detail+"delete/", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, detail, w.Header().Get("Location"))

	got, err := a.store.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Title)
}

func TestDeletePostTwice(t *testing.T) {
	a := newApp(t)
	alice := a.register("alice")
	post := storetest.Post(t, a.store, alice, storetest.PostOpts{})
	path := fmt.Sprintf("/posts/%d/delete/", post.ID)
	c := a.login("alice")

	w := c.get(path)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, a.render.data["ConfirmDelete"])

	w = c.post(path, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = c.post(path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeletePostRemovesImage(t *testing.T) {
	a := newApp(t)
	alice := a.register("alice")
	post := storetest.Post(t, a.store, alice, storetest.PostOpts{})

	image := filepath.Join(a.media, "post_images", "lake.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(image), 0o755))
	require.NoError(t, os.WriteFile(image, []byte("png"), 0o644))
	post.Image = "post_images/lake.png"
	require.NoError(t, a.store.SavePost(context.Background(), post))

	w := a.login("alice").post(fmt.Sprintf("/posts/%d/delete/", post.ID), nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.NoFileExists(t, image)
}

func TestCommentFlow(t *testing.T) {
	a := newApp(t)
	alice := a.register("alice")
	a.register("bob")
	post := storetest.Post(t, a.store, alice, storetest.PostOpts{})
	detail := fmt.Sprintf("/posts/%d/", post.ID)

	bob := a.login("bob")
	w := bob.get(detail + "comment/")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, detail, w.Header().Get("Location"))

	w = bob.post(detail+"comment/", url.Values{"text": {"first!"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, detail, w.Header().Get("Location"))

	w = bob.post(detail+"comment/", url.Values{"text": {"  "}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "blog/comment.html", a.render.name)

	bob.get(detail)
	comments := a.render.data["Comments"].([]models.Comment)
	require.Len(t, comments, 1)
	assert.Equal(t, "bob", comments[0].Author.Username)
	commentPath := fmt.Sprintf("%sedit_comment/%d/", detail, comments[0].ID)

	// The post author may not touch bob's comment.
	w = a.login("alice").post(commentPath, url.Values{"text": {"censored"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, detail, w.Header().Get("Location"))

	got, err := a.store.GetComment(context.Background(), comments[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "first!", got.Text)

	w = bob.get(commentPath)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "blog/comment.html", a.render.name)

	w = bob.post(commentPath, url.Values{"text": {"edited"}})
	assert.Equal(t, http.StatusFound, w.Code)

	w = bob.post(fmt.Sprintf("%sdelete_comment/%d/", detail, comments[0].ID), nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, detail, w.Header().Get("Location"))
}

func TestEditProfile(t *testing.T) {
	a := newApp(t)
	a.register("alice")
	a.register("bob")
	c := a.login("alice")

	w := c.post("/profile/edit/", url.Values{"username": {"bob"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "blog/user.html", a.render.name)

	w = c.post("/profile/edit/", url.Values{"username": {"alice2"}, "first_name": {"Alice"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/alice2/", w.Header().Get("Location"))
}

func TestLoginRejectsBadPassword(t *testing.T) {
	a := newApp(t)
	a.register("alice")

	w := a.anonymous().post("/auth/login/", url.Values{"username": {"alice"}, "password": {"nope"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "registration/login.html", a.render.name)

	w = a.anonymous().post("/auth/login/", url.Values{
		"username": {"alice"},
		"password": {password},
		"next":     {"//evil.example.com"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestFeedAndSitemapOnlyPublic(t *testing.T) {
	a := newApp(t)
	alice := a.register("alice")
	storetest.Post(t, a.store, alice, storetest.PostOpts{Title: "Visible post"})
	storetest.Post(t, a.store, alice, storetest.PostOpts{Title: "Secret draft", Hidden: true})

	// Logged in as the author changes nothing.
	w := a.login("alice").get("/feed.xml")
	assert.Equal(t, http.StatusOK, w.Code)

	feed, err := gofeed.NewParser().ParseString(w.Body.String())
	require.NoError(t, err)
	assert.Equal(t, "Blogicum", feed.Title)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, "Visible post", feed.Items[0].Title)
	assert.Equal(t, "https://blog.example.com/posts/1/", feed.Items[0].Link)
	assert.Contains(t, feed.Items[0].Description, "text of Visible post")

	w = a.anonymous().get("/sitemap.xml")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://blog.example.com/posts/1/")
	assert.NotContains(t, w.Body.String(), "/posts/2/")
}

func TestMediaHotlinkProtection(t *testing.T) {
	a := newApp(t)

	req := httptest.NewRequest(http.MethodGet, "/media/post_images/x.png", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	req.Header.Set("Sec-Fetch-Mode", "no-cors")
	w := a.anonymous().do(req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))

	w = a.anonymous().get("/media/post_images/missing.png")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResponsesAreCompressed(t *testing.T) {
	a := newApp(t)

	req := httptest.NewRequest(http.MethodGet, "/robots.txt", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := a.anonymous().do(req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Sitemap: https://blog.example.com/sitemap.xml")
}
