package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"blogicum/internal/models"
	"blogicum/internal/policy"
	"blogicum/internal/store"
	"blogicum/internal/utils"
)

const titleMaxLen = 256

// ScopeKind selects the base candidate set of a listing.
type ScopeKind int

const (
	ScopeAll ScopeKind = iota
	ScopeCategory
	ScopeAuthor
)

// Scope is a listing request: every post, one category's posts or one
// author's posts.
type Scope struct {
	Kind     ScopeKind
	Slug     string
	Username string
}

func AllPosts() Scope {
	return Scope{Kind: ScopeAll}
}

func ByCategory(slug string) Scope {
	return Scope{Kind: ScopeCategory, Slug: slug}
}

func ByAuthor(username string) Scope {
	return Scope{Kind: ScopeAuthor, Username: username}
}

// Listing is one page of a feed plus whatever the scope resolved to.
type Listing struct {
	Page *utils.Page[models.Post]

	Category *models.Category // ScopeCategory
	Profile  *models.User     // ScopeAuthor
	IsOwner  bool             // viewer is Profile
}

// PostDetail is a post with its comment thread, oldest comment first.
type PostDetail struct {
	Post     *models.Post
	Comments []models.Comment
	CanEdit  bool
}

// PostInput is a submitted post form.
type PostInput struct {
	Title       string
	Text        string
	PubDate     time.Time
	IsPublished bool
	CategoryID  uint
	LocationID  uint
	Image       string // 新上传图片的相对路径，空表示不修改
}

type PostService struct {
	store   *store.Store
	perPage int
}

func NewPostService(st *store.Store, perPage int) *PostService {
	if perPage <= 0 {
		perPage = 10
	}
	return &PostService{store: st, perPage: perPage}
}

// ListPosts resolves scope, filters what viewer may see at now and returns
// the requested page. pageParam is the raw ?page= value; out of range values
// are clamped. An unknown or unpublished category and an unknown username
// are ErrNotFound.
func (s *PostService) ListPosts(ctx context.Context, scope Scope, viewer *models.User, pageParam string, now time.Time) (*Listing, error) {
	filter, listing, err := s.resolve(ctx, scope, viewer, now)
	if err != nil {
		return nil, err
	}

	total, err := s.store.CountPosts(ctx, filter)
	if err != nil {
		return nil, err
	}
	paginator := utils.Paginator{Total: total, PerPage: s.perPage}
	number := paginator.Number(pageParam)

	posts, err := s.store.ListPosts(ctx, filter, s.perPage, paginator.Offset(number))
	if err != nil {
		return nil, err
	}
	listing.Page = utils.NewPage(posts, number, paginator)
	return listing, nil
}

// resolve turns a scope into a concrete filter. Only the owner of a
// profile skips the visibility filter; every other listing uses the
// public predicate for all posts, including the viewer's own.
func (s *PostService) resolve(ctx context.Context, scope Scope, viewer *models.User, now time.Time) (store.PostFilter, *Listing, error) {
	filter := store.PostFilter{VisibleAt: &now}
	listing := &Listing{}

	switch scope.Kind {
	case ScopeAll:
	case ScopeCategory:
		category, err := s.store.GetCategoryBySlug(ctx, scope.Slug, true)
		if err != nil {
			return filter, nil, notFound(err, "category", scope.Slug)
		}
		filter.CategoryID = category.ID
		listing.Category = category
	case ScopeAuthor:
		user, err := s.store.GetUserByUsername(ctx, scope.Username)
		if err != nil {
			return filter, nil, notFound(err, "user", scope.Username)
		}
		filter.AuthorID = user.ID
		listing.Profile = user
		if policy.IsAuthor(viewer, user.ID) {
			listing.IsOwner = true
			filter.VisibleAt = nil
		}
	default:
		return filter, nil, NewNotFoundError("scope", nil)
	}
	return filter, listing, nil
}

// GetPostDetail loads a post for reading. A post the viewer may not see is
// reported exactly like a missing one.
func (s *PostService) GetPostDetail(ctx context.Context, postID uint, viewer *models.User, now time.Time) (*PostDetail, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, notFound(err, "post", postID)
	}
	if !policy.IsPostVisible(post, viewer, now) {
		return nil, NewNotFoundError("post", postID)
	}

	comments, err := s.store.ListComments(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	post.CommentCount = len(comments)

	return &PostDetail{
		Post:     post,
		Comments: comments,
		CanEdit:  policy.CanMutatePost(post, viewer),
	}, nil
}

// PostForEdit loads a post the viewer is about to change.
func (s *PostService) PostForEdit(ctx context.Context, postID uint, viewer *models.User) (*models.Post, error) {
	if viewer == nil {
		return nil, ErrAuthRequired
	}
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, notFound(err, "post", postID)
	}
	if !policy.CanMutatePost(post, viewer) {
		return nil, &PermissionDeniedError{Redirect: policy.DeniedRedirect(post)}
	}
	return post, nil
}

// RecentPublic returns the newest posts anyone may read at now, for the
// feed and the sitemap.
func (s *PostService) RecentPublic(ctx context.Context, now time.Time, limit int) ([]models.Post, error) {
	return s.store.ListPosts(ctx, store.PostFilter{VisibleAt: &now}, limit, 0)
}

// Categories returns the published categories, ordered by title.
func (s *PostService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.store.ListCategories(ctx, true)
}

// FormChoices returns the categories and locations a post may reference.
func (s *PostService) FormChoices(ctx context.Context) ([]models.Category, []models.Location, error) {
	categories, err := s.Categories(ctx)
	if err != nil {
		return nil, nil, err
	}
	locations, err := s.store.ListLocations(ctx, true)
	if err != nil {
		return nil, nil, err
	}
	return categories, locations, nil
}

func (s *PostService) CreatePost(ctx context.Context, viewer *models.User, in PostInput, now time.Time) (*models.Post, error) {
	if viewer == nil {
		return nil, ErrAuthRequired
	}

	post := &models.Post{
		AuthorID:  viewer.ID,
		CreatedAt: now.UTC(),
	}
	if err := s.apply(ctx, post, in); err != nil {
		return nil, err
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "post created", "post_id", post.ID, "author_id", viewer.ID, "published", post.IsPublished)
	return post, nil
}

func (s *PostService) UpdatePost(ctx context.Context, viewer *models.User, postID uint, in PostInput) (*models.Post, error) {
	post, err := s.PostForEdit(ctx, postID, viewer)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, post, in); err != nil {
		return nil, err
	}
	if err := s.store.SavePost(ctx, post); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "post updated", "post_id", post.ID)
	return post, nil
}

// DeletePost removes a post with its comments and returns what was removed,
// so the caller can drop the image file. Deleting it again is ErrNotFound.
func (s *PostService) DeletePost(ctx context.Context, viewer *models.User, postID uint) (*models.Post, error) {
	post, err := s.PostForEdit(ctx, postID, viewer)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.CountComments(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeletePost(ctx, post.ID); err != nil {
		return nil, notFound(err, "post", postID)
	}

	slog.InfoContext(ctx, "post deleted", "post_id", post.ID, "author_id", viewer.ID, "comments", comments)
	return post, nil
}

// apply validates in and copies it onto post. Nothing is written on error.
func (s *PostService) apply(ctx context.Context, post *models.Post, in PostInput) error {
	fields := fieldErrors{}

	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		fields.add("title", "This field is required.")
	case utf8.RuneCountInString(title) > titleMaxLen:
		fields.add("title", "Ensure this value has at most 256 characters.")
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		fields.add("text", "This field is required.")
	}
	if in.PubDate.IsZero() {
		fields.add("pub_date", "Enter a valid date and time.")
	}

	var category *models.Category
	if in.CategoryID == 0 {
		fields.add("category", "This field is required.")
	} else {
		c, err := s.store.GetCategory(ctx, in.CategoryID)
		switch {
		case errors.Is(err, store.ErrNotFound) || (err == nil && !c.IsPublished):
			fields.add("category", "Select a valid choice.")
		case err != nil:
			return err
		default:
			category = c
		}
	}

	var location *models.Location
	if in.LocationID != 0 {
		l, err := s.store.GetLocation(ctx, in.LocationID)
		switch {
		case errors.Is(err, store.ErrNotFound) || (err == nil && !l.IsPublished):
			fields.add("location", "Select a valid choice.")
		case err != nil:
			return err
		default:
			location = l
		}
	}

	if err := fields.err(); err != nil {
		return err
	}

	post.Title = title
	post.Text = text
	post.PubDate = in.PubDate.UTC()
	post.IsPublished = in.IsPublished
	post.CategoryID = &category.ID
	post.Category = category
	post.LocationID = nil
	post.Location = nil
	if location != nil {
		post.LocationID = &location.ID
		post.Location = location
	}
	if in.Image != "" {
		post.Image = in.Image
	}
	return nil
}

// notFound converts store.ErrNotFound into a labelled NotFoundError and
// passes every other error through.
func notFound(err error, label string, id any) error {
	if errors.Is(err, store.ErrNotFound) {
		return NewNotFoundError(label, id)
	}
	return err
}
