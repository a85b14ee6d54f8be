// Package storetest builds in-memory stores and fixtures for tests.
package storetest

import (
	"context"
	"strings"
	"testing"
	"time"

	"blogicum/internal/db"
	"blogicum/internal/models"
	"blogicum/internal/store"

	"github.com/stretchr/testify/require"
)

// Now is the fixed clock used by fixtures.
var Now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// New returns a store over a fresh, migrated in-memory database.
func New(t *testing.T) *store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := db.OpenMemory(name)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return store.New(conn)
}

func User(t *testing.T, s *store.Store, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func Category(t *testing.T, s *store.Store, slug string, published bool) *models.Category {
	t.Helper()
	category := &models.Category{
		Title:       strings.ToUpper(slug[:1]) + slug[1:],
		Description: "About " + slug,
		Slug:        slug,
		IsPublished: published,
		CreatedAt:   Now,
	}
	require.NoError(t, s.CreateCategory(context.Background(), category))
	return category
}

func Location(t *testing.T, s *store.Store, name string, published bool) *models.Location {
	t.Helper()
	location := &models.Location{Name: name, IsPublished: published, CreatedAt: Now}
	require.NoError(t, s.CreateLocation(context.Background(), location))
	return location
}

// PostOpts describes a post fixture. Zero values give a published post
// dated one hour before Now, without category or location.
type PostOpts struct {
	Title    string
	Hidden   bool
	PubDate  time.Time
	Category *models.Category
	Location *models.Location
}

func Post(t *testing.T, s *store.Store, author *models.User, opts PostOpts) *models.Post {
	t.Helper()
	if opts.Title == "" {
		opts.Title = "post"
	}
	if opts.PubDate.IsZero() {
		opts.PubDate = Now.Add(-time.Hour)
	}
	post := &models.Post{
		Title:       opts.Title,
		Text:        "text of " + opts.Title,
		PubDate:     opts.PubDate,
		IsPublished: !opts.Hidden,
		AuthorID:    author.ID,
		CreatedAt:   Now,
	}
	if opts.Category != nil {
		post.CategoryID = &opts.Category.ID
	}
	if opts.Location != nil {
		post.LocationID = &opts.Location.ID
	}
	require.NoError(t, s.CreatePost(context.Background(), post))
	return post
}

func Comment(t *testing.T, s *store.Store, post *models.Post, author *models.User, text string, at time.Time) *models.Comment {
	t.Helper()
	comment := &models.Comment{PostID: post.ID, AuthorID: author.ID, Text: text, CreatedAt: at}
	require.NoError(t, s.CreateComment(context.Background(), comment))
	return comment
}
