package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"blogicum/internal/services"
	"blogicum/internal/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCommentAppearsLastInThread(t *testing.T) {
	ctx := context.Background()
	st := storetest.New(t)
	comments := services.NewCommentService(st)
	posts := services.NewPostService(st, 10)
	now := storetest.Now

	alice := storetest.User(t, st, "alice")
	bob := storetest.User(t, st, "bob")
	post := storetest.Post(t, st, alice, storetest.PostOpts{})
	storetest.Comment(t, st, post, alice, "earlier", now.Add(-time.Minute))

	comment, err := comments.AddComment(ctx, bob, post.ID, "  nice post  ", now)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, comment.AuthorID)
	assert.Equal(t, post.ID, comment.PostID)
	assert.Equal(t, "nice post", comment.Text)

	detail, err := posts.GetPostDetail(ctx, post.ID, nil, now)
	require.NoError(t, err)
	require.Len(t, detail.Comments, 2)
	assert.Equal(t, "nice post", detail.Comments[1].Text)
	assert.Equal(t, "bob", detail.Comments[1].Author.Username)
}

func TestAddCommentErrors(t *testing.T) {
	ctx := context.Background()
	st := storetest.New(t)
	svc := services.NewCommentService(st)
	now := storetest.Now

	alice := storetest.User(t, st, "alice")
	post := storetest.Post(t, st, alice, storetest.PostOpts{})

	_, err := svc.AddComment(ctx, nil, post.ID, "hi", now)
	assert.ErrorIs(t, err, services.ErrAuthRequired)

	_, err = svc.AddComment(ctx, alice, 9999, "hi", now)
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = svc.AddComment(ctx, alice, post.ID, "   ", now)
	var ve *services.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "text")

	n, err := st.CountComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEditCommentByOtherUserIsRefused(t *testing.T) {
	ctx := context.Background()
	st := storetest.New(t)
	svc := services.NewCommentService(st)
	now := storetest.Now

	alice := storetest.User(t, st, "alice")
	bob := storetest.User(t, st, "bob")
	post := storetest.Post(t, st, bob, storetest.PostOpts{})
	comment := storetest.Comment(t, st, post, alice, "mine", now)

	// Owning the post does not grant rights over its comments.
	_, err := svc.UpdateComment(ctx, bob, post.ID, comment.ID, "changed")
	var pd *services.PermissionDeniedError
	require.ErrorAs(t, err, &pd)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), pd.Redirect)

	got, err := st.GetComment(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Text)

	assert.ErrorIs(t, svc.DeleteComment(ctx, bob, post.ID, comment.ID), services.ErrPermissionDenied)
}

func TestEditAndDeleteOwnComment(t *testing.T) {
	ctx := context.Background()
	st := storetest.New(t)
	svc := services.NewCommentService(st)
	now := storetest.Now

	alice := storetest.User(t, st, "alice")
	post := storetest.Post(t, st, alice, storetest.PostOpts{})
	other := storetest.Post(t, st, alice, storetest.PostOpts{})
	comment := storetest.Comment(t, st, post, alice, "typo", now)

	updated, err := svc.UpdateComment(ctx, alice, post.ID, comment.ID, "fixed")
	require.NoError(t, err)
	assert.Equal(t, "fixed", updated.Text)

	_, err = svc.UpdateComment(ctx, alice, post.ID, comment.ID, "")
	assert.ErrorAs(t, err, new(*services.ValidationError))

	// The comment id has to match the post in the URL.
	_, err = svc.CommentForEdit(ctx, alice, other.ID, comment.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	require.NoError(t, svc.DeleteComment(ctx, alice, post.ID, comment.ID))
	assert.ErrorIs(t, svc.DeleteComment(ctx, alice, post.ID, comment.ID), services.ErrNotFound)

	_, err = svc.CommentForEdit(ctx, nil, post.ID, comment.ID)
	assert.ErrorIs(t, err, services.ErrAuthRequired)
}
