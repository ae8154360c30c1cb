package service

import (
	"context"
	"strings"
	"testing"

	"github.com/juhi-kothari/Pranam-app/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCommentModeration(t *testing.T) {
	_, posts, svc := newBlogFixture(t)
	ctx := context.Background()
	post := publishPost(t, posts, "Satsang notes")

	guest, err := svc.AddComment(ctx, nil, CommentInput{BlogID: post.ID, Name: " Guest ", Text: " Jai ho "})
	require.NoError(t, err)
	assert.False(t, guest.IsApproved)
	assert.Nil(t, guest.UserID)
	assert.Equal(t, "Guest", guest.Name)
	assert.Equal(t, "Jai ho", guest.Text)

	member, err := svc.AddComment(ctx, &blogReader, CommentInput{BlogID: post.ID, Name: "Reader", Email: "Reader@Example.com", Text: "Thank you"})
	require.NoError(t, err)
	assert.True(t, member.IsApproved)
	require.NotNil(t, member.UserID)
	assert.Equal(t, blogReader.UserID, *member.UserID)
	assert.Equal(t, "reader@example.com", member.Email)

	public, err := svc.ListComments(ctx, nil, post.ID, 1, 0)
	require.NoError(t, err)
	require.Len(t, public.Items, 1)
	assert.Equal(t, member.ID, public.Items[0].ID)

	all, err := svc.ListComments(ctx, &blogAdmin, post.ID, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Pagination.Total)

	pending, err := svc.ListPending(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, pending.Items, 1)
	assert.Equal(t, guest.ID, pending.Items[0].ID)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, CommentStats{Total: 2, Approved: 1, Pending: 1}, *stats)

	approved, err := svc.ApproveComment(ctx, guest.ID)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)
	_, err = svc.ApproveComment(ctx, guest.ID)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.ApproveComment(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	public, err = svc.ListComments(ctx, nil, post.ID, 1, 0)
	require.NoError(t, err)
	assert.Len(t, public.Items, 2)
}

func TestCommentRepliesAreOneLevel(t *testing.T) {
	db, posts, svc := newBlogFixture(t)
	ctx := context.Background()
	post := publishPost(t, posts, "On seva")
	other := publishPost(t, posts, "On dhyana")

	top, err := svc.AddComment(ctx, &blogReader, CommentInput{BlogID: post.ID, Name: "Reader", Text: "First"})
	require.NoError(t, err)
	reply, err := svc.AddComment(ctx, &blogReader, CommentInput{BlogID: post.ID, ParentID: &top.ID, Name: "Reader", Text: "Reply"})
	require.NoError(t, err)
	pendingReply, err := svc.AddComment(ctx, nil, CommentInput{BlogID: post.ID, ParentID: &top.ID, Name: "Guest", Text: "Guest reply"})
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, &blogReader, CommentInput{BlogID: post.ID, ParentID: &reply.ID, Name: "Reader", Text: "Nested"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.AddComment(ctx, &blogReader, CommentInput{BlogID: other.ID, ParentID: &top.ID, Name: "Reader", Text: "Wrong post"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.AddComment(ctx, &blogReader, CommentInput{BlogID: post.ID, ParentID: ptr(uint64(9999)), Name: "Reader", Text: "Orphan"})
	assert.ErrorIs(t, err, ErrNotFound)

	public, err := svc.ListComments(ctx, nil, post.ID, 1, 0)
	require.NoError(t, err)
	require.Len(t, public.Items, 1, "replies are not listed at the top level")
	require.Len(t, public.Items[0].Replies, 1)
	assert.Equal(t, reply.ID, public.Items[0].Replies[0].ID)

	all, err := svc.ListComments(ctx, &blogAdmin, post.ID, 1, 0)
	require.NoError(t, err)
	require.Len(t, all.Items[0].Replies, 2)
	assert.Equal(t, []uint64{reply.ID, pendingReply.ID}, []uint64{all.Items[0].Replies[0].ID, all.Items[0].Replies[1].ID})

	require.NoError(t, svc.DeleteComment(ctx, top.ID))
	var n int64
	require.NoError(t, db.Model(&model.Comment{}).Count(&n).Error)
	assert.Zero(t, n, "deleting a comment removes its replies")
	assert.ErrorIs(t, svc.DeleteComment(ctx, top.ID), ErrNotFound)
}

func TestAddCommentValidation(t *testing.T) {
	_, posts, svc := newBlogFixture(t)
	ctx := context.Background()
	post := publishPost(t, posts, "Open")
	draft, err := posts.CreatePost(ctx, blogAdmin, BlogPostInput{Title: "Draft", Content: "x"})
	require.NoError(t, err)
	closed, err := posts.CreatePost(ctx, blogAdmin, BlogPostInput{Title: "Closed", Content: "x", Status: "published", AllowComments: ptr(false)})
	require.NoError(t, err)

	for name, in := range map[string]CommentInput{
		"no name":   {BlogID: post.ID, Text: "hi"},
		"no text":   {BlogID: post.ID, Name: "n", Text: "  "},
		"long text": {BlogID: post.ID, Name: "n", Text: strings.Repeat("t", maxCommentLen+1)},
		"bad email": {BlogID: post.ID, Name: "n", Text: "hi", Email: "nope"},
		"no blog":   {Name: "n", Text: "hi"},
		"closed":    {BlogID: closed.ID, Name: "n", Text: "hi"},
	} {
		_, err := svc.AddComment(ctx, nil, in)
		assert.ErrorIs(t, err, ErrValidation, name)
	}

	_, err = svc.AddComment(ctx, nil, CommentInput{BlogID: draft.ID, Name: "n", Text: "hi"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.ListComments(ctx, nil, draft.ID, 1, 0)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.AddComment(ctx, &blogAdmin, CommentInput{BlogID: draft.ID, Name: "Admin", Text: "note"})
	assert.NoError(t, err)
}
