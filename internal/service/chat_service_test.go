package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/juhi-kothari/Pranam-app/internal/model"
	"github.com/juhi-kothari/Pranam-app/internal/repository"
	"github.com/juhi-kothari/Pranam-app/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUploader struct {
	paths []string
	err   error
}

func (u *fakeUploader) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, int64, error) {
	if u.err != nil {
		return "", 0, u.err
	}
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return "", 0, err
	}
	u.paths = append(u.paths, objectPath)
	return "https://storage.example/" + objectPath, n, nil
}

func newChatFixture(t *testing.T, up *fakeUploader) (*gorm.DB, ChatService) {
	t.Helper()
	db := testutil.NewDB(t)
	var svc ChatService
	if up != nil {
		svc = NewChatService(repository.NewStore(db), up, nil, nil, nil)
	} else {
		svc = NewChatService(repository.NewStore(db), nil, nil, nil, nil)
	}
	return db, svc
}

func loadConversation(t *testing.T, db *gorm.DB, id string) model.ChatConversation {
	t.Helper()
	var c model.ChatConversation
	require.NoError(t, db.Where("conversation_id = ?", id).First(&c).Error)
	return c
}

func TestStartConversation(t *testing.T) {
	db, svc := newChatFixture(t, nil)

	res, err := svc.StartConversation(context.Background(), Anonymous{}, StartConversationInput{
		Subject: "Billing",
		Message: "  I was charged twice  ",
	})
	require.NoError(t, err)
	assert.Regexp(t, `^chat_\d{13}_[0-9a-f]{9}$`, res.Conversation.ConversationID)

	c := loadConversation(t, db, res.Conversation.ConversationID)
	assert.Equal(t, model.ConversationActive, c.Status)
	assert.Equal(t, "Billing", c.Subject)
	assert.Equal(t, model.UnreadCount{User: 0, Admin: 1}, c.Unread)
	assert.Nil(t, c.UserID)
	assert.Equal(t, model.SenderUser, c.LastMessageBy)

	page, err := svc.ListMessages(context.Background(), Anonymous{}, c.ConversationID, 1, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, model.SenderUser, page.Items[0].SenderType)
	assert.Equal(t, "I was charged twice", page.Items[0].Message)
	assert.Equal(t, model.MessageText, page.Items[0].MessageType)
}

func TestStartConversationDefaultsAndValidation(t *testing.T) {
	db, svc := newChatFixture(t, nil)

	res, err := svc.StartConversation(context.Background(), Member{UserID: 7, Role: model.RoleUser}, StartConversationInput{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "General Inquiry", res.Conversation.Subject)
	require.NotNil(t, res.Conversation.UserID)
	assert.Equal(t, uint64(7), *res.Conversation.UserID)

	for name, in := range map[string]StartConversationInput{
		"empty":        {Message: ""},
		"whitespace":   {Message: "   \n\t"},
		"too long":     {Message: strings.Repeat("a", maxMessageLen+1)},
		"long subject": {Message: "hi", Subject: strings.Repeat("s", maxSubjectLen+1)},
	} {
		_, err := svc.StartConversation(context.Background(), Anonymous{}, in)
		assert.ErrorIs(t, err, ErrValidation, name)
	}

	_, err = svc.StartConversation(context.Background(), Member{UserID: 1, Role: model.RoleAdmin}, StartConversationInput{Message: "hello"})
	assert.ErrorIs(t, err, ErrForbidden)

	var convs, msgs int64
	require.NoError(t, db.Model(&model.ChatConversation{}).Count(&convs).Error)
	require.NoError(t, db.Model(&model.ChatMessage{}).Count(&msgs).Error)
	assert.Equal(t, int64(1), convs)
	assert.Equal(t, int64(1), msgs)
}

func TestPostMessageCountersAndClaim(t *testing.T) {
	db, svc := newChatFixture(t, nil)
	ctx := context.Background()
	user := Member{UserID: 3, Role: model.RoleUser}
	admin := Member{UserID: 1, Role: model.RoleAdmin}

	res, err := svc.StartConversation(ctx, user, StartConversationInput{Message: "where is my order"})
	require.NoError(t, err)
	id := res.Conversation.ConversationID

	_, err = svc.PostMessage(ctx, user, id, PostMessageInput{Message: "hello?"})
	require.NoError(t, err)
	c := loadConversation(t, db, id)
	assert.Equal(t, 2, c.Unread.Admin)
	assert.Equal(t, 0, c.Unread.User)
	assert.Nil(t, c.AdminID)

	m, err := svc.PostMessage(ctx, admin, id, PostMessageInput{Message: "on its way"})
	require.NoError(t, err)
	assert.Equal(t, model.SenderAdmin, m.SenderType)
	c = loadConversation(t, db, id)
	assert.Equal(t, 1, c.Unread.User)
	assert.Equal(t, model.SenderAdmin, c.LastMessageBy)
	require.NotNil(t, c.AdminID)
	assert.Equal(t, uint64(1), *c.AdminID)

	// A second admin replying does not take over the conversation.
	_, err = svc.PostMessage(ctx, Member{UserID: 2, Role: model.RoleAdmin}, id, PostMessageInput{Message: "also me"})
	require.NoError(t, err)
	c = loadConversation(t, db, id)
	assert.Equal(t, uint64(1), *c.AdminID)
	assert.Equal(t, 2, c.Unread.User)

	_, err = svc.PostMessage(ctx, user, id, PostMessageInput{Message: "ok", MessageType: "video"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.PostMessage(ctx, user, "chat_missing", PostMessageInput{Message: "ok"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChatAccessRules(t *testing.T) {
	_, svc := newChatFixture(t, nil)
	ctx := context.Background()
	owner := Member{UserID: 3, Role: model.RoleUser}

	owned, err := svc.StartConversation(ctx, owner, StartConversationInput{Message: "mine"})
	require.NoError(t, err)
	anon, err := svc.StartConversation(ctx, Anonymous{}, StartConversationInput{Message: "guest"})
	require.NoError(t, err)

	tests := []struct {
		name string
		p    Participant
		conv string
		want error
	}{
		{"owner", owner, owned.Conversation.ConversationID, nil},
		{"admin on owned", Member{UserID: 1, Role: model.RoleAdmin}, owned.Conversation.ConversationID, nil},
		{"other user on owned", Member{UserID: 4, Role: model.RoleUser}, owned.Conversation.ConversationID, ErrForbidden},
		{"anonymous on owned", Anonymous{}, owned.Conversation.ConversationID, ErrForbidden},
		{"anonymous on guest", Anonymous{}, anon.Conversation.ConversationID, nil},
		{"user on guest", Member{UserID: 4, Role: model.RoleUser}, anon.Conversation.ConversationID, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PostMessage(ctx, tt.p, tt.conv, PostMessageInput{Message: "x"})
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestMarkRead(t *testing.T) {
	db, svc := newChatFixture(t, nil)
	ctx := context.Background()
	admin := Member{UserID: 1, Role: model.RoleAdmin}

	res, err := svc.StartConversation(ctx, Anonymous{}, StartConversationInput{Message: "one"})
	require.NoError(t, err)
	id := res.Conversation.ConversationID
	_, err = svc.PostMessage(ctx, Anonymous{}, id, PostMessageInput{Message: "two"})
	require.NoError(t, err)
	_, err = svc.PostMessage(ctx, admin, id, PostMessageInput{Message: "reply"})
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(ctx, admin, id))
	c := loadConversation(t, db, id)
	assert.Equal(t, 0, c.Unread.Admin)
	assert.Equal(t, 1, c.Unread.User)

	var msgs []model.ChatMessage
	require.NoError(t, db.Where("conversation_id = ?", id).Order("id").Find(&msgs).Error)
	require.Len(t, msgs, 3)
	assert.True(t, msgs[0].IsRead)
	assert.True(t, msgs[1].IsRead)
	assert.NotNil(t, msgs[1].ReadAt)
	assert.False(t, msgs[2].IsRead, "admin's own message stays unread for the user")
}

func TestListMessagesChronological(t *testing.T) {
	_, svc := newChatFixture(t, nil)
	ctx := context.Background()

	res, err := svc.StartConversation(ctx, Anonymous{}, StartConversationInput{Message: "m0"})
	require.NoError(t, err)
	id := res.Conversation.ConversationID
	for _, m := range []string{"m1", "m2", "m3", "m4"} {
		_, err := svc.PostMessage(ctx, Anonymous{}, id, PostMessageInput{Message: m})
		require.NoError(t, err)
	}

	page, err := svc.ListMessages(ctx, Anonymous{}, id, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Pagination.Total)
	var got []string
	for _, m := range page.Items {
		got = append(got, m.Message)
	}
	assert.Equal(t, []string{"m2", "m3", "m4"}, got, "newest page, oldest first")

	_, err = svc.ListMessages(ctx, Anonymous{}, "chat_missing", 1, 10)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConversationStatusAndListing(t *testing.T) {
	_, svc := newChatFixture(t, nil)
	ctx := context.Background()

	first, err := svc.StartConversation(ctx, Anonymous{}, StartConversationInput{Message: "a"})
	require.NoError(t, err)
	second, err := svc.StartConversation(ctx, Anonymous{}, StartConversationInput{Message: "b"})
	require.NoError(t, err)

	c, err := svc.UpdateConversationStatus(ctx, first.Conversation.ConversationID, model.ConversationClosed)
	require.NoError(t, err)
	assert.Equal(t, model.ConversationClosed, c.Status)

	_, err = svc.UpdateConversationStatus(ctx, first.Conversation.ConversationID, "archived")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.UpdateConversationStatus(ctx, "chat_missing", model.ConversationClosed)
	assert.ErrorIs(t, err, ErrNotFound)

	closed, err := svc.ListConversations(ctx, model.ConversationClosed, 1, 10)
	require.NoError(t, err)
	require.Len(t, closed.Items, 1)
	assert.Equal(t, first.Conversation.ConversationID, closed.Items[0].ConversationID)

	all, err := svc.ListConversations(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Pagination.Total)
	ids := []string{all.Items[0].ConversationID, all.Items[1].ConversationID}
	assert.ElementsMatch(t, []string{first.Conversation.ConversationID, second.Conversation.ConversationID}, ids)

	_, err = svc.ListConversations(ctx, "bogus", 1, 10)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAttachFile(t *testing.T) {
	up := &fakeUploader{}
	db, svc := newChatFixture(t, up)
	ctx := context.Background()

	res, err := svc.StartConversation(ctx, Anonymous{}, StartConversationInput{Message: "see attached"})
	require.NoError(t, err)
	id := res.Conversation.ConversationID

	m, err := svc.AttachFile(ctx, Anonymous{}, id, AttachmentInput{
		Filename:    "receipt.png",
		ContentType: "image/png",
		Body:        strings.NewReader("png-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.MessageImage, m.MessageType)
	assert.Equal(t, "receipt.png", m.Message)
	require.Len(t, m.Attachments, 1)
	assert.Equal(t, int64(len("png-bytes")), m.Attachments[0].FileSize)
	assert.Contains(t, m.Attachments[0].URL, id)
	require.Len(t, up.paths, 1)

	m, err = svc.AttachFile(ctx, Anonymous{}, id, AttachmentInput{
		Filename: "invoice.pdf",
		Caption:  "my invoice",
		Body:     strings.NewReader("%PDF"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.MessageFile, m.MessageType)
	assert.Equal(t, "application/octet-stream", m.Attachments[0].FileType)

	var stored model.ChatMessage
	require.NoError(t, db.First(&stored, m.ID).Error)
	assert.Equal(t, "my invoice", stored.Message)
	require.Len(t, stored.Attachments, 1)
	assert.Equal(t, "invoice.pdf", stored.Attachments[0].Filename)

	_, err = svc.AttachFile(ctx, Anonymous{}, id, AttachmentInput{
		Filename: "big.bin",
		Size:     MaxAttachmentSize + 1,
		Body:     strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, ErrValidation)

	up.err = errors.New("bucket gone")
	_, err = svc.AttachFile(ctx, Anonymous{}, id, AttachmentInput{Filename: "a.txt", Body: strings.NewReader("x")})
	assert.Error(t, err)

	c := loadConversation(t, db, id)
	assert.Equal(t, 3, c.Unread.Admin)
}

func TestAttachFileWithoutStorage(t *testing.T) {
	_, svc := newChatFixture(t, nil)
	_, err := svc.AttachFile(context.Background(), Anonymous{}, "chat_x", AttachmentInput{Filename: "a.txt", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrStorageDisabled)
}

func TestParticipantFor(t *testing.T) {
	assert.Equal(t, Anonymous{}, ParticipantFor(nil))
	assert.Equal(t, Member{UserID: 5, Role: model.RoleAdmin}, ParticipantFor(&Actor{UserID: 5, Role: model.RoleAdmin}))
}
