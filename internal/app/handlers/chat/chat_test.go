package chat

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"staymarket/internal/app/uow"
	domainmessaging "staymarket/internal/domain/messaging"
	domainproperty "staymarket/internal/domain/property"
	"staymarket/internal/domain/shared/money"
	"staymarket/internal/infra/storage/memory"
)

type recordingUploader struct {
	names []string
}

func (u *recordingUploader) Upload(_ context.Context, name, _ string, _ int64, r io.Reader) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	u.names = append(u.names, name)
	return "https://cdn.example.com/" + name, nil
}

func newChatEnv(t *testing.T) (memory.Factory, context.Context) {
	t.Helper()
	factory := memory.NewFactory()
	unit, err := factory.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	ctx := uow.ContextWithUnitOfWork(context.Background(), unit)

	now := time.Now()
	prop, err := domainproperty.NewProperty(domainproperty.CreateParams{
		ID:          "prop-1",
		Host:        "host-1",
		Title:       "City flat",
		Location:    "Berlin",
		NightlyRate: money.Must(8000, "USD"),
		GuestLimit:  2,
		Now:         now,
	})
	require.NoError(t, err)
	prop.Approve(now)
	prop.Activate(now)
	require.NoError(t, factory.PropertyRepo.Save(ctx, prop))
	return factory, ctx
}

func TestStartConversationDeduplicatesPair(t *testing.T) {
	_, ctx := newChatEnv(t)
	start := &StartConversationHandler{}

	first, err := start.Handle(ctx, StartConversationCommand{GuestID: "guest-1", PropertyID: "prop-1"})
	require.NoError(t, err)
	second, err := start.Handle(ctx, StartConversationCommand{GuestID: "guest-1", PropertyID: "prop-1"})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	_, err = start.Handle(ctx, StartConversationCommand{GuestID: "guest-1", PropertyID: "missing"})
	require.ErrorIs(t, err, domainproperty.ErrPropertyNotFound)
}

func TestSendMessageParticipantsOnly(t *testing.T) {
	_, ctx := newChatEnv(t)
	start := &StartConversationHandler{}
	conv, err := start.Handle(ctx, StartConversationCommand{GuestID: "guest-1", PropertyID: "prop-1"})
	require.NoError(t, err)

	send := &SendMessageHandler{}
	msg, err := send.Handle(ctx, SendMessageCommand{
		ConversationID: conv.ID,
		SenderID:       "guest-1",
		Sender:         "guest",
		Body:           "Is early check-in possible?",
	})
	require.NoError(t, err)
	require.Equal(t, "guest", msg.Sender)

	// The property owner replies; anyone else is rejected.
	_, err = send.Handle(ctx, SendMessageCommand{
		ConversationID: conv.ID,
		SenderID:       "host-1",
		Sender:         "host",
		Body:           "Sure, from noon.",
	})
	require.NoError(t, err)

	_, err = send.Handle(ctx, SendMessageCommand{
		ConversationID: conv.ID,
		SenderID:       "host-2",
		Sender:         "host",
		Body:           "intruding",
	})
	require.ErrorIs(t, err, domainmessaging.ErrNotParticipant)

	_, err = send.Handle(ctx, SendMessageCommand{
		ConversationID: conv.ID,
		SenderID:       "guest-2",
		Sender:         "guest",
		Body:           "intruding",
	})
	require.ErrorIs(t, err, domainmessaging.ErrNotParticipant)
}

func TestSendMessageStoresAttachments(t *testing.T) {
	_, ctx := newChatEnv(t)
	start := &StartConversationHandler{}
	conv, err := start.Handle(ctx, StartConversationCommand{GuestID: "guest-1", PropertyID: "prop-1"})
	require.NoError(t, err)

	uploader := &recordingUploader{}
	send := &SendMessageHandler{Uploads: uploader}
	msg, err := send.Handle(ctx, SendMessageCommand{
		ConversationID: conv.ID,
		SenderID:       "guest-1",
		Sender:         "guest",
		Body:           "photos attached",
		Uploads: []AttachmentUpload{
			{Name: "door.jpg", ContentType: "image/jpeg", Size: 4, Content: strings.NewReader("data")},
		},
	})
	require.NoError(t, err)
	require.Len(t, msg.Attachments, 1)
	require.Equal(t, "https://cdn.example.com/door.jpg", msg.Attachments[0].URL)
	require.Equal(t, []string{"door.jpg"}, uploader.names)
}

func TestListMessagesMarksRead(t *testing.T) {
	factory, ctx := newChatEnv(t)
	start := &StartConversationHandler{}
	conv, err := start.Handle(ctx, StartConversationCommand{GuestID: "guest-1", PropertyID: "prop-1"})
	require.NoError(t, err)

	send := &SendMessageHandler{}
	_, err = send.Handle(ctx, SendMessageCommand{ConversationID: conv.ID, SenderID: "guest-1", Sender: "guest", Body: "hello"})
	require.NoError(t, err)

	list := &ListMessagesHandler{UoWFactory: factory}
	result, err := list.Handle(ctx, ListMessagesQuery{
		ConversationID: conv.ID,
		ReaderID:       "host-1",
		Reader:         "host",
		MarkRead:       true,
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)

	// Re-reading as the guest shows the host has seen it.
	result, err = list.Handle(ctx, ListMessagesQuery{ConversationID: conv.ID, ReaderID: "guest-1", Reader: "guest"})
	require.NoError(t, err)
	require.True(t, result.Items[0].Read)
}

func TestListConversationsBySide(t *testing.T) {
	factory, ctx := newChatEnv(t)
	start := &StartConversationHandler{}
	_, err := start.Handle(ctx, StartConversationCommand{GuestID: "guest-1", PropertyID: "prop-1"})
	require.NoError(t, err)
	_, err = start.Handle(ctx, StartConversationCommand{GuestID: "guest-2", PropertyID: "prop-1"})
	require.NoError(t, err)

	list := &ListConversationsHandler{UoWFactory: factory}
	guestView, err := list.Handle(ctx, ListConversationsQuery{GuestID: "guest-1"})
	require.NoError(t, err)
	require.Len(t, guestView.Items, 1)

	hostView, err := list.Handle(ctx, ListConversationsQuery{HostID: "host-1"})
	require.NoError(t, err)
	require.Len(t, hostView.Items, 2)

	_, err = list.Handle(ctx, ListConversationsQuery{})
	require.Error(t, err)
}
