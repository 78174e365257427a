package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"staymarket/internal/app/commands"
	"staymarket/internal/app/dto"
	"staymarket/internal/app/handlers/support"
	"staymarket/internal/app/queries"
	"staymarket/internal/app/uow"
	domainmessaging "staymarket/internal/domain/messaging"
	domainproperty "staymarket/internal/domain/property"
	domainuser "staymarket/internal/domain/user"
)

const (
	startConversationKey = "chat.conversations.start"
	sendMessageKey       = "chat.messages.send"
	listConversationsKey = "chat.conversations.list"
	listMessagesKey      = "chat.messages.list"
)

var (
	ErrParticipantsRequired = errors.New("chat: guest and property are required")
	ErrSideRequired         = errors.New("chat: guest or host id required")
)

// Uploader stores a message attachment and returns its public URL. The object
// store implementation lives in infra.
type Uploader interface {
	Upload(ctx context.Context, name, contentType string, size int64, r io.Reader) (string, error)
}

type StartConversationCommand struct {
	GuestID    string
	PropertyID string
}

func (c StartConversationCommand) Key() string { return startConversationKey }

type StartConversationHandler struct {
	Logger *slog.Logger
}

// Handle returns the existing thread for the pair when one exists; a guest
// never gets two threads about the same property.
func (h *StartConversationHandler) Handle(ctx context.Context, cmd StartConversationCommand) (*dto.ConversationDTO, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	guest := domainuser.ID(strings.TrimSpace(cmd.GuestID))
	propID := domainproperty.PropertyID(strings.TrimSpace(cmd.PropertyID))
	if guest == "" || propID == "" {
		return nil, ErrParticipantsRequired
	}

	existing, err := unit.Conversations().ByParticipants(ctx, guest, propID)
	if err == nil {
		result := dto.MapConversation(existing)
		return &result, nil
	}
	if !errors.Is(err, domainmessaging.ErrConversationNotFound) {
		return nil, err
	}

	if _, err := unit.Properties().ByID(ctx, propID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	conv := &domainmessaging.Conversation{
		ID:            domainmessaging.ConversationID(uuid.NewString()),
		GuestID:       guest,
		PropertyID:    propID,
		LastMessageAt: now,
		CreatedAt:     now,
	}
	if err := unit.Conversations().Save(ctx, conv); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("conversation started", "conversation_id", conv.ID, "guest_id", guest, "property_id", propID)
	}
	result := dto.MapConversation(conv)
	return &result, nil
}

type AttachmentUpload struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

type SendMessageCommand struct {
	ConversationID string
	SenderID       string
	Sender         string
	Body           string
	Uploads        []AttachmentUpload
}

func (c SendMessageCommand) Key() string { return sendMessageKey }

type SendMessageHandler struct {
	Uploads Uploader
	Logger  *slog.Logger
}

func (h *SendMessageHandler) Handle(ctx context.Context, cmd SendMessageCommand) (*dto.MessageDTO, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	conv, err := unit.Conversations().ByID(ctx, domainmessaging.ConversationID(cmd.ConversationID))
	if err != nil {
		return nil, err
	}
	sender, err := domainmessaging.ParseSenderRole(cmd.Sender)
	if err != nil {
		return nil, err
	}
	if err := verifyParticipant(ctx, unit, conv, sender, cmd.SenderID); err != nil {
		return nil, err
	}

	attachments, err := h.storeUploads(ctx, cmd.Uploads)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	msg, err := domainmessaging.NewMessage(domainmessaging.NewMessageParams{
		ID:             domainmessaging.MessageID(uuid.NewString()),
		ConversationID: conv.ID,
		Sender:         sender,
		Body:           cmd.Body,
		Attachments:    attachments,
		Now:            now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Conversations().AppendMessage(ctx, msg); err != nil {
		return nil, err
	}
	conv.LastMessageAt = msg.CreatedAt
	if err := unit.Conversations().Save(ctx, conv); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Debug("message sent", "conversation_id", conv.ID, "sender", sender, "attachments", len(attachments))
	}
	result := dto.MapMessage(msg)
	return &result, nil
}

func (h *SendMessageHandler) storeUploads(ctx context.Context, uploads []AttachmentUpload) ([]domainmessaging.Attachment, error) {
	if len(uploads) == 0 {
		return nil, nil
	}
	if h.Uploads == nil {
		return nil, errors.New("chat: attachment storage not configured")
	}
	out := make([]domainmessaging.Attachment, 0, len(uploads))
	for _, u := range uploads {
		url, err := h.Uploads.Upload(ctx, u.Name, u.ContentType, u.Size, u.Content)
		if err != nil {
			return nil, err
		}
		out = append(out, domainmessaging.Attachment{URL: url, Name: u.Name, ContentType: u.ContentType})
	}
	return out, nil
}

type ListConversationsQuery struct {
	// Exactly one of GuestID / HostID is set, depending on which side asks.
	GuestID string
	HostID  string
}

func (q ListConversationsQuery) Key() string { return listConversationsKey }

type ListConversationsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListConversationsHandler) Handle(ctx context.Context, q ListConversationsQuery) (dto.ConversationCollection, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ConversationCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	var conversations []*domainmessaging.Conversation
	switch {
	case strings.TrimSpace(q.GuestID) != "":
		conversations, err = unit.Conversations().ListByGuest(execCtx, domainuser.ID(q.GuestID))
	case strings.TrimSpace(q.HostID) != "":
		conversations, err = listHostConversations(execCtx, unit, domainproperty.HostID(q.HostID))
	default:
		return dto.ConversationCollection{}, ErrSideRequired
	}
	if err != nil {
		return dto.ConversationCollection{}, err
	}

	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].LastMessageAt.After(conversations[j].LastMessageAt)
	})
	items := make([]dto.ConversationDTO, 0, len(conversations))
	for _, c := range conversations {
		items = append(items, dto.MapConversation(c))
	}
	return dto.ConversationCollection{Items: items}, nil
}

// listHostConversations fans out over the host's listings; hosts do not own
// conversations directly, their properties do.
func listHostConversations(ctx context.Context, unit uow.UnitOfWork, host domainproperty.HostID) ([]*domainmessaging.Conversation, error) {
	listings, err := unit.Properties().ListByHost(ctx, host)
	if err != nil {
		return nil, err
	}
	var out []*domainmessaging.Conversation
	for _, p := range listings {
		conversations, err := unit.Conversations().ListByProperty(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, conversations...)
	}
	return out, nil
}

type ListMessagesQuery struct {
	ConversationID string
	ReaderID       string
	Reader         string
	// MarkRead flags the other side's messages as read while fetching.
	MarkRead bool
}

func (q ListMessagesQuery) Key() string { return listMessagesKey }

type ListMessagesHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListMessagesHandler) Handle(ctx context.Context, q ListMessagesQuery) (dto.MessageCollection, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.MessageCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	conv, err := unit.Conversations().ByID(execCtx, domainmessaging.ConversationID(q.ConversationID))
	if err != nil {
		return dto.MessageCollection{}, err
	}
	reader, err := domainmessaging.ParseSenderRole(q.Reader)
	if err != nil {
		return dto.MessageCollection{}, err
	}
	if err := verifyParticipant(execCtx, unit, conv, reader, q.ReaderID); err != nil {
		return dto.MessageCollection{}, err
	}

	if q.MarkRead {
		if err := unit.Conversations().MarkRead(execCtx, conv.ID, reader); err != nil {
			return dto.MessageCollection{}, err
		}
	}

	messages, err := unit.Conversations().Messages(execCtx, conv.ID)
	if err != nil {
		return dto.MessageCollection{}, err
	}
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	items := make([]dto.MessageDTO, 0, len(messages))
	for _, m := range messages {
		items = append(items, dto.MapMessage(m))
	}
	return dto.MessageCollection{Items: items}, nil
}

// verifyParticipant checks the acting user really is the guest of the thread
// or the host of the property it concerns.
func verifyParticipant(ctx context.Context, unit uow.UnitOfWork, conv *domainmessaging.Conversation, role domainmessaging.SenderRole, actorID string) error {
	actorID = strings.TrimSpace(actorID)
	switch role {
	case domainmessaging.SenderGuest:
		if string(conv.GuestID) != actorID {
			return domainmessaging.ErrNotParticipant
		}
	case domainmessaging.SenderHost:
		prop, err := unit.Properties().ByID(ctx, conv.PropertyID)
		if err != nil {
			return err
		}
		if !prop.BelongsTo(domainproperty.HostID(actorID)) {
			return domainmessaging.ErrNotParticipant
		}
	default:
		return domainmessaging.ErrUnknownSenderRole
	}
	return nil
}

var _ commands.Handler[StartConversationCommand, *dto.ConversationDTO] = (*StartConversationHandler)(nil)
var _ commands.Handler[SendMessageCommand, *dto.MessageDTO] = (*SendMessageHandler)(nil)
var _ queries.Handler[ListConversationsQuery, dto.ConversationCollection] = (*ListConversationsHandler)(nil)
var _ queries.Handler[ListMessagesQuery, dto.MessageCollection] = (*ListMessagesHandler)(nil)
