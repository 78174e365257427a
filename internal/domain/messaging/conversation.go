package messaging

import (
	"context"
	"errors"
	"strings"
	"time"

	"staymarket/internal/domain/property"
	"staymarket/internal/domain/user"
)

var (
	ErrConversationNotFound = errors.New("messaging: conversation not found")
	ErrBodyRequired         = errors.New("messaging: message body or attachment required")
	ErrUnknownSenderRole    = errors.New("messaging: unknown sender role")
	ErrNotParticipant       = errors.New("messaging: not a participant")
)

type ConversationID string

type MessageID string

// SenderRole distinguishes the two sides of a thread.
type SenderRole string

const (
	SenderGuest SenderRole = "guest"
	SenderHost  SenderRole = "host"
)

func ParseSenderRole(raw string) (SenderRole, error) {
	r := SenderRole(strings.ToLower(strings.TrimSpace(raw)))
	switch r {
	case SenderGuest, SenderHost:
		return r, nil
	}
	return "", ErrUnknownSenderRole
}

// Attachment is a file already stored in the object store.
type Attachment struct {
	URL         string `json:"url"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
}

type Message struct {
	ID             MessageID
	ConversationID ConversationID
	Sender         SenderRole
	Body           string
	Read           bool
	Attachments    []Attachment
	CreatedAt      time.Time
}

// Conversation is a thread scoped to exactly one (guest, property) pair. The
// repository enforces uniqueness of that pair.
type Conversation struct {
	ID            ConversationID
	GuestID       user.ID
	PropertyID    property.PropertyID
	LastMessageAt time.Time
	CreatedAt     time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ConversationID) (*Conversation, error)
	// ByParticipants finds the single thread for a (guest, property) pair.
	ByParticipants(ctx context.Context, guest user.ID, prop property.PropertyID) (*Conversation, error)
	Save(ctx context.Context, c *Conversation) error
	ListByGuest(ctx context.Context, guest user.ID) ([]*Conversation, error)
	ListByProperty(ctx context.Context, prop property.PropertyID) ([]*Conversation, error)

	AppendMessage(ctx context.Context, m *Message) error
	Messages(ctx context.Context, id ConversationID) ([]*Message, error)
	// MarkRead flags every message sent by the other side as read.
	MarkRead(ctx context.Context, id ConversationID, reader SenderRole) error
}

type NewMessageParams struct {
	ID             MessageID
	ConversationID ConversationID
	Sender         SenderRole
	Body           string
	Attachments    []Attachment
	Now            time.Time
}

func NewMessage(params NewMessageParams) (*Message, error) {
	body := strings.TrimSpace(params.Body)
	if body == "" && len(params.Attachments) == 0 {
		return nil, ErrBodyRequired
	}
	switch params.Sender {
	case SenderGuest, SenderHost:
	default:
		return nil, ErrUnknownSenderRole
	}
	return &Message{
		ID:             params.ID,
		ConversationID: params.ConversationID,
		Sender:         params.Sender,
		Body:           body,
		Attachments:    append([]Attachment(nil), params.Attachments...),
		CreatedAt:      params.Now.UTC(),
	}, nil
}
