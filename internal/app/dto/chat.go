package dto

import (
	"time"

	domainmessaging "staymarket/internal/domain/messaging"
)

type AttachmentDTO struct {
	URL         string `json:"url"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
}

type MessageDTO struct {
	ID             string          `json:"id"`
	ConversationID string          `json:"conversation_id"`
	Sender         string          `json:"sender"`
	Body           string          `json:"body"`
	Read           bool            `json:"read"`
	Attachments    []AttachmentDTO `json:"attachments,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

func MapMessage(m *domainmessaging.Message) MessageDTO {
	attachments := make([]AttachmentDTO, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		attachments = append(attachments, AttachmentDTO{URL: a.URL, Name: a.Name, ContentType: a.ContentType})
	}
	return MessageDTO{
		ID:             string(m.ID),
		ConversationID: string(m.ConversationID),
		Sender:         string(m.Sender),
		Body:           m.Body,
		Read:           m.Read,
		Attachments:    attachments,
		CreatedAt:      m.CreatedAt,
	}
}

type ConversationDTO struct {
	ID            string    `json:"id"`
	GuestID       string    `json:"guest_id"`
	PropertyID    string    `json:"property_id"`
	LastMessageAt time.Time `json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
}

func MapConversation(c *domainmessaging.Conversation) ConversationDTO {
	return ConversationDTO{
		ID:            string(c.ID),
		GuestID:       string(c.GuestID),
		PropertyID:    string(c.PropertyID),
		LastMessageAt: c.LastMessageAt,
		CreatedAt:     c.CreatedAt,
	}
}

type ConversationCollection struct {
	Items []ConversationDTO `json:"items"`
}

type MessageCollection struct {
	Items []MessageDTO `json:"items"`
}
