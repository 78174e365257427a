package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainmessaging "staymarket/internal/domain/messaging"
	domainproperty "staymarket/internal/domain/property"
	domainuser "staymarket/internal/domain/user"
)

type ConversationRepository struct {
	conversations *mongo.Collection
	messages      *mongo.Collection
}

func NewConversationRepository(db *mongo.Database) *ConversationRepository {
	conversations := db.Collection("conversations")
	pairIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "guest_id", Value: 1}, {Key: "property_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, _ = conversations.Indexes().CreateOne(context.Background(), pairIdx)

	messages := db.Collection("messages")
	msgIdx := mongo.IndexModel{Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "created_at", Value: 1}}}
	_, _ = messages.Indexes().CreateOne(context.Background(), msgIdx)

	return &ConversationRepository{conversations: conversations, messages: messages}
}

func (r *ConversationRepository) ByID(ctx context.Context, id domainmessaging.ConversationID) (*domainmessaging.Conversation, error) {
	var doc conversationDocument
	if err := r.conversations.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainmessaging.ErrConversationNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ConversationRepository) ByParticipants(ctx context.Context, guest domainuser.ID, prop domainproperty.PropertyID) (*domainmessaging.Conversation, error) {
	var doc conversationDocument
	filter := bson.M{"guest_id": string(guest), "property_id": string(prop)}
	if err := r.conversations.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainmessaging.ErrConversationNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ConversationRepository) Save(ctx context.Context, c *domainmessaging.Conversation) error {
	doc := newConversationDocument(c)
	_, err := r.conversations.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}

func (r *ConversationRepository) ListByGuest(ctx context.Context, guest domainuser.ID) ([]*domainmessaging.Conversation, error) {
	return r.listConversations(ctx, bson.M{"guest_id": string(guest)})
}

func (r *ConversationRepository) ListByProperty(ctx context.Context, prop domainproperty.PropertyID) ([]*domainmessaging.Conversation, error) {
	return r.listConversations(ctx, bson.M{"property_id": string(prop)})
}

func (r *ConversationRepository) listConversations(ctx context.Context, filter bson.M) ([]*domainmessaging.Conversation, error) {
	cursor, err := r.conversations.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "last_message_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainmessaging.Conversation
	for cursor.Next(ctx) {
		var doc conversationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

func (r *ConversationRepository) AppendMessage(ctx context.Context, m *domainmessaging.Message) error {
	_, err := r.messages.InsertOne(ctx, newMessageDocument(m))
	return err
}

func (r *ConversationRepository) Messages(ctx context.Context, id domainmessaging.ConversationID) ([]*domainmessaging.Message, error) {
	cursor, err := r.messages.Find(ctx, bson.M{"conversation_id": string(id)}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainmessaging.Message
	for cursor.Next(ctx) {
		var doc messageDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

func (r *ConversationRepository) MarkRead(ctx context.Context, id domainmessaging.ConversationID, reader domainmessaging.SenderRole) error {
	filter := bson.M{
		"conversation_id": string(id),
		"sender":          bson.M{"$ne": string(reader)},
		"read":            false,
	}
	_, err := r.messages.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"read": true}})
	return err
}

type conversationDocument struct {
	ID            string `bson:"_id"`
	GuestID       string `bson:"guest_id"`
	PropertyID    string `bson:"property_id"`
	LastMessageAt int64  `bson:"last_message_at"`
	CreatedAt     int64  `bson:"created_at"`
}

func newConversationDocument(c *domainmessaging.Conversation) conversationDocument {
	return conversationDocument{
		ID:            string(c.ID),
		GuestID:       string(c.GuestID),
		PropertyID:    string(c.PropertyID),
		LastMessageAt: c.LastMessageAt.UnixMilli(),
		CreatedAt:     c.CreatedAt.UnixMilli(),
	}
}

func (d conversationDocument) toAggregate() *domainmessaging.Conversation {
	return &domainmessaging.Conversation{
		ID:            domainmessaging.ConversationID(d.ID),
		GuestID:       domainuser.ID(d.GuestID),
		PropertyID:    domainproperty.PropertyID(d.PropertyID),
		LastMessageAt: timestampToTime(d.LastMessageAt),
		CreatedAt:     timestampToTime(d.CreatedAt),
	}
}

type attachmentDocument struct {
	URL         string `bson:"url"`
	Name        string `bson:"name"`
	ContentType string `bson:"content_type"`
}

type messageDocument struct {
	ID             string               `bson:"_id"`
	ConversationID string               `bson:"conversation_id"`
	Sender         string               `bson:"sender"`
	Body           string               `bson:"body"`
	Read           bool                 `bson:"read"`
	Attachments    []attachmentDocument `bson:"attachments,omitempty"`
	CreatedAt      int64                `bson:"created_at"`
}

func newMessageDocument(m *domainmessaging.Message) messageDocument {
	attachments := make([]attachmentDocument, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		attachments = append(attachments, attachmentDocument{URL: a.URL, Name: a.Name, ContentType: a.ContentType})
	}
	return messageDocument{
		ID:             string(m.ID),
		ConversationID: string(m.ConversationID),
		Sender:         string(m.Sender),
		Body:           m.Body,
		Read:           m.Read,
		Attachments:    attachments,
		CreatedAt:      m.CreatedAt.UnixMilli(),
	}
}

func (d messageDocument) toAggregate() *domainmessaging.Message {
	attachments := make([]domainmessaging.Attachment, 0, len(d.Attachments))
	for _, a := range d.Attachments {
		attachments = append(attachments, domainmessaging.Attachment{URL: a.URL, Name: a.Name, ContentType: a.ContentType})
	}
	return &domainmessaging.Message{
		ID:             domainmessaging.MessageID(d.ID),
		ConversationID: domainmessaging.ConversationID(d.ConversationID),
		Sender:         domainmessaging.SenderRole(d.Sender),
		Body:           d.Body,
		Read:           d.Read,
		Attachments:    attachments,
		CreatedAt:      timestampToTime(d.CreatedAt),
	}
}

var _ domainmessaging.Repository = (*ConversationRepository)(nil)
