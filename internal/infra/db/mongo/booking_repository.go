package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "staymarket/internal/domain/booking"
	"staymarket/internal/domain/pricing"
	domainproperty "staymarket/internal/domain/property"
)

type BookingRepository struct {
	col        *mongo.Collection
	properties *PropertyRepository
}

func NewBookingRepository(db *mongo.Database, properties *PropertyRepository) *BookingRepository {
	col := db.Collection("bookings")
	for _, idx := range []mongo.IndexModel{
		{Keys: bson.D{{Key: "guest_id", Value: 1}}},
		{Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "status", Value: 1}}},
	} {
		_, _ = col.Indexes().CreateOne(context.Background(), idx)
	}
	return &BookingRepository{col: col, properties: properties}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.BookingID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainbooking.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"guest_id": guestID})
}

func (r *BookingRepository) ListByProperty(ctx context.Context, id domainproperty.PropertyID) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"property_id": string(id)})
}

func (r *BookingRepository) ListByHostAndStatus(ctx context.Context, hostID domainproperty.HostID, status domainbooking.Status) ([]*domainbooking.Booking, error) {
	ids, err := r.properties.hostPropertyIDs(ctx, hostID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	filter := bson.M{"property_id": bson.M{"$in": ids}}
	if status != "" {
		filter["status"] = string(status)
	}
	return r.list(ctx, filter)
}

func (r *BookingRepository) list(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	cursor, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainbooking.Booking
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type guestDocument struct {
	Name  string `bson:"name"`
	Email string `bson:"email"`
	Phone string `bson:"phone,omitempty"`
}

type bookingDocument struct {
	ID           string            `bson:"_id"`
	PropertyID   string            `bson:"property_id"`
	GuestID      string            `bson:"guest_id"`
	Guest        guestDocument     `bson:"guest"`
	Rooms        int               `bson:"rooms"`
	Adults       int               `bson:"adults"`
	Children     int               `bson:"children"`
	CheckIn      int64             `bson:"check_in"`
	CheckOut     int64             `bson:"check_out"`
	Price        pricing.Breakdown `bson:"price"`
	Status       string            `bson:"status"`
	Payment      string            `bson:"payment"`
	CardLastFour string            `bson:"card_last_four,omitempty"`
	CreatedAt    int64             `bson:"created_at"`
	UpdatedAt    int64             `bson:"updated_at"`
	Version      int64             `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:           string(b.ID),
		PropertyID:   string(b.PropertyID),
		GuestID:      b.GuestID,
		Guest:        guestDocument{Name: b.Guest.Name, Email: b.Guest.Email, Phone: b.Guest.Phone},
		Rooms:        b.Rooms,
		Adults:       b.Adults,
		Children:     b.Children,
		CheckIn:      b.Stay.CheckIn.UnixMilli(),
		CheckOut:     b.Stay.CheckOut.UnixMilli(),
		Price:        b.Price,
		Status:       string(b.Status),
		Payment:      string(b.Payment),
		CardLastFour: b.CardLastFour,
		CreatedAt:    b.CreatedAt.UnixMilli(),
		UpdatedAt:    b.UpdatedAt.UnixMilli(),
		Version:      b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:           domainbooking.BookingID(d.ID),
		PropertyID:   domainproperty.PropertyID(d.PropertyID),
		GuestID:      d.GuestID,
		Guest:        domainbooking.GuestDetails{Name: d.Guest.Name, Email: d.Guest.Email, Phone: d.Guest.Phone},
		Rooms:        d.Rooms,
		Adults:       d.Adults,
		Children:     d.Children,
		Stay:         domainbooking.Stay{CheckIn: timestampToTime(d.CheckIn), CheckOut: timestampToTime(d.CheckOut)},
		Price:        d.Price,
		Status:       domainbooking.Status(d.Status),
		Payment:      domainbooking.PaymentMethod(d.Payment),
		CardLastFour: d.CardLastFour,
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
		Version:      d.Version,
	}
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
