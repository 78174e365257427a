package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainproperty "staymarket/internal/domain/property"
	"staymarket/internal/domain/shared/money"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type PropertyRepository struct {
	col *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	col := db.Collection("properties")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "host", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &PropertyRepository{col: col}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperty.PropertyID) (*domainproperty.Property, error) {
	var doc propertyDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainproperty.ErrPropertyNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save uses version-filtered upserts: a concurrent writer makes the filter
// miss and the duplicate key on _id surfaces as ErrConcurrentUpdate.
func (r *PropertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	doc := newPropertyDocument(p)
	filter := bson.M{"_id": doc.ID, "version": p.Version}
	doc.Version = p.Version + 1
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
	p.Version = doc.Version
	return nil
}

func (r *PropertyRepository) Search(ctx context.Context, params domainproperty.SearchParams) (domainproperty.SearchResult, error) {
	opts := params.Normalized()
	filter := bson.M{}
	if opts.VisibleOnly {
		filter["active"] = true
		filter["approval"] = string(domainproperty.ApprovalApproved)
	}
	if opts.Host != "" {
		filter["host"] = string(opts.Host)
	}
	if opts.Location != "" {
		filter["location"] = bson.M{"$regex": opts.Location, "$options": "i"}
	}
	if opts.MinGuests > 0 {
		filter["guest_limit"] = bson.M{"$gte": opts.MinGuests}
	}
	rate := bson.M{}
	if opts.PriceMinCents > 0 {
		rate["$gte"] = opts.PriceMinCents
	}
	if opts.PriceMaxCents > 0 {
		rate["$lte"] = opts.PriceMaxCents
	}
	if len(rate) > 0 {
		filter["nightly_rate.amount"] = rate
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return domainproperty.SearchResult{}, err
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "nightly_rate.amount", Value: 1}, {Key: "created_at", Value: -1}}).
		SetSkip(int64(opts.Offset)).
		SetLimit(int64(opts.Limit))
	cursor, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return domainproperty.SearchResult{}, err
	}
	defer cursor.Close(ctx)

	items := make([]*domainproperty.Property, 0, opts.Limit)
	for cursor.Next(ctx) {
		var doc propertyDocument
		if err := cursor.Decode(&doc); err != nil {
			return domainproperty.SearchResult{}, err
		}
		items = append(items, doc.toAggregate())
	}
	if err := cursor.Err(); err != nil {
		return domainproperty.SearchResult{}, err
	}
	return domainproperty.SearchResult{Items: items, Total: int(total)}, nil
}

func (r *PropertyRepository) ListByHost(ctx context.Context, host domainproperty.HostID) ([]*domainproperty.Property, error) {
	cursor, err := r.col.Find(ctx, bson.M{"host": string(host)})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainproperty.Property
	for cursor.Next(ctx) {
		var doc propertyDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

// hostPropertyIDs supports booking host queries without an aggregation join.
func (r *PropertyRepository) hostPropertyIDs(ctx context.Context, host domainproperty.HostID) ([]string, error) {
	cursor, err := r.col.Find(ctx, bson.M{"host": string(host)}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, cursor.Err()
}

type propertyDocument struct {
	ID          string      `bson:"_id"`
	Host        string      `bson:"host"`
	Title       string      `bson:"title"`
	Description string      `bson:"description"`
	Location    string      `bson:"location"`
	NightlyRate money.Money `bson:"nightly_rate"`
	Bedrooms    int         `bson:"bedrooms"`
	Bathrooms   int         `bson:"bathrooms"`
	GuestLimit  int         `bson:"guest_limit"`
	Approval    string      `bson:"approval"`
	Active      bool        `bson:"active"`
	PhotoURLs   []string    `bson:"photo_urls,omitempty"`
	CreatedAt   int64       `bson:"created_at"`
	UpdatedAt   int64       `bson:"updated_at"`
	Version     int64       `bson:"version"`
}

func newPropertyDocument(p *domainproperty.Property) propertyDocument {
	return propertyDocument{
		ID:          string(p.ID),
		Host:        string(p.Host),
		Title:       p.Title,
		Description: p.Description,
		Location:    p.Location,
		NightlyRate: p.NightlyRate,
		Bedrooms:    p.Bedrooms,
		Bathrooms:   p.Bathrooms,
		GuestLimit:  p.GuestLimit,
		Approval:    string(p.Approval),
		Active:      p.Active,
		PhotoURLs:   p.PhotoURLs,
		CreatedAt:   p.CreatedAt.UnixMilli(),
		UpdatedAt:   p.UpdatedAt.UnixMilli(),
		Version:     p.Version,
	}
}

func (d propertyDocument) toAggregate() *domainproperty.Property {
	return &domainproperty.Property{
		ID:          domainproperty.PropertyID(d.ID),
		Host:        domainproperty.HostID(d.Host),
		Title:       d.Title,
		Description: d.Description,
		Location:    d.Location,
		NightlyRate: d.NightlyRate,
		Bedrooms:    d.Bedrooms,
		Bathrooms:   d.Bathrooms,
		GuestLimit:  d.GuestLimit,
		Approval:    domainproperty.Approval(d.Approval),
		Active:      d.Active,
		PhotoURLs:   d.PhotoURLs,
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
		Version:     d.Version,
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var _ domainproperty.Repository = (*PropertyRepository)(nil)
