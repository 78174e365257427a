package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainpayout "staymarket/internal/domain/payout"
	domainproperty "staymarket/internal/domain/property"
	"staymarket/internal/domain/shared/money"
)

type PayoutRepository struct {
	col *mongo.Collection
}

func NewPayoutRepository(db *mongo.Database) *PayoutRepository {
	col := db.Collection("payouts")
	for _, idx := range []mongo.IndexModel{
		{Keys: bson.D{{Key: "host", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "reference", Value: 1}}, Options: options.Index().SetUnique(true)},
	} {
		_, _ = col.Indexes().CreateOne(context.Background(), idx)
	}
	return &PayoutRepository{col: col}
}

func (r *PayoutRepository) ByID(ctx context.Context, id domainpayout.PayoutID) (*domainpayout.Payout, error) {
	var doc payoutDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainpayout.ErrPayoutNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *PayoutRepository) Save(ctx context.Context, p *domainpayout.Payout) error {
	doc := newPayoutDocument(p)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}

func (r *PayoutRepository) ListByHost(ctx context.Context, host domainproperty.HostID) ([]*domainpayout.Payout, error) {
	cursor, err := r.col.Find(ctx, bson.M{"host": string(host)}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainpayout.Payout
	for cursor.Next(ctx) {
		var doc payoutDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

func (r *PayoutRepository) SumByHostAndStatuses(ctx context.Context, host domainproperty.HostID, statuses []domainpayout.Status) (money.Money, error) {
	raw := make([]string, 0, len(statuses))
	for _, s := range statuses {
		raw = append(raw, string(s))
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"host": string(host), "status": bson.M{"$in": raw}}}},
		{{Key: "$group", Value: bson.M{
			"_id":      "$amount.currency",
			"total":    bson.M{"$sum": "$amount.amount"},
			"currency": bson.M{"$first": "$amount.currency"},
		}}},
	}
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return money.Money{}, err
	}
	defer cursor.Close(ctx)

	var result struct {
		Total    int64  `bson:"total"`
		Currency string `bson:"currency"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return money.Money{}, err
		}
	}
	if err := cursor.Err(); err != nil {
		return money.Money{}, err
	}
	return money.Money{Amount: result.Total, Currency: result.Currency}, nil
}

// SequenceCounter allocates payout numbers from a counters document with an
// atomic $inc, so concurrent requests never collide.
type SequenceCounter struct {
	col  *mongo.Collection
	name string
}

func NewSequenceCounter(db *mongo.Database, name string) *SequenceCounter {
	return &SequenceCounter{col: db.Collection("counters"), name: name}
}

func (s *SequenceCounter) Next(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var doc struct {
		Value int64 `bson:"value"`
	}
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": s.name}, bson.M{"$inc": bson.M{"value": 1}}, opts).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Value, nil
}

type methodDetailsDocument struct {
	BankName      string `bson:"bank_name,omitempty"`
	AccountName   string `bson:"account_name,omitempty"`
	AccountNumber string `bson:"account_number,omitempty"`
	RoutingNumber string `bson:"routing_number,omitempty"`
	PayPalEmail   string `bson:"paypal_email,omitempty"`
}

type payoutDocument struct {
	ID        string                `bson:"_id"`
	Reference string                `bson:"reference"`
	Host      string                `bson:"host"`
	Amount    money.Money           `bson:"amount"`
	Method    string                `bson:"method"`
	Details   methodDetailsDocument `bson:"details"`
	Status    string                `bson:"status"`
	Notes     string                `bson:"notes,omitempty"`
	CreatedAt int64                 `bson:"created_at"`
	UpdatedAt int64                 `bson:"updated_at"`
}

func newPayoutDocument(p *domainpayout.Payout) payoutDocument {
	return payoutDocument{
		ID:        string(p.ID),
		Reference: p.Reference,
		Host:      string(p.Host),
		Amount:    p.Amount,
		Method:    string(p.Method),
		Details: methodDetailsDocument{
			BankName:      p.Details.BankName,
			AccountName:   p.Details.AccountName,
			AccountNumber: p.Details.AccountNumber,
			RoutingNumber: p.Details.RoutingNumber,
			PayPalEmail:   p.Details.PayPalEmail,
		},
		Status:    string(p.Status),
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt.UnixMilli(),
		UpdatedAt: p.UpdatedAt.UnixMilli(),
	}
}

func (d payoutDocument) toAggregate() *domainpayout.Payout {
	return &domainpayout.Payout{
		ID:        domainpayout.PayoutID(d.ID),
		Reference: d.Reference,
		Host:      domainproperty.HostID(d.Host),
		Amount:    d.Amount,
		Method:    domainpayout.Method(d.Method),
		Details: domainpayout.MethodDetails{
			BankName:      d.Details.BankName,
			AccountName:   d.Details.AccountName,
			AccountNumber: d.Details.AccountNumber,
			RoutingNumber: d.Details.RoutingNumber,
			PayPalEmail:   d.Details.PayPalEmail,
		},
		Status:    domainpayout.Status(d.Status),
		Notes:     d.Notes,
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
	}
}

var _ domainpayout.Repository = (*PayoutRepository)(nil)
var _ domainpayout.Sequence = (*SequenceCounter)(nil)
