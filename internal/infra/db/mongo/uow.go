package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staymarket/internal/app/uow"
	domainbooking "staymarket/internal/domain/booking"
	domainmessaging "staymarket/internal/domain/messaging"
	domainpayout "staymarket/internal/domain/payout"
	domainproperty "staymarket/internal/domain/property"
	domainuser "staymarket/internal/domain/user"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory wires Mongo sessions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	PropertyRepo     domainproperty.Repository
	BookingRepo      domainbooking.Repository
	PayoutRepo       domainpayout.Repository
	PayoutSeq        domainpayout.Sequence
	UserRepo         domainuser.Repository
	ConversationRepo domainmessaging.Repository
}

// NewFactory builds the default repository set over the given database.
func NewFactory(db *mongo.Database) Factory {
	properties := NewPropertyRepository(db)
	return Factory{
		DB:               db,
		PropertyRepo:     properties,
		BookingRepo:      NewBookingRepository(db, properties),
		PayoutRepo:       NewPayoutRepository(db),
		PayoutSeq:        NewSequenceCounter(db, "payouts"),
		UserRepo:         NewUserRepository(db),
		ConversationRepo: NewConversationRepository(db),
	}
}

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().
		SetReadConcern(f.DB.ReadConcern()).
		SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{factory: f, session: session}, nil
}

type Unit struct {
	factory Factory
	session mongo.Session
}

func (u *Unit) Properties() domainproperty.Repository     { return u.factory.PropertyRepo }
func (u *Unit) Bookings() domainbooking.Repository        { return u.factory.BookingRepo }
func (u *Unit) Payouts() domainpayout.Repository          { return u.factory.PayoutRepo }
func (u *Unit) PayoutSequence() domainpayout.Sequence     { return u.factory.PayoutSeq }
func (u *Unit) Users() domainuser.Repository              { return u.factory.UserRepo }
func (u *Unit) Conversations() domainmessaging.Repository { return u.factory.ConversationRepo }

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext makes the Mongo session visible to repositories downstream.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var _ uow.UoWFactory = Factory{}
var _ uow.UnitOfWork = (*Unit)(nil)
