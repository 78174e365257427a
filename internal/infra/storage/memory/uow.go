package memory

import (
	"context"
	"errors"

	"staymarket/internal/app/uow"
	domainbooking "staymarket/internal/domain/booking"
	domainmessaging "staymarket/internal/domain/messaging"
	domainpayout "staymarket/internal/domain/payout"
	domainproperty "staymarket/internal/domain/property"
	domainuser "staymarket/internal/domain/user"
)

var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory wires the in-memory repositories into a unit-of-work boundary. No
// isolation is provided but the abstraction matches the application ports.
type Factory struct {
	PropertyRepo     domainproperty.Repository
	BookingRepo      domainbooking.Repository
	PayoutRepo       domainpayout.Repository
	PayoutSeq        domainpayout.Sequence
	UserRepo         domainuser.Repository
	ConversationRepo domainmessaging.Repository
}

// NewFactory builds a factory over a fresh set of in-memory stores.
func NewFactory() Factory {
	properties := NewPropertyRepository()
	return Factory{
		PropertyRepo:     properties,
		BookingRepo:      NewBookingRepository(properties),
		PayoutRepo:       NewPayoutRepository(),
		PayoutSeq:        NewSequenceCounter(0),
		UserRepo:         NewUserRepository(),
		ConversationRepo: NewConversationRepository(),
	}
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.PropertyRepo == nil || f.BookingRepo == nil || f.PayoutRepo == nil ||
		f.PayoutSeq == nil || f.UserRepo == nil || f.ConversationRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{factory: f}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by the shared in-memory stores.
type Unit struct {
	factory Factory
}

func (u *Unit) Properties() domainproperty.Repository       { return u.factory.PropertyRepo }
func (u *Unit) Bookings() domainbooking.Repository          { return u.factory.BookingRepo }
func (u *Unit) Payouts() domainpayout.Repository            { return u.factory.PayoutRepo }
func (u *Unit) PayoutSequence() domainpayout.Sequence       { return u.factory.PayoutSeq }
func (u *Unit) Users() domainuser.Repository                { return u.factory.UserRepo }
func (u *Unit) Conversations() domainmessaging.Repository   { return u.factory.ConversationRepo }

func (u *Unit) Commit(ctx context.Context) error   { return nil }
func (u *Unit) Rollback(ctx context.Context) error { return nil }

var _ uow.UoWFactory = Factory{}
var _ uow.UnitOfWork = (*Unit)(nil)
