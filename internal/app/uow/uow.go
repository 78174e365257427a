package uow

import (
	"context"

	domainbooking "staymarket/internal/domain/booking"
	domainmessaging "staymarket/internal/domain/messaging"
	domainpayout "staymarket/internal/domain/payout"
	domainproperty "staymarket/internal/domain/property"
	domainuser "staymarket/internal/domain/user"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Properties() domainproperty.Repository
	Bookings() domainbooking.Repository
	Payouts() domainpayout.Repository
	PayoutSequence() domainpayout.Sequence
	Users() domainuser.Repository
	Conversations() domainmessaging.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
