package uow

import (
	"context"
	"errors"
)

var ErrUnitOfWorkMissing = errors.New("uow: unit of work missing from context")

// unitKey is unexported so only this package can place units in a context.
type unitKey struct{}

// ContextWithUnitOfWork returns a child context carrying the unit. Handlers
// further down the pipeline pick it up with FromContext instead of opening
// their own transaction.
func ContextWithUnitOfWork(ctx context.Context, unit UnitOfWork) context.Context {
	return context.WithValue(ctx, unitKey{}, unit)
}

// FromContext extracts the ambient unit of work, if any.
func FromContext(ctx context.Context) (UnitOfWork, bool) {
	unit, ok := ctx.Value(unitKey{}).(UnitOfWork)
	if !ok || unit == nil {
		return nil, false
	}
	return unit, true
}
