package support

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"staymarket/internal/app/uow"
	"staymarket/internal/infra/storage/memory"
)

type sessionCtxKey struct{}

type sessionUnit struct {
	uow.UnitOfWork
}

func (u sessionUnit) InjectContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, true)
}

type sessionFactory struct {
	inner uow.UoWFactory
}

func (f sessionFactory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	unit, err := f.inner.Begin(ctx, opts)
	if err != nil {
		return nil, err
	}
	return sessionUnit{UnitOfWork: unit}, nil
}

func TestBeginReadOnlyUnitReusesAmbientUnit(t *testing.T) {
	factory := memory.NewFactory()
	ambient, err := factory.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	ctx := uow.ContextWithUnitOfWork(context.Background(), ambient)

	unit, execCtx, cleanup, err := BeginReadOnlyUnit(ctx, factory)
	require.NoError(t, err)
	require.Nil(t, cleanup)
	require.Equal(t, ambient, unit)
	require.Equal(t, ctx, execCtx)
}

func TestBeginReadOnlyUnitBindsSessionToContext(t *testing.T) {
	factory := sessionFactory{inner: memory.NewFactory()}

	unit, execCtx, cleanup, err := BeginReadOnlyUnit(context.Background(), factory)
	require.NoError(t, err)
	require.NotNil(t, cleanup)
	defer cleanup()

	bound, _ := execCtx.Value(sessionCtxKey{}).(bool)
	require.True(t, bound)

	fromCtx, ok := uow.FromContext(execCtx)
	require.True(t, ok)
	require.Equal(t, unit, fromCtx)
}

func TestBeginReadOnlyUnitRequiresFactory(t *testing.T) {
	_, _, _, err := BeginReadOnlyUnit(context.Background(), nil)
	require.ErrorIs(t, err, uow.ErrUnitOfWorkMissing)
}
