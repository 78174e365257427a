package middleware_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"staymarket/internal/app/commands"
	"staymarket/internal/app/middleware"
	"staymarket/internal/app/uow"
	"staymarket/internal/infra/storage/memory"
)

type fakeCommand struct {
	key        string
	idemKey    string
	validateFn func() error
}

func (c fakeCommand) Key() string { return c.key }

func (c fakeCommand) IdempotencyKey() string { return c.idemKey }

func (c fakeCommand) ResultPrototype() any { return &fakeResult{} }

func (c fakeCommand) Validate() error {
	if c.validateFn != nil {
		return c.validateFn()
	}
	return nil
}

type fakeResult struct {
	Value string `json:"value"`
}

type countingHandler struct {
	calls  int
	result *fakeResult
	err    error
	sawUoW bool
}

func (h *countingHandler) Handle(ctx context.Context, _ fakeCommand) (*fakeResult, error) {
	h.calls++
	_, h.sawUoW = uow.FromContext(ctx)
	return h.result, h.err
}

func newBus(handler *countingHandler) *commands.InMemoryBus {
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, "fake", handler)
	return bus
}

func TestValidationRejectsBeforeHandler(t *testing.T) {
	handler := &countingHandler{result: &fakeResult{}}
	bus := middleware.ChainCommands(newBus(handler), middleware.Validation())

	boom := errors.New("invalid input")
	_, err := bus.Dispatch(context.Background(), fakeCommand{key: "fake", validateFn: func() error { return boom }})
	require.ErrorIs(t, err, boom)
	require.Zero(t, handler.calls)

	_, err = bus.Dispatch(context.Background(), fakeCommand{key: "fake"})
	require.NoError(t, err)
	require.Equal(t, 1, handler.calls)
}

func TestTransactionInjectsUnitOfWork(t *testing.T) {
	handler := &countingHandler{result: &fakeResult{}}
	bus := middleware.ChainCommands(newBus(handler), middleware.Transaction(memory.NewFactory(), nil))

	_, err := bus.Dispatch(context.Background(), fakeCommand{key: "fake"})
	require.NoError(t, err)
	require.True(t, handler.sawUoW)
}

type sessionCtxKey struct{}

// sessionUnit mimics a driver-backed unit that must bind its session to the
// context before repositories can join the transaction.
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

func TestTransactionBindsUnitSessionToContext(t *testing.T) {
	var sawSession bool
	handler := &ctxHandler{result: &fakeResult{}, inspect: func(ctx context.Context) {
		sawSession, _ = ctx.Value(sessionCtxKey{}).(bool)
	}}
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, "fake", handler)
	chained := middleware.ChainCommands(bus, middleware.Transaction(sessionFactory{inner: memory.NewFactory()}, nil))

	_, err := chained.Dispatch(context.Background(), fakeCommand{key: "fake"})
	require.NoError(t, err)
	require.True(t, sawSession)
}

type ctxHandler struct {
	result  *fakeResult
	inspect func(ctx context.Context)
}

func (h *ctxHandler) Handle(ctx context.Context, _ fakeCommand) (*fakeResult, error) {
	if h.inspect != nil {
		h.inspect(ctx)
	}
	return h.result, nil
}

func TestIdempotencyReplaysStoredResult(t *testing.T) {
	handler := &countingHandler{result: &fakeResult{Value: "first"}}
	bus := middleware.ChainCommands(newBus(handler), middleware.Idempotency(memory.NewIdempotencyStore(), nil))

	cmd := fakeCommand{key: "fake", idemKey: "req-1"}
	first, err := bus.Dispatch(context.Background(), cmd)
	require.NoError(t, err)
	require.Equal(t, &fakeResult{Value: "first"}, first)

	// Same key: the handler does not run again, the stored payload comes back.
	handler.result = &fakeResult{Value: "second"}
	replay, err := bus.Dispatch(context.Background(), cmd)
	require.NoError(t, err)
	require.Equal(t, &fakeResult{Value: "first"}, replay)
	require.Equal(t, 1, handler.calls)

	// A different key executes normally.
	fresh, err := bus.Dispatch(context.Background(), fakeCommand{key: "fake", idemKey: "req-2"})
	require.NoError(t, err)
	require.Equal(t, &fakeResult{Value: "second"}, fresh)
	require.Equal(t, 2, handler.calls)
}

func TestIdempotencyReplaysFailures(t *testing.T) {
	handler := &countingHandler{err: errors.New("downstream broke")}
	bus := middleware.ChainCommands(newBus(handler), middleware.Idempotency(memory.NewIdempotencyStore(), nil))

	cmd := fakeCommand{key: "fake", idemKey: "req-1"}
	_, err := bus.Dispatch(context.Background(), cmd)
	require.EqualError(t, err, "downstream broke")

	handler.err = nil
	_, err = bus.Dispatch(context.Background(), cmd)
	require.EqualError(t, err, "downstream broke")
	require.Equal(t, 1, handler.calls)
}

func TestIdempotencySkipsCommandsWithoutKey(t *testing.T) {
	handler := &countingHandler{result: &fakeResult{}}
	bus := middleware.ChainCommands(newBus(handler), middleware.Idempotency(memory.NewIdempotencyStore(), nil))

	for i := 0; i < 2; i++ {
		_, err := bus.Dispatch(context.Background(), fakeCommand{key: "fake"})
		require.NoError(t, err)
	}
	require.Equal(t, 2, handler.calls)
}
