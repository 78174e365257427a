package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"staymarket/internal/app/commands"
)

// IdempotentCommand opts a command into exactly-once dispatch semantics.
// Commands without a key (or with an empty one) pass straight through.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	ResultPrototype() any // must match the handler result type
}

// IdempotencyRecord stores one command outcome: either a serialized result
// or the error message, never both.
type IdempotencyRecord struct {
	Key        string
	Payload    []byte
	Error      string
	OccurredAt time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSONResultCodec) Decode(data []byte, out any) error { return json.Unmarshal(data, out) }

var errMissingPrototype = errors.New("middleware: idempotent command requires result prototype")

// Idempotency replays the stored outcome for a repeated command key instead
// of running the handler twice. Failed outcomes replay too: a client retrying
// a rejected request gets the same rejection, not a second attempt.
func Idempotency(store IdempotencyStore, codec ResultCodec) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if codec == nil {
		codec = JSONResultCodec{}
	}
	replay := replayer{store: store, codec: codec}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok || idCmd.IdempotencyKey() == "" {
				return nextFn(ctx, cmd)
			}
			key := idCmd.IdempotencyKey()

			rec, found, err := replay.store.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if found {
				return replay.restore(rec, idCmd)
			}

			result, err := nextFn(ctx, cmd)
			if saveErr := replay.persist(ctx, key, result, err); saveErr != nil {
				if err != nil {
					return nil, errors.Join(err, saveErr)
				}
				return nil, saveErr
			}
			return result, err
		})
	}
}

type replayer struct {
	store IdempotencyStore
	codec ResultCodec
}

func (r replayer) restore(rec IdempotencyRecord, cmd IdempotentCommand) (any, error) {
	if rec.Error != "" {
		return nil, errors.New(rec.Error)
	}
	proto := cmd.ResultPrototype()
	if proto == nil {
		return nil, errMissingPrototype
	}
	if err := r.codec.Decode(rec.Payload, proto); err != nil {
		return nil, err
	}
	if rv := reflect.ValueOf(proto); rv.Kind() == reflect.Ptr && !rv.IsNil() {
		return rv.Interface(), nil
	}
	return proto, nil
}

func (r replayer) persist(ctx context.Context, key string, result any, handlerErr error) error {
	rec := IdempotencyRecord{Key: key, OccurredAt: time.Now().UTC()}
	if handlerErr != nil {
		rec.Error = handlerErr.Error()
		return r.store.Save(ctx, rec)
	}
	if result != nil {
		payload, err := r.codec.Encode(result)
		if err != nil {
			return err
		}
		rec.Payload = payload
	}
	return r.store.Save(ctx, rec)
}
