package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pingCommand struct{ fail bool }

func (c pingCommand) Validate() error {
	if c.fail {
		return errors.New("invalid ping")
	}
	return nil
}

type pongCommand struct{}

func (pongCommand) Validate() error { return nil }

type recorder struct {
	names []string
	errs  []error
}

func (r *recorder) RecordCommand(name string, _ time.Duration, err error) {
	r.names = append(r.names, name)
	r.errs = append(r.errs, err)
}

func TestCommandBus_Dispatch(t *testing.T) {
	rec := &recorder{}
	b := NewCommandBus(LoggingMiddleware(zap.NewNop()), MetricsMiddleware(rec))

	require.NoError(t, b.Register(pingCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
		return "pong", nil
	})))
	assert.Error(t, b.Register(pingCommand{}, CommandHandlerFunc(nil)), "duplicate registration")

	res, err := b.Send(context.Background(), pingCommand{})
	require.NoError(t, err)
	assert.Equal(t, "pong", res)
	assert.Equal(t, []string{"pingCommand"}, rec.names)

	_, err = b.Send(context.Background(), pingCommand{fail: true})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = b.Send(context.Background(), pongCommand{})
	assert.ErrorIs(t, err, ErrHandlerNotFound)
	assert.Len(t, rec.names, 1, "rejected commands never reach middleware")
}

func TestPipeline_Order(t *testing.T) {
	var trace []string
	mark := func(name string) Middleware {
		return func(next CommandHandler) CommandHandler {
			return CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
				trace = append(trace, name)
				return next.Handle(ctx, cmd)
			})
		}
	}
	h := NewPipeline(mark("outer"), mark("inner")).Execute(CommandHandlerFunc(func(context.Context, Command) (interface{}, error) {
		trace = append(trace, "handler")
		return nil, nil
	}))

	_, err := h.Handle(context.Background(), pongCommand{})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner", "handler"}, trace)
}

func TestMetricsMiddleware_RecordsErrors(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("boom")
	h := MetricsMiddleware(rec)(CommandHandlerFunc(func(context.Context, Command) (interface{}, error) {
		return nil, boom
	}))

	_, err := h.Handle(context.Background(), pongCommand{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []error{boom}, rec.errs)
	assert.Equal(t, "pongCommand", CommandName(&pongCommand{}))
}
