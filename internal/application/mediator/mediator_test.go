package mediator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/remoteminer-go/internal/application/mediator"
)

type pingQuery struct{ Value string }

type pingHandler struct{}

func (pingHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	return "pong:" + request.(*pingQuery).Value, nil
}

func TestMediator_DispatchesThroughMiddlewaresInOrder(t *testing.T) {
	m := mediator.NewMediator()
	require.NoError(t, mediator.RegisterHandler[*pingQuery](m, pingHandler{}))

	var order []string
	trace := func(name string) mediator.Middleware {
		return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
			order = append(order, name+":in")
			resp, err := next(ctx, request)
			order = append(order, name+":out")
			return resp, err
		}
	}
	m.RegisterMiddleware(trace("outer"))
	m.RegisterMiddleware(trace("inner"))

	resp, err := m.Send(context.Background(), &pingQuery{Value: "a"})

	require.NoError(t, err)
	assert.Equal(t, "pong:a", resp)
	assert.Equal(t, []string{"outer:in", "inner:in", "inner:out", "outer:out"}, order)
}

func TestMediator_Errors(t *testing.T) {
	m := mediator.NewMediator()
	require.NoError(t, mediator.RegisterHandler[*pingQuery](m, pingHandler{}))

	assert.Error(t, mediator.RegisterHandler[*pingQuery](m, pingHandler{}), "duplicate registration")

	_, err := m.Send(context.Background(), nil)
	assert.Error(t, err)

	_, err = m.Send(context.Background(), &struct{}{})
	assert.ErrorContains(t, err, "no handler registered")
}

type claimCommand struct{}

func TestRequestNameAndKind(t *testing.T) {
	assert.Equal(t, "pingQuery", mediator.RequestName(&pingQuery{}))
	assert.Equal(t, mediator.KindQuery, mediator.RequestKind(&pingQuery{}))
	assert.Equal(t, "claimCommand", mediator.RequestName(claimCommand{}))
	assert.Equal(t, mediator.KindCommand, mediator.RequestKind(&claimCommand{}))
	assert.Equal(t, "Unknown", mediator.RequestName(nil))
}
