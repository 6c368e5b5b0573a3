package controller

import "context"

type contextKey int

const (
	clientIDCtxKey contextKey = iota
	connStateCtxKey
)

func (c controller) getClientIDFromCtx(ctx context.Context) string {
	clientID, ok := ctx.Value(clientIDCtxKey).(string)
	if !ok {
		return ""
	}

	return clientID
}

func (c controller) getConnStateFromCtx(ctx context.Context) *connState {
	state, ok := ctx.Value(connStateCtxKey).(*connState)
	if !ok {
		return nil
	}

	return state
}
