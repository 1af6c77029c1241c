// Package session carries caller identity as an explicit value threaded
// through calls instead of ambient global state.
package session

import "context"

// Session identifies the calling user. Both patients and doctors are users;
// which role applies is decided per endpoint.
type Session struct {
	// ID keys selector state; falls back to the user id when the client does
	// not send its own session key.
	ID       string
	UserID   string
	UserName string
}

type ctxKey struct{}

func WithContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}
