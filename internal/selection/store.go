package selection

import "context"

// Store persists selector state per session so selection survives across
// stateless requests.
type Store interface {
	Get(ctx context.Context, sessionID string) (*Selector, error)
	Save(ctx context.Context, sessionID string, sel *Selector) error
}
