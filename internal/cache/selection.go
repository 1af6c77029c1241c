package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"booking-api/internal/selection"
)

const (
	selectionPrefix = "selection:"
	selectionTTL    = 30 * time.Minute
)

// SelectionStore is a selection.Store backed by Redis.
type SelectionStore struct {
	client *Client
}

func NewSelectionStore(client *Client) *SelectionStore {
	return &SelectionStore{client: client}
}

func (s *SelectionStore) Get(ctx context.Context, sessionID string) (*selection.Selector, error) {
	raw, err := s.client.Get(ctx, selectionPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sel := &selection.Selector{}
	if err := json.Unmarshal(raw, sel); err != nil {
		return nil, err
	}
	return sel, nil
}

func (s *SelectionStore) Save(ctx context.Context, sessionID string, sel *selection.Selector) error {
	raw, err := json.Marshal(sel)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, selectionPrefix+sessionID, raw, selectionTTL).Err()
}
