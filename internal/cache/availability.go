package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"booking-api/internal/model"
)

const availabilityPrefix = "availability:"

// GetAvailability returns a cached calendar for the doctor, or false on a
// miss. Cache errors read as misses; the calendar is always recomputable.
func (c *Client) GetAvailability(ctx context.Context, doctorID string) ([]model.AvailabilityDay, bool) {
	raw, err := c.Get(ctx, availabilityPrefix+doctorID).Bytes()
	if err != nil {
		return nil, false
	}
	var days []model.AvailabilityDay
	if err := json.Unmarshal(raw, &days); err != nil {
		return nil, false
	}
	return days, true
}

func (c *Client) SetAvailability(ctx context.Context, doctorID string, days []model.AvailabilityDay, ttl time.Duration) error {
	raw, err := json.Marshal(days)
	if err != nil {
		return err
	}
	return c.Set(ctx, availabilityPrefix+doctorID, raw, ttl).Err()
}

func (c *Client) InvalidateAvailability(ctx context.Context, doctorID string) error {
	err := c.Del(ctx, availabilityPrefix+doctorID).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}
