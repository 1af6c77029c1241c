package booking

import (
	"context"
	"slices"
	"time"

	"go.uber.org/zap"

	"booking-api/internal/model"
)

// Snapshot is one observation of a doctor's availability calendar.
type Snapshot struct {
	DoctorID string                  `json:"doctorId"`
	Days     []model.AvailabilityDay `json:"days"`
	At       time.Time               `json:"at"`
}

// Watcher polls a doctor's availability and emits a snapshot whenever it
// changes. Consumers range over Snapshots; the channel closes when the
// context is cancelled or Stop is called.
type Watcher struct {
	out    chan Snapshot
	cancel context.CancelFunc
	done   chan struct{}
}

// Watch starts a watcher over the doctor's default availability window. The
// first snapshot is emitted immediately.
func (c *Coordinator) Watch(ctx context.Context, doctorID string, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(ctx)
	w := &Watcher{
		out:    make(chan Snapshot, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(w.done)
		defer close(w.out)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var last []model.AvailabilityDay
		emitted := false
		for {
			days, err := c.Availability(ctx, doctorID, 0)
			if err != nil {
				if ctx.Err() == nil {
					c.log.Warn("availability watch poll failed",
						zap.String("doctor_id", doctorID), zap.Error(err))
				}
			} else if !emitted || !slices.Equal(days, last) {
				select {
				case w.out <- Snapshot{DoctorID: doctorID, Days: days, At: c.clock()}:
					last = days
					emitted = true
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return w
}

// Snapshots returns the stream of availability observations.
func (w *Watcher) Snapshots() <-chan Snapshot { return w.out }

// Stop cancels the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	w.cancel()
	<-w.done
}
