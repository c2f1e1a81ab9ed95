// Package notify delivers domain notices emitted by committed core
// operations. Delivery is best effort: sink failures are logged and dropped.
package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/metrics"
	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
)

// defaultTimeout bounds one Dispatch call across all sinks.
const defaultTimeout = 3 * time.Second

// Sink receives notices.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, n model.Notice) error
}

// Dispatcher fans notices out to every sink.
type Dispatcher struct {
	sinks   []Sink
	logger  *zap.Logger
	metrics *metrics.Metrics
	timeout time.Duration
}

// NewDispatcher constructs a Dispatcher. A nil metrics disables counting.
func NewDispatcher(logger *zap.Logger, m *metrics.Metrics, sinks ...Sink) *Dispatcher {
	return &Dispatcher{
		sinks:   sinks,
		logger:  logger,
		metrics: m,
		timeout: defaultTimeout,
	}
}

// Dispatch hands the notices to every sink and waits for them. Sinks run
// concurrently, each receives the notices in order, and all of them share
// one deadline of the dispatcher timeout. It is called
// after the producing unit of work has committed and never reports an
// error; delivery is detached from the request's cancellation.
func (d *Dispatcher) Dispatch(ctx context.Context, notices []model.Notice) {
	if d == nil || len(notices) == 0 || len(d.sinks) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	var wg sync.WaitGroup
	for _, sink := range d.sinks {
		wg.Add(1)
		go func(sink Sink) {
			defer wg.Done()
			for _, n := range notices {
				d.deliver(ctx, sink, n)
			}
		}(sink)
	}
	wg.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, sink Sink, n model.Notice) {
	outcome := "ok"
	defer func() {
		if d.metrics != nil {
			d.metrics.RecordNotification(sink.Name(), outcome)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			outcome = "panic"
			d.logger.Error("notification sink panicked",
				zap.String("sink", sink.Name()),
				zap.String("kind", string(n.Kind)),
				zap.Any("panic", r),
			)
		}
	}()

	if err := sink.Deliver(ctx, n); err != nil {
		outcome = "error"
		d.logger.Warn("notification dropped",
			zap.String("sink", sink.Name()),
			zap.String("kind", string(n.Kind)),
			zap.String("user_id", n.UserID),
			zap.Error(err),
		)
	}
}
