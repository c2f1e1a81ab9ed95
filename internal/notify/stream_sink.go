package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/rueidis"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
)

// StreamSink appends each notice to a Redis stream for out-of-process
// consumers.
type StreamSink struct {
	client rueidis.Client
	stream string
}

// NewStreamSink constructs a StreamSink appending to stream.
func NewStreamSink(client rueidis.Client, stream string) *StreamSink {
	return &StreamSink{client: client, stream: stream}
}

// NewRedisClient connects to the Redis instance at addr.
func NewRedisClient(addr string) (rueidis.Client, error) {
	return rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{addr},
	})
}

// Name identifies the sink in logs and metrics.
func (s *StreamSink) Name() string { return "stream" }

// Deliver XADDs the notice with its key fields and the full JSON payload.
func (s *StreamSink) Deliver(ctx context.Context, n model.Notice) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}

	cmd := s.client.B().Xadd().Key(s.stream).Id("*").
		FieldValue().FieldValue("kind", string(n.Kind)).
		FieldValue("user_id", n.UserID).
		FieldValue("registration_id", n.RegistrationID).
		FieldValue("occurred_at", n.OccurredAt.Format(time.RFC3339Nano)).
		FieldValue("payload", string(payload)).
		Build()

	return s.client.Do(ctx, cmd).Error()
}
