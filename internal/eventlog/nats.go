package eventlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
	"gophermart.com/pkg/logger"
)

// NatsSink mirrors appended envelopes to NATS so off-process indexers and
// marketplace UIs can follow the streams live. Subjects look like
// market.listing.42 (market.<stream>.<account>).
type NatsSink struct {
	nc *nats.Conn
}

func NewNatsSink(url string, opts ...nats.Option) (*NatsSink, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return &NatsSink{nc: nc}, nil
}

func (s *NatsSink) Publish(ctx context.Context, env Envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		logger.Warn(ctx, "nats sink encode failed", zap.Error(err))
		return
	}
	// at-most-once mirror: the journal already holds the durable copy
	if err := s.nc.Publish(subject(env), payload); err != nil {
		logger.Warn(ctx, "nats sink publish failed",
			zap.String("subject", subject(env)), zap.Error(err))
	}
}

func (s *NatsSink) Close() error {
	if s.nc != nil {
		_ = s.nc.Drain()
		s.nc.Close()
	}
	return nil
}

func subject(env Envelope) string {
	return fmt.Sprintf("market.%s.%d", env.Stream, env.Account)
}
