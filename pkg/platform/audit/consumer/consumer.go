// Package consumer reads the audit stream back from Kafka, for tailing and
// offline analysis.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "rollcall/pkg/platform/audit"
)

// Handler processes one decoded event. Returning an error stops Run.
type Handler func(ctx context.Context, e audit.Event) error

// Consumer polls the audit topic from the earliest offset.
type Consumer struct {
	client *kgo.Client
	logger *slog.Logger
}

// New creates a consumer for topic. An empty group reads without committing.
func New(brokers []string, topic, group string, logger *slog.Logger) (*Consumer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	}
	if group != "" {
		opts = append(opts, kgo.ConsumerGroup(group))
	}
	cl, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	return &Consumer{client: cl, logger: logger}, nil
}

// Run polls until ctx is cancelled or the handler fails. Undecodable records
// are logged and skipped so one bad payload cannot wedge the stream.
func (c *Consumer) Run(ctx context.Context, h Handler) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		var fetchErr error
		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.Warn("audit stream fetch error", "topic", topic, "partition", partition, "error", err)
			fetchErr = err
		})
		if fetchErr != nil && errors.Is(fetchErr, context.DeadlineExceeded) {
			return fetchErr
		}

		var handleErr error
		fetches.EachRecord(func(r *kgo.Record) {
			if handleErr != nil {
				return
			}
			var e audit.Event
			if err := json.Unmarshal(r.Value, &e); err != nil {
				c.logger.Warn("skipping undecodable audit record",
					"partition", r.Partition,
					"offset", r.Offset,
					"error", err,
				)
				return
			}
			handleErr = h(ctx, e)
		})
		if handleErr != nil {
			return handleErr
		}
	}
}

// Close leaves any group and closes the client.
func (c *Consumer) Close() {
	c.client.Close()
}
