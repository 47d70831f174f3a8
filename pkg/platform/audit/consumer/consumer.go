package consumer

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "cardeval/pkg/platform/audit"
	"cardeval/pkg/platform/audit/store/kafka"
)

// Consumer materializes audit events from Kafka into a queryable store.
// The client must be created with kgo.ConsumeTopics, kgo.ConsumerGroup and
// kgo.DisableAutoCommit; offsets are committed only after records are stored.
type Consumer struct {
	client *kgo.Client
	sink   audit.Store
	logger *slog.Logger
}

type Option func(*Consumer)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Consumer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(client *kgo.Client, sink audit.Store, opts ...Option) *Consumer {
	c := &Consumer{
		client: client,
		sink:   sink,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Run polls until ctx is cancelled. Malformed records are logged and
// skipped; a failed store write rewinds the partition so the record is
// fetched again.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return nil
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			if !errors.Is(err, context.Canceled) {
				c.logger.ErrorContext(ctx, "audit fetch failed",
					"topic", topic,
					"partition", partition,
					"error", err,
				)
			}
		})

		var handled []*kgo.Record
		var storeErr error
		fetches.EachRecord(func(record *kgo.Record) {
			if storeErr != nil {
				return
			}
			if err := c.handle(ctx, record); err != nil {
				storeErr = err
				return
			}
			handled = append(handled, record)
		})

		if len(handled) > 0 {
			if err := c.client.CommitRecords(ctx, handled...); err != nil && ctx.Err() == nil {
				c.logger.ErrorContext(ctx, "audit offset commit failed", "error", err)
			}
		}
		if storeErr != nil {
			c.logger.ErrorContext(ctx, "audit sink write failed, rewinding", "error", storeErr)
			c.client.SetOffsets(rewindOffsets(handled, fetches))
		}
	}
}

func (c *Consumer) handle(ctx context.Context, record *kgo.Record) error {
	event, err := kafka.Decode(record)
	if err != nil {
		c.logger.WarnContext(ctx, "skipping malformed audit record",
			"topic", record.Topic,
			"partition", record.Partition,
			"offset", record.Offset,
			"error", err,
		)
		return nil
	}
	return c.sink.Append(ctx, event)
}

// rewindOffsets returns, per fetched partition, the offset of the first
// record that was not handled.
func rewindOffsets(handled []*kgo.Record, fetches kgo.Fetches) map[string]map[int32]kgo.EpochOffset {
	done := make(map[string]map[int32]int64)
	for _, r := range handled {
		if done[r.Topic] == nil {
			done[r.Topic] = make(map[int32]int64)
		}
		done[r.Topic][r.Partition] = r.Offset + 1
	}

	offsets := make(map[string]map[int32]kgo.EpochOffset)
	fetches.EachPartition(func(p kgo.FetchTopicPartition) {
		if len(p.Records) == 0 {
			return
		}
		next, ok := done[p.Topic][p.Partition]
		if !ok {
			next = p.Records[0].Offset
		}
		if offsets[p.Topic] == nil {
			offsets[p.Topic] = make(map[int32]kgo.EpochOffset)
		}
		offsets[p.Topic][p.Partition] = kgo.EpochOffset{Epoch: -1, Offset: next}
	})
	return offsets
}
