package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

const slowDownTimeout = 1 * time.Second

type ConsumerOpt func(*consumerOpts) error

func ConsumerClientOpt(cl ConsumerClient) ConsumerOpt {
	return func(co *consumerOpts) error {
		if cl == nil {
			return errors.New("consumer client is nil")
		}
		co.cl = cl
		return nil
	}
}

func ConsumerDecoderOpt(decoder Decoder) ConsumerOpt {
	return func(co *consumerOpts) error {
		if decoder == nil {
			return errors.New("decoder is nil")
		}
		co.decoder = decoder
		return nil
	}
}

func ConsumerApplierOpt(a port.CatalogEventsApplier) ConsumerOpt {
	return func(co *consumerOpts) error {
		if a == nil {
			return errors.New("catalog events applier is nil")
		}
		co.applier = a
		return nil
	}
}

type consumerOpts struct {
	cl      ConsumerClient
	decoder Decoder
	applier port.CatalogEventsApplier
}

func (co *consumerOpts) apply(opts ...ConsumerOpt) error {
	for _, opt := range opts {
		if err := opt(co); err != nil {
			return err
		}
	}
	if co.cl == nil || co.decoder == nil || co.applier == nil {
		return ErrTooFewOpts
	}
	return nil
}

type consumerParent interface {
	processFetches(context.Context, kgo.Fetches) error
}

// A consumer is used for composition.
//
// Fetching records from kafka broker, committing them after the parent
// processed them and closing underlying [kgo.Client].
type consumer struct {
	opPrefix      string
	parent        consumerParent
	cl            ConsumerClient
	slowDownTimer *time.Timer
}

func (c consumer) run(ctx context.Context) {
	const op = "run"
	log := slog.With("op", makeOp(c.opPrefix, op))

	log.Info("running")
	defer log.Info("stopped")

	for ctx.Err() == nil {
		err := c.consume(ctx)
		if err == nil || errors.Is(err, context.Canceled) {
			continue
		}
		log.Error("failed to consume", "err", err)
		c.slowDown(ctx)
	}
}

// consume handles one poll. Offsets are committed only after the parent
// processed every fetched record.
func (c consumer) consume(ctx context.Context) error {
	const op = "consume"

	fetches, err := c.pollFetches(ctx)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}
	if fetches.Empty() {
		return nil
	}

	if err := c.parent.processFetches(ctx, fetches); err != nil {
		return opErr(err, c.opPrefix, op)
	}
	if err := c.commit(ctx); err != nil {
		return opErr(err, c.opPrefix, op)
	}

	slog.Debug("records committed",
		"op", makeOp(c.opPrefix, op), "nRecords", fetches.NumRecords(),
	)
	return nil
}

func (c consumer) pollFetches(ctx context.Context) (kgo.Fetches, error) {
	const op = "pollFetches"

	fetches := c.cl.PollFetches(ctx)
	if err := fetchesErr(fetches); err != nil {
		return nil, opErr(err, c.opPrefix, op)
	}
	return fetches, nil
}

func fetchesErr(fetches kgo.Fetches) error {
	if fetches.IsClientClosed() {
		return kgo.ErrClientClosed
	}

	var errs []error
	for _, fe := range fetches.Errors() {
		if errors.Is(fe.Err, context.Canceled) {
			return fe.Err
		}
		errs = append(errs, fmt.Errorf(
			"topic %q partition %d: %w", fe.Topic, fe.Partition, fe.Err,
		))
	}
	return errors.Join(errs...)
}

func (c consumer) slowDown(ctx context.Context) {
	c.slowDownTimer.Reset(slowDownTimeout)
	select {
	case <-ctx.Done():
	case <-c.slowDownTimer.C:
	}
}

func (c consumer) commit(ctx context.Context) error {
	const op = "commit"

	err := ctx.Err()
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}

	err = c.cl.CommitUncommittedOffsets(ctx)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}
	return nil
}

func (c consumer) close() {
	const op = "close"
	log := slog.With("op", makeOp(c.opPrefix, op))

	c.slowDownTimer.Stop()

	log.Info("closing consumer...")
	c.cl.Close()
	log.Info("consumer is closed")
}

// A CatalogEventsConsumer consumes catalog events
// then sends them to the core service for apply.
type CatalogEventsConsumer struct {
	opPrefix string
	consumer consumer
	applier  port.CatalogEventsApplier
	decoder  Decoder
}

func NewCatalogEventsConsumer(
	opts ...ConsumerOpt,
) (c CatalogEventsConsumer, err error) {
	const op = "NewCatalogEventsConsumer"

	var options consumerOpts
	if err := options.apply(opts...); err != nil {
		return c, opErr(err, op)
	}

	opPrefix := "CatalogEventsConsumer"

	c.opPrefix = opPrefix
	c.applier = options.applier
	c.decoder = options.decoder

	timer := time.NewTimer(0)
	<-timer.C
	c.consumer = consumer{
		opPrefix:      opPrefix,
		parent:        c,
		cl:            options.cl,
		slowDownTimer: timer,
	}

	return c, nil
}

// Run starts consuming in the background; stopFn is called when the
// consumer stops.
func (c CatalogEventsConsumer) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	defer wg.Done()
	go func() {
		defer stopFn()
		c.consumer.run(ctx)
	}()
}

func (c CatalogEventsConsumer) Close() {
	c.consumer.close()
}

func (c CatalogEventsConsumer) processFetches(
	ctx context.Context, fetches kgo.Fetches,
) error {
	const op = "processFetches"

	values := c.toDomain(fetches)
	if len(values) == 0 {
		return nil
	}

	err := c.applier.ApplyCatalogEvents(ctx, values)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}
	return nil
}

func (c CatalogEventsConsumer) toDomain(
	fetches kgo.Fetches,
) (vs []domain.CatalogEvent) {
	const op = "toDomain"
	log := slog.With("op", makeOp(c.opPrefix, op))

	fetches.EachRecord(func(r *kgo.Record) {
		v, err := c.decodeRecValue(r)
		if err != nil {
			log.Error(
				"failed to decode value",
				"key", string(r.Key),
				"offset", r.Offset,
				"err", opErr(err, c.opPrefix, op),
			)
			return
		}
		vs = append(vs, v)
	})
	return vs
}

func (c CatalogEventsConsumer) decodeRecValue(
	r *kgo.Record,
) (domain.CatalogEvent, error) {
	var s schema.CatalogEventV1
	if err := c.decoder.Decode(r.Value, &s); err != nil {
		return domain.CatalogEvent{}, err
	}
	return schemaV1ToCatalogEvent(s)
}
