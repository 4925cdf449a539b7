package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/lovoo/goka"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/schema"
)

// A recentlyViewedCodec used for serde [schema.RecentlyViewedV1]
type recentlyViewedCodec struct {
	serde Serde
}

func newRecentlyViewedCodec(s Serde) recentlyViewedCodec {
	return recentlyViewedCodec{s}
}

func (c recentlyViewedCodec) Encode(v any) ([]byte, error) {
	const op = "recentlyViewedCodec.Encode"
	if _, ok := v.(schema.RecentlyViewedV1); !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return c.serde.Encode(v)
}

func (c recentlyViewedCodec) Decode(data []byte) (any, error) {
	const op = "recentlyViewedCodec.Decode"
	var s schema.RecentlyViewedV1
	err := c.serde.Decode(data, &s)
	if err != nil {
		return nil, opErr(err, op)
	}
	return s, nil
}

// A RecentlyViewedProcessor persists the lists from the views stream
// into the group table, one row per visitor.
type RecentlyViewedProcessor struct {
	opPrefix string
	proc     processor
}

func NewRecentlyViewedProcessor(
	seedBrokers []string,
	inputStream string,
	group string,
	serde Serde,
	opts ...goka.ProcessorOption,
) (*RecentlyViewedProcessor, error) {
	const op = "NewRecentlyViewedProcessor"

	p := RecentlyViewedProcessor{opPrefix: "RecentlyViewedProcessor"}
	codec := newRecentlyViewedCodec(serde)

	gg := goka.DefineGroup(goka.Group(group),
		goka.Input(goka.Stream(inputStream), codec, p.processFn),
		goka.Persist(codec),
	)

	opts = append([]goka.ProcessorOption{withNonlogProcOpt()}, opts...)
	gp, err := goka.NewProcessor(seedBrokers, gg, opts...)
	if err != nil {
		return nil, opErr(err, op)
	}

	p.proc = newProcessor(p.opPrefix, gp)
	return &p, nil
}

func (p *RecentlyViewedProcessor) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	p.proc.run(ctx, stopFn, wg)
}

func (p *RecentlyViewedProcessor) Close() {
	p.proc.close()
}

func (p *RecentlyViewedProcessor) processFn(ctx goka.Context, msg any) {
	const op = "processFn"
	log := slog.With("op", makeOp(p.opPrefix, op), "visitor", ctx.Key())

	v, remove, err := tableUpdate(msg)
	switch {
	case err != nil:
		log.Error("skip message", "err", err)
	case remove:
		ctx.Delete()
		log.Debug("list cleared")
	default:
		ctx.SetValue(v)
		log.Debug("list stored", "count", len(v.ProductIDs))
	}
}

// tableUpdate turns a views stream message into the table row; an empty
// list removes the row.
func tableUpdate(msg any) (v schema.RecentlyViewedV1, remove bool, err error) {
	v, ok := msg.(schema.RecentlyViewedV1)
	if !ok {
		return v, false, fmt.Errorf("%w: %T", ErrInvalidValueType, msg)
	}
	return v, len(v.ProductIDs) == 0, nil
}

var _ port.RecentlyViewedStore = (*RecentlyViewedTable)(nil)

// A RecentlyViewedTable writes lists to the views stream and reads them
// back from the group table view. Reads lag writes until the processor has
// stored the list.
type RecentlyViewedTable struct {
	opPrefix string
	emitter  *goka.Emitter
	view     *goka.View
}

func NewRecentlyViewedTable(
	seedBrokers []string, stream string, group string, serde Serde,
) (*RecentlyViewedTable, error) {
	const op = "NewRecentlyViewedTable"

	codec := newRecentlyViewedCodec(serde)

	ge, err := goka.NewEmitter(seedBrokers, goka.Stream(stream), codec)
	if err != nil {
		return nil, opErr(err, op)
	}

	gv, err := goka.NewView(seedBrokers, goka.GroupTable(goka.Group(group)), codec)
	if err != nil {
		_ = ge.Finish()
		return nil, opErr(err, op)
	}

	return &RecentlyViewedTable{
		opPrefix: "RecentlyViewedTable",
		emitter:  ge,
		view:     gv,
	}, nil
}

// Run starts the view and returns once it has recovered the table.
func (t *RecentlyViewedTable) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "Run"
	log := slog.With("op", makeOp(t.opPrefix, op))

	defer wg.Done()

	go func() {
		defer stopFn()
		if err := t.view.Run(ctx); err != nil {
			log.Error("view stopped", "err", err)
			return
		}
		log.Info("view stopped")
	}()

	log.Info("recovering...")
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for !t.view.Recovered() {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
	log.Info("running")
}

func (t *RecentlyViewedTable) Close() {
	const op = "Close"
	log := slog.With("op", makeOp(t.opPrefix, op))

	log.Info("closing emitter...")
	if err := t.emitter.Finish(); err != nil {
		log.Error("failed to finish gracefully", "err", err)
		return
	}
	log.Info("emitter is closed")
}

func (t *RecentlyViewedTable) Get(_ context.Context, visitor string) ([]string, error) {
	const op = "Get"

	v, err := t.view.Get(visitor)
	if err != nil {
		return nil, opErr(err, t.opPrefix, op)
	}
	return listFromValue(v)
}

func (t *RecentlyViewedTable) Set(ctx context.Context, visitor string, ids []string) error {
	const op = "Set"

	if err := ctx.Err(); err != nil {
		return opErr(err, t.opPrefix, op)
	}

	msg := schema.RecentlyViewedV1{VisitorID: visitor, ProductIDs: slices.Clone(ids)}
	if msg.ProductIDs == nil {
		msg.ProductIDs = []string{}
	}
	if err := t.emitter.EmitSync(visitor, msg); err != nil {
		return opErr(err, t.opPrefix, op)
	}
	return nil
}

func listFromValue(v any) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(schema.RecentlyViewedV1)
	if !ok {
		return nil, errors.Join(
			ErrInvalidValueType, fmt.Errorf("unexpected type %T", v),
		)
	}
	return s.ProductIDs, nil
}
