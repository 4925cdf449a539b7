package kafka

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/lovoo/goka"
)

const processorStopTimeout = 10 * time.Second

// A processor runs a [goka.Processor] as a background component.
//
// Close blocks until Run has returned or the stop timeout expired.
type processor struct {
	opPrefix string
	gp       *goka.Processor
	done     chan struct{}
}

func newProcessor(opPrefix string, gp *goka.Processor) processor {
	return processor{opPrefix: opPrefix, gp: gp, done: make(chan struct{})}
}

func (p processor) run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer wg.Done()

	go p.runProc(ctx, stopFn)

	log.Info("recovering group table...")
	if err := p.gp.WaitForReadyContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Error("failed to get ready", "err", err)
		}
		return
	}
	log.Info("running")
}

func (p processor) runProc(ctx context.Context, stopFn context.CancelFunc) {
	const op = "runProc"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer close(p.done)
	defer stopFn()

	if err := p.gp.Run(ctx); err != nil {
		log.Error("stopped", "err", err)
		return
	}
	log.Info("stopped")
}

func (p processor) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))

	log.Info("closing processor...")
	p.gp.Stop()

	select {
	case <-p.done:
		log.Info("processor is closed")
	case <-time.After(processorStopTimeout):
		log.Warn("processor did not stop in time")
	}
}
