package service

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned by work whose result was discarded because a
// newer request started after it.
var ErrSuperseded = errors.New("superseded by a newer request")

// A Sequencer orders asynchronous work by request time: only the most
// recently started work may apply its result. Starting new work cancels the
// context of the previous one.
//
// The zero value is ready to use.
type Sequencer struct {
	mu     sync.Mutex
	latest uint64
	cancel context.CancelFunc
}

// A Ticket identifies one piece of sequenced work.
type Ticket struct {
	s      *Sequencer
	seq    uint64
	cancel context.CancelFunc
}

// Begin starts new work and supersedes the work in flight.
//
// The returned context is canceled when newer work begins or
// [Ticket.Done] is called.
func (s *Sequencer) Begin(ctx context.Context) (context.Context, Ticket) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.latest++
	s.cancel = cancel
	return ctx, Ticket{s: s, seq: s.latest, cancel: cancel}
}

// Supersede cancels the work in flight and runs fn exclusively with
// respect to [Ticket.Apply].
func (s *Sequencer) Supersede(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.latest++
	if fn != nil {
		fn()
	}
}

// Apply runs fn if no newer work has begun since t and reports whether it ran.
func (t Ticket) Apply(fn func()) bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if t.seq != t.s.latest {
		return false
	}
	fn()
	return true
}

// Superseded reports whether newer work has begun since t.
func (t Ticket) Superseded() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return t.seq != t.s.latest
}

// Done releases the resources of t. It must be called once the work ends.
func (t Ticket) Done() {
	t.cancel()

	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.seq == t.s.latest {
		t.s.cancel = nil
	}
}
