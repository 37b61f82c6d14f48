package composer

import (
	"context"
	"time"

	"github.com/debemdeboas/archive-comments/internal/model"
)

const DefaultDebounce = 400 * time.Millisecond

type timer interface {
	Stop() bool
}

func realAfterFunc(d time.Duration, f func()) timer {
	return time.AfterFunc(d, f)
}

// pendingLookup is the single outstanding identity lookup: a debounce timer
// until it fires, then the cancel func of the in-flight call.
type pendingLookup struct {
	epoch  uint64
	timer  timer
	cancel context.CancelFunc
}

func (p *pendingLookup) stop() {
	if p.timer != nil {
		p.timer.Stop()
	}
	if p.cancel != nil {
		p.cancel()
	}
}

// IdentityResolver runs a debounced, cancelable lookup of the commenter's
// identity. Its methods are called with the Editor lock held; the lookup
// itself runs without it.
type IdentityResolver struct {
	editor    *Editor
	transport Transport
	delay     time.Duration
	afterFunc func(time.Duration, func()) timer

	epoch   uint64
	pending *pendingLookup
}

func newIdentityResolver(e *Editor, transport Transport, delay time.Duration) *IdentityResolver {
	return &IdentityResolver{
		editor:    e,
		transport: transport,
		delay:     delay,
		afterFunc: realAfterFunc,
	}
}

// Trigger supersedes any pending lookup and schedules a new one after the
// debounce delay.
func (r *IdentityResolver) Trigger(nick, email string) {
	r.Stop()

	r.epoch++
	epoch := r.epoch
	p := &pendingLookup{epoch: epoch}
	r.pending = p
	p.timer = r.afterFunc(r.delay, func() { r.fire(epoch, nick, email) })
}

// Stop cancels the pending timer and the in-flight call, if any.
func (r *IdentityResolver) Stop() {
	if r.pending == nil {
		return
	}
	r.pending.stop()
	r.pending = nil
}

// Pending reports whether a lookup is scheduled or in flight.
func (r *IdentityResolver) Pending() bool {
	return r.pending != nil
}

func (r *IdentityResolver) current(epoch uint64) bool {
	return r.pending != nil && r.pending.epoch == epoch
}

func (r *IdentityResolver) fire(epoch uint64, nick, email string) {
	e := r.editor

	e.lock()
	if !r.current(epoch) {
		e.unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.pending.timer = nil
	r.pending.cancel = cancel
	e.unlock()

	res, err := r.transport.LookupIdentity(ctx, nick, email)

	e.lock()
	defer e.unlock()
	cancel()

	if !r.current(epoch) {
		composerLogger.Debug().Uint64("epoch", epoch).Msg("Dropping superseded identity lookup")
		return
	}
	r.pending = nil

	if err != nil {
		composerLogger.Warn().Err(err).Str("nick", nick).Msg("Identity lookup failed")
		return
	}
	if res == nil {
		res = &model.IdentityResult{}
	}
	e.applyIdentity(res)
}
