// Package session keeps the preview of one tuning session current. A
// Controller stamps every generation request with a sequence number and
// publishes a completion only if no newer request has been issued since,
// so results that arrive out of order never reach the caller.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/AnyUserName/blurtune/internal/options"
	"github.com/AnyUserName/blurtune/internal/preview"
)

// ErrNoResult is returned by Wait when nothing has been requested yet.
var ErrNoResult = errors.New("no preview requested")

// Generator produces a placeholder for an image under the given options.
type Generator interface {
	Generate(ctx context.Context, imageName string, opts options.ProcessingOptions) (preview.Result, error)
}

// State is the controller state.
type State int

const (
	// Idle means the latest request has completed, or none was issued.
	Idle State = iota
	// Pending means the latest request has not completed yet.
	Pending
)

func (s State) String() string {
	if s == Pending {
		return "pending"
	}
	return "idle"
}

// Request is one issued generation.
type Request struct {
	Seq       uint64                    `json:"seq"`
	ImageName string                    `json:"image"`
	Options   options.ProcessingOptions `json:"options"`
}

// Snapshot is a published completion: exactly one of Result and Err is set.
type Snapshot struct {
	Request
	Result *preview.Result `json:"result,omitempty"`
	Err    error           `json:"-"`
}

// Stats counts requests by outcome.
type Stats struct {
	Issued    uint64 `json:"issued"`
	Published uint64 `json:"published"`
	Discarded uint64 `json:"discarded"`
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for supersession events.
func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithPublishHook registers fn to be called for every published snapshot,
// in sequence order. fn runs with the controller locked and must not call
// back into it.
func WithPublishHook(fn func(Snapshot)) Option {
	return func(c *Controller) { c.onPublish = fn }
}

// WithCancelSuperseded cancels the context of a request as soon as a newer
// one is issued. Codecs that ignore cancellation simply finish and get
// discarded, so correctness does not depend on it.
func WithCancelSuperseded() Option {
	return func(c *Controller) { c.cancelSuperseded = true }
}

// Controller runs generation requests and publishes only the latest.
type Controller struct {
	gen              Generator
	log              *zap.Logger
	onPublish        func(Snapshot)
	cancelSuperseded bool

	base      context.Context
	stop      context.CancelFunc
	wg        sync.WaitGroup
	published atomic.Pointer[Snapshot]

	mu      sync.Mutex
	seq     uint64
	pending bool
	closed  bool
	cancel  context.CancelFunc
	changed chan struct{}
	stats   Stats
}

// NewController creates an idle controller with nothing published.
func NewController(gen Generator, opts ...Option) *Controller {
	base, stop := context.WithCancel(context.Background())
	c := &Controller{
		gen:     gen,
		log:     zap.NewNop(),
		base:    base,
		stop:    stop,
		changed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request issues a generation for imageName under opts and returns its
// sequence number. Earlier requests keep running but can no longer publish.
// After Close nothing is issued and Request returns 0.
func (c *Controller) Request(imageName string, opts options.ProcessingOptions) uint64 {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0
	}
	c.seq++
	req := Request{Seq: c.seq, ImageName: imageName, Options: opts}
	c.pending = true
	c.stats.Issued++

	ctx := c.base
	if c.cancelSuperseded {
		if c.cancel != nil {
			c.cancel()
		}
		ctx, c.cancel = context.WithCancel(c.base)
	}
	c.broadcastLocked()
	c.wg.Add(1)
	c.mu.Unlock()

	c.log.Debug("request issued",
		zap.Uint64("seq", req.Seq),
		zap.String("image", imageName),
		zap.String("format", string(opts.Format)),
	)

	go func() {
		defer c.wg.Done()
		res, err := c.gen.Generate(ctx, req.ImageName, req.Options)
		c.complete(req, res, err)
	}()
	return req.Seq
}

// complete publishes the outcome of req if req is still the latest request.
func (c *Controller) complete(req Request, res preview.Result, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if req.Seq != c.seq {
		c.stats.Discarded++
		c.log.Debug("stale completion discarded",
			zap.Uint64("seq", req.Seq),
			zap.Uint64("current", c.seq),
			zap.Error(err),
		)
		return false
	}

	snap := &Snapshot{Request: req, Err: err}
	if err == nil {
		snap.Result = &res
	} else {
		c.log.Warn("preview generation failed",
			zap.Uint64("seq", req.Seq),
			zap.String("image", req.ImageName),
			zap.Error(err),
		)
	}
	c.pending = false
	c.stats.Published++
	c.published.Store(snap)
	c.broadcastLocked()

	if c.onPublish != nil {
		c.onPublish(*snap)
	}
	return true
}

func (c *Controller) broadcastLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
}

// Current returns the published snapshot, if any.
func (c *Controller) Current() (Snapshot, bool) {
	snap := c.published.Load()
	if snap == nil {
		return Snapshot{}, false
	}
	return *snap, true
}

// State returns the controller state and the latest issued sequence number.
func (c *Controller) State() (State, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending {
		return Pending, c.seq
	}
	return Idle, c.seq
}

// Stats returns request counters.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Wait blocks until the controller is idle and returns the published
// snapshot. A hung generation blocks until ctx is done.
func (c *Controller) Wait(ctx context.Context) (Snapshot, error) {
	for {
		c.mu.Lock()
		if !c.pending {
			c.mu.Unlock()
			snap, ok := c.Current()
			if !ok {
				return Snapshot{}, ErrNoResult
			}
			return snap, nil
		}
		ch := c.changed
		c.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return Snapshot{}, ctx.Err()
		}
	}
}

// Close cancels the context passed to in-flight generations and waits
// for them to return. Later requests are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.stop()
	c.wg.Wait()
}
