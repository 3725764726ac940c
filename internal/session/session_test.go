package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnyUserName/blurtune/internal/apperr"
	"github.com/AnyUserName/blurtune/internal/options"
	"github.com/AnyUserName/blurtune/internal/preview"
)

type outcome struct {
	res preview.Result
	err error
}

type call struct {
	image string
	opts  options.ProcessingOptions
	ctx   context.Context
	done  chan outcome
}

// gatedGenerator blocks every call until the test releases it or the
// controller is closed.
type gatedGenerator struct {
	started chan *call
}

func newGated() *gatedGenerator {
	return &gatedGenerator{started: make(chan *call, 64)}
}

func (g *gatedGenerator) Generate(ctx context.Context, image string, opts options.ProcessingOptions) (preview.Result, error) {
	c := &call{image: image, opts: opts, ctx: ctx, done: make(chan outcome, 1)}
	g.started <- c
	select {
	case o := <-c.done:
		return o.res, o.err
	case <-ctx.Done():
		return preview.Result{}, ctx.Err()
	}
}

func (g *gatedGenerator) next(t *testing.T) *call {
	t.Helper()
	select {
	case c := <-g.started:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("generator was not called")
		return nil
	}
}

// instantGenerator answers every call immediately.
type instantGenerator struct{}

func (instantGenerator) Generate(_ context.Context, image string, _ options.ProcessingOptions) (preview.Result, error) {
	return resultFor(image), nil
}

func resultFor(name string) preview.Result {
	return preview.Result{URI: "data:image/jpeg;base64," + name, DecodedByteLength: len(name)}
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestControllerInitialState(t *testing.T) {
	c := NewController(newGated())
	state, seq := c.State()
	assert.Equal(t, Idle, state)
	assert.Zero(t, seq)

	_, ok := c.Current()
	assert.False(t, ok)

	_, err := c.Wait(waitCtx(t))
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestControllerStaleCompletionDiscarded(t *testing.T) {
	g := newGated()
	c := NewController(g)
	defer c.Close()

	seqA := c.Request("a.png", options.DefaultProcessing())
	callA := g.next(t)
	seqB := c.Request("b.png", options.DefaultProcessing())
	callB := g.next(t)
	require.Greater(t, seqB, seqA)

	callA.done <- outcome{res: resultFor("a")}
	require.Eventually(t, func() bool { return c.Stats().Discarded == 1 }, time.Second, time.Millisecond)

	_, ok := c.Current()
	assert.False(t, ok, "stale result must not be published")
	state, seq := c.State()
	assert.Equal(t, Pending, state)
	assert.Equal(t, seqB, seq)

	callB.done <- outcome{res: resultFor("b")}
	snap, err := c.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, seqB, snap.Seq)
	assert.Equal(t, "b.png", snap.ImageName)
	require.NotNil(t, snap.Result)
	assert.Equal(t, resultFor("b"), *snap.Result)
}

func TestControllerLateStaleAfterPublish(t *testing.T) {
	g := newGated()
	c := NewController(g)
	defer c.Close()

	c.Request("a.png", options.DefaultProcessing())
	callA := g.next(t)
	seqB := c.Request("b.png", options.DefaultProcessing())
	callB := g.next(t)

	callB.done <- outcome{res: resultFor("b")}
	_, err := c.Wait(waitCtx(t))
	require.NoError(t, err)

	callA.done <- outcome{res: resultFor("a")}
	require.Eventually(t, func() bool { return c.Stats().Discarded == 1 }, time.Second, time.Millisecond)

	snap, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, seqB, snap.Seq)
	assert.Equal(t, "b.png", snap.ImageName)
}

func TestControllerSequentialRequestsPublishInTurn(t *testing.T) {
	g := newGated()
	c := NewController(g)
	defer c.Close()

	seqA := c.Request("a.png", options.DefaultProcessing())
	g.next(t).done <- outcome{res: resultFor("a")}
	snap, err := c.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, seqA, snap.Seq)

	seqB := c.Request("b.png", options.DefaultProcessing())
	callB := g.next(t)

	// The previous snapshot stays visible while the next one is pending.
	snap, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, seqA, snap.Seq)
	state, _ := c.State()
	assert.Equal(t, Pending, state)

	callB.done <- outcome{res: resultFor("b")}
	snap, err = c.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, seqB, snap.Seq)
	assert.Equal(t, uint64(2), c.Stats().Published)
}

func TestControllerAnyCompletionOrder(t *testing.T) {
	const n = 8
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 20; round++ {
		g := newGated()
		c := NewController(g)

		calls := make([]*call, n)
		var last uint64
		for i := range calls {
			last = c.Request(fmt.Sprintf("img-%d.png", i), options.DefaultProcessing())
			calls[i] = g.next(t)
		}
		for _, i := range rng.Perm(n) {
			calls[i].done <- outcome{res: resultFor(calls[i].image)}
		}
		c.Close()

		snap, ok := c.Current()
		require.True(t, ok)
		assert.Equal(t, last, snap.Seq, "round %d", round)
		assert.Equal(t, fmt.Sprintf("img-%d.png", n-1), snap.ImageName)
		assert.Equal(t, Stats{Issued: n, Published: 1, Discarded: n - 1}, c.Stats())
	}
}

func TestControllerPublishesErrors(t *testing.T) {
	g := newGated()
	c := NewController(g)
	defer c.Close()

	seq := c.Request("missing.png", options.DefaultProcessing())
	g.next(t).done <- outcome{err: apperr.Errorf(apperr.NotFound, "test", "no such image")}

	snap, err := c.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, seq, snap.Seq)
	assert.Nil(t, snap.Result)
	assert.ErrorIs(t, snap.Err, apperr.NotFound)

	state, _ := c.State()
	assert.Equal(t, Idle, state)
}

func TestControllerStaleErrorDiscarded(t *testing.T) {
	g := newGated()
	c := NewController(g)
	defer c.Close()

	c.Request("a.png", options.DefaultProcessing())
	callA := g.next(t)
	c.Request("b.png", options.DefaultProcessing())
	callB := g.next(t)

	callA.done <- outcome{err: errors.New("boom")}
	callB.done <- outcome{res: resultFor("b")}
	c.Close()

	snap, ok := c.Current()
	require.True(t, ok)
	assert.NoError(t, snap.Err)
	assert.Equal(t, "b.png", snap.ImageName)
}

func TestControllerPublishHookOrder(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []uint64
	)
	g := newGated()
	c := NewController(g, WithPublishHook(func(s Snapshot) {
		mu.Lock()
		seen = append(seen, s.Seq)
		mu.Unlock()
	}))

	for i := 0; i < 3; i++ {
		c.Request("a.png", options.DefaultProcessing())
		g.next(t).done <- outcome{res: resultFor("a")}
		_, err := c.Wait(waitCtx(t))
		require.NoError(t, err)
	}
	c.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []uint64{1, 2, 3}, seen)
}

func TestControllerCancelSuperseded(t *testing.T) {
	g := newGated()
	c := NewController(g, WithCancelSuperseded())
	defer c.Close()

	c.Request("a.png", options.DefaultProcessing())
	callA := g.next(t)
	c.Request("b.png", options.DefaultProcessing())
	callB := g.next(t)

	assert.ErrorIs(t, callA.ctx.Err(), context.Canceled)
	assert.NoError(t, callB.ctx.Err())

	callA.done <- outcome{err: callA.ctx.Err()}
	callB.done <- outcome{res: resultFor("b")}
	snap, err := c.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, "b.png", snap.ImageName)
}

func TestControllerWaitHonoursContext(t *testing.T) {
	g := newGated()
	c := NewController(g)

	c.Request("a.png", options.DefaultProcessing())
	pending := g.next(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := c.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	pending.done <- outcome{res: resultFor("a")}
	c.Close()
}

func TestControllerRequestAfterClose(t *testing.T) {
	c := NewController(instantGenerator{})
	c.Request("a.png", options.DefaultProcessing())
	c.Close()

	assert.Zero(t, c.Request("b.png", options.DefaultProcessing()))
	assert.Equal(t, uint64(1), c.Stats().Issued)
	c.Close()
}

func TestControllerCloseRacesRequest(t *testing.T) {
	for i := 0; i < 500; i++ {
		c := NewController(instantGenerator{}, WithCancelSuperseded())
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 4; j++ {
				c.Request(fmt.Sprintf("%d.png", j), options.DefaultProcessing())
			}
		}()
		go func() {
			defer wg.Done()
			c.Close()
		}()
		wg.Wait()
		c.Close()

		st := c.Stats()
		require.Equal(t, st.Issued, st.Published+st.Discarded, "round %d", i)
	}
}

func TestSessionFormatChangeResetsEncodeOptions(t *testing.T) {
	g := newGated()
	c := NewController(g)
	defer c.Close()

	s := New(c, "a.png")
	initial := g.next(t)
	assert.Equal(t, options.DefaultProcessing(), initial.opts)

	_, err := s.SetField("quality", "40")
	require.NoError(t, err)
	g.next(t)
	assert.Equal(t, 40, s.Options().Encode.(options.JPEGOptions).Quality)

	seq, err := s.SetFormat(options.PNG)
	require.NoError(t, err)
	pngCall := g.next(t)

	want := options.PNGOptions{
		CompressionLevel: 6, Quality: 100, Effort: 7, Colours: 256, Dither: 1,
	}
	assert.Equal(t, options.PNG, pngCall.opts.Format)
	assert.Equal(t, want, pngCall.opts.Encode)
	assert.Equal(t, want, s.Options().Encode)

	state, cur := c.State()
	assert.Equal(t, Pending, state)
	assert.Equal(t, seq, cur)
}

func TestSessionRejectsInvalidChanges(t *testing.T) {
	g := newGated()
	c := NewController(g)
	defer c.Close()

	s := New(c, "a.png")
	g.next(t)
	_, before := c.State()

	_, err := s.SetEncodeOptions(options.DefaultsFor(options.WebP))
	assert.ErrorIs(t, err, apperr.InvalidConfiguration)

	_, err = s.SetEncodeOptions(options.JPEGOptions{Quality: 101})
	assert.ErrorIs(t, err, apperr.InvalidConfiguration)

	_, err = s.SetField("colours", "12")
	assert.ErrorIs(t, err, apperr.InvalidConfiguration)

	_, err = s.SetResize(options.ResizeSpec{Width: 2, Kernel: options.Lanczos3})
	assert.ErrorIs(t, err, apperr.InvalidConfiguration)

	_, err = s.SetFormat("gif")
	assert.ErrorIs(t, err, apperr.InvalidConfiguration)

	_, err = s.SelectImage("")
	assert.ErrorIs(t, err, apperr.InvalidConfiguration)

	_, after := c.State()
	assert.Equal(t, before, after, "rejected changes must not issue requests")
	assert.Equal(t, options.DefaultProcessing(), s.Options())
}

func TestSessionSelectImageKeepsOptions(t *testing.T) {
	g := newGated()
	c := NewController(g)
	defer c.Close()

	s := New(c, "a.png")
	g.next(t).done <- outcome{res: resultFor("a")}

	_, err := s.SetResize(options.ResizeSpec{Width: 32, Kernel: options.Mitchell})
	require.NoError(t, err)
	g.next(t).done <- outcome{res: resultFor("a")}

	_, err = s.SelectImage("b.png")
	require.NoError(t, err)
	callB := g.next(t)
	assert.Equal(t, "b.png", callB.image)
	assert.Equal(t, 32, callB.opts.Resize.Width)
	callB.done <- outcome{res: resultFor("b")}

	snap, err := c.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, "b.png", snap.ImageName)
	assert.Equal(t, options.Mitchell, snap.Options.Resize.Kernel)
}

func TestSessionSetOptions(t *testing.T) {
	g := newGated()
	c := NewController(g)
	defer c.Close()

	s := New(c, "a.png")
	g.next(t)

	p, err := options.DefaultProcessing().WithFormat(options.WebP)
	require.NoError(t, err)
	p.Encode = &options.WebPOptions{Quality: 50, Effort: 2, Preset: options.PresetPhoto}
	_, err = s.SetOptions(p)
	require.NoError(t, err)

	got := g.next(t)
	assert.Equal(t, options.WebPOptions{Quality: 50, Effort: 2, Preset: options.PresetPhoto}, got.opts.Encode)

	mismatched := p
	mismatched.Encode = options.DefaultsFor(options.JPEG)
	_, err = s.SetOptions(mismatched)
	assert.ErrorIs(t, err, apperr.InvalidConfiguration)
}
