package animator

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

const (
	DefaultDuration     = 2 * time.Second
	DefaultSteps        = 60
	DefaultLiveInterval = 3 * time.Second
)

// Increment is the inclusive range of a live tick.
type Increment struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

func (in Increment) draw(rng *rand.Rand) float64 {
	lo, hi := in.Min, in.Max
	if lo < 0 {
		lo = 0
	}
	if hi <= lo {
		return float64(lo)
	}
	return float64(lo + rng.Int63n(hi-lo+1))
}

// Counter is one animated statistic.
type Counter struct {
	Name      string    `json:"name"`
	Target    float64   `json:"target"`
	Decimals  int       `json:"decimals"`
	Increment Increment `json:"increment"`
}

// Intro returns the count-up sequence from start to Target, floored to the
// counter precision.
func (c Counter) Intro(curve Curve, start float64, steps int) []float64 {
	frames := FramesWith(curve, start, c.Target, steps)
	for i := range frames[:len(frames)-1] {
		frames[i] = Floor(frames[i], c.Decimals)
	}
	return frames
}

// Next returns value plus one random live increment. The increment is
// synthetic and says nothing about the real metric.
func (c Counter) Next(value float64, rng *rand.Rand) float64 {
	return value + c.Increment.draw(rng)
}

// Frame is the set of counter values shown at one instant.
type Frame struct {
	Seq    int                `json:"seq"`
	Live   bool               `json:"live"`
	Values map[string]float64 `json:"values"`
}

// Board animates a group of counters together.
type Board struct {
	counters     []Counter
	duration     time.Duration
	steps        int
	curve        Curve
	liveInterval time.Duration

	rngMu sync.Mutex
	rng   *rand.Rand
}

// BoardOption customises a Board.
type BoardOption func(*Board)

// WithDuration sets how long the intro lasts.
func WithDuration(d time.Duration) BoardOption {
	return func(b *Board) {
		if d > 0 {
			b.duration = d
		}
	}
}

// WithSteps sets the number of intro frames.
func WithSteps(n int) BoardOption {
	return func(b *Board) {
		if n > 0 {
			b.steps = n
		}
	}
}

// WithCurve sets the intro curve.
func WithCurve(c Curve) BoardOption {
	return func(b *Board) {
		if c != nil {
			b.curve = c
		}
	}
}

// WithLiveInterval sets the period of live ticks.
func WithLiveInterval(d time.Duration) BoardOption {
	return func(b *Board) {
		if d > 0 {
			b.liveInterval = d
		}
	}
}

// WithRand sets the generator for live increments.
func WithRand(r *rand.Rand) BoardOption {
	return func(b *Board) {
		if r != nil {
			b.rng = r
		}
	}
}

// NewBoard constructs a Board with an ease-out intro.
func NewBoard(counters []Counter, opts ...BoardOption) *Board {
	b := &Board{
		counters:     counters,
		duration:     DefaultDuration,
		steps:        DefaultSteps,
		curve:        EaseOutExpo,
		liveInterval: DefaultLiveInterval,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Counters returns the configured counters.
func (b *Board) Counters() []Counter {
	out := make([]Counter, len(b.counters))
	copy(out, b.counters)
	return out
}

// IntroFrames returns the intro from zero for every counter.
func (b *Board) IntroFrames() []Frame {
	series := make(map[string][]float64, len(b.counters))
	for _, c := range b.counters {
		series[c.Name] = c.Intro(b.curve, 0, b.steps)
	}
	frames := make([]Frame, b.steps)
	for i := range frames {
		values := make(map[string]float64, len(b.counters))
		for name, s := range series {
			values[name] = s[i]
		}
		frames[i] = Frame{Seq: i + 1, Values: values}
	}
	return frames
}

// Steps returns the number of frames in an intro or transition.
func (b *Board) Steps() int { return b.steps }

// Transition returns, per field of to, the frames leading from the value in
// from (zero when absent) to the value in to, shaped by the board curve.
// Fields are not floored; callers format them.
func (b *Board) Transition(from, to map[string]float64) map[string][]float64 {
	out := make(map[string][]float64, len(to))
	for name, target := range to {
		out[name] = FramesWith(b.curve, from[name], target, b.steps)
	}
	return out
}

// Tick applies one live increment to values and returns the next frame.
func (b *Board) Tick(seq int, values map[string]float64) Frame {
	next := make(map[string]float64, len(values))
	b.rngMu.Lock()
	for _, c := range b.counters {
		next[c.Name] = c.Next(values[c.Name], b.rng)
	}
	b.rngMu.Unlock()
	return Frame{Seq: seq, Live: true, Values: next}
}

// Run emits the intro frames paced over the intro duration, then live frames
// every live interval. It returns when ctx is done or emit fails.
func (b *Board) Run(ctx context.Context, emit func(Frame) error) error {
	intro := b.IntroFrames()
	step := b.duration / time.Duration(b.steps)
	if step <= 0 {
		step = time.Millisecond
	}
	pace := time.NewTicker(step)
	defer pace.Stop()

	var last Frame
	for _, f := range intro {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-pace.C:
		}
		if err := emit(f); err != nil {
			return err
		}
		last = f
	}

	live := time.NewTicker(b.liveInterval)
	defer live.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-live.C:
			last = b.Tick(last.Seq+1, last.Values)
			if err := emit(last); err != nil {
				return err
			}
		}
	}
}

// DefaultStats are the community counters shown on the stats board.
func DefaultStats() []Counter {
	return []Counter{
		{Name: "mindshare", Target: 847562, Increment: Increment{Max: 9}},
		{Name: "views", Target: 2456789, Increment: Increment{Max: 49}},
		{Name: "followers", Target: 125678},
		{Name: "mentions", Target: 45892, Increment: Increment{Max: 2}},
		{Name: "trendingScore", Target: 94.7, Decimals: 1},
		{Name: "activeHolders", Target: 15234},
		{Name: "dailyTransactions", Target: 8547, Increment: Increment{Max: 4}},
		{Name: "socialScore", Target: 89.3, Decimals: 1},
	}
}
