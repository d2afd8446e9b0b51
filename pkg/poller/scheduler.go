package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"yidino-api/pkg/journal"
	"yidino-api/pkg/market"
)

const (
	DefaultInterval     = 30 * time.Second
	DefaultCycleTimeout = 20 * time.Second
	defaultHookTimeout  = 5 * time.Second
)

var (
	// ErrStopped is returned for cycles requested or completed after Stop.
	ErrStopped = errors.New("poller: stopped")
	// ErrRunning is returned by Start on a running scheduler.
	ErrRunning = errors.New("poller: already running")
)

// Status is the lifecycle stage of a scheduler.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// State is the poll state handed to readers. It is always a copy; the
// snapshot and bundle it points to are never mutated.
type State struct {
	Status      Status           `json:"status"`
	IsLoading   bool             `json:"isLoading"`
	Snapshot    *market.Snapshot `json:"snapshot"`
	// Previous is the snapshot Snapshot replaced, nil until the second
	// successful cycle.
	Previous    *market.Snapshot `json:"-"`
	Bundle      *market.Bundle   `json:"bundle,omitempty"`
	LastError   string           `json:"lastError,omitempty"`
	LastUpdated *time.Time       `json:"lastUpdated"`
	Cycles      uint64           `json:"cycles"`
}

// Observer receives the outcome of every completed cycle.
type Observer interface {
	ObservePoll(poller string, duration time.Duration, snap *market.Snapshot, err error)
}

// Journal persists cycle records.
type Journal interface {
	WriteCycle(rec *journal.CycleRecord) (string, error)
}

// Scheduler owns a poll timer and the latest State. It is the only writer of
// that state; any number of goroutines may read it.
type Scheduler struct {
	name         string
	fetcher      market.Fetcher
	interval     time.Duration
	hookTimeout  time.Duration
	cycleTimeout time.Duration
	now          func() time.Time
	persistence  market.Persistence
	observer     Observer
	journal      Journal

	mu       sync.RWMutex
	state    State
	inflight int
	stopped  bool

	lifeMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option customises a Scheduler.
type Option func(*Scheduler)

// WithName labels the scheduler in logs, metrics and journal files.
func WithName(name string) Option {
	return func(s *Scheduler) {
		if name != "" {
			s.name = name
		}
	}
}

// WithInterval sets the poll period.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithClock overrides the clock used for lastUpdated.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithPersistence records every successful snapshot.
func WithPersistence(p market.Persistence) Option {
	return func(s *Scheduler) {
		s.persistence = p
	}
}

// WithObserver reports every completed cycle.
func WithObserver(o Observer) Option {
	return func(s *Scheduler) {
		s.observer = o
	}
}

// WithJournal writes a record per completed cycle.
func WithJournal(j Journal) Option {
	return func(s *Scheduler) {
		s.journal = j
	}
}

// WithHookTimeout bounds the persistence call made after a cycle.
func WithHookTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.hookTimeout = d
		}
	}
}

// WithCycleTimeout bounds a whole fan-out. A cycle that runs past it is
// recorded as a failure and the previous snapshot is kept.
func WithCycleTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.cycleTimeout = d
		}
	}
}

// New constructs an idle Scheduler around fetcher.
func New(fetcher market.Fetcher, opts ...Option) *Scheduler {
	s := &Scheduler{
		name:         "market",
		fetcher:      fetcher,
		interval:     DefaultInterval,
		hookTimeout:  defaultHookTimeout,
		cycleTimeout: DefaultCycleTimeout,
		now:          time.Now,
		state:        State{Status: StatusIdle},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the scheduler label.
func (s *Scheduler) Name() string { return s.name }

// Interval returns the poll period.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// State returns a copy of the current poll state.
func (s *Scheduler) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Start runs a cycle immediately and then one per interval until Stop is
// called or ctx is done. It returns without waiting for the first cycle.
func (s *Scheduler) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()
	if s.done != nil {
		return ErrRunning
	}

	s.mu.Lock()
	s.stopped = false
	s.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	go s.loop(runCtx, done)
	return nil
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	_, _ = s.runCycle(ctx, "start")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = s.runCycle(ctx, "timer")
		}
	}
}

// Stop cancels the timer and waits for the loop to exit. Any cycle still in
// flight when Stop is called is discarded. Stop is idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	s.lifeMu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.lifeMu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Refetch runs a cycle out of band and returns the resulting state. It may
// overlap a timer cycle; whichever completes last wins. The cycle is detached
// from ctx cancellation so a departing caller cannot cut the shared fan-out
// short; it is bounded by the cycle timeout instead.
func (s *Scheduler) Refetch(ctx context.Context) (State, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.RLock()
	stopped := s.stopped
	s.mu.RUnlock()
	if stopped {
		return s.State(), ErrStopped
	}
	return s.runCycle(context.WithoutCancel(ctx), "refetch")
}

func (s *Scheduler) runCycle(ctx context.Context, trigger string) (State, error) {
	s.mu.Lock()
	if s.stopped {
		st := s.state
		s.mu.Unlock()
		return st, ErrStopped
	}
	s.inflight++
	s.state.IsLoading = true
	s.state.Status = StatusLoading
	s.mu.Unlock()

	start := s.now()
	cycleCtx, cancel := context.WithTimeout(ctx, s.cycleTimeout)
	bundle, err := s.aggregate(cycleCtx)
	if err == nil && cycleCtx.Err() != nil {
		// sources absorb cancellation into nil fields; that bundle is not data
		bundle, err = nil, fmt.Errorf("poller %s: cycle abandoned: %w", s.name, cycleCtx.Err())
	}
	cancel()
	finished := s.now()

	var snap *market.Snapshot
	if err == nil {
		merged := market.Merge(bundle)
		snap = &merged
	}

	s.mu.Lock()
	s.inflight--
	if s.stopped {
		s.state.IsLoading = s.inflight > 0
		st := s.state
		s.mu.Unlock()
		return st, ErrStopped
	}
	next := s.state
	next.IsLoading = s.inflight > 0
	next.Cycles++
	if err != nil {
		// keep the last good snapshot
		next.Status = StatusError
		next.LastError = err.Error()
	} else {
		next.Status = StatusReady
		next.Previous = next.Snapshot
		next.Snapshot = snap
		next.Bundle = bundle
		next.LastError = ""
		next.LastUpdated = &finished
	}
	s.state = next
	s.mu.Unlock()

	s.afterCycle(ctx, trigger, finished.Sub(start), snap, bundle, err)
	return next, err
}

func (s *Scheduler) aggregate(ctx context.Context) (bundle *market.Bundle, err error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("poller %s: no fetcher configured", s.name)
	}
	defer func() {
		if r := recover(); r != nil {
			bundle, err = nil, fmt.Errorf("poller %s: aggregate panicked: %v", s.name, r)
		}
	}()
	bundle, err = s.fetcher.Aggregate(ctx)
	if err == nil && bundle == nil {
		err = fmt.Errorf("poller %s: empty bundle", s.name)
	}
	return bundle, err
}

func (s *Scheduler) afterCycle(ctx context.Context, trigger string, elapsed time.Duration, snap *market.Snapshot, bundle *market.Bundle, err error) {
	if err != nil {
		logx.WithContext(ctx).Errorf("poller: cycle poller=%s trigger=%s err=%v", s.name, trigger, err)
	}
	if s.observer != nil {
		s.observer.ObservePoll(s.name, elapsed, snap, err)
	}
	if s.persistence != nil && snap != nil {
		hookCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.hookTimeout)
		if perr := s.persistence.RecordSnapshot(hookCtx, snap); perr != nil {
			logx.WithContext(ctx).Errorf("poller: record snapshot poller=%s err=%v", s.name, perr)
		}
		cancel()
	}
	if s.journal != nil {
		rec := &journal.CycleRecord{
			Poller:     s.name,
			DurationMs: elapsed.Milliseconds(),
			Trigger:    trigger,
			Success:    err == nil,
			Snapshot:   snap,
			Bundle:     bundle,
		}
		if err != nil {
			rec.ErrorMessage = err.Error()
		}
		if _, jerr := s.journal.WriteCycle(rec); jerr != nil {
			logx.WithContext(ctx).Errorf("poller: journal poller=%s err=%v", s.name, jerr)
		}
	}
}
