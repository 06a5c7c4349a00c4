package session

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/zyedidia/generic/mapset"

	"github.com/sheikhrachel/go-gol-board/model"
	"github.com/sheikhrachel/go-gol-board/utils"
)

var (
	// ErrClosed is returned by every operation on a closed session
	ErrClosed = errors.New("session closed")
	// ErrUnknownSession is returned by the Store for ids it does not hold
	ErrUnknownSession = errors.New("unknown session")
	// ErrSessionExists is returned by Store.Create for an id already in use
	ErrSessionExists = errors.New("session already exists")
)

// historySize is how many recent grid hashes are kept for stagnation detection
const historySize = 5

// historyEntry is the alive-pattern hash a step produced at a generation
type historyEntry struct {
	generation int
	hash       string
}

// Option customizes a Session at construction
type Option func(*Session)

// WithRandomSource replaces the seeded generator used to fill the board
func WithRandomSource(rng model.RandomSource) Option {
	return func(s *Session) {
		s.rng = rng
	}
}

// Session owns one board: its grid, generation counter, run state and auto-play loop.
// All grid mutations are serialized behind mu.
type Session struct {
	cfg  utils.Config
	rng  model.RandomSource
	pool *model.GridPool

	mu         sync.Mutex
	grid       *model.Grid
	didSetup   bool
	generation int
	state      RunState
	closed     bool
	stats      *utils.Stats
	lastStep   time.Time
	history    []historyEntry

	// set while the auto-play loop is live
	loopCancel context.CancelFunc
	loopDone   chan struct{}
	// every loop goroutine ever started, including ones stopped and still unwinding
	loops       sync.WaitGroup
	activeLoops atomic.Int32

	// per-subscriber count of events published to it
	subs map[chan Event]uint64
}

// New creates a session from cfg and seeds its board
func New(cfg utils.Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "[session.New]")
	}
	grid, err := model.NewGrid(cfg.Rows, cfg.Cols)
	if err != nil {
		return nil, errors.Wrap(err, "[session.New]")
	}

	s := &Session{
		cfg:   cfg,
		grid:  grid,
		state: Idle,
		stats: utils.NewStats(),
		subs:  make(map[chan Event]uint64),
	}
	if cfg.UseMemoryPool {
		s.pool = model.NewGridPool(cfg.Rows, cfg.Cols)
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		seed := cfg.ResolveSeed()
		s.rng = rand.New(rand.NewPCG(uint64(seed), uint64(seed>>32)))
	}

	if err = s.Setup(); err != nil {
		return nil, err
	}
	return s, nil
}

// Setup fills the board randomly. It is a no-op once the board is set up,
// until the next reset.
func (s *Session) Setup() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.didSetup {
		return nil
	}

	before := s.grid.Clone()
	s.grid.Initialize(s.cfg.LiveProbability, s.rng)
	if s.cfg.SeedPatterns {
		s.grid.AddInterestingPatterns()
	}
	s.didSetup = true
	s.lastStep = time.Now()
	s.publishLocked(EventSetup, model.Diff(before, s.grid))
	return nil
}

// Config returns the configuration the session was built from
func (s *Session) Config() utils.Config {
	return s.cfg
}

// Cell returns one cell for rendering
func (s *Session) Cell(row, col int) (model.Cell, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cell, err := s.grid.Cell(row, col)
	if err != nil {
		return model.Cell{}, errors.Wrap(err, "[Session.Cell]")
	}
	return cell, nil
}

// Grid returns an independent copy of the current board
func (s *Session) Grid() *model.Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Clone()
}

// Generation returns the number of transitions since creation or the last reset
func (s *Session) Generation() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// State returns the auto-play run state
func (s *Session) State() RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsSetUp reports whether the board has been filled since creation or the last reset
func (s *Session) IsSetUp() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.didSetup
}

// Stats returns a copy of the performance counters
func (s *Session) Stats() utils.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.stats
}

// IsStagnant reports whether the board repeats one of the states its last few steps produced
func (s *Session) IsStagnant() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) < 3 {
		return false
	}
	current := s.grid.GetGridHash()
	for _, h := range s.history {
		// the step that produced the current generation is the current grid, not a prior state
		if h.generation == s.generation {
			continue
		}
		if h.hash == current {
			return true
		}
	}
	return false
}

// OnUserToggle flips a cell, locks it for the next transition and counts a generation
func (s *Session) OnUserToggle(row, col int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if !s.didSetup {
		return errors.Wrap(model.ErrNotInitialized, "[Session.OnUserToggle]")
	}
	if err := s.grid.Toggle(row, col); err != nil {
		return errors.Wrap(err, "[Session.OnUserToggle]")
	}
	s.generation++

	changed := mapset.New[model.Coord]()
	changed.Put(model.Coord{Row: row, Col: col})
	s.publishLocked(EventToggle, changed)
	return nil
}

// OnStepRequested advances the board by one generation
func (s *Session) OnStepRequested() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	return s.stepLocked()
}

func (s *Session) stepLocked() error {
	next, err := s.grid.NextGeneration(model.TransitionOptions{
		Parallel: s.cfg.UseParallel,
		Pool:     s.pool,
	})
	if err != nil {
		return errors.Wrap(err, "[Session.step]")
	}

	changed := model.Diff(s.grid, next)
	s.pool.Put(s.grid)
	s.grid = next
	s.generation++

	now := time.Now()
	s.stats.Record(s.generation, next.CountLivingCells(), now.Sub(s.lastStep))
	s.stats.LockedCells = 0
	s.lastStep = now

	s.history = append(s.history, historyEntry{generation: s.generation, hash: next.GetGridHash()})
	if len(s.history) > historySize {
		s.history = s.history[1:]
	}

	s.publishLocked(EventStep, changed)
	return nil
}

// OnAutoStartRequested starts the auto-play loop. The loop runs until stopped,
// reset, closed or until ctx is done. Starting a running session is a no-op.
func (s *Session) OnAutoStartRequested(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if !s.didSetup {
		return errors.Wrap(model.ErrNotInitialized, "[Session.OnAutoStartRequested]")
	}
	if s.state == Running {
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.loopCancel, s.loopDone = cancel, done
	s.state = Running
	s.loops.Add(1)
	s.activeLoops.Add(1)
	go s.run(loopCtx, done)

	s.publishLocked(EventRunState, mapset.New[model.Coord]())
	return nil
}

// OnAutoStopRequested stops the auto-play loop before its next tick.
// A tick already in progress completes.
func (s *Session) OnAutoStopRequested() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopLoopLocked() {
		s.publishLocked(EventRunState, mapset.New[model.Coord]())
	}
}

// stopLoopLocked cancels the live loop, if any, and reports whether one was running
func (s *Session) stopLoopLocked() bool {
	if s.state != Running {
		return false
	}
	s.loopCancel()
	s.loopCancel, s.loopDone = nil, nil
	s.state = Stopped
	return true
}

// OnResetRequested stops auto-play and replaces the board with a fresh, unseeded one.
// The generation counter returns to 0; the next Setup reseeds the board.
func (s *Session) OnResetRequested() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.stopLoopLocked()

	fresh, err := model.NewGrid(s.grid.GetRows(), s.grid.GetCols())
	if err != nil {
		return errors.Wrap(err, "[Session.OnResetRequested]")
	}
	changed := model.Diff(s.grid, fresh)
	s.pool.Put(s.grid)

	s.grid = fresh
	s.didSetup = false
	s.generation = 0
	s.history = nil
	s.stats = utils.NewStats()
	s.publishLocked(EventReset, changed)
	return nil
}

// Close stops auto-play, waits for every loop goroutine to exit and closes every subscription
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.stopLoopLocked()
	s.closed = true
	s.publishLocked(EventClosed, mapset.New[model.Coord]())
	for ch := range s.subs {
		close(ch)
	}
	s.subs = nil
	s.mu.Unlock()

	// no loop can start once closed is set, so Wait cannot race an Add
	s.loops.Wait()
	return nil
}

// run is the auto-play loop: tick, then wait TickDelay, until ctx is done
func (s *Session) run(ctx context.Context, done chan struct{}) {
	defer func() {
		close(done)
		s.activeLoops.Add(-1)
		s.loops.Done()
	}()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.loopExited(done)
			return
		case <-timer.C:
		}

		if !s.tick(ctx) {
			s.loopExited(done)
			return
		}
		timer.Reset(s.cfg.TickDelay)
	}
}

// tick runs one transition unless the loop was stopped while it slept
func (s *Session) tick(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ctx.Err() != nil {
		return false
	}
	return s.stepLocked() == nil
}

// loopExited marks the session stopped when the loop ended on its own,
// i.e. through parent context cancellation rather than a stop request
func (s *Session) loopExited(done chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loopDone != done {
		return
	}
	s.loopCancel()
	s.loopCancel, s.loopDone = nil, nil
	s.state = Stopped
	s.publishLocked(EventRunState, mapset.New[model.Coord]())
}

// Subscribe returns a channel of session events and a func that ends the subscription.
// Each subscriber numbers its events from 1 in Seq. When its buffer is full the
// oldest queued event is dropped, so the newest event always arrives and a gap
// in Seq tells the subscriber it missed changes.
func (s *Session) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	s.subs[ch] = 0

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
	}
}

func (s *Session) publishLocked(kind EventKind, changed mapset.Set[model.Coord]) {
	if kind != EventStep {
		s.stats.LockedCells = s.grid.CountLockedCells()
	}
	for ch, seq := range s.subs {
		seq++
		s.subs[ch] = seq
		ev := Event{
			Seq:        seq,
			Kind:       kind,
			Generation: s.generation,
			State:      s.state,
			Changed:    changed,
		}
		select {
		case ch <- ev:
			continue
		default:
		}
		// full: make room by discarding the oldest event; only this goroutine sends, under mu
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- ev:
		default:
		}
	}
}
