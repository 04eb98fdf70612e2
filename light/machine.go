// Package light implements a two-phase traffic light that cycles on its own
// goroutine and publishes each phase change to waiting consumers.
//
// A [Machine] starts out [Red]. Once [Machine.Simulate] is called, it holds
// each phase for a random dwell time and then toggles, sending the new phase
// through a single-slot [lightsync.Queue]. Consumers that are slow to receive
// only observe the most recent phase, not every intermediate change.
package light

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/creachadair/lightsync"
)

// Default timing parameters, used when the corresponding Config field is 0.
const (
	DefaultMinDwell = 4 * time.Second
	DefaultMaxDwell = 6 * time.Second
	DefaultPoll     = time.Millisecond
)

// ErrStopped is reported by a machine that was stopped before a phase change
// could be delivered.
var ErrStopped = errors.New("machine is stopped")

// Config models optional configuration for New.
type Config struct {
	// Name labels log messages from the machine.
	Name string

	// MinDwell is the shortest time a phase is held before toggling.
	// Defaults to DefaultMinDwell, if 0.
	MinDwell time.Duration

	// MaxDwell is the longest time a phase is held before toggling. Each dwell
	// is drawn uniformly from [MinDwell, MaxDwell].
	// Defaults to DefaultMaxDwell, if 0.
	MaxDwell time.Duration

	// Poll is how often the cycling loop checks whether the current dwell has
	// elapsed. Phase changes may lag the dwell by up to one Poll.
	// Defaults to DefaultPoll, if 0.
	Poll time.Duration

	// Source supplies randomness for dwell times. It is used only by the
	// cycling goroutine. If nil, each machine gets its own randomly-seeded
	// generator.
	Source rand.Source

	// Logger receives log messages. If nil, the machine is silent.
	Logger *Logger
}

// A Machine is a traffic light that alternates between Red and Green.
// Instances must be created with New.
//
// The current phase can be read and written at any time without blocking.
// Reads are not synchronized with the publication of phase changes: a caller
// woken by a change may briefly observe an older phase if another goroutine
// calls SetPhase concurrently.
type Machine struct {
	name     string
	minDwell time.Duration // read-only after initialization
	maxDwell time.Duration // read-only after initialization
	poll     time.Duration // read-only after initialization
	rng      *rand.Rand    // used only by the cycling goroutine
	log      *Logger

	phase atomic.Uint32
	queue *lightsync.Queue[Phase]

	μ       sync.Mutex // protects the fields below
	started bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{} // closed when the machine stops
}

// New constructs a new Red machine with the given configuration. A nil cfg
// uses the documented defaults. New panics if a duration in cfg is negative,
// or if MinDwell exceeds MaxDwell after defaults are applied.
func New(cfg *Config) *Machine {
	m := &Machine{
		minDwell: DefaultMinDwell,
		maxDwell: DefaultMaxDwell,
		poll:     DefaultPoll,
		queue:    lightsync.NewQueue[Phase](),
		done:     make(chan struct{}),
	}
	var src rand.Source
	if cfg != nil {
		if cfg.MinDwell < 0 || cfg.MaxDwell < 0 || cfg.Poll < 0 {
			panic(fmt.Sprintf("light: negative duration in config: %+v", *cfg))
		}
		m.name = cfg.Name
		if cfg.MinDwell != 0 {
			m.minDwell = cfg.MinDwell
		}
		if cfg.MaxDwell != 0 {
			m.maxDwell = cfg.MaxDwell
		}
		if cfg.Poll != 0 {
			m.poll = cfg.Poll
		}
		src = cfg.Source
		m.log = cfg.Logger
	}
	if m.minDwell > m.maxDwell {
		panic(fmt.Sprintf("light: min dwell %v exceeds max dwell %v", m.minDwell, m.maxDwell))
	}
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	m.rng = rand.New(src)
	return m
}

// Phase returns the current phase of m. It does not block.
func (m *Machine) Phase() Phase { return Phase(m.phase.Load()) }

// SetPhase forces m into phase p, outside the normal cycle. The change is not
// published to waiters. SetPhase panics if p is not a valid phase.
func (m *Machine) SetPhase(p Phase) {
	if !p.Valid() {
		panic(fmt.Sprintf("light: invalid phase %v", p))
	}
	m.phase.Store(uint32(p))
}

// Toggle flips the phase of m from Red to Green or back, and returns the new
// phase. The change is not published to waiters.
func (m *Machine) Toggle() Phase {
	for {
		old := m.phase.Load()
		next := Phase(old).Toggle()
		if m.phase.CompareAndSwap(old, uint32(next)) {
			return next
		}
	}
}

// Next blocks until m publishes a phase change, and returns the new phase.
// Each published change is delivered to only one caller of Next; if several
// changes are published while nobody is waiting, only the latest is kept.
//
// If ctx ends first, Next returns the error from ctx. If m stops with no
// change pending, Next returns ErrStopped.
func (m *Machine) Next(ctx context.Context) (Phase, error) {
	select {
	case p := <-m.queue.Ready():
		return p, nil
	case <-ctx.Done():
		return Red, ctx.Err()
	case <-m.done:
		select {
		case p := <-m.queue.Ready():
			return p, nil
		default:
			return Red, ErrStopped
		}
	}
}

// WaitForGreen blocks until m publishes a change to Green, discarding any
// changes to Red received in the meantime. It returns nil once Green has been
// received, or the error from Next if waiting ends for another reason.
//
// If m has not been started, WaitForGreen blocks until ctx ends or m stops.
func (m *Machine) WaitForGreen(ctx context.Context) error {
	for {
		p, err := m.Next(ctx)
		if err != nil {
			return err
		} else if p == Green {
			return nil
		}
	}
}

// Simulate starts the cycling goroutine for m and reports whether it did so.
// The goroutine runs until Stop is called. Calling Simulate on a machine that
// is already running or has been stopped has no effect, and reports false.
func (m *Machine) Simulate() bool {
	m.μ.Lock()
	defer m.μ.Unlock()
	if m.started || m.stopped {
		return false
	}
	m.started = true

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go m.cycle(ctx)
	m.infof("light %q: started, dwell %v..%v", m.name, m.minDwell, m.maxDwell)
	return true
}

// Stop stops the cycling goroutine of m, if it is running, and blocks until
// it has exited. After Stop returns, m no longer changes phase on its own and
// pending callers of Next and WaitForGreen are released. Stop is safe to call
// multiple times, and on a machine that was never started.
func (m *Machine) Stop() {
	m.μ.Lock()
	if !m.stopped {
		m.stopped = true
		if m.started {
			m.cancel()
		} else {
			close(m.done)
		}
	}
	m.μ.Unlock()
	<-m.done
}

// Done returns a channel that is closed when m has stopped.
func (m *Machine) Done() <-chan struct{} { return m.done }

// dwell draws a random dwell time from the configured range.
func (m *Machine) dwell() time.Duration {
	span := int64(m.maxDwell - m.minDwell)
	return m.minDwell + time.Duration(m.rng.Int64N(span+1))
}

// cycle runs the phase loop until ctx ends. Each phase is held for its own
// independently drawn dwell time.
func (m *Machine) cycle(ctx context.Context) {
	defer close(m.done)

	tick := time.NewTicker(m.poll)
	defer tick.Stop()

	start, dwell := time.Now(), m.dwell()
	for {
		select {
		case <-ctx.Done():
			m.infof("light %q: stopped", m.name)
			return
		case now := <-tick.C:
			if now.Sub(start) <= dwell {
				continue
			}
			p := m.Toggle()
			m.queue.Send(p)
			m.debugf("light %q: %v after %v", m.name, p, now.Sub(start).Round(time.Millisecond))
			start, dwell = time.Now(), m.dwell()
		}
	}
}
