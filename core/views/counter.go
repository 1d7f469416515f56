// Package views tracks the view count of a rendered test.
//
// A Counter starts Idle with the count the backend sent (possibly unknown).
// Every activation moves it to Updating until the matching increment resolves.
// When several increments are in flight, the value of whichever resolves last wins.
package views

import (
	"context"
	"strconv"
	"sync"

	"github.com/pkg/errors"
)

// State of a Counter.
type State int

const (
	Idle State = iota
	Updating
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Updating:
		return "updating"
	default:
		return "unknown"
	}
}

// Incrementer is the backend call behind an activation.
type Incrementer interface {
	IncrementTestViews(ctx context.Context, token string, testID int) (int, error)
}

var errNegativeCount = errors.New("negative view count")

// Snapshot is the observable state of a Counter.
type Snapshot struct {
	TestID int
	Views  int
	Known  bool
	State  State
}

// Badge returns the text of the view badge and whether it is shown.
// Unknown and zero counts show no badge.
func (s Snapshot) Badge() (string, bool) {
	if !s.Known || s.Views <= 0 {
		return "", false
	}
	return strconv.Itoa(s.Views), true
}

// Counter is safe for concurrent use.
type Counter struct {
	testID int

	mu      sync.Mutex
	views   int
	known   bool
	pending int
}

// NewCounter returns an Idle counter for testID; initial is nil when the backend sent no count.
func NewCounter(testID int, initial *int) *Counter {
	c := &Counter{testID: testID}
	if initial != nil && *initial >= 0 {
		c.views = *initial
		c.known = true
	}
	return c
}

func (c *Counter) TestID() int { return c.testID }

func (c *Counter) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Counter) snapshot() Snapshot {
	s := Snapshot{TestID: c.testID, Views: c.views, Known: c.known, State: Idle}
	if c.pending > 0 {
		s.State = Updating
	}
	return s
}

// Begin records an activation. Each Begin must be paired with one Resolve.
func (c *Counter) Begin() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending++
	return c.snapshot()
}

// Resolve settles one in-flight increment. On success the authoritative count replaces
// the current one; on failure (or a negative count) the current value is kept.
func (c *Counter) Resolve(views int, err error) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending > 0 {
		c.pending--
	}
	if err == nil && views >= 0 {
		c.views = views
		c.known = true
	}
	return c.snapshot()
}

// Activate begins an increment and performs it in the background with the given session token.
// The returned channel receives the settled snapshot and is then closed.
// Activate never blocks the caller; opening the test is not conditioned on the result.
func (c *Counter) Activate(ctx context.Context, inc Incrementer, token string) (Snapshot, <-chan Result) {
	begun := c.Begin()
	done := make(chan Result, 1)
	go func() {
		defer close(done)
		views, err := inc.IncrementTestViews(ctx, token, c.testID)
		if err == nil && views < 0 {
			err = errors.Wrapf(errNegativeCount, "test %d: %d", c.testID, views)
		}
		done <- Result{Snapshot: c.Resolve(views, err), Err: err}
	}()
	return begun, done
}

// Result is the outcome of one activation.
type Result struct {
	Snapshot
	Err error
}

// Set replaces every counter of a rendered view, keyed by test id.
type Set struct {
	mu       sync.RWMutex
	counters map[int]*Counter
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{counters: map[int]*Counter{}}
}

// Reset drops all counters and creates fresh ones from the given initial counts.
func (s *Set) Reset(initial map[int]*int) {
	counters := make(map[int]*Counter, len(initial))
	for id, v := range initial {
		counters[id] = NewCounter(id, v)
	}
	s.mu.Lock()
	s.counters = counters
	s.mu.Unlock()
}

// Get returns the counter of testID, if rendered.
func (s *Set) Get(testID int) (*Counter, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.counters[testID]
	return c, ok
}

func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.counters)
}
