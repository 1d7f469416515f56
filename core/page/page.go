// Package page holds the state behind each screen of the archive: the records fetched for it,
// the view counters of its tests and the alerts it raises.
package page

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/thalesor/repoprovas/core"
	"github.com/thalesor/repoprovas/core/alert"
	"github.com/thalesor/repoprovas/core/exam"
	"github.com/thalesor/repoprovas/core/views"
)

var (
	// errors
	ErrNoSession   = errors.New("no session token")
	ErrStale       = errors.New("stale response discarded")
	ErrUnknownTest = errors.New("test is not rendered on this page")
)

// Options configures a page.
type Options struct {
	Backend  exam.Backend
	Notifier alert.Notifier
	Logger   core.Logger
	Policy   exam.CountPolicy
	// Parallel fetches the tests and the categories of a load concurrently.
	Parallel bool
}

// loadKey identifies the load a response belongs to.
type loadKey struct {
	token string
	seq   uint64
}

// loader is the state shared by every page: the session, the load sequence and the in-flight count.
// Its mutex also guards the records of the embedding page.
type loader struct {
	backend  exam.Backend
	notifier alert.Notifier
	logger   core.Logger
	policy   exam.CountPolicy
	parallel bool
	// reset drops the records of the embedding page; called with mu held.
	reset func()

	mu       sync.Mutex
	token    string
	seq      uint64
	inFlight int
}

// init sets up l in place; a loader holds a mutex and is never copied.
func (l *loader) init(opts Options) {
	l.backend = opts.Backend
	l.notifier = opts.Notifier
	l.logger = opts.Logger
	l.policy = opts.Policy
	l.parallel = opts.Parallel
	if l.notifier == nil {
		l.notifier = alert.NewQueue(0)
	}
	if l.logger == nil {
		l.logger = core.NopLogger()
	}
}

// SetSession replaces the session token. On a change the records and counters of the page are
// dropped and responses to loads started with another token are discarded.
func (l *loader) SetSession(token string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if token == l.token {
		return
	}
	l.token = token
	l.seq++
	if l.reset != nil {
		l.reset()
	}
}

func (l *loader) Session() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.token
}

// Loading reports whether a fetch of this page is in flight.
func (l *loader) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inFlight > 0
}

func (l *loader) start() (loadKey, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.token == "" {
		return loadKey{}, ErrNoSession
	}
	l.seq++
	l.inFlight++
	return loadKey{token: l.token, seq: l.seq}, nil
}

func (l *loader) done() {
	l.mu.Lock()
	l.inFlight--
	l.mu.Unlock()
}

// isCurrent must be called with mu held.
func (l *loader) isCurrent(key loadKey) bool {
	return key.token == l.token && key.seq == l.seq
}

// fetchBoth runs both fetches, sequentially unless the page loads in parallel.
func (l *loader) fetchBoth(ctx context.Context, first, second func(context.Context) error) error {
	if !l.parallel {
		if err := first(ctx); err != nil {
			return err
		}
		return second(ctx)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return first(gctx) })
	g.Go(func() error { return second(gctx) })
	return g.Wait()
}

// discard logs a late response.
func (l *loader) discard(page string, key loadKey) error {
	l.logger.Debug("discarding stale response", map[string]interface{}{"page": page, "seq": key.seq})
	return ErrStale
}

// fail reports a failed load of a current key. The records are left untouched.
func (l *loader) fail(page string, key loadKey, err error) error {
	l.mu.Lock()
	current := l.isCurrent(key)
	l.mu.Unlock()
	if !current {
		return l.discard(page, key)
	}
	l.notifier.Notify(alert.Error, alert.LoadFailedText)
	l.logger.Warn("page load failed", err, map[string]interface{}{"page": page})
	return err
}

// open activates the counter of testID with the current session.
// Increment failures keep the previous count and are only logged.
func (l *loader) open(ctx context.Context, set *views.Set, testID int) (views.Snapshot, <-chan views.Result, error) {
	token := l.Session()
	if token == "" {
		return views.Snapshot{}, nil, ErrNoSession
	}
	counter, ok := set.Get(testID)
	if !ok {
		return views.Snapshot{}, nil, errors.Wrapf(ErrUnknownTest, "test %d", testID)
	}

	begun, results := counter.Activate(ctx, l.backend, token)
	out := make(chan views.Result, 1)
	go func() {
		defer close(out)
		res := <-results
		if res.Err != nil {
			l.logger.Debug("view count not updated", res.Err, map[string]interface{}{"test": testID})
		}
		out <- res
	}()
	return begun, out, nil
}

func initialCounts(tests []exam.Test, into map[int]*int) {
	for _, t := range tests {
		into[t.ID] = t.Views
	}
}

// overlay copies the counter values and badges into the rendered test nodes.
func overlay(set *views.Set, nodes []exam.TestNode) {
	for i := range nodes {
		c, ok := set.Get(nodes[i].ID)
		if !ok {
			continue
		}
		s := c.Snapshot()
		if s.Known {
			nodes[i].Views = core.IntPtr(s.Views)
		}
		nodes[i].Badge, _ = s.Badge()
	}
}

// find returns the rendered test with id.
func find(nodes []exam.TestNode, id int) (exam.Test, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n.Test, true
		}
	}
	return exam.Test{}, false
}
