package page

import (
	"context"

	"github.com/pkg/errors"

	"github.com/thalesor/repoprovas/core/exam"
	"github.com/thalesor/repoprovas/core/search"
	"github.com/thalesor/repoprovas/core/views"
)

// InstructorsPage lists the tests grouped by teacher.
type InstructorsPage struct {
	loader

	query      search.Query
	entries    []exam.TeacherEntry
	categories []exam.Category
	counters   *views.Set
}

func NewInstructorsPage(opts Options) *InstructorsPage {
	p := &InstructorsPage{counters: views.NewSet()}
	p.init(opts)
	p.reset = func() {
		p.entries = nil
		p.categories = nil
		p.counters.Reset(nil)
	}
	return p
}

// SetSearch stores the search text verbatim; it takes effect on the next Load.
func (p *InstructorsPage) SetSearch(text string) {
	p.mu.Lock()
	p.query.Set(text)
	p.mu.Unlock()
}

func (p *InstructorsPage) Query() search.Query {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query
}

// Load fetches the teacher entries matching the current search, then the categories.
// See DisciplinesPage.Load.
func (p *InstructorsPage) Load(ctx context.Context) error {
	key, err := p.start()
	if err != nil {
		return err
	}
	defer p.done()
	q := p.Query()

	var (
		entries    []exam.TeacherEntry
		categories []exam.Category
	)
	err = p.fetchBoth(ctx,
		func(ctx context.Context) error {
			var err error
			entries, err = p.backend.TestsByTeacher(ctx, key.token, q)
			return errors.Wrap(err, "fetching tests by teacher")
		},
		func(ctx context.Context) error {
			var err error
			categories, err = p.backend.Categories(ctx, key.token)
			return errors.Wrap(err, "fetching categories")
		},
	)
	if err != nil {
		return p.fail("instructors", key, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.isCurrent(key) {
		return p.discard("instructors", key)
	}
	p.entries = entries
	p.categories = categories
	counts := map[int]*int{}
	for _, e := range entries {
		initialCounts(e.Tests, counts)
	}
	p.counters.Reset(counts)
	return nil
}

func (p *InstructorsPage) Records() ([]exam.TeacherEntry, []exam.Category) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.entries, p.categories
}

// Teachers returns the distinct teacher names of the records.
func (p *InstructorsPage) Teachers() []string {
	entries, _ := p.Records()
	return exam.UniqueTeachers(entries)
}

// Tree renders the records, with the current view counts.
func (p *InstructorsPage) Tree() []exam.TeacherNode {
	entries, categories := p.Records()
	tree := exam.BuildByTeacher(entries, categories)
	for _, tn := range tree {
		for _, c := range tn.Categories {
			for _, d := range c.Disciplines {
				overlay(p.counters, d.Tests)
			}
		}
	}
	return tree
}

func (p *InstructorsPage) Counter(testID int) (*views.Counter, bool) {
	return p.counters.Get(testID)
}

// Open returns the test to navigate to and activates its view counter.
func (p *InstructorsPage) Open(ctx context.Context, testID int) (exam.Test, views.Snapshot, <-chan views.Result, error) {
	t, ok := find(exam.TeacherTests(p.Tree()), testID)
	if !ok {
		return exam.Test{}, views.Snapshot{}, nil, errors.Wrapf(ErrUnknownTest, "test %d", testID)
	}
	begun, results, err := p.open(ctx, p.counters, testID)
	if err != nil {
		return exam.Test{}, views.Snapshot{}, nil, err
	}
	return t, begun, results, nil
}
