package page

import (
	"context"

	"github.com/pkg/errors"

	"github.com/thalesor/repoprovas/core/exam"
	"github.com/thalesor/repoprovas/core/search"
	"github.com/thalesor/repoprovas/core/views"
)

// DisciplinesPage lists the tests grouped by term and discipline.
type DisciplinesPage struct {
	loader

	query      search.Query
	terms      []exam.TermGroup
	categories []exam.Category
	counters   *views.Set
}

func NewDisciplinesPage(opts Options) *DisciplinesPage {
	p := &DisciplinesPage{counters: views.NewSet()}
	p.init(opts)
	p.reset = func() {
		p.terms = nil
		p.categories = nil
		p.counters.Reset(nil)
	}
	return p
}

// SetSearch stores the search text verbatim; it takes effect on the next Load.
func (p *DisciplinesPage) SetSearch(text string) {
	p.mu.Lock()
	p.query.Set(text)
	p.mu.Unlock()
}

func (p *DisciplinesPage) Query() search.Query {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query
}

// Load fetches the tests matching the current search, then the categories.
// The records change only when both succeed and no newer load or session superseded this one.
// Every call fetches again, even if the search did not change.
func (p *DisciplinesPage) Load(ctx context.Context) error {
	key, err := p.start()
	if err != nil {
		return err
	}
	defer p.done()
	q := p.Query()

	var (
		terms      []exam.TermGroup
		categories []exam.Category
	)
	err = p.fetchBoth(ctx,
		func(ctx context.Context) error {
			var err error
			terms, err = p.backend.TestsByDiscipline(ctx, key.token, q)
			return errors.Wrap(err, "fetching tests by discipline")
		},
		func(ctx context.Context) error {
			var err error
			categories, err = p.backend.Categories(ctx, key.token)
			return errors.Wrap(err, "fetching categories")
		},
	)
	if err != nil {
		return p.fail("disciplines", key, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.isCurrent(key) {
		return p.discard("disciplines", key)
	}
	p.terms = terms
	p.categories = categories
	counts := map[int]*int{}
	for _, term := range terms {
		for _, d := range term.Disciplines {
			for _, td := range d.TeacherDisciplines {
				initialCounts(td.Tests, counts)
			}
		}
	}
	p.counters.Reset(counts)
	return nil
}

// Records returns the fetched collections as last loaded.
func (p *DisciplinesPage) Records() ([]exam.TermGroup, []exam.Category) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.terms, p.categories
}

// Tree renders the records, with the current view counts.
func (p *DisciplinesPage) Tree() []exam.TermNode {
	terms, categories := p.Records()
	tree := exam.BuildByTerm(terms, categories, p.policy)
	for _, term := range tree {
		for _, d := range term.Disciplines {
			for _, c := range d.Categories {
				overlay(p.counters, c.Tests)
			}
		}
	}
	return tree
}

// Counter returns the view counter of a rendered test.
func (p *DisciplinesPage) Counter(testID int) (*views.Counter, bool) {
	return p.counters.Get(testID)
}

// Open returns the test to navigate to and activates its view counter.
// The returned channel delivers the settled count; navigation never waits for it.
func (p *DisciplinesPage) Open(ctx context.Context, testID int) (exam.Test, views.Snapshot, <-chan views.Result, error) {
	t, ok := find(exam.Tests(p.Tree()), testID)
	if !ok {
		return exam.Test{}, views.Snapshot{}, nil, errors.Wrapf(ErrUnknownTest, "test %d", testID)
	}
	begun, results, err := p.open(ctx, p.counters, testID)
	if err != nil {
		return exam.Test{}, views.Snapshot{}, nil, err
	}
	return t, begun, results, nil
}
