package page

import (
	"context"
	"sync"

	"github.com/thalesor/repoprovas/core/alert"
	"github.com/thalesor/repoprovas/core/exam"
	"github.com/thalesor/repoprovas/core/search"
)

const slowSearch = "slow"

type call struct {
	method string
	token  string
	search string
	hasArg bool
}

// backend is a scripted exam.Backend. Fetches with the slow search text wait for release.
type backend struct {
	mu          sync.Mutex
	calls       []call
	terms       []exam.TermGroup
	entries     []exam.TeacherEntry
	categories  []exam.Category
	disciplines []exam.Discipline
	teachers    map[int][]exam.Teacher
	views       map[int]int
	errs        map[string]error
	created     []exam.NewTest

	started chan struct{}
	release chan struct{}
}

func newBackend() *backend {
	return &backend{
		teachers: map[int][]exam.Teacher{},
		views:    map[int]int{},
		errs:     map[string]error{},
		started:  make(chan struct{}, 4),
		release:  make(chan struct{}),
	}
}

func (b *backend) record(method, token string, q *search.Query) error {
	c := call{method: method, token: token}
	if q != nil {
		c.search, c.hasArg = q.Filter()
	}
	b.mu.Lock()
	b.calls = append(b.calls, c)
	err := b.errs[method]
	b.mu.Unlock()

	if c.search == slowSearch {
		b.started <- struct{}{}
		<-b.release
	}
	return err
}

func (b *backend) Calls() []call {
	b.mu.Lock()
	defer b.mu.Unlock()
	res := make([]call, len(b.calls))
	copy(res, b.calls)
	return res
}

func (b *backend) methods() []string {
	var res []string
	for _, c := range b.Calls() {
		res = append(res, c.method)
	}
	return res
}

func (b *backend) setErr(method string, err error) {
	b.mu.Lock()
	b.errs[method] = err
	b.mu.Unlock()
}

func (b *backend) TestsByDiscipline(_ context.Context, token string, q search.Query) ([]exam.TermGroup, error) {
	if err := b.record("TestsByDiscipline", token, &q); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.terms, nil
}

func (b *backend) TestsByTeacher(_ context.Context, token string, q search.Query) ([]exam.TeacherEntry, error) {
	if err := b.record("TestsByTeacher", token, &q); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.entries, nil
}

func (b *backend) Categories(_ context.Context, token string) ([]exam.Category, error) {
	if err := b.record("Categories", token, nil); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.categories, nil
}

func (b *backend) Disciplines(_ context.Context, token string) ([]exam.Discipline, error) {
	if err := b.record("Disciplines", token, nil); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disciplines, nil
}

func (b *backend) TeachersByDiscipline(_ context.Context, token string, disciplineID int) ([]exam.Teacher, error) {
	if err := b.record("TeachersByDiscipline", token, nil); err != nil {
		return nil, err
	}
	if disciplineID < 0 {
		b.started <- struct{}{}
		<-b.release
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.teachers[disciplineID], nil
}

func (b *backend) CreateTest(_ context.Context, token string, nt exam.NewTest) (exam.Test, error) {
	if err := b.record("CreateTest", token, nil); err != nil {
		return exam.Test{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.created = append(b.created, nt)
	return exam.Test{ID: 100 + len(b.created), Name: nt.Name, PdfURL: nt.PdfURL, Category: exam.Category{ID: nt.CategoryID}}, nil
}

func (b *backend) IncrementTestViews(_ context.Context, token string, testID int) (int, error) {
	if err := b.record("IncrementTestViews", token, nil); err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.views[testID]++
	return b.views[testID], nil
}

var (
	prova    = exam.Category{ID: 1, Name: "Prova"}
	trabalho = exam.Category{ID: 2, Name: "Trabalho"}
)

func sampleTerms() []exam.TermGroup {
	zero, five := 0, 5
	return []exam.TermGroup{{ID: 1, Number: 1, Disciplines: []exam.Discipline{
		{ID: 1, Name: "Cálculo", TeacherDisciplines: []exam.TeacherDiscipline{{
			ID:      1,
			Teacher: exam.Teacher{ID: 1, Name: "Ana"},
			Tests: []exam.Test{
				{ID: 10, Name: "P1", PdfURL: "https://pdf.example/p1", Category: prova, Views: &zero},
				{ID: 11, Name: "T1", PdfURL: "https://pdf.example/t1", Category: trabalho, Views: &five},
			},
		}}},
	}}}
}

func sampleEntries() []exam.TeacherEntry {
	return []exam.TeacherEntry{
		{ID: 1, Teacher: exam.Teacher{ID: 1, Name: "Ana"}, Discipline: exam.Discipline{ID: 1, Name: "Cálculo"},
			Tests: []exam.Test{{ID: 10, Name: "P1", Category: prova}}},
		{ID: 2, Teacher: exam.Teacher{ID: 2, Name: "Bruno"}, Discipline: exam.Discipline{ID: 2, Name: "Física"},
			Tests: []exam.Test{{ID: 12, Name: "T2", Category: trabalho}}},
		{ID: 3, Teacher: exam.Teacher{ID: 1, Name: "Ana"}, Discipline: exam.Discipline{ID: 3, Name: "Química"}},
	}
}

func newOptions(b *backend) (Options, *alert.Queue) {
	q := alert.NewQueue(0)
	return Options{Backend: b, Notifier: q, Policy: exam.FirstInstructorOnly}, q
}
