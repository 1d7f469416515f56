package page

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thalesor/repoprovas/core"
	"github.com/thalesor/repoprovas/core/alert"
	"github.com/thalesor/repoprovas/core/exam"
)

func TestDisciplinesPage_Load(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		b := newBackend()
		b.terms = sampleTerms()
		b.categories = []exam.Category{prova, trabalho}
		opts, _ := newOptions(b)
		opts.Parallel = parallel

		p := NewDisciplinesPage(opts)
		p.SetSession("token-1")
		require.NoError(t, p.Load(context.Background()))
		assert.False(t, p.Loading())

		assert.ElementsMatch(t, []string{"TestsByDiscipline", "Categories"}, b.methods())
		for _, c := range b.Calls() {
			assert.Equal(t, "token-1", c.token)
		}

		tree := p.Tree()
		require.Len(t, tree, 1)
		assert.Equal(t, "2 provas", tree[0].Summary)
		tests := exam.Tests(tree)
		require.Len(t, tests, 2)
		assert.Equal(t, "P1 (Ana)", tests[0].Label)
		assert.Equal(t, 5, *tests[1].Views)
		assert.Equal(t, "", tests[0].Badge)
		assert.Equal(t, "5", tests[1].Badge)
	}
}

func TestDisciplinesPage_Load_Sequential(t *testing.T) {
	b := newBackend()
	opts, _ := newOptions(b)
	p := NewDisciplinesPage(opts)
	p.SetSession("token")

	require.NoError(t, p.Load(context.Background()))
	assert.Equal(t, []string{"TestsByDiscipline", "Categories"}, b.methods())
}

func TestDisciplinesPage_NoSession(t *testing.T) {
	b := newBackend()
	opts, _ := newOptions(b)
	p := NewDisciplinesPage(opts)

	assert.Equal(t, ErrNoSession, p.Load(context.Background()))
	assert.Empty(t, b.Calls())
}

func TestDisciplinesPage_Search(t *testing.T) {
	b := newBackend()
	opts, _ := newOptions(b)
	p := NewDisciplinesPage(opts)
	p.SetSession("token")

	// empty search sends no filter
	require.NoError(t, p.Load(context.Background()))
	// identical searches fetch again
	p.SetSearch("cal")
	require.NoError(t, p.Load(context.Background()))
	p.SetSearch("cal")
	require.NoError(t, p.Load(context.Background()))
	// whitespace is sent verbatim
	p.SetSearch(" ")
	require.NoError(t, p.Load(context.Background()))

	var searches []call
	for _, c := range b.Calls() {
		if c.method == "TestsByDiscipline" {
			searches = append(searches, call{method: c.method, token: c.token, search: c.search, hasArg: c.hasArg})
		}
	}
	assert.Equal(t, []call{
		{method: "TestsByDiscipline", token: "token"},
		{method: "TestsByDiscipline", token: "token", search: "cal", hasArg: true},
		{method: "TestsByDiscipline", token: "token", search: "cal", hasArg: true},
		{method: "TestsByDiscipline", token: "token", search: " ", hasArg: true},
	}, searches)
}

func TestDisciplinesPage_LoadFailureKeepsRecords(t *testing.T) {
	b := newBackend()
	b.terms = sampleTerms()
	b.categories = []exam.Category{prova, trabalho}
	opts, alerts := newOptions(b)
	p := NewDisciplinesPage(opts)
	p.SetSession("token")
	require.NoError(t, p.Load(context.Background()))

	b.setErr("Categories", exam.NewRequestError(500, "boom"))
	b.mu.Lock()
	b.terms = nil
	b.mu.Unlock()

	err := p.Load(context.Background())
	require.Error(t, err)
	rerr, ok := exam.AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, 500, rerr.Status)

	terms, categories := p.Records()
	assert.Len(t, terms, 1)
	assert.Len(t, categories, 2)

	msg, ok := alerts.Latest()
	require.True(t, ok)
	assert.Equal(t, alert.Error, msg.Severity)
	assert.Equal(t, alert.LoadFailedText, msg.Text)
}

func TestDisciplinesPage_StaleResponse(t *testing.T) {
	b := newBackend()
	b.terms = sampleTerms()
	opts, alerts := newOptions(b)
	p := NewDisciplinesPage(opts)
	p.SetSession("token")

	p.SetSearch(slowSearch)
	errc := make(chan error, 1)
	go func() { errc <- p.Load(context.Background()) }()
	<-b.started
	assert.True(t, p.Loading())

	p.SetSearch("fast")
	b.mu.Lock()
	b.categories = []exam.Category{trabalho}
	b.mu.Unlock()
	require.NoError(t, p.Load(context.Background()))

	b.mu.Lock()
	b.categories = []exam.Category{prova}
	b.mu.Unlock()
	close(b.release)

	assert.Equal(t, ErrStale, <-errc)
	_, categories := p.Records()
	assert.Equal(t, []exam.Category{trabalho}, categories)
	assert.False(t, p.Loading())
	_, ok := alerts.Latest()
	assert.False(t, ok)
}

func TestDisciplinesPage_SessionChangeDiscardsLoad(t *testing.T) {
	b := newBackend()
	b.terms = sampleTerms()
	opts, _ := newOptions(b)
	p := NewDisciplinesPage(opts)
	p.SetSession("token-1")
	p.SetSearch(slowSearch)

	errc := make(chan error, 1)
	go func() { errc <- p.Load(context.Background()) }()
	<-b.started
	p.SetSession("token-2")
	close(b.release)

	assert.Equal(t, ErrStale, <-errc)
	terms, _ := p.Records()
	assert.Empty(t, terms)
}

func TestDisciplinesPage_SessionChangeDropsRecords(t *testing.T) {
	b := newBackend()
	b.terms = sampleTerms()
	b.categories = []exam.Category{prova, trabalho}
	opts, _ := newOptions(b)
	p := NewDisciplinesPage(opts)
	p.SetSession("token-1")
	require.NoError(t, p.Load(context.Background()))
	require.Len(t, exam.Tests(p.Tree()), 2)

	// same token keeps everything
	p.SetSession("token-1")
	require.Len(t, exam.Tests(p.Tree()), 2)

	p.SetSession("token-2")
	terms, categories := p.Records()
	assert.Empty(t, terms)
	assert.Empty(t, categories)
	assert.Empty(t, p.Tree())
	_, ok := p.Counter(10)
	assert.False(t, ok)
	_, _, _, err := p.Open(context.Background(), 10)
	assert.Equal(t, ErrUnknownTest, errors.Cause(err))

	require.NoError(t, p.Load(context.Background()))
	assert.Len(t, exam.Tests(p.Tree()), 2)
}

func TestInstructorsPage_SessionChangeDropsRecords(t *testing.T) {
	b := newBackend()
	b.entries = sampleEntries()
	b.categories = []exam.Category{prova, trabalho}
	opts, _ := newOptions(b)
	p := NewInstructorsPage(opts)
	p.SetSession("token-1")
	require.NoError(t, p.Load(context.Background()))
	require.NotEmpty(t, p.Teachers())

	p.SetSession("token-2")
	assert.Empty(t, p.Teachers())
	assert.Empty(t, p.Tree())
	_, ok := p.Counter(12)
	assert.False(t, ok)
}

func TestNewPages_Defaults(t *testing.T) {
	b := newBackend()
	b.setErr("TestsByDiscipline", errors.New("down"))
	b.setErr("TestsByTeacher", errors.New("down"))
	b.setErr("Categories", errors.New("down"))

	pages := map[string]interface {
		SetSession(string)
		Load(context.Context) error
	}{
		"disciplines": NewDisciplinesPage(Options{Backend: b}),
		"instructors": NewInstructorsPage(Options{Backend: b}),
		"new test":    NewNewTestPage(Options{Backend: b}),
	}
	for name, p := range pages {
		t.Run(name, func(t *testing.T) {
			p.SetSession("token")
			// failures go to the default notifier and logger
			assert.Error(t, p.Load(context.Background()))
		})
	}
}

func TestDisciplinesPage_Open(t *testing.T) {
	b := newBackend()
	b.terms = sampleTerms()
	b.categories = []exam.Category{prova, trabalho}
	b.views[10] = 2
	opts, alerts := newOptions(b)
	p := NewDisciplinesPage(opts)
	p.SetSession("token")
	require.NoError(t, p.Load(context.Background()))

	test, begun, results, err := p.Open(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, "https://pdf.example/p1", test.PdfURL)
	_, shown := begun.Badge()
	assert.False(t, shown)

	res := <-results
	require.NoError(t, res.Err)
	text, shown := res.Badge()
	assert.True(t, shown)
	assert.Equal(t, "3", text)

	// the tree shows the authoritative count
	assert.Equal(t, 3, *exam.Tests(p.Tree())[0].Views)

	_, _, _, err = p.Open(context.Background(), 999)
	assert.Equal(t, ErrUnknownTest, errors.Cause(err))

	// increment failures keep the count and raise no alert
	b.setErr("IncrementTestViews", errors.New("boom"))
	_, _, results, err = p.Open(context.Background(), 10)
	require.NoError(t, err)
	res = <-results
	assert.Error(t, res.Err)
	assert.Equal(t, 3, res.Views)
	_, ok := alerts.Latest()
	assert.False(t, ok)
}

func TestInstructorsPage(t *testing.T) {
	b := newBackend()
	b.entries = sampleEntries()
	b.categories = []exam.Category{prova, trabalho}
	opts, _ := newOptions(b)
	p := NewInstructorsPage(opts)
	p.SetSession("token")
	p.SetSearch("ana")

	require.NoError(t, p.Load(context.Background()))
	assert.Equal(t, []string{"TestsByTeacher", "Categories"}, b.methods())
	assert.Equal(t, "ana", b.Calls()[0].search)
	assert.Equal(t, []string{"Ana", "Bruno"}, p.Teachers())

	tree := p.Tree()
	require.Len(t, tree, 2)
	require.Len(t, tree[0].Categories, 1)
	assert.Equal(t, "Prova", tree[0].Categories[0].Name)
	assert.Equal(t, "P1 (Cálculo)", tree[0].Categories[0].Disciplines[0].Tests[0].Label)

	_, _, results, err := p.Open(context.Background(), 12)
	require.NoError(t, err)
	res := <-results
	assert.Equal(t, 1, res.Views)
	c, ok := p.Counter(12)
	require.True(t, ok)
	assert.Equal(t, 1, c.Snapshot().Views)
}

func TestNewTestPage_Load(t *testing.T) {
	b := newBackend()
	b.categories = []exam.Category{prova}
	b.disciplines = []exam.Discipline{{ID: 1, Name: "Cálculo"}}
	b.teachers[1] = []exam.Teacher{{ID: 1, Name: "Ana"}}
	opts, _ := newOptions(b)
	p := NewNewTestPage(opts)
	p.SetSession("token")

	require.NoError(t, p.Load(context.Background()))
	assert.Equal(t, []string{"Categories", "Disciplines"}, b.methods())
	assert.Equal(t, b.categories, p.Categories())
	assert.Equal(t, b.disciplines, p.Disciplines())

	assert.False(t, p.TeachersAvailable())
	require.NoError(t, p.SelectDiscipline(context.Background(), 1))
	assert.True(t, p.TeachersAvailable())
	assert.Equal(t, []exam.Teacher{{ID: 1, Name: "Ana"}}, p.Teachers())

	require.NoError(t, p.SelectDiscipline(context.Background(), 2))
	assert.False(t, p.TeachersAvailable())
}

func TestNewTestPage_StaleTeachers(t *testing.T) {
	b := newBackend()
	b.teachers[-1] = []exam.Teacher{{ID: 9, Name: "Late"}}
	b.teachers[2] = []exam.Teacher{{ID: 2, Name: "Bruno"}}
	opts, _ := newOptions(b)
	p := NewNewTestPage(opts)
	p.SetSession("token")

	errc := make(chan error, 1)
	go func() { errc <- p.SelectDiscipline(context.Background(), -1) }()
	<-b.started
	require.NoError(t, p.SelectDiscipline(context.Background(), 2))
	close(b.release)

	assert.Equal(t, ErrStale, <-errc)
	assert.Equal(t, 2, p.Selected())
	assert.Equal(t, []exam.Teacher{{ID: 2, Name: "Bruno"}}, p.Teachers())
}

func TestNewTestPage_SessionChangeDropsChoices(t *testing.T) {
	b := newBackend()
	b.categories = []exam.Category{prova}
	b.disciplines = []exam.Discipline{{ID: 1, Name: "Cálculo"}}
	b.teachers[1] = []exam.Teacher{{ID: 1, Name: "Ana"}}
	opts, _ := newOptions(b)
	p := NewNewTestPage(opts)
	p.SetSession("token-1")
	require.NoError(t, p.Load(context.Background()))
	require.NoError(t, p.SelectDiscipline(context.Background(), 1))

	p.SetSession("token-2")
	assert.Empty(t, p.Categories())
	assert.Empty(t, p.Disciplines())
	assert.Empty(t, p.Teachers())
	assert.Equal(t, 0, p.Selected())
}

func TestNewTestPage_Submit(t *testing.T) {
	valid := exam.NewTest{Name: "P1", PdfURL: "https://pdf.example/p1", CategoryID: 1, DisciplineID: 1, TeacherID: 1}

	t.Run("invalid form", func(t *testing.T) {
		b := newBackend()
		opts, alerts := newOptions(b)
		p := NewNewTestPage(opts)
		p.SetSession("token")

		nt := valid
		nt.PdfURL = "  "
		_, err := p.Submit(context.Background(), nt)
		require.Error(t, err)
		assert.True(t, core.IsValidation(err))
		vErr := errors.Cause(err).(*core.ValidationError)
		assert.Equal(t, []core.FieldError{{Field: "pdfUrl", Error: "this field is required"}}, vErr.Fields)
		assert.Empty(t, b.Calls())

		msg, ok := alerts.Latest()
		require.True(t, ok)
		assert.Equal(t, alert.RequiredFieldText, msg.Text)
	})

	t.Run("created", func(t *testing.T) {
		b := newBackend()
		opts, alerts := newOptions(b)
		p := NewNewTestPage(opts)
		p.SetSession("token")

		test, err := p.Submit(context.Background(), valid)
		require.NoError(t, err)
		assert.Equal(t, "P1", test.Name)
		assert.Equal(t, []exam.NewTest{valid}, b.created)

		msg, ok := alerts.Latest()
		require.True(t, ok)
		assert.Equal(t, alert.Success, msg.Severity)
		assert.Equal(t, alert.CreatedText, msg.Text)
	})

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"error payload", exam.NewRequestError(409, "Teste já existe"), "Teste já existe"},
		{"empty payload", exam.NewRequestError(500, ""), alert.RetryText},
		{"network error", errors.New("connection refused"), alert.RetryText},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := newBackend()
			b.setErr("CreateTest", tc.err)
			opts, alerts := newOptions(b)
			p := NewNewTestPage(opts)
			p.SetSession("token")

			_, err := p.Submit(context.Background(), valid)
			require.Error(t, err)
			msg, ok := alerts.Latest()
			require.True(t, ok)
			assert.Equal(t, alert.Error, msg.Severity)
			assert.Equal(t, tc.want, msg.Text)
		})
	}
}
