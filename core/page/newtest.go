package page

import (
	"context"
	"sort"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/thalesor/repoprovas/core"
	"github.com/thalesor/repoprovas/core/alert"
	"github.com/thalesor/repoprovas/core/exam"
)

// NewTestPage backs the test submission form.
type NewTestPage struct {
	loader
	validate   *validator.Validate
	translator ut.Translator

	categories  []exam.Category
	disciplines []exam.Discipline
	teachers    []exam.Teacher
	selected    int
	selectSeq   uint64
}

func NewNewTestPage(opts Options) *NewTestPage {
	validate, translator := core.NewValidator()
	p := &NewTestPage{validate: validate, translator: translator}
	p.init(opts)
	p.reset = func() {
		p.categories, p.disciplines, p.teachers = nil, nil, nil
		p.selected = 0
		p.selectSeq++
	}
	return p
}

// Load fetches the categories, then the disciplines.
func (p *NewTestPage) Load(ctx context.Context) error {
	key, err := p.start()
	if err != nil {
		return err
	}
	defer p.done()

	categories, err := p.backend.Categories(ctx, key.token)
	if err != nil {
		return p.fail("new test", key, errors.Wrap(err, "fetching categories"))
	}
	disciplines, err := p.backend.Disciplines(ctx, key.token)
	if err != nil {
		return p.fail("new test", key, errors.Wrap(err, "fetching disciplines"))
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.isCurrent(key) {
		return p.discard("new test", key)
	}
	p.categories = categories
	p.disciplines = disciplines
	return nil
}

func (p *NewTestPage) Categories() []exam.Category {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.categories
}

func (p *NewTestPage) Disciplines() []exam.Discipline {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.disciplines
}

// SelectDiscipline clears the teacher choices and loads the teachers of disciplineID.
// A response arriving after another discipline was selected is discarded.
func (p *NewTestPage) SelectDiscipline(ctx context.Context, disciplineID int) error {
	p.mu.Lock()
	token := p.token
	if token == "" {
		p.mu.Unlock()
		return ErrNoSession
	}
	p.selected = disciplineID
	p.selectSeq++
	seq := p.selectSeq
	p.teachers = nil
	p.inFlight++
	p.mu.Unlock()
	defer p.done()

	teachers, err := p.backend.TeachersByDiscipline(ctx, token, disciplineID)

	p.mu.Lock()
	current := p.token == token && p.selected == disciplineID && p.selectSeq == seq
	if current && err == nil {
		p.teachers = teachers
	}
	p.mu.Unlock()

	if !current {
		return p.discard("new test", loadKey{token: token, seq: seq})
	}
	if err != nil {
		p.notifier.Notify(alert.Error, alert.LoadFailedText)
		p.logger.Warn("loading teachers failed", err, map[string]interface{}{"discipline": disciplineID})
		return errors.Wrap(err, "fetching teachers")
	}
	return nil
}

func (p *NewTestPage) Selected() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected
}

func (p *NewTestPage) Teachers() []exam.Teacher {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.teachers
}

// TeachersAvailable reports whether the teacher choice can be enabled.
func (p *NewTestPage) TeachersAvailable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.teachers) > 0
}

// Submit validates nt and creates the test. Invalid forms never reach the backend.
func (p *NewTestPage) Submit(ctx context.Context, nt exam.NewTest) (exam.Test, error) {
	if err := nt.Validate(p.validate); err != nil {
		p.notifier.Notify(alert.Error, alert.RequiredFieldText)
		if vErrs, ok := err.(validator.ValidationErrors); ok {
			return exam.Test{}, core.NewValidationError(errors.New(alert.RequiredFieldText), fieldErrors(core.TranslateErrors(vErrs, p.translator))...)
		}
		return exam.Test{}, err
	}

	token := p.Session()
	if token == "" {
		return exam.Test{}, ErrNoSession
	}

	t, err := p.backend.CreateTest(ctx, token, nt)
	if err != nil {
		text := alert.RetryText
		if rerr, ok := exam.AsRequestError(err); ok && rerr.Message != "" {
			text = rerr.Message
		}
		p.notifier.Notify(alert.Error, text)
		return exam.Test{}, errors.Wrap(err, "creating test")
	}
	p.notifier.Notify(alert.Success, alert.CreatedText)
	return t, nil
}

func fieldErrors(fields map[string]string) []core.FieldError {
	res := make([]core.FieldError, 0, len(fields))
	for f, msg := range fields {
		res = append(res, core.FieldError{Field: f, Error: msg})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Field < res[j].Field })
	return res
}
