package memory

import (
	"context"
	"net/http"

	"github.com/thalesor/repoprovas/core/exam"
	"github.com/thalesor/repoprovas/core/search"
)

var (
	errTeacherNotAssigned = exam.NewRequestError(http.StatusUnprocessableEntity, "Professor não leciona essa disciplina")
	errUnknownCategory    = exam.NewRequestError(http.StatusUnprocessableEntity, "Categoria inexistente")
	errInvalidTest        = exam.NewRequestError(http.StatusUnprocessableEntity, "Todos os campos são obrigatórios")
)

// Backend serves DB behind session checks. It implements exam.Backend.
type Backend struct {
	db       *DB
	sessions *Sessions
}

var _ exam.Backend = (*Backend)(nil)

func NewBackend(db *DB, sessions *Sessions) *Backend {
	return &Backend{db: db, sessions: sessions}
}

func (b *Backend) Sessions() *Sessions { return b.sessions }

func (b *Backend) authorize(token string) error {
	_, err := b.sessions.Verify(token)
	return err
}

func (b *Backend) TestsByDiscipline(_ context.Context, token string, q search.Query) ([]exam.TermGroup, error) {
	if err := b.authorize(token); err != nil {
		return nil, err
	}
	text, _ := q.Filter()
	b.db.mutex.RLock()
	defer b.db.mutex.RUnlock()
	return b.db.byDiscipline(text), nil
}

func (b *Backend) TestsByTeacher(_ context.Context, token string, q search.Query) ([]exam.TeacherEntry, error) {
	if err := b.authorize(token); err != nil {
		return nil, err
	}
	text, _ := q.Filter()
	b.db.mutex.RLock()
	defer b.db.mutex.RUnlock()
	return b.db.byTeacher(text), nil
}

func (b *Backend) Categories(_ context.Context, token string) ([]exam.Category, error) {
	if err := b.authorize(token); err != nil {
		return nil, err
	}
	b.db.mutex.RLock()
	defer b.db.mutex.RUnlock()
	res := make([]exam.Category, len(b.db.categories))
	copy(res, b.db.categories)
	return res, nil
}

func (b *Backend) Disciplines(_ context.Context, token string) ([]exam.Discipline, error) {
	if err := b.authorize(token); err != nil {
		return nil, err
	}
	b.db.mutex.RLock()
	defer b.db.mutex.RUnlock()
	res := make([]exam.Discipline, 0, len(b.db.disciplines))
	for _, d := range b.db.disciplines {
		res = append(res, exam.Discipline{ID: d.ID, Name: d.Name})
	}
	return res, nil
}

func (b *Backend) TeachersByDiscipline(_ context.Context, token string, disciplineID int) ([]exam.Teacher, error) {
	if err := b.authorize(token); err != nil {
		return nil, err
	}
	b.db.mutex.RLock()
	defer b.db.mutex.RUnlock()
	if _, ok := b.db.discipline(disciplineID); !ok {
		return nil, exam.ErrNotFound
	}
	res := []exam.Teacher{}
	for _, td := range b.db.teacherDisciplines {
		if td.DisciplineID != disciplineID {
			continue
		}
		if t, ok := b.db.teacher(td.TeacherID); ok {
			res = append(res, t)
		}
	}
	return res, nil
}

func (b *Backend) CreateTest(_ context.Context, token string, nt exam.NewTest) (exam.Test, error) {
	if err := b.authorize(token); err != nil {
		return exam.Test{}, err
	}
	if nt.Name == "" || nt.PdfURL == "" {
		return exam.Test{}, errInvalidTest
	}

	b.db.mutex.Lock()
	defer b.db.mutex.Unlock()
	cat, ok := b.db.category(nt.CategoryID)
	if !ok {
		return exam.Test{}, errUnknownCategory
	}
	td, ok := b.db.teacherDiscipline(nt.TeacherID, nt.DisciplineID)
	if !ok {
		return exam.Test{}, errTeacherNotAssigned
	}
	id := b.db.addTest(testRow{
		Name:                nt.Name,
		PdfURL:              nt.PdfURL,
		CategoryID:          cat.ID,
		TeacherDisciplineID: td.ID,
	})
	views := 0
	return exam.Test{ID: id, Name: nt.Name, PdfURL: nt.PdfURL, Category: cat, Views: &views}, nil
}

func (b *Backend) IncrementTestViews(_ context.Context, token string, testID int) (int, error) {
	if err := b.authorize(token); err != nil {
		return 0, err
	}
	b.db.mutex.Lock()
	defer b.db.mutex.Unlock()
	for i := range b.db.tests {
		if b.db.tests[i].ID == testID {
			b.db.tests[i].Views++
			return b.db.tests[i].Views, nil
		}
	}
	return 0, exam.ErrNotFound
}
