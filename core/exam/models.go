package exam

type (
	// Category is a fixed classification of tests, eg. "Prova" or "Trabalho".
	Category struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	Teacher struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	// Discipline is a course. In the by-discipline shape it carries the teachers who taught it.
	Discipline struct {
		ID                 int                 `json:"id"`
		Name               string              `json:"name"`
		TeacherDisciplines []TeacherDiscipline `json:"teacherDisciplines,omitempty"`
	}

	// TeacherDiscipline is one instructor teaching one discipline, owning that instructor's tests.
	TeacherDiscipline struct {
		ID         int        `json:"id"`
		Teacher    Teacher    `json:"teacher"`
		Discipline Discipline `json:"discipline"`
		Tests      []Test     `json:"tests"`
	}

	// TeacherEntry is a TeacherDiscipline as returned by the by-teacher query.
	TeacherEntry = TeacherDiscipline

	Test struct {
		ID       int      `json:"id"`
		Name     string   `json:"name"`
		PdfURL   string   `json:"pdfUrl"`
		Category Category `json:"category"`
		// Views is owned by the backend; nil when it was not sent.
		Views *int `json:"views,omitempty"`
	}

	// TermGroup groups the disciplines of one academic term.
	TermGroup struct {
		ID          int          `json:"id"`
		Number      int          `json:"number"`
		Disciplines []Discipline `json:"disciplines"`
	}
)

// CountTests returns the number of tests attached to td.
func (td TeacherDiscipline) CountTests() int { return len(td.Tests) }
