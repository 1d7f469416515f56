// Package memory is an in-process test archive. It backs the mock collaborator server and the tests.
package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/thalesor/repoprovas/core/exam"
)

type (
	termRow struct {
		ID     int
		Number int
	}

	disciplineRow struct {
		ID     int
		Name   string
		TermID int
	}

	teacherDisciplineRow struct {
		ID           int
		TeacherID    int
		DisciplineID int
	}

	testRow struct {
		ID                  int
		Name                string
		PdfURL              string
		CategoryID          int
		TeacherDisciplineID int
		Views               int
	}
)

// DB holds the tables. Rows are kept in insertion order, which is also id order.
type DB struct {
	mutex sync.RWMutex
	pk    int

	terms              []termRow
	categories         []exam.Category
	teachers           []exam.Teacher
	disciplines        []disciplineRow
	teacherDisciplines []teacherDisciplineRow
	tests              []testRow
}

func NewDB() *DB {
	return &DB{}
}

func (db *DB) nextID() int {
	db.pk++
	return db.pk
}

func (db *DB) AddTerm(number int) int {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	id := db.nextID()
	db.terms = append(db.terms, termRow{ID: id, Number: number})
	return id
}

func (db *DB) AddCategory(name string) int {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	id := db.nextID()
	db.categories = append(db.categories, exam.Category{ID: id, Name: name})
	return id
}

func (db *DB) AddTeacher(name string) int {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	id := db.nextID()
	db.teachers = append(db.teachers, exam.Teacher{ID: id, Name: name})
	return id
}

func (db *DB) AddDiscipline(name string, termID int) int {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	id := db.nextID()
	db.disciplines = append(db.disciplines, disciplineRow{ID: id, Name: name, TermID: termID})
	return id
}

// Assign makes teacherID an instructor of disciplineID and returns the teacher-discipline id.
func (db *DB) Assign(teacherID, disciplineID int) int {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	if td, ok := db.teacherDiscipline(teacherID, disciplineID); ok {
		return td.ID
	}
	id := db.nextID()
	db.teacherDisciplines = append(db.teacherDisciplines, teacherDisciplineRow{ID: id, TeacherID: teacherID, DisciplineID: disciplineID})
	return id
}

// AddTest stores a test under a teacher-discipline.
func (db *DB) AddTest(name, pdfURL string, categoryID, teacherDisciplineID, views int) int {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	return db.addTest(testRow{
		Name:                name,
		PdfURL:              pdfURL,
		CategoryID:          categoryID,
		TeacherDisciplineID: teacherDisciplineID,
		Views:               views,
	})
}

func (db *DB) addTest(row testRow) int {
	row.ID = db.nextID()
	db.tests = append(db.tests, row)
	return row.ID
}

// the helpers below expect the mutex to be held

func (db *DB) teacherDiscipline(teacherID, disciplineID int) (teacherDisciplineRow, bool) {
	for _, td := range db.teacherDisciplines {
		if td.TeacherID == teacherID && td.DisciplineID == disciplineID {
			return td, true
		}
	}
	return teacherDisciplineRow{}, false
}

func (db *DB) category(id int) (exam.Category, bool) {
	for _, c := range db.categories {
		if c.ID == id {
			return c, true
		}
	}
	return exam.Category{}, false
}

func (db *DB) teacher(id int) (exam.Teacher, bool) {
	for _, t := range db.teachers {
		if t.ID == id {
			return t, true
		}
	}
	return exam.Teacher{}, false
}

func (db *DB) discipline(id int) (disciplineRow, bool) {
	for _, d := range db.disciplines {
		if d.ID == id {
			return d, true
		}
	}
	return disciplineRow{}, false
}

func (db *DB) testsOf(teacherDisciplineID int) []exam.Test {
	tests := []exam.Test{}
	for _, row := range db.tests {
		if row.TeacherDisciplineID != teacherDisciplineID {
			continue
		}
		views := row.Views
		cat, ok := db.category(row.CategoryID)
		if !ok {
			cat = exam.Category{ID: row.CategoryID}
		}
		tests = append(tests, exam.Test{
			ID:       row.ID,
			Name:     row.Name,
			PdfURL:   row.PdfURL,
			Category: cat,
			Views:    &views,
		})
	}
	return tests
}

func (db *DB) teacherDisciplineOf(row teacherDisciplineRow) exam.TeacherDiscipline {
	t, _ := db.teacher(row.TeacherID)
	d, _ := db.discipline(row.DisciplineID)
	return exam.TeacherDiscipline{
		ID:         row.ID,
		Teacher:    t,
		Discipline: exam.Discipline{ID: d.ID, Name: d.Name},
		Tests:      db.testsOf(row.ID),
	}
}

// byDiscipline returns every term with its disciplines matching search (case-insensitive
// substring of the discipline name; empty matches all).
func (db *DB) byDiscipline(search string) []exam.TermGroup {
	search = strings.ToLower(search)
	terms := make([]exam.TermGroup, 0, len(db.terms))
	for _, term := range db.terms {
		group := exam.TermGroup{ID: term.ID, Number: term.Number, Disciplines: []exam.Discipline{}}
		for _, d := range db.disciplines {
			if d.TermID != term.ID || !strings.Contains(strings.ToLower(d.Name), search) {
				continue
			}
			disc := exam.Discipline{ID: d.ID, Name: d.Name, TeacherDisciplines: []exam.TeacherDiscipline{}}
			for _, td := range db.teacherDisciplines {
				if td.DisciplineID == d.ID {
					disc.TeacherDisciplines = append(disc.TeacherDisciplines, db.teacherDisciplineOf(td))
				}
			}
			group.Disciplines = append(group.Disciplines, disc)
		}
		terms = append(terms, group)
	}
	sort.SliceStable(terms, func(i, j int) bool { return terms[i].Number < terms[j].Number })
	return terms
}

// byTeacher returns the teacher-disciplines whose teacher name matches search.
func (db *DB) byTeacher(search string) []exam.TeacherEntry {
	search = strings.ToLower(search)
	entries := []exam.TeacherEntry{}
	for _, td := range db.teacherDisciplines {
		t, _ := db.teacher(td.TeacherID)
		if !strings.Contains(strings.ToLower(t.Name), search) {
			continue
		}
		entries = append(entries, db.teacherDisciplineOf(td))
	}
	return entries
}
