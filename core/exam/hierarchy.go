package exam

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// display texts
const (
	NoTestsInTermSummary      = "Não há provas"
	NoTestsInTermNotice       = "Nenhuma prova para esse período..."
	NoTestsInDisciplineNotice = "Nenhuma prova para essa disciplina..."
)

// CountPolicy decides how many tests of a discipline are available for display purposes,
// given the teacher-disciplines of that discipline in received order.
type CountPolicy struct {
	Name  string
	count func(tds []TeacherDiscipline) int
}

var (
	// FirstInstructorOnly counts the tests of the first teacher-discipline only.
	// This is the behaviour the term summaries have always had; see DESIGN.md before changing the default.
	FirstInstructorOnly = CountPolicy{
		Name: "first-instructor",
		count: func(tds []TeacherDiscipline) int {
			if len(tds) == 0 {
				return 0
			}
			return tds[0].CountTests()
		},
	}

	// AllInstructors counts the tests of every teacher-discipline.
	AllInstructors = CountPolicy{
		Name: "all-instructors",
		count: func(tds []TeacherDiscipline) int {
			var n int
			for _, td := range tds {
				n += td.CountTests()
			}
			return n
		},
	}

	CountPolicies = []CountPolicy{FirstInstructorOnly, AllInstructors}
)

// PolicyByName resolves a configured policy name; an empty name is the default policy.
func PolicyByName(name string) (CountPolicy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return FirstInstructorOnly, nil
	}
	for _, p := range CountPolicies {
		if p.Name == name {
			return p, nil
		}
	}
	return CountPolicy{}, errors.Errorf("unknown count policy %q", name)
}

// Count applies the policy; the zero CountPolicy behaves as FirstInstructorOnly.
func (p CountPolicy) Count(tds []TeacherDiscipline) int {
	if p.count == nil {
		return FirstInstructorOnly.count(tds)
	}
	return p.count(tds)
}

func (p CountPolicy) String() string { return p.Name }

// CountTestsInTerm sums the policy count of every discipline of term.
func CountTestsInTerm(term TermGroup, policy CountPolicy) int {
	var n int
	for _, d := range term.Disciplines {
		n += policy.Count(d.TeacherDisciplines)
	}
	return n
}

// UniqueTeachers returns the distinct teacher names of entries in order of first appearance.
func UniqueTeachers(entries []TeacherEntry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Teacher.Name)
	}
	return uniqueStable(names)
}

func uniqueStable(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	res := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		res = append(res, it)
	}
	return res
}

type (
	// TestNode is a rendered test. Label is "name (teacher)" in the disciplines view
	// and "name (discipline)" in the instructors view. Badge is filled in by the page owning the view counters.
	TestNode struct {
		Test
		Label string `json:"label"`
		Badge string `json:"badge,omitempty"`
	}

	TermNode struct {
		ID          int              `json:"id"`
		Number      int              `json:"number"`
		TestCount   int              `json:"testCount"`
		Summary     string           `json:"summary"`
		Notice      string           `json:"notice,omitempty"`
		Disciplines []DisciplineNode `json:"disciplines"`
	}

	DisciplineNode struct {
		ID         int            `json:"id"`
		Name       string         `json:"name"`
		Empty      bool           `json:"empty"`
		Notice     string         `json:"notice,omitempty"`
		Categories []CategoryNode `json:"categories"`
	}

	CategoryNode struct {
		ID    int        `json:"id"`
		Name  string     `json:"name"`
		Tests []TestNode `json:"tests"`
	}

	TeacherNode struct {
		Name       string                `json:"name"`
		Categories []TeacherCategoryNode `json:"categories"`
	}

	TeacherCategoryNode struct {
		ID          int               `json:"id"`
		Name        string            `json:"name"`
		Disciplines []DisciplineTests `json:"disciplines"`
	}

	// DisciplineTests are the tests of one teacher-discipline under a category.
	DisciplineTests struct {
		TeacherDisciplineID int        `json:"teacherDisciplineId"`
		DisciplineName      string     `json:"disciplineName"`
		Tests               []TestNode `json:"tests"`
	}
)

// TermSummary renders the term heading count.
func TermSummary(term TermGroup, policy CountPolicy) string {
	if len(term.Disciplines) < 1 {
		return NoTestsInTermSummary
	}
	return fmt.Sprintf("%d provas", CountTestsInTerm(term, policy))
}

// BuildByTerm renders term → discipline → category → test, keeping the received order everywhere.
// Categories are the fetched ones filtered by presence. terms is not modified.
func BuildByTerm(terms []TermGroup, categories []Category, policy CountPolicy) []TermNode {
	nodes := make([]TermNode, 0, len(terms))
	for _, term := range terms {
		node := TermNode{
			ID:          term.ID,
			Number:      term.Number,
			TestCount:   CountTestsInTerm(term, policy),
			Summary:     TermSummary(term, policy),
			Disciplines: make([]DisciplineNode, 0, len(term.Disciplines)),
		}
		if len(term.Disciplines) == 0 {
			node.Notice = NoTestsInTermNotice
		}
		for _, d := range term.Disciplines {
			node.Disciplines = append(node.Disciplines, buildDiscipline(d, categories, policy))
		}
		nodes = append(nodes, node)
	}
	return nodes
}

func buildDiscipline(d Discipline, categories []Category, policy CountPolicy) DisciplineNode {
	node := DisciplineNode{
		ID:         d.ID,
		Name:       d.Name,
		Categories: []CategoryNode{},
	}
	// an empty teacher-discipline list counts 0 under every policy
	if policy.Count(d.TeacherDisciplines) == 0 {
		node.Empty = true
		node.Notice = NoTestsInDisciplineNotice
		return node
	}

	visible := VisibleCategories(categories, func(c Category) bool {
		return CategoryHasTests(c.ID, d.TeacherDisciplines)
	})
	for _, c := range visible {
		cn := CategoryNode{ID: c.ID, Name: c.Name}
		for _, td := range d.TeacherDisciplines {
			for _, t := range testsOfCategory(td.Tests, c.ID) {
				cn.Tests = append(cn.Tests, newTestNode(t, td.Teacher.Name))
			}
		}
		node.Categories = append(node.Categories, cn)
	}
	return node
}

// BuildByTeacher renders teacher → category → discipline → test.
// Teachers come from UniqueTeachers; categories keep the fetched order filtered by presence.
func BuildByTeacher(entries []TeacherEntry, categories []Category) []TeacherNode {
	teachers := UniqueTeachers(entries)
	nodes := make([]TeacherNode, 0, len(teachers))
	for _, name := range teachers {
		name := name
		node := TeacherNode{Name: name, Categories: []TeacherCategoryNode{}}
		visible := VisibleCategories(categories, func(c Category) bool {
			return TeacherCategoryHasTests(name, c.ID, entries)
		})
		for _, c := range visible {
			cn := TeacherCategoryNode{ID: c.ID, Name: c.Name}
			for _, e := range entries {
				if e.Teacher.Name != name {
					continue
				}
				tests := testsOfCategory(e.Tests, c.ID)
				if len(tests) == 0 {
					continue
				}
				dt := DisciplineTests{TeacherDisciplineID: e.ID, DisciplineName: e.Discipline.Name}
				for _, t := range tests {
					dt.Tests = append(dt.Tests, newTestNode(t, e.Discipline.Name))
				}
				cn.Disciplines = append(cn.Disciplines, dt)
			}
			node.Categories = append(node.Categories, cn)
		}
		nodes = append(nodes, node)
	}
	return nodes
}

func newTestNode(t Test, owner string) TestNode {
	return TestNode{Test: t, Label: fmt.Sprintf("%s (%s)", t.Name, owner)}
}

// Tests flattens every test node of the tree, in render order.
func Tests(terms []TermNode) []TestNode {
	var res []TestNode
	for _, term := range terms {
		for _, d := range term.Disciplines {
			for _, c := range d.Categories {
				res = append(res, c.Tests...)
			}
		}
	}
	return res
}

// TeacherTests flattens every test node of the tree, in render order.
func TeacherTests(teachers []TeacherNode) []TestNode {
	var res []TestNode
	for _, tn := range teachers {
		for _, c := range tn.Categories {
			for _, d := range c.Disciplines {
				res = append(res, d.Tests...)
			}
		}
	}
	return res
}
