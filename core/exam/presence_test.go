package exam

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryHasTests(t *testing.T) {
	scope := []TeacherDiscipline{
		td(1, "Ana", "Cálculo", newTest(1, "P1", prova)),
		td(2, "Bruno", "Cálculo", newTest(2, "X", Category{ID: 99})),
		td(3, "Carla", "Cálculo"),
	}

	tests := []struct {
		name     string
		category int
		scope    []TeacherDiscipline
		want     bool
	}{
		{"present", prova.ID, scope, true},
		{"absent", trabalho.ID, scope, false},
		{"outside fetched set", 99, scope, true},
		{"empty scope", prova.ID, nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CategoryHasTests(tc.category, tc.scope))
		})
	}
}

func TestTeacherCategoryHasTests(t *testing.T) {
	entries := []TeacherEntry{
		td(1, "Ana", "Cálculo", newTest(1, "P1", prova)),
		td(2, "Bruno", "Física", newTest(2, "T1", trabalho)),
	}

	assert.True(t, TeacherCategoryHasTests("Ana", prova.ID, entries))
	assert.False(t, TeacherCategoryHasTests("Ana", trabalho.ID, entries))
	assert.True(t, TeacherCategoryHasTests("Bruno", trabalho.ID, entries))
	assert.False(t, TeacherCategoryHasTests("Carla", prova.ID, entries))
}

// A category is visible iff at least one test in scope references it.
func TestVisibleCategories_Property(t *testing.T) {
	scopes := [][]TeacherDiscipline{
		nil,
		{td(1, "Ana", "Cálculo")},
		{td(1, "Ana", "Cálculo", newTest(1, "P1", prova))},
		{td(1, "Ana", "Cálculo", newTest(1, "P1", recup)), td(2, "Bruno", "Cálculo", newTest(2, "T1", trabalho))},
		{td(1, "Ana", "Cálculo", newTest(1, "P1", prova), newTest(2, "T1", trabalho), newTest(3, "R1", recup))},
	}

	for i, scope := range scopes {
		referenced := map[int]bool{}
		for _, entry := range scope {
			for _, test := range entry.Tests {
				referenced[test.Category.ID] = true
			}
		}

		visible := VisibleCategories(allCats, func(c Category) bool { return CategoryHasTests(c.ID, scope) })
		var want []Category
		for _, c := range allCats {
			if referenced[c.ID] {
				want = append(want, c)
			}
		}
		if len(want) == 0 {
			assert.Empty(t, visible, "scope %d", i)
			continue
		}
		assert.Equal(t, want, visible, "scope %d", i)
	}
}
