package exam

// CategoryHasTests reports whether at least one test of the given scope belongs to the category.
// Tests with a category outside the fetched set simply never match.
func CategoryHasTests(categoryID int, scope []TeacherDiscipline) bool {
	for _, td := range scope {
		if hasTestOfCategory(td.Tests, categoryID) {
			return true
		}
	}
	return false
}

// TeacherCategoryHasTests is CategoryHasTests restricted to the entries of one teacher (by name).
func TeacherCategoryHasTests(teacher string, categoryID int, entries []TeacherEntry) bool {
	for _, e := range entries {
		if e.Teacher.Name == teacher && hasTestOfCategory(e.Tests, categoryID) {
			return true
		}
	}
	return false
}

// VisibleCategories keeps the categories for which pred holds, in their fetched order.
func VisibleCategories(categories []Category, pred func(Category) bool) []Category {
	visible := make([]Category, 0, len(categories))
	for _, c := range categories {
		if pred(c) {
			visible = append(visible, c)
		}
	}
	return visible
}

func hasTestOfCategory(tests []Test, categoryID int) bool {
	for _, t := range tests {
		if t.Category.ID == categoryID {
			return true
		}
	}
	return false
}

func testsOfCategory(tests []Test, categoryID int) []Test {
	var res []Test
	for _, t := range tests {
		if t.Category.ID == categoryID {
			res = append(res, t)
		}
	}
	return res
}
