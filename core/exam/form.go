package exam

import (
	"github.com/go-playground/validator/v10"

	"github.com/thalesor/repoprovas/core"
)

// NewTest contains the information needed to create a new Test.
type NewTest struct {
	Name         string `json:"name" validate:"required"`
	PdfURL       string `json:"pdfUrl" validate:"required"`
	CategoryID   int    `json:"categoryId" validate:"required"`
	DisciplineID int    `json:"disciplineId" validate:"required"`
	TeacherID    int    `json:"teacherId" validate:"required"`
}

// Validate cleans nt and checks that every field is set. It never reaches the backend.
func (nt *NewTest) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.PdfURL = core.CleanString(nt.PdfURL)
	return validate.Struct(nt)
}
