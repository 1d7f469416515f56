package exam

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/thalesor/repoprovas/core/search"
)

var (
	// errors
	ErrUnauthorized = &RequestError{Status: http.StatusUnauthorized, Message: "invalid or expired session"}
	ErrNotFound     = &RequestError{Status: http.StatusNotFound, Message: "not found"}
)

// Backend is the collaborator holding the tests. Every call carries the opaque session token.
type Backend interface {
	TestsByDiscipline(ctx context.Context, token string, q search.Query) ([]TermGroup, error)
	TestsByTeacher(ctx context.Context, token string, q search.Query) ([]TeacherEntry, error)
	Categories(ctx context.Context, token string) ([]Category, error)
	Disciplines(ctx context.Context, token string) ([]Discipline, error)
	TeachersByDiscipline(ctx context.Context, token string, disciplineID int) ([]Teacher, error)
	CreateTest(ctx context.Context, token string, nt NewTest) (Test, error)
	// IncrementTestViews returns the post-increment authoritative count.
	IncrementTestViews(ctx context.Context, token string, testID int) (int, error)
}

// RequestError is a failed collaborator call or an error payload returned by it.
type RequestError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
}

func NewRequestError(status int, msg string) *RequestError {
	return &RequestError{Status: status, Message: msg}
}

func (err *RequestError) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("request failed with status %d", err.Status)
	}
	return err.Message
}

// AsRequestError returns the *RequestError at the cause of err, if any.
func AsRequestError(err error) (*RequestError, bool) {
	rerr, ok := errors.Cause(err).(*RequestError)
	return rerr, ok
}
