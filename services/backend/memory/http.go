package memory

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/thalesor/repoprovas/core"
	"github.com/thalesor/repoprovas/core/exam"
	"github.com/thalesor/repoprovas/core/search"
)

const (
	groupByDisciplines = "disciplines"
	groupByTeachers    = "teachers"
)

var errInvalidGroupBy = exam.NewRequestError(http.StatusBadRequest, "groupBy must be disciplines or teachers")

type handler struct {
	backend *Backend
}

// NewHTTPHandler serves b over the collaborator wire routes.
func NewHTTPHandler(b *Backend, logger core.Logger, disableReqLogs bool) http.Handler {
	app := echo.New()
	app.HideBanner = true
	app.Pre(middleware.RemoveTrailingSlash())
	if !disableReqLogs {
		app.Use(middleware.Logger())
	}
	app.HTTPErrorHandler = newErrorHandler(logger)

	h := &handler{backend: b}
	app.GET("/tests", h.tests)
	app.POST("/tests", h.createTest)
	app.PATCH("/tests/:id/views", h.incrementViews)
	app.GET("/categories", h.categories)
	app.GET("/disciplines", h.disciplines)
	app.GET("/disciplines/:id/teachers", h.teachers)
	return app
}

func bearerToken(ctx echo.Context) string {
	auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return auth[7:]
	}
	return ""
}

func pathID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return 0, exam.ErrNotFound
	}
	return id, nil
}

func (h *handler) tests(ctx echo.Context) error {
	c := ctx.Request().Context()
	q := search.FromValues(ctx.QueryParams())
	switch ctx.QueryParam("groupBy") {
	case groupByDisciplines:
		terms, err := h.backend.TestsByDiscipline(c, bearerToken(ctx), q)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, echo.Map{"tests": terms})
	case groupByTeachers:
		entries, err := h.backend.TestsByTeacher(c, bearerToken(ctx), q)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, echo.Map{"tests": entries})
	default:
		return errInvalidGroupBy
	}
}

func (h *handler) categories(ctx echo.Context) error {
	cats, err := h.backend.Categories(ctx.Request().Context(), bearerToken(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"categories": cats})
}

func (h *handler) disciplines(ctx echo.Context) error {
	discs, err := h.backend.Disciplines(ctx.Request().Context(), bearerToken(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"disciplines": discs})
}

type teacherItem struct {
	Teacher exam.Teacher `json:"teacher"`
}

func (h *handler) teachers(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	teachers, err := h.backend.TeachersByDiscipline(ctx.Request().Context(), bearerToken(ctx), id)
	if err != nil {
		return err
	}
	items := make([]teacherItem, 0, len(teachers))
	for _, t := range teachers {
		items = append(items, teacherItem{Teacher: t})
	}
	return ctx.JSON(http.StatusOK, echo.Map{"teachers": items})
}

func (h *handler) createTest(ctx echo.Context) error {
	var nt exam.NewTest
	if err := ctx.Bind(&nt); err != nil {
		return errors.Wrap(err, "binding new test")
	}
	t, err := h.backend.CreateTest(ctx.Request().Context(), bearerToken(ctx), nt)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (h *handler) incrementViews(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	views, err := h.backend.IncrementTestViews(ctx.Request().Context(), bearerToken(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"views": views})
}

// newErrorHandler answers request errors with their status. Unprocessable entities carry a bare JSON
// string, every other error an {"error": "..."} object.
func newErrorHandler(logger core.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *exam.RequestError:
			code = origErr.Status
			message = origErr.Message
		case *echo.HTTPError:
			code = origErr.Code
			message = origErr.Message
		default:
			code = http.StatusInternalServerError
			message = http.StatusText(code)
			logger.Error("mock backend failure", err)
		}

		if m, ok := message.(string); ok && code != http.StatusUnprocessableEntity {
			message = echo.Map{"error": m}
		}
		if !ctx.Response().Committed {
			if err := ctx.JSON(code, message); err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
