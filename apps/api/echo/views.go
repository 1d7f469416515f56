package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/thalesor/repoprovas/core/alert"
	"github.com/thalesor/repoprovas/core/exam"
	"github.com/thalesor/repoprovas/core/page"
	"github.com/thalesor/repoprovas/core/search"
	"github.com/thalesor/repoprovas/core/views"
)

type pageFactory func() (page.Options, *alert.Queue)

type viewsApi struct {
	newPage pageFactory
}

func registerViewsAPI(g *echo.Group, newPage pageFactory) {
	api := viewsApi{newPage: newPage}

	vg := g.Group("/views")
	vg.GET("/disciplines", api.disciplines)
	vg.GET("/instructors", api.instructors)
}

type (
	disciplinesView struct {
		Terms  []exam.TermNode `json:"terms"`
		Alerts []alert.Message `json:"alerts"`
	}

	instructorsView struct {
		Teachers []exam.TeacherNode `json:"teachers"`
		Alerts   []alert.Message    `json:"alerts"`
	}
)

func searchText(ctx echo.Context) string {
	return search.FromValues(ctx.QueryParams()).Text()
}

func (api *viewsApi) disciplines(ctx echo.Context) error {
	opts, alerts := api.newPage()
	p := page.NewDisciplinesPage(opts)
	p.SetSession(getContextSession(ctx))
	p.SetSearch(searchText(ctx))
	if err := p.Load(ctx.Request().Context()); err != nil {
		return errors.Wrap(err, "loading disciplines view")
	}
	return ctx.JSON(http.StatusOK, disciplinesView{Terms: p.Tree(), Alerts: alerts.Active()})
}

func (api *viewsApi) instructors(ctx echo.Context) error {
	opts, alerts := api.newPage()
	p := page.NewInstructorsPage(opts)
	p.SetSession(getContextSession(ctx))
	p.SetSearch(searchText(ctx))
	if err := p.Load(ctx.Request().Context()); err != nil {
		return errors.Wrap(err, "loading instructors view")
	}
	return ctx.JSON(http.StatusOK, instructorsView{Teachers: p.Tree(), Alerts: alerts.Active()})
}

type testsApi struct {
	backend exam.Backend
	newPage pageFactory
}

func registerTestsAPI(g *echo.Group, backend exam.Backend, newPage pageFactory) {
	api := testsApi{backend: backend, newPage: newPage}

	g.GET("/categories", api.categories)
	g.GET("/disciplines", api.disciplines)
	g.GET("/disciplines/:id/teachers", api.teachers)
	g.POST("/tests", api.create)
	g.POST("/tests/:id/views", api.open)
}

func paramID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id < 1 {
		return 0, errInvalidID
	}
	return id, nil
}

func (api *testsApi) categories(ctx echo.Context) error {
	cats, err := api.backend.Categories(ctx.Request().Context(), getContextSession(ctx))
	if err != nil {
		return errors.Wrap(err, "fetching categories")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"categories": cats})
}

func (api *testsApi) disciplines(ctx echo.Context) error {
	discs, err := api.backend.Disciplines(ctx.Request().Context(), getContextSession(ctx))
	if err != nil {
		return errors.Wrap(err, "fetching disciplines")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"disciplines": discs})
}

func (api *testsApi) teachers(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	opts, _ := api.newPage()
	p := page.NewNewTestPage(opts)
	p.SetSession(getContextSession(ctx))
	if err = p.SelectDiscipline(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"teachers":  p.Teachers(),
		"available": p.TeachersAvailable(),
	})
}

func (api *testsApi) create(ctx echo.Context) error {
	var data exam.NewTest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTest")
	}

	opts, alerts := api.newPage()
	p := page.NewNewTestPage(opts)
	p.SetSession(getContextSession(ctx))
	t, err := p.Submit(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"test": t, "alerts": alerts.Active()})
}

type openResult struct {
	TestID int    `json:"testId"`
	Views  *int   `json:"views"`
	Badge  string `json:"badge,omitempty"`
}

// open increments the view count of a test. The count is unknown to this stateless API until the
// collaborator answers, so a failed increment is reported instead of keeping a previous value.
func (api *testsApi) open(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	c := views.NewCounter(id, nil)
	_, results := c.Activate(ctx.Request().Context(), api.backend, getContextSession(ctx))
	res := <-results
	if res.Err != nil {
		return errors.Wrap(res.Err, "incrementing test views")
	}
	badge, _ := res.Badge()
	count := res.Views
	return ctx.JSON(http.StatusOK, openResult{TestID: id, Views: &count, Badge: badge})
}
