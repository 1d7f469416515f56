package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/thalesor/repoprovas/core"
	"github.com/thalesor/repoprovas/core/alert"
	"github.com/thalesor/repoprovas/core/exam"
	"github.com/thalesor/repoprovas/core/page"
)

type (
	ServerDeps struct {
		Conf    *core.Config
		Logger  core.Logger
		Backend exam.Backend
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(context.Context) error
		Close() error
	}

	server struct {
		ServerDeps
		app      *echo.Echo
		policy   exam.CountPolicy
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

// NewServer fails only on an unknown term count policy.
func NewServer(deps ServerDeps) (Server, error) {
	policy, err := exam.PolicyByName(deps.Conf.Views.TermCountPolicy)
	if err != nil {
		return nil, err
	}
	s := &server{
		ServerDeps: deps,
		app:        echo.New(),
		policy:     policy,
		errors:     make(chan error, 1),
		shutdown:   make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s, nil
}

func (s *server) setup() {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	if !s.Conf.Server.DisableRequestLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.Conf.Debug || s.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.Logger, s.signalShutdown)
	s.app.Debug = s.Conf.Debug

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1", sessionMiddleware)
	registerViewsAPI(v1, s.pageOptions)
	registerTestsAPI(v1, s.Backend, s.pageOptions)
}

func (s *server) Start() {
	if err := s.app.Start(s.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already shutting down
	}
}

// pageOptions returns the options of a page living for one request, and the queue collecting its alerts.
func (s *server) pageOptions() (page.Options, *alert.Queue) {
	alerts := alert.NewQueue(s.Conf.Alert.AutoHide)
	return page.Options{
		Backend:  s.Backend,
		Notifier: alerts,
		Logger:   s.Logger,
		Policy:   s.policy,
		Parallel: s.Conf.Views.ParallelPageLoad,
	}, alerts
}

func (s *server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	signal.Stop(s.shutdown)
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.Conf.AppName+" API!")
}
