// Package di builds the dependency graph of the API.
package di

import (
	"log"

	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/thalesor/repoprovas/apps/api/echo"
	"github.com/thalesor/repoprovas/core"
	"github.com/thalesor/repoprovas/core/exam"
	"github.com/thalesor/repoprovas/services/backend/httpclient"
	logsvc "github.com/thalesor/repoprovas/services/logger"
)

// NewConfigFunc loads the configuration. Tests replace it.
type NewConfigFunc func() (*core.Config, error)

func newLogger(conf *core.Config) (*logsvc.RollbarLogger, error) {
	zl, err := logsvc.NewZap(conf.Debug)
	if err != nil {
		return nil, errors.Wrap(err, "setting up zap")
	}
	logger := logsvc.NewRollbarLogger(zl.Named("API"), conf)
	logger.Enable(!conf.Debug)
	return logger, nil
}

func appLogger(l *logsvc.RollbarLogger) core.Logger { return l }

func newBackend(conf *core.Config) (exam.Backend, error) {
	client, err := httpclient.New(conf.Backend.BaseURL, conf.Backend.Timeout)
	if err != nil {
		return nil, errors.Wrap(err, "setting up backend client")
	}
	return client, nil
}

func newServer(conf *core.Config, logger core.Logger, backend exam.Backend) (echoapi.Server, error) {
	return echoapi.NewServer(echoapi.ServerDeps{Conf: conf, Logger: logger, Backend: backend})
}

// New returns a new dependency injection dig.Container
func New(newConfig NewConfigFunc) *dig.Container {
	c := dig.New()

	must(c.Provide(newConfig))
	must(c.Provide(newLogger))
	must(c.Provide(appLogger))
	must(c.Provide(newBackend))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
