package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"

	"github.com/thalesor/repoprovas/apps/api/di"
	echoapi "github.com/thalesor/repoprovas/apps/api/echo"
	"github.com/thalesor/repoprovas/core"
	logsvc "github.com/thalesor/repoprovas/services/logger"
)

func main() {
	c := di.New(core.NewConfig)
	if err := c.Invoke(run); err != nil {
		log.Fatalf("starting API: %v", err)
	}
}

func run(conf *core.Config, logger *logsvc.RollbarLogger, server echoapi.Server) {
	defer logger.Sync()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("backend").Set(conf.Backend.BaseURL)
	expvar.NewString("termCountPolicy").Set(conf.Views.TermCountPolicy)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
