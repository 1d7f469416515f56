// Command mockapi serves a seeded in-memory test archive over the collaborator routes,
// for local runs of the API and the CLI.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/thalesor/repoprovas/core"
	"github.com/thalesor/repoprovas/services/backend/memory"
	logsvc "github.com/thalesor/repoprovas/services/logger"
)

func main() {
	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zl, err := logsvc.NewZap(conf.Debug)
	if err != nil {
		log.Fatalf("setting up zap: %v", err)
	}
	logger := logsvc.NewRollbarLogger(zl.Named("MOCK"), conf)
	logger.Enable(false)
	defer logger.Sync()

	db := memory.NewDB()
	memory.Seed(db)
	sessions := memory.NewSessions(conf.Mock.SecretKey, conf.Mock.TokenExpirationDelta)
	backend := memory.NewBackend(db, sessions)

	token, err := sessions.Issue("demo@repoprovas.local")
	if err != nil {
		logger.Fatal(fmt.Sprintf("issuing demo session: %v", err), err)
	}
	logger.Info("demo session issued", map[string]interface{}{"token": token})

	srv := &http.Server{
		Addr:    conf.Mock.Address,
		Handler: memory.NewHTTPHandler(backend, logger, conf.Server.DisableRequestLogs),
	}
	errs := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("mock backend listening on %s", conf.Mock.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err = <-errs:
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)
	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()
		if err = srv.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}
