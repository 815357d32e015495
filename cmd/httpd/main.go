// Command httpd serves the ticket classifier over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ravenstack/ticket-classifier/internal/api"
	"github.com/ravenstack/ticket-classifier/internal/bootstrap"
	"github.com/ravenstack/ticket-classifier/internal/config"
	"github.com/ravenstack/ticket-classifier/internal/logger"
)

func main() {
	configPath := flag.String("config", config.ConfigPath(), "path to config file")
	flag.Parse()

	app, err := bootstrap.New(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	handler := api.NewHandler(app.Scorer, app.Pipeline, app.Log)
	router := api.NewRouter(handler, app.Telemetry)
	server := api.NewServer(app.Config.Server, router, app.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			app.Log.Error("shutdown failed", logger.Error(err))
		}
		<-errCh
	case err := <-errCh:
		if err != nil {
			app.Log.Error("server failed", logger.Error(err))
			app.Close()
			os.Exit(1)
		}
	}
}
