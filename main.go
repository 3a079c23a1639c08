package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mbolis/survey-desk/app"
	"github.com/mbolis/survey-desk/auth"
	"github.com/mbolis/survey-desk/config"
	"github.com/mbolis/survey-desk/database"
	"github.com/mbolis/survey-desk/log"
	"github.com/mbolis/survey-desk/routes"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	if cfg.LogJSON {
		log.UseJSON()
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	err = database.EnsureSuperAdmin(context.Background(), db, cfg.AdminPassword)
	if err != nil {
		log.Fatal("main.db.superadmin:", err)
	}

	app := app.App{
		DB:     db,
		Tokens: auth.NewTokens(cfg),
		Config: cfg,
	}

	handler := routes.Wire(app)

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	drained := make(chan struct{})
	go func() {
		defer close(drained)

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("Shutting down")
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("main.server.shutdown:", err)
		}
	}()

	log.Info("Listening on " + cfg.Url())
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		<-drained
	}
	return err
}
