package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mbolis/survey-studio/app"
	"github.com/mbolis/survey-studio/cache"
	"github.com/mbolis/survey-studio/clock"
	"github.com/mbolis/survey-studio/config"
	"github.com/mbolis/survey-studio/database"
	"github.com/mbolis/survey-studio/httpx"
	"github.com/mbolis/survey-studio/log"
	"github.com/mbolis/survey-studio/routes"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	if err := log.SetFormat(cfg.LogFormat); err != nil {
		log.Fatal("main.log:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	store := database.NewStore(db, cfg.DBDriver, clock.System())
	defer store.Close()

	if cfg.AdminPassword != "" {
		if err := store.EnsureUser(ctx, cfg.AdminUser, cfg.AdminPassword); err != nil {
			log.Fatal("main.db.admin:", err)
		}
	}

	reports := cache.Disabled()
	if cfg.RedisAddr != "" {
		client, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal("main.redis:", err)
		}
		defer client.Close()
		reports = cache.NewReportCache(client, cfg.ReportTTL)
	} else {
		log.Info("Report cache disabled")
	}

	app := app.App{
		Store:        store,
		BearerServer: httpx.NewBearerServer(store, cfg),
		Config:       cfg,
		Reports:      reports,
	}

	handler := routes.Wire(app)

	err = runServer(ctx, cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(ctx context.Context, cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("main.shutdown:", err)
		}
	}()

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
