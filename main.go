package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kidandcat/issuedash/internal/api"
	"github.com/kidandcat/issuedash/internal/config"
	"github.com/kidandcat/issuedash/internal/handlers"
	"github.com/kidandcat/issuedash/internal/jira"
	applog "github.com/kidandcat/issuedash/internal/log"
	"github.com/kidandcat/issuedash/internal/store"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load config")
	}
	if err := applog.InitializeLogger(cfg.DeveloperMode, cfg.LogLevel); err != nil {
		log.WithError(err).Fatal("Failed to initialize logger")
	}

	stores, err := store.Open(cfg.StoreBackend, cfg.DataDir)
	if err != nil {
		log.WithError(err).Fatal("Failed to open store")
	}
	defer stores.Close()

	if cfg.Jira.URL == "" || cfg.Jira.Email == "" || cfg.Jira.APIToken == "" {
		log.Warn("Jira credentials are incomplete, issue requests will fail")
	}
	issues := jira.NewClient(cfg.Jira.URL, cfg.Jira.Email, cfg.Jira.APIToken)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: newRouter(cfg, issues, stores),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("Shutdown failed")
		}
	}()

	log.WithFields(log.Fields{
		"addr":     cfg.Addr,
		"data_dir": cfg.DataDir,
		"backend":  cfg.StoreBackend,
	}).Info("Dashboard server running")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("Server stopped")
	}
	log.Info("Server stopped")
}

func newRouter(cfg config.Config, issues api.IssueSource, stores *store.Set) http.Handler {
	apiMux := http.NewServeMux()
	api.RegisterRoutes(apiMux, &api.Server{
		Issues:    issues,
		Notes:     stores.Notes,
		Scheduled: stores.Scheduled,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", cors.AllowAll().Handler(apiMux))
	handlers.RegisterRoutes(mux, &handlers.Report{
		Issues:    issues,
		Notes:     stores.Notes,
		Scheduled: stores.Scheduled,
	})
	mux.Handle("/", &app.Handler{
		Name:        "Jira Dashboard",
		ShortName:   "Issues",
		Title:       "My Jira Issues",
		Description: "Open Jira issues with private notes and scheduled dates",
		Styles:      []string{"/web/dashboard.css"},
		Resources:   app.LocalDir(cfg.WebDir),
	})

	return logMiddleware(mux)
}
