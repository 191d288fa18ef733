package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/slack-go/slack"
	"github.com/veonhoon/bible-reader-sub000/internal/config"
	"github.com/veonhoon/bible-reader-sub000/internal/database"
	"github.com/veonhoon/bible-reader-sub000/internal/docstore"
	"github.com/veonhoon/bible-reader-sub000/internal/domain"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/contract"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/service"
	"github.com/veonhoon/bible-reader-sub000/internal/handlers"
	"github.com/veonhoon/bible-reader-sub000/internal/logger"
	"github.com/veonhoon/bible-reader-sub000/internal/notifier"
	"github.com/veonhoon/bible-reader-sub000/migrator/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.LogLevel, cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		stop()
		logger.Log.Fatal(err)
	}
}

// run wires the service and blocks until ctx is cancelled or the server fails
func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Component("main")

	location, err := cfg.Location()
	if err != nil {
		return err
	}
	quiet, err := cfg.QuietHours()
	if err != nil {
		return err
	}

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	log.Info("Running migrations...")
	if err := sqlite.Migrate(db.DB()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("Migrations completed successfully")

	dm := database.NewInstance(db, cfg.DocstorePollInterval)

	var docs contract.DocumentReader = dm.Document()
	if cfg.DocstoreDriver == "postgres" {
		pg, err := docstore.NewPostgres(ctx, cfg.DocstoreURL, cfg.DocstorePollInterval)
		if err != nil {
			return fmt.Errorf("failed to connect to document store: %w", err)
		}
		defer pg.Close()
		docs = pg
	}

	var n contract.Notifier
	switch cfg.NotifierDriver {
	case "slack":
		n = notifier.NewSlack(slack.New(cfg.SlackBotToken), dm.Notification(), cfg.SlackChannelID, domain.NotificationScope, cfg.SlackRatePerMin)
	default:
		n = notifier.NewLocal(dm.Notification(), domain.NotificationScope)
	}

	svc := service.NewInstance(dm, docs, n, service.Options{
		Entitlement:        service.NewEntitlement(cfg.EntitlementMode, dm.KeyValue()),
		ScheduleCollection: cfg.ScheduleCollection,
		ScheduleDocumentID: cfg.ScheduleDocumentID,
		ContentCollection:  cfg.ContentCollection,
		QuietHours:         quiet,
		HorizonWeeks:       cfg.HorizonWeeks,
		CronSpec:           cfg.CronSpecRefresh,
		Location:           location,
	})

	if err := svc.Scheduler.Subscribe(ctx, docs, cfg.ScheduleCollection, cfg.ContentCollection); err != nil {
		return fmt.Errorf("failed to subscribe to published content: %w", err)
	}
	if err := svc.Scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer svc.Scheduler.Stop()

	handler := handlers.New(svc.Notification, svc.Scheduler, cfg.SlackSigningSecret, location)

	mux := http.NewServeMux()
	mux.HandleFunc("/slack/commands", handler.HandleSlashCommand)
	mux.HandleFunc("/health", handler.HandleHealth)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.WithError(err).Warn("Failed to notify systemd")
	} else if sent {
		log.Debug("Notified systemd of readiness")
	}

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	}
	log.Info("Shutting down...")

	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	return nil
}
