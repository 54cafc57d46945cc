package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ranjit-agency/site/internal/api"
	"github.com/ranjit-agency/site/internal/app"
	"github.com/ranjit-agency/site/internal/archive"
	"github.com/ranjit-agency/site/internal/config"
	"github.com/ranjit-agency/site/internal/notify"
	"github.com/ranjit-agency/site/internal/pkg/logger"
	"github.com/ranjit-agency/site/internal/service/contact"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.Close()

	hooks, archiver, err := buildHooks(ctx, cfg, log)
	if err != nil {
		return err
	}
	contacts := contact.NewService(deps.Store, log, hooks...)
	contacts.SetHookTimeout(cfg.SES.Timeout())

	var archivePing api.Pinger
	if archiver != nil {
		archivePing = archiver
	}
	router := api.NewRouter(api.RouterOptions{
		Handlers:       api.NewHandlers(deps.Store, contacts, log),
		Health:         api.NewHealthChecker(deps.Records, deps.Redis, archivePing),
		Logger:         log,
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		StaticDir:      cfg.Server.StaticDir,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", srv.Addr, "storage", cfg.Storage.Type)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "err", err)
	}
	// Let in-flight notifications and archive uploads finish.
	contacts.Wait()
	log.Info("server stopped")
	return nil
}

func buildHooks(ctx context.Context, cfg *config.Config, log *slog.Logger) ([]contact.Hook, *archive.S3Archiver, error) {
	var hooks []contact.Hook

	if cfg.SES.Enabled {
		tpl, err := notify.ParseTemplates(cfg.SES.SubjectTemplate, cfg.SES.BodyTemplate)
		if err != nil {
			return nil, nil, err
		}
		n, err := notify.NewSESNotifier(ctx, notify.SESOptions{
			AccessKey: cfg.SES.AccessKey,
			SecretKey: cfg.SES.SecretKey,
			Region:    cfg.SES.Region,
			From:      cfg.SES.From,
			To:        cfg.SES.To,
		}, tpl, log)
		if err != nil {
			return nil, nil, err
		}
		hooks = append(hooks, n)
		log.Info("contact notifications via SES", "region", cfg.SES.Region)
	} else {
		hooks = append(hooks, notify.NewLogNotifier(log))
	}

	var archiver *archive.S3Archiver
	if cfg.Archive.Enabled() {
		var err error
		archiver, err = archive.NewS3Archiver(ctx, archive.Options{
			Bucket:  cfg.Archive.S3Bucket,
			Prefix:  cfg.Archive.Prefix,
			Region:  cfg.Archive.S3Region,
			Profile: cfg.Archive.GetAWSProfile(),
		})
		if err != nil {
			return nil, nil, err
		}
		hooks = append(hooks, archiver)
		log.Info("contact archive enabled", "bucket", cfg.Archive.S3Bucket, "prefix", cfg.Archive.Prefix)
	}
	return hooks, archiver, nil
}
