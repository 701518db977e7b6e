package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"mentorship/api"
	"mentorship/metrics"
	"mentorship/notify"
	"mentorship/session"
	"mentorship/storage"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(contextOf(cmd))
		},
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer db.Close()
	defer func() { _ = log.Sync() }()

	if err := db.PingContext(ctx); err != nil {
		return err
	}
	log.Info("successfully connected to database")

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	opts := api.Options{
		Logger:             log,
		Signer:             session.NewSigner(cfg.JWTSecret, cfg.SessionTTL),
		Metrics:            metrics.New(),
		Location:           loc,
		MenteeCookieMaxAge: cfg.MenteeCookieMaxAge,
		AuthRatePerMinute:  cfg.AuthRatePerMinute,
		SecureCookies:      cfg.IsProduction(),
		TrustProxyHeaders:  cfg.TrustProxyHeaders,
	}

	if cfg.StorageEnabled() {
		store, err := storage.New(ctx, storage.Options{
			Endpoint:       cfg.S3Endpoint,
			Region:         cfg.S3Region,
			Bucket:         cfg.S3Bucket,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			ForcePathStyle: cfg.S3ForcePathStyle,
		})
		if err != nil {
			return err
		}
		opts.Store = store
	} else {
		log.Warn("S3_ENDPOINT not set, photo and video uploads are disabled")
	}

	if cfg.NATSURL != "" {
		bus, err := notify.New(cfg.NATSURL, nats.Name("mentorship"))
		if err != nil {
			return err
		}
		defer bus.Close()
		opts.Publisher = bus
	}

	service := api.NewAPI(db, opts)
	service.RegisterRoutes()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           service.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", cfg.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
