package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taxisafar/sitekit/api"
	"github.com/taxisafar/sitekit/billing"
	"github.com/taxisafar/sitekit/billing/gateway"
	"github.com/taxisafar/sitekit/catalog"
	"github.com/taxisafar/sitekit/coupon"
	"github.com/taxisafar/sitekit/enquiry"
	"github.com/taxisafar/sitekit/notify/whatsapp"
	"github.com/taxisafar/sitekit/pkg/blob"
	"github.com/taxisafar/sitekit/pkg/config"
	"github.com/taxisafar/sitekit/pkg/logger"
	"github.com/taxisafar/sitekit/pkg/mongo"
	"github.com/taxisafar/sitekit/pkg/redis"
	"github.com/taxisafar/sitekit/website"
)

type serverConfig struct {
	Addr          string        `env:"HTTP_ADDR" envDefault:":8080"`
	PublicBaseURL string        `env:"PUBLIC_BASE_URL" envDefault:"https://taxisafar.in"`
	ThemeSeedFile string        `env:"THEME_SEED_FILE"`
	ThemeCacheTTL time.Duration `env:"THEME_CACHE_TTL" envDefault:"10m"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg serverConfig
	config.MustLoad(&cfg)

	log := logger.New(
		logger.WithLevel(logLevel(cfg.LogLevel)),
		logger.WithFormat(logger.Format(cfg.LogFormat)),
		logger.WithService("sitekit"),
	)
	logger.SetAsDefault(log)

	var mongoCfg mongo.Config
	config.MustLoad(&mongoCfg)
	db, err := mongo.NewWithDatabase(ctx, mongoCfg)
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Client().Disconnect(disconnectCtx)
	}()

	themeStore := catalog.NewMongoStore(db)
	couponStore := coupon.NewMongoStore(db)
	siteStore := website.NewMongoStore(db)
	enquiryStore := enquiry.NewMongoStore(db)
	for _, ensure := range []func(context.Context) error{
		themeStore.EnsureIndexes,
		couponStore.EnsureIndexes,
		siteStore.EnsureIndexes,
		enquiryStore.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			return err
		}
	}

	var blobCfg blob.Config
	config.MustLoad(&blobCfg)
	blobs, err := blob.NewS3Storage(ctx, blobCfg)
	if err != nil {
		return err
	}

	checks := []func(context.Context) error{mongo.Healthcheck(db.Client())}

	catalogOpts := []catalog.Option{}
	var redisCfg redis.Config
	config.MustLoad(&redisCfg)
	if rdb, err := redis.Connect(ctx, redisCfg); err != nil {
		// The catalog works without a cache, just slower.
		log.Warn("redis unavailable, theme cache disabled", "error", err)
	} else {
		defer rdb.Close()
		catalogOpts = append(catalogOpts, catalog.WithCache(catalog.NewRedisCache(rdb, cfg.ThemeCacheTTL)))
		checks = append(checks, redis.Healthcheck(rdb))
	}

	themes := catalog.NewService(themeStore, blobs, log, catalogOpts...)
	if cfg.ThemeSeedFile != "" {
		n, err := catalog.Seed(ctx, themeStore, cfg.ThemeSeedFile)
		if err != nil {
			return err
		}
		log.Info("theme catalog seeded", "inserted", n, "file", cfg.ThemeSeedFile)
	}

	coupons := coupon.NewService(couponStore, log)

	var gatewayCfg gateway.Config
	config.MustLoad(&gatewayCfg)
	razorpay, err := gateway.NewRazorpayClient(gatewayCfg)
	if err != nil {
		return err
	}

	billingSvc := billing.NewService(themes, coupons, siteStore, razorpay, log)
	sites := website.NewService(siteStore, themes, blobs, cfg.PublicBaseURL, log)

	var notifier enquiry.Notifier
	var waCfg whatsapp.Config
	if err := config.Load(&waCfg); err != nil {
		log.Warn("whatsapp not configured, enquiry forwarding disabled", "error", err)
	} else if wa, err := whatsapp.New(waCfg); err != nil {
		log.Warn("whatsapp not configured, enquiry forwarding disabled", "error", err)
	} else {
		notifier = wa
	}

	enquiries := enquiry.NewService(enquiryStore, sites, notifier, log)

	handler := api.NewHandler(themes, coupons, billingSvc, sites, enquiries, log,
		api.WithHealthchecks(checks...))

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func logLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
