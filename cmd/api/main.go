package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/boutique-backend/api/routes"
	"github.com/angelmondragon/boutique-backend/internal/accounts"
	"github.com/angelmondragon/boutique-backend/internal/batches"
	"github.com/angelmondragon/boutique-backend/internal/cart"
	"github.com/angelmondragon/boutique-backend/internal/checkout"
	"github.com/angelmondragon/boutique-backend/internal/checkoutoptions"
	"github.com/angelmondragon/boutique-backend/internal/coupons"
	"github.com/angelmondragon/boutique-backend/internal/orders"
	"github.com/angelmondragon/boutique-backend/internal/wheel"
	"github.com/angelmondragon/boutique-backend/pkg/config"
	"github.com/angelmondragon/boutique-backend/pkg/db"
	"github.com/angelmondragon/boutique-backend/pkg/instance"
	"github.com/angelmondragon/boutique-backend/pkg/logger"
	"github.com/angelmondragon/boutique-backend/pkg/metrics"
	"github.com/angelmondragon/boutique-backend/pkg/migrate"
	"github.com/angelmondragon/boutique-backend/pkg/mondialrelay"
	"github.com/angelmondragon/boutique-backend/pkg/redis"
	"github.com/angelmondragon/boutique-backend/pkg/stripe"
	"github.com/angelmondragon/boutique-backend/pkg/woocommerce"
)

const shutdownTimeout = 20 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient)
	requireResource(ctx, logg, "dev migrations", err)

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	wooClient, err := woocommerce.NewClient(cfg.WooCommerce.BaseURL, cfg.WooCommerce.ConsumerKey, cfg.WooCommerce.ConsumerSecret,
		woocommerce.WithTimeout(cfg.WooCommerce.Timeout),
		woocommerce.WithRelayMethodIDs(cfg.Checkout.RelayMethodIDs),
	)
	requireResource(ctx, logg, "woocommerce client", err)

	stripeClient, err := stripe.NewClient(ctx, cfg.Stripe, logg)
	requireResource(ctx, logg, "stripe client", err)
	paymentIntents, err := stripe.NewPaymentIntents(stripeClient)
	requireResource(ctx, logg, "stripe payment intents", err)

	var relayFinder mondialrelay.Finder
	if cfg.MondialRelay.BaseURL != "" {
		relayClient, err := mondialrelay.NewClient(cfg.MondialRelay.BaseURL,
			mondialrelay.WithAPIKey(cfg.MondialRelay.APIKey),
			mondialrelay.WithTimeout(cfg.MondialRelay.Timeout),
		)
		requireResource(ctx, logg, "mondial relay client", err)
		relayFinder = relayClient
	} else {
		logg.Warn(ctx, "mondial relay base url not set, relay point search disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	gormDB := dbClient.DB()
	accountsRepo := accounts.NewRepository(gormDB)
	couponsRepo := coupons.NewRepository(gormDB)
	ordersRepo := orders.NewRepository(gormDB)
	batchesRepo := batches.NewRepository(gormDB)

	cartService, err := cart.NewService(cart.NewRepository(gormDB), dbClient, logg)
	requireResource(ctx, logg, "cart service", err)

	optionsService, err := checkoutoptions.NewService(wooClient, redisClient, cfg.Checkout.OptionsCacheTTL, logg,
		checkoutoptions.WithMinRefreshInterval(cfg.Checkout.OptionsMinRefresh),
	)
	requireResource(ctx, logg, "checkout options service", err)

	couponsService, err := coupons.NewService(couponsRepo, time.Now)
	requireResource(ctx, logg, "coupons service", err)

	batchesService, err := batches.NewService(batchesRepo, time.Now)
	requireResource(ctx, logg, "delivery batch service", err)

	ordersService, err := orders.NewService(ordersRepo)
	requireResource(ctx, logg, "orders service", err)

	checkoutService, err := checkout.NewService(checkout.Deps{
		Cart:     cartService,
		Accounts: accountsRepo,
		Options:  optionsService,
		Coupons:  couponsRepo,
		Orders:   ordersRepo,
		Batches:  batchesRepo,
		Tx:       dbClient,
		Woo:      wooClient,
		Payments: paymentIntents,
		Locks:    redisClient,
		Metrics:  checkoutMetrics,
		Logger:   logg,
	}, cfg.Checkout)
	requireResource(ctx, logg, "checkout service", err)

	loc, err := time.LoadLocation(cfg.App.TimeZone)
	if err != nil {
		logg.Warn(logg.WithField(ctx, "timeZone", cfg.App.TimeZone), "unknown time zone, wheel resets at UTC midnight")
		loc = time.UTC
	}
	wheelService, err := wheel.NewService(wheel.NewRepository(gormDB), couponsService, logg,
		wheel.WithLocation(loc),
		wheel.WithLocks(redisClient, cfg.Wheel.SpinLockTTL),
	)
	requireResource(ctx, logg, "wheel service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Infra{
			DB:          dbClient,
			Redis:       redisClient,
			Idempotency: redisClient,
			RateLimiter: redisClient,
			Gatherer:    registry,
		}, routes.Services{
			Checkout:    checkoutService,
			Cart:        cartService,
			Batches:     batchesService,
			Coupons:     couponsService,
			Orders:      ordersService,
			Wheel:       wheelService,
			RelayPoints: relayFinder,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logg.Info(gctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		logg.Info(shutdownCtx, "shutting down api server")
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(ctx, "resource", resource), "resource not working", err)
	os.Exit(1)
}
