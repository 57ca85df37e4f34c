// Package app wires configuration, storage, domain services, and the HTTP
// server into a running storefront.
package app

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/Harshita1325/Vibe-Cart/db"
	"github.com/Harshita1325/Vibe-Cart/internal/domain/cart"
	"github.com/Harshita1325/Vibe-Cart/internal/domain/checkout"
	"github.com/Harshita1325/Vibe-Cart/internal/domain/product"
	"github.com/Harshita1325/Vibe-Cart/internal/handler"
	"github.com/Harshita1325/Vibe-Cart/internal/storage/memory"
	"github.com/Harshita1325/Vibe-Cart/internal/storage/postgres"
	"github.com/Harshita1325/Vibe-Cart/pkg/health"
	"github.com/Harshita1325/Vibe-Cart/pkg/httpmiddleware"
)

// repositories bundles the three storage interfaces a backend must provide.
type repositories struct {
	products product.Repository
	cart     cart.Repository
	receipts checkout.Repository
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("storage", cfg.Storage),
	)

	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	repos, cleanup, err := buildStorage(ctx, cfg, healthSvc)
	if err != nil {
		return errors.Wrap(err, "build storage")
	}
	defer cleanup()

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Domain services.
	cartService := cart.NewService(repos.products, repos.cart)
	checkoutService := checkout.NewService(repos.products, repos.receipts)

	// HTTP surface.
	h := handler.New(repos.products, cartService, checkoutService)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", otelhttp.NewHandler(h.Routes(), "vibe-cart",
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	))

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "X-Session-ID"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// buildStorage constructs the configured backend and registers its readiness
// checks. The returned cleanup releases backend resources.
func buildStorage(ctx context.Context, cfg *Config, healthSvc *health.Health) (repositories, func(), error) {
	switch cfg.Storage {
	case StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return repositories{}, nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return repositories{}, nil, errors.Wrap(err, "run migrations")
		}
		healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
		return repositories{
			products: postgres.NewProductRepository(pool),
			cart:     postgres.NewCartRepository(pool),
			receipts: postgres.NewReceiptRepository(pool),
		}, pool.Close, nil

	case StorageMemory:
		store := memory.NewStore()
		var seed []product.Product
		if err := json.Unmarshal(db.SeedProducts, &seed); err != nil {
			return repositories{}, nil, errors.Wrap(err, "decode seed catalog")
		}
		store.Seed(seed)
		return repositories{products: store, cart: store, receipts: store}, func() {}, nil

	default:
		return repositories{}, nil, errors.Errorf("unknown storage backend %q", cfg.Storage)
	}
}
