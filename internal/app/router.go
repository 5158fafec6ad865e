// Package app assembles the HTTP surface from configured dependencies.
package app

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	validator "github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/checkout"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/common"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/config"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/flattax"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/health"
	apimw "github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/http/middleware"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/lock"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/obs"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/ratelimit"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/resilience"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/security"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/snapshot"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/tenant"
)

// Dependencies enumerates what the router needs. Redis may be nil, which disables
// idempotency and rate limiting.
type Dependencies struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Redis     redis.Cmdable
	Taxes     flattax.Provider
	Snapshots snapshot.Repository
	Validator *validator.Validate
	Registry  *prometheus.Registry
	Probes    map[string]health.Probe
}

// NewRouter builds the chi router with the middleware chain and routes.
func NewRouter(deps Dependencies) (http.Handler, error) {
	cfg := deps.Config
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if deps.Taxes == nil {
		return nil, errors.New("flat tax provider is required")
	}

	taxLogger := deps.Logger.With().Str("component", "flattax").Logger()
	taxes := flattax.Audited{
		Next: flattax.Guarded{
			Next:    deps.Taxes,
			Breaker: resilience.NewBreaker("flat_tax_store", cfg.FlatTaxBreakerThreshold, cfg.FlatTaxBreakerCooldown, taxLogger),
		},
		Logger: taxLogger,
	}
	var locker checkout.Locker
	if deps.Redis != nil {
		locker = lock.RedisLocker{R: deps.Redis, TTL: cfg.FinalizeLockTTL}
	}
	calc := checkout.NewCalculator(taxes, deps.Logger.With().Str("component", "calculator").Logger(), cfg.LoyaltyExcludedCategories)
	svc, err := checkout.NewService(checkout.ServiceConfig{
		Calculator:   calc,
		Snapshots:    deps.Snapshots,
		Locker:       locker,
		MaxRedeemBps: cfg.LoyaltyMaxRedeemBps,
		Timeout:      cfg.CheckoutTimeout,
		Logger:       deps.Logger,
	})
	if err != nil {
		return nil, err
	}
	checkoutHandler := checkout.NewHandler(checkout.HandlerConfig{Service: svc, Validator: deps.Validator, Logger: deps.Logger})

	var httpMetrics *obs.HTTPMetrics
	if cfg.MetricsEnabled {
		var reg prometheus.Registerer
		if deps.Registry != nil {
			reg = deps.Registry
		}
		httpMetrics = obs.NewHTTPMetrics(cfg.MetricsNamespace, obs.ParseBucketsCSV(cfg.MetricsBuckets), reg)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(tenant.NewResolver(cfg.TenantHeader, cfg.TenantRootDomain, cfg.TenantDefault).Middleware)
	if cfg.TracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: deps.Logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", cfg.TenantHeader, common.IdempotencyHeader, "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:         300,
	}))
	r.Use(security.Headers{Enable: true, EnableHSTS: cfg.AppEnv == "production"}.Middleware)

	if cfg.MetricsEnabled {
		if deps.Registry != nil {
			r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
		} else {
			r.Handle("/metrics", promhttp.Handler())
		}
	}
	healthHandler := health.Handler{Probes: deps.Probes}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	var (
		idem  common.Idem
		quota ratelimit.Guard
	)
	if deps.Redis != nil {
		idem = common.Idem{R: deps.Redis, TTL: cfg.IdempotencyTTL, Scope: tenantScope}
		quota = ratelimit.Guard{
			Limiter: ratelimit.SlidingWindow{Client: deps.Redis, Prefix: "ratelimit:"},
			Rule:    ratelimit.Rule{Window: cfg.QuoteRateLimitWindow, Max: cfg.QuoteRateLimitMax},
			Key:     ratelimit.TenantClientKey("quote"),
			Logger:  deps.Logger,
		}
	}

	r.Route("/api/v1", func(v chi.Router) {
		if cfg.TenantRequired {
			v.Use(apimw.RequireTenant)
		}
		v.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)
		v.With(quota.Middleware).Post("/checkout/quote", checkoutHandler.Quote)
		v.Route("/orders/{orderId}", func(o chi.Router) {
			o.With(idem.Middleware).Post("/finalize", checkoutHandler.Finalize)
			o.Get("/breakdown", checkoutHandler.Breakdown)
		})
	})
	return r, nil
}

func tenantScope(r *http.Request) string {
	id, _ := tenant.FromContext(r.Context())
	return id
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}
