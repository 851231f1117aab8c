package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"golang.org/x/sync/errgroup"

	"community-gateway/internal/config"
	"community-gateway/internal/i18n"
	pgRepo "community-gateway/internal/infra/adapter/persistence/postgres"
	restRepo "community-gateway/internal/infra/adapter/persistence/postgrest"
	"community-gateway/internal/infra/db"
	"community-gateway/internal/infra/supabase"
	"community-gateway/internal/observability/logging"
	"community-gateway/internal/observability/tracing"
	"community-gateway/internal/service/session"
	envconfig "community-gateway/pkg/config"
	"community-gateway/pkg/ratelimit"

	entityUC "community-gateway/internal/usecase/entity"
	userUC "community-gateway/internal/usecase/user"

	hhttp "community-gateway/internal/handler/http"
	hauth "community-gateway/internal/handler/http/auth"
	hentity "community-gateway/internal/handler/http/entity"
	"community-gateway/internal/handler/http/middleware"
	hpage "community-gateway/internal/handler/http/page"
	hproxy "community-gateway/internal/handler/http/proxy"
	"community-gateway/internal/handler/http/requestid"
	htrans "community-gateway/internal/handler/http/translations"
	huser "community-gateway/internal/handler/http/user"

	_ "community-gateway/docs" // swagger docs
)

// @title           Community Gateway API
// @version         1.0
// @description     HTTP gateway for the community site: entity routes over
// @description     Supabase PostgREST, user profiles, locale-aware page props
// @description     and a PostgREST passthrough.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Supabase access token as "Bearer {token}". The session cookie works too.

func main() {
	logger := initLogger()

	gw, err := config.LoadGatewayConfig(envconfig.GetEnvString("GATEWAY_CONFIG", ""))
	if err != nil {
		logger.Error("failed to load gateway config", slog.Any("error", err))
		os.Exit(1)
	}

	sbCfg, err := supabase.LoadConfig()
	if err != nil {
		logger.Error("invalid supabase configuration", slog.Any("error", err))
		os.Exit(1)
	}
	factory := supabase.NewFactory(sbCfg, nil)

	database := initDatabase(logger)
	if database != nil {
		defer func() {
			if err := database.Close(); err != nil {
				logger.Error("failed to close database", slog.Any("error", err))
			}
		}()
	}

	shutdownTracing := tracing.Setup(envconfig.GetEnvFloat("OTEL_TRACES_SAMPLE_RATIO", 1))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("tracer shutdown failed", slog.Any("error", err))
		}
	}()

	catalog := i18n.NewCatalog(i18n.ConfigFrom(gw.I18n))
	if err := catalog.Load(context.Background()); err != nil {
		logger.Error("failed to load translations", slog.Any("error", err))
		os.Exit(1)
	}

	version := getVersion()
	components := setupServer(logger, gw, factory, catalog, database, version)

	runServer(logger, components, version)
}

// initLogger installs the JSON logger as the default.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the optional direct Postgres connection. Without a
// DSN the gateway reads users over PostgREST.
func initDatabase(logger *slog.Logger) *sql.DB {
	database, err := db.Open(context.Background(), db.DSN())
	if errors.Is(err, db.ErrNoDSN) {
		logger.Info("SUPABASE_DB_URL not set, reading users over PostgREST")
		return nil
	}
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

func getVersion() string {
	return envconfig.GetEnvString("VERSION", "dev")
}

// ServerComponents holds what runServer needs to serve and clean up.
type ServerComponents struct {
	Handler http.Handler
	Catalog *i18n.Catalog
	Cleanup []hhttp.CleanupTarget
	Metrics ratelimit.Metrics
}

// setupServer builds the services, routes and middleware.
func setupServer(
	logger *slog.Logger,
	gw *config.GatewayConfig,
	factory *supabase.Factory,
	catalog *i18n.Catalog,
	database *sql.DB,
	version string,
) *ServerComponents {
	sessions := session.NewService()

	var users = restRepo.NewUserRepo(factory)
	if database != nil {
		users = pgRepo.NewUserRepo(database)
	}
	userSvc := &userUC.Service{
		Users:    users,
		Profiles: restRepo.NewProfileRepo(factory),
		Admin:    restRepo.NewAccountAdmin(factory),
	}
	entitySvc := entityUC.NewService(entityUC.RegistryFromConfig(gw.Entities))

	rlCfg := envconfig.LoadRateLimitConfig()
	rlMetrics := ratelimit.NewPrometheusMetrics(prometheus.DefaultRegisterer)
	limiters := map[string]*ratelimit.GuardedStore{}
	var rateLimit func(http.Handler) http.Handler
	var cleanup []hhttp.CleanupTarget

	if rlCfg.Enabled {
		ipExtractor, err := middleware.LoadIPExtractor()
		if err != nil {
			logger.Error("failed to load trusted proxy configuration", slog.Any("error", err))
			os.Exit(1)
		}

		clock := ratelimit.SystemClock{}
		sessionStore := ratelimit.NewGuardedStore(ratelimit.NewMemoryStore(rlCfg.MaxKeys), "session",
			rlCfg.BreakerFailureThreshold, rlCfg.BreakerTimeout, rlMetrics)
		ipStore := ratelimit.NewGuardedStore(ratelimit.NewMemoryStore(rlCfg.MaxKeys), "ip",
			rlCfg.BreakerFailureThreshold, rlCfg.BreakerTimeout, rlMetrics)
		limiters["session"], limiters["ip"] = sessionStore, ipStore

		rateLimit = middleware.RateLimit(middleware.RateLimitConfig{
			Identity:     ratelimit.NewLimiter("session", rlCfg.SessionLimit, rlCfg.SessionWindow, sessionStore, clock, rlMetrics),
			IP:           ratelimit.NewLimiter("ip", rlCfg.IPLimit, rlCfg.IPWindow, ipStore, clock, rlMetrics),
			IPExtractor:  ipExtractor,
			Subject:      hauth.SubjectFromContext,
			SecureCookie: envconfig.GetEnvBool("COOKIE_SECURE", false),
		})
		cleanup = []hhttp.CleanupTarget{
			{LimiterType: "session", Store: sessionStore, Window: rlCfg.SessionWindow},
			{LimiterType: "ip", Store: ipStore, Window: rlCfg.IPWindow},
		}

		logger.Info("rate limiting initialized",
			slog.Int("session_limit", rlCfg.SessionLimit),
			slog.Duration("session_window", rlCfg.SessionWindow),
			slog.Int("ip_limit", rlCfg.IPLimit),
			slog.Duration("ip_window", rlCfg.IPWindow),
			slog.Int("max_keys", rlCfg.MaxKeys))
	} else {
		logger.Warn("rate limiting is DISABLED - not recommended for production")
	}

	mux := http.NewServeMux()

	// ヘルスチェックエンドポイント（認証不要）
	mux.Handle("/health", &hhttp.HealthHandler{Backend: factory.Anon(), DB: database, Version: version, Limiters: limiters})
	mux.Handle("/ready", &hhttp.ReadyHandler{Backend: factory.Anon()})
	mux.Handle("/live", hhttp.LiveHandler{})
	mux.Handle("/metrics", hhttp.MetricsHandler())
	// Swagger UI（認証不要）
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	mux.Handle("/api/auth/logout", &hauth.LogoutHandler{Factory: factory, Sessions: sessions})
	huser.Register(mux, huser.Handler{Svc: userSvc, Factory: factory, Sessions: sessions})
	hentity.Register(mux, hentity.Handler{Svc: entitySvc, Factory: factory, Sessions: sessions})
	htrans.Register(mux, htrans.Handler{Catalog: catalog})

	target, err := url.Parse(factory.Config().URL)
	if err != nil {
		logger.Error("invalid supabase url", slog.Any("error", err))
		os.Exit(1)
	}
	hproxy.Register(mux, hproxy.New(hproxy.Config{
		Target:   target,
		AnonKey:  factory.Config().AnonKey,
		Verifier: factory.Verifier(),
		Tokens:   factory.RequestToken,
	}))

	hpage.Register(mux, hpage.Handler{
		Pages:    gw.Pages,
		SiteName: gw.Site.Name,
		Catalog:  catalog,
		Factory:  factory,
		Sessions: sessions,
		Profiles: userSvc,
	})

	return &ServerComponents{
		Handler: applyMiddleware(logger, mux, factory, catalog, rateLimit),
		Catalog: catalog,
		Cleanup: cleanup,
		Metrics: rlMetrics,
	}
}

// applyMiddleware wraps the mux. Order, outermost first: Recover, Request
// ID, Tracing, Logging, Metrics, CORS, Session (/api only), Rate Limit,
// Locale, Body Limit.
func applyMiddleware(
	logger *slog.Logger,
	handler http.Handler,
	factory *supabase.Factory,
	catalog *i18n.Catalog,
	rateLimit func(http.Handler) http.Handler,
) http.Handler {
	corsConfig, err := middleware.LoadCORSConfig(middleware.SlogAdapter{Logger: logger})
	if err != nil {
		logger.Error("failed to load CORS configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("CORS enabled",
		slog.Any("allowed_origins", corsConfig.Validator.AllowedOrigins()),
		slog.Any("allowed_methods", corsConfig.AllowedMethods),
		slog.Int("max_age", corsConfig.MaxAge))

	chain := []func(http.Handler) http.Handler{
		hhttp.Recover(logger),
		requestid.Middleware,
		tracing.Middleware,
		hhttp.Logging(logger),
		hhttp.MetricsMiddleware,
		middleware.CORS(corsConfig),
		onPrefix("/api/", hauth.Session(factory.Verifier(), factory.RequestToken)),
	}
	if rateLimit != nil {
		chain = append(chain, rateLimit)
	}
	chain = append(chain,
		catalog.Middleware,
		hhttp.LimitRequestBody(int64(envconfig.GetEnvInt("MAX_BODY_BYTES", 1<<20))),
	)
	return hhttp.Chain(handler, chain...)
}

// onPrefix applies mw only to paths under prefix.
func onPrefix(prefix string, mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, prefix) {
				wrapped.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// runServer serves until SIGINT or SIGTERM, then shuts down gracefully.
// Background jobs (limiter cleanup, translation watcher) stop with it.
func runServer(logger *slog.Logger, components *ServerComponents, version string) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(components.Cleanup) > 0 {
		cleanupCfg := hhttp.LoadCleanupConfigFromEnv()
		if _, err := hhttp.StartRateLimitCleanup(ctx, cleanupCfg, components.Metrics, components.Cleanup...); err != nil {
			logger.Error("failed to schedule rate limit cleanup", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("rate limit cleanup scheduled", slog.String("schedule", cleanupCfg.Schedule))
	}

	addr := envconfig.GetEnvString("ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, gctx := errgroup.WithContext(ctx)

	if components.Catalog.Config().Watch {
		w, err := i18n.NewWatcher(components.Catalog)
		if err != nil {
			logger.Error("failed to start translation watcher", slog.Any("error", err))
			os.Exit(1)
		}
		g.Go(func() error {
			defer func() { _ = w.Stop() }()
			return w.Run(gctx)
		})
		logger.Info("translation hot reload enabled", slog.String("dir", components.Catalog.Config().MessagesDir))
	}

	g.Go(func() error {
		logger.Info("server starting", slog.String("addr", addr), slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
