package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/donaldgifford/ebay-seller-connect/internal/api/handlers"
	"github.com/donaldgifford/ebay-seller-connect/internal/api/middleware"
	"github.com/donaldgifford/ebay-seller-connect/internal/config"
	"github.com/donaldgifford/ebay-seller-connect/internal/ebay"
	"github.com/donaldgifford/ebay-seller-connect/internal/notify"
	"github.com/donaldgifford/ebay-seller-connect/internal/oauthflow"
	"github.com/donaldgifford/ebay-seller-connect/internal/store"
	"github.com/donaldgifford/ebay-seller-connect/internal/tokens"
)

// app holds the wired server and everything that needs closing.
type app struct {
	echo    *echo.Echo
	sweeper *tokens.Sweeper
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	a := &app{}

	st, err := openStore(ctx, cfg, a)
	if err != nil {
		return nil, err
	}

	endpoints := resolveEndpoints(cfg.Ebay)
	scopes := ebay.NewScopeRegistry(ebay.DefaultScopes)
	httpClient := &http.Client{Timeout: cfg.Ebay.Timeout}

	slot, err := openSlot(ctx, cfg.AppToken, a)
	if err != nil {
		a.close()
		return nil, err
	}
	appTokens := ebay.NewAppTokenCache(cfg.Ebay.AppID, cfg.Ebay.CertID,
		ebay.WithTokenURL(endpoints.TokenURL),
		ebay.WithHTTPClient(httpClient),
		ebay.WithExpiryBuffer(cfg.AppToken.ExpiryBuffer),
		ebay.WithSlot(slot),
		ebay.WithAppLogger(log),
	)

	oauthClient := ebay.NewOAuthClient(cfg.Ebay.AppID, cfg.Ebay.CertID, cfg.Ebay.RuName, endpoints,
		ebay.WithOAuthHTTPClient(httpClient),
		ebay.WithPrompt(cfg.OAuth.Prompt),
	)

	rl := cfg.Ebay.RateLimit
	limiters := []*ebay.RateLimiter{
		ebay.NewRateLimiter("identity", rl.PerSecond, rl.Burst, rl.DailyLimit),
		ebay.NewRateLimiter("inventory", rl.PerSecond, rl.Burst, rl.DailyLimit),
		ebay.NewRateLimiter("trading", rl.PerSecond, rl.Burst, rl.DailyLimit),
	}
	resourceOpts := []ebay.ResourceOption{
		ebay.WithResourceHTTPClient(httpClient),
		ebay.WithMarketplace(cfg.Ebay.Marketplace),
	}
	for _, l := range limiters {
		resourceOpts = append(resourceOpts, ebay.WithRateLimiter(l.API(), l))
	}
	resource := ebay.NewResourceClient(endpoints, resourceOpts...)

	var notifier notify.Notifier = notify.NewNoOpNotifier(log)
	if cfg.Notifications.Discord.Enabled {
		notifier = notify.NewDiscordNotifier(cfg.Notifications.Discord.WebhookURL,
			notify.WithHTTPClient(httpClient))
	}

	engine := tokens.NewEngine(st, oauthClient,
		tokens.WithLogger(log),
		tokens.WithNotifier(notifier),
		tokens.WithRefreshMargin(cfg.Tokens.RefreshMargin),
		tokens.WithRefreshTimeout(cfg.Tokens.RefreshTimeout),
		tokens.WithConnectURLFunc(connectURL(cfg.Server.PublicURL)),
	)

	if cfg.Tokens.SweepEnabled {
		window := max(cfg.Tokens.SweepWindow, cfg.Tokens.RefreshMargin)
		a.sweeper, err = tokens.NewSweeper(engine, cfg.Tokens.SweepInterval,
			tokens.WithSweepWindow(window),
			tokens.WithSweepConcurrency(cfg.Tokens.SweepConcurrency),
			tokens.WithSweepLogger(log),
		)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("creating token sweeper: %w", err)
		}
	}

	flow := oauthflow.NewCoordinator(st, oauthClient, scopes,
		oauthflow.WithLogger(log),
		oauthflow.WithIdentityFetcher(resource),
		oauthflow.WithCookie(oauthflow.CookieConfig{
			Name:   cfg.OAuth.StateCookieName,
			Path:   cfg.OAuth.StateCookiePath,
			Secure: cfg.OAuth.SecureCookie,
		}),
	)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	// Recovery sits innermost so recovered panics are logged and counted as 500s.
	e.Use(middleware.RequestLog(log), middleware.Metrics(), middleware.Recovery(log))

	readiness := map[string]handlers.Pinger{}
	if p, ok := slot.(handlers.Pinger); ok {
		readiness["app_token_slot"] = p
	}
	handlers.RegisterHealthRoutes(e, handlers.NewHealthHandler(st, readiness))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	oauthH := handlers.NewOAuthHandler(flow,
		handlers.WithOAuthLogger(log),
		handlers.WithRedirects(cfg.OAuth.SuccessRedirect, cfg.OAuth.FailureRedirect),
	)
	handlers.RegisterCallbackRoute(e, oauthH)

	api := humaecho.New(e, huma.DefaultConfig("seller-connect", Version))
	handlers.RegisterAccountRoutes(api, handlers.NewAccountsHandler(st, scopes))
	handlers.RegisterTokenRoutes(api, handlers.NewTokensHandler(engine, appTokens))
	handlers.RegisterOAuthRoutes(api, oauthH)
	handlers.RegisterProxyRoutes(api, handlers.NewProxyHandler(engine, resource, log))
	handlers.RegisterQuotaRoutes(api, handlers.NewQuotaHandler(limiters...))

	a.echo = e
	return a, nil
}

func openStore(ctx context.Context, cfg *config.Config, a *app) (store.Store, error) {
	if cfg.Database.Backend == config.BackendMemory {
		return store.NewMemoryStore(), nil
	}
	pg, err := store.NewPostgresStore(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	a.closers = append(a.closers, pg.Close)
	return pg, nil
}

func openSlot(ctx context.Context, cfg config.AppTokenConfig, a *app) (ebay.TokenSlot, error) {
	if cfg.Backend != config.SlotRedis {
		return &ebay.MemorySlot{}, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	slot := ebay.NewRedisSlot(rdb, cfg.Redis.Key)
	if err := slot.Ping(ctx); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = rdb.Close() })
	return slot, nil
}

// resolveEndpoints applies per-URL overrides on top of the environment set.
func resolveEndpoints(cfg config.EbayConfig) ebay.Endpoints {
	ep := ebay.EndpointsFor(cfg.Environment)
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&ep.AuthURL, cfg.AuthURL)
	override(&ep.TokenURL, cfg.TokenURL)
	override(&ep.APIURL, cfg.APIURL)
	override(&ep.IdentityURL, cfg.IdentityURL)
	override(&ep.TradingURL, cfg.TradingURL)
	return ep
}

func connectURL(publicURL string) func(string) string {
	return func(accountID string) string {
		return publicURL + "/api/v1/accounts/" + url.PathEscape(accountID) + "/connect"
	}
}
