package gateway

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	apiv1 "github.com/beam-cloud/mailtriage/pkg/api/v1"
	"github.com/beam-cloud/mailtriage/pkg/classify"
	"github.com/beam-cloud/mailtriage/pkg/common"
	"github.com/beam-cloud/mailtriage/pkg/llm"
	"github.com/beam-cloud/mailtriage/pkg/oauth"
	"github.com/beam-cloud/mailtriage/pkg/session"
	"github.com/beam-cloud/mailtriage/pkg/types"
)

const (
	metricsRoute           = "/metrics"
	defaultShutdownTimeout = 30 * time.Second
)

type Gateway struct {
	Config      types.AppConfig
	RedisClient *common.RedisClient
	httpServer  *http.Server
	echo        *echo.Echo
	ctx         context.Context
	cancelFunc  context.CancelFunc
	stopOnce    sync.Once

	baseRouteGroup *echo.Group
	rootRouteGroup *echo.Group

	sessions    *session.Manager
	googleOAuth *oauth.GoogleClient
	runner      *classify.Runner
}

func NewGateway() (*Gateway, error) {
	configManager, err := common.NewConfigManager[types.AppConfig]()
	if err != nil {
		return nil, err
	}
	config := configManager.GetConfig()
	SetupLogging(config)

	return NewGatewayWithConfig(config)
}

// NewGatewayWithConfig wires the gateway from an already loaded config
func NewGatewayWithConfig(config types.AppConfig) (*Gateway, error) {
	var redisClient *common.RedisClient
	var err error

	// Redis is only needed for shared sessions
	if config.Session.UsesRedis() {
		redisClient, err = common.NewRedisClient(config.Database.Redis, common.WithClientName("MailtriageGateway"))
		if err != nil {
			return nil, err
		}
	} else {
		log.Info().Msg("sessions kept in memory - Redis disabled")
	}

	store, err := session.NewStore(config.Session, redisClient)
	if err != nil {
		return nil, err
	}

	googleOAuth, err := oauth.NewGoogleClient(config.OAuth)
	if err != nil {
		return nil, fmt.Errorf("failed to create google oauth client: %w", err)
	}

	completer := llm.NewClient(config.LLM)
	log.Debug().Interface("llm", config.LLM.Redact()).Msg("llm client configured")

	ctx, cancel := context.WithCancel(context.Background())
	return &Gateway{
		Config:      config,
		RedisClient: redisClient,
		ctx:         ctx,
		cancelFunc:  cancel,
		sessions:    session.NewManager(config.Session, store),
		googleOAuth: googleOAuth,
		runner:      classify.NewRunner(completer, classify.GmailSource(config.Mail), config.LLM),
	}, nil
}

// SetupLogging configures the global logger
func SetupLogging(config types.AppConfig) {
	level := zerolog.InfoLevel
	if config.DebugMode {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if config.PrettyLogs {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
}

func (g *Gateway) initHTTP() error {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(middleware.RemoveTrailingSlash())

	// Configure logging middleware
	if g.Config.Gateway.HTTP.EnablePrettyLogs {
		e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
			Format: "${time_rfc3339} ${method} ${uri} ${status} ${latency_human}\n",
		}))
	}

	e.Use(middleware.Recover())

	g.echo = e
	g.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", g.Config.Gateway.HTTP.Host, g.Config.Gateway.HTTP.Port),
		Handler: e,
	}

	g.baseRouteGroup = e.Group(apiv1.HttpServerBaseRoute)
	g.rootRouteGroup = e.Group(apiv1.HttpServerRootRoute)

	apiv1.NewHealthGroup(g.baseRouteGroup.Group("/health"), g.RedisClient)

	if g.Config.Gateway.HTTP.EnableMetrics {
		e.GET(metricsRoute, echo.WrapHandler(promhttp.Handler()))
	}

	return nil
}

func (g *Gateway) registerServices() error {
	apiv1.NewWebGroup(g.rootRouteGroup, g.sessions, g.googleOAuth, g.runner, g.Config.Export)

	log.Info().
		Str("redirect_url", g.googleOAuth.Config().RedirectURL).
		Str("session_store", g.Config.Session.Store).
		Msg("web routes registered")

	return nil
}

// StartAsync starts the gateway server without blocking.
func (g *Gateway) StartAsync() error {
	err := g.initHTTP()
	if err != nil {
		return fmt.Errorf("failed to initialize http server: %w", err)
	}

	err = g.registerServices()
	if err != nil {
		return fmt.Errorf("failed to register services: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", g.Config.Gateway.HTTP.Host, g.Config.Gateway.HTTP.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on http: %w", err)
	}

	go func() {
		if err := g.httpServer.Serve(lis); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server error")
		}
	}()

	log.Info().
		Str("host", g.Config.Gateway.HTTP.Host).
		Int("port", g.Config.Gateway.HTTP.Port).
		Msg("gateway http server running")

	return nil
}

// Handler returns the HTTP handler with all routes registered
func (g *Gateway) Handler() (http.Handler, error) {
	if g.echo == nil {
		if err := g.initHTTP(); err != nil {
			return nil, err
		}
		if err := g.registerServices(); err != nil {
			return nil, err
		}
	}
	return g.echo, nil
}

// Shutdown gracefully shuts down the gateway (exported for external use)
func (g *Gateway) Shutdown() {
	g.shutdown()
}

func (g *Gateway) Start() error {
	if err := g.StartAsync(); err != nil {
		return err
	}

	terminationSignal := make(chan os.Signal, 1)
	signal.Notify(terminationSignal, os.Interrupt, syscall.SIGTERM)

	select {
	case <-terminationSignal:
		log.Info().Msg("termination signal received. shutting down...")
	case <-g.ctx.Done():
	}
	g.shutdown()

	return nil
}

// shutdown gracefully shuts down the gateway; later calls are no-ops
func (g *Gateway) shutdown() {
	g.stopOnce.Do(g.stop)
}

func (g *Gateway) stop() {
	timeout := g.Config.Gateway.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)

	// Stop HTTP server
	if g.httpServer != nil {
		eg.Go(func() error {
			return g.httpServer.Shutdown(ctx)
		})
	}

	// Close Redis
	if g.RedisClient != nil {
		eg.Go(func() error {
			return g.RedisClient.Close()
		})
	}

	g.cancelFunc()

	if err := eg.Wait(); err != nil {
		log.Error().Err(err).Msg("failed to shutdown gateway gracefully")
	}

	log.Info().Msg("gateway stopped")
}
