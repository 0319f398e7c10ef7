// Command employee-api serves the employee REST API in front of the
// upstream employee server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/Sternrassler/employee-api/pkg/api"
	"github.com/Sternrassler/employee-api/pkg/cache"
	"github.com/Sternrassler/employee-api/pkg/client"
	"github.com/Sternrassler/employee-api/pkg/logging"
	"github.com/Sternrassler/employee-api/pkg/metrics"
	"github.com/Sternrassler/employee-api/pkg/ratelimit"
	"github.com/Sternrassler/employee-api/pkg/service"
)

const (
	envPrefix         = "EMPLOYEE_API_"
	defaultConfigFile = "employee-api.yaml"
	shutdownTimeout   = 10 * time.Second
	readyTimeout      = 2 * time.Second
)

// config is the resolved runtime configuration.
type config struct {
	Port                int
	UpstreamURL         string
	UserAgent           string
	UpstreamTimeout     time.Duration
	UpstreamMaxAttempts int
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	CacheTTL            time.Duration
	LogLevel            logging.LogLevel
	LogPretty           bool
}

type runFunc func(ctx context.Context, cfg config) error

func main() {
	cmd := newCommand(configPath(), run)
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "employee-api: %v\n", err)
		os.Exit(1)
	}
}

// configPath returns the YAML file flags fall back to.
func configPath() string {
	if path := os.Getenv(envPrefix + "CONFIG"); path != "" {
		return path
	}
	return defaultConfigFile
}

// sources resolves a flag from the environment, then from the YAML file.
func sources(key, path string) cli.ValueSourceChain {
	return cli.NewValueSourceChain(
		cli.EnvVar(envPrefix+envName(key)),
		yaml.YAML(key, altsrc.StringSourcer(path)),
	)
}

// envName maps "upstream-url" to "UPSTREAM_URL".
func envName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

func newCommand(path string, run runFunc) *cli.Command {
	return &cli.Command{
		Name:  "employee-api",
		Usage: "REST API for employee records, cached in front of the upstream employee server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Usage:   "HTTP listen port",
				Value:   8111,
				Sources: sources("port", path),
				Validator: func(v int) error {
					if v < 1 || v > 65535 {
						return fmt.Errorf("port must be between 1 and 65535 (got %d)", v)
					}
					return nil
				},
			},
			&cli.StringFlag{
				Name:    "upstream-url",
				Usage:   "employee collection URL of the upstream server",
				Value:   "http://localhost:8112/api/v1/employee",
				Sources: sources("upstream-url", path),
			},
			&cli.StringFlag{
				Name:    "user-agent",
				Usage:   "User-Agent sent to the upstream server",
				Value:   "employee-api/0.1.0",
				Sources: sources("user-agent", path),
			},
			&cli.DurationFlag{
				Name:    "upstream-timeout",
				Usage:   "timeout of a single upstream call",
				Value:   30 * time.Second,
				Sources: sources("upstream-timeout", path),
			},
			&cli.IntFlag{
				Name:    "upstream-max-attempts",
				Usage:   "attempts per upstream call for server and network failures (1 disables retries)",
				Value:   1,
				Sources: sources("upstream-max-attempts", path),
			},
			&cli.StringFlag{
				Name:    "redis-addr",
				Usage:   "Redis address for the cache store; empty keeps the cache in memory",
				Sources: sources("redis-addr", path),
			},
			&cli.StringFlag{
				Name:    "redis-password",
				Usage:   "Redis password",
				Sources: sources("redis-password", path),
			},
			&cli.IntFlag{
				Name:    "redis-db",
				Usage:   "Redis database number",
				Sources: sources("redis-db", path),
			},
			&cli.DurationFlag{
				Name:    "cache-ttl",
				Usage:   "lifetime of cache entries; 0 keeps them until a write evicts them",
				Sources: sources("cache-ttl", path),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Value:   string(logging.LevelInfo),
				Sources: sources("log-level", path),
				Validator: func(v string) error {
					_, err := logging.ParseLogLevel(v)
					return err
				},
			},
			&cli.BoolFlag{
				Name:    "log-pretty",
				Usage:   "human-readable console logs instead of JSON",
				Sources: sources("log-pretty", path),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := configFromCommand(cmd)
			if err != nil {
				return err
			}
			return run(ctx, cfg)
		},
	}
}

func configFromCommand(cmd *cli.Command) (config, error) {
	level, err := logging.ParseLogLevel(cmd.String("log-level"))
	if err != nil {
		return config{}, err
	}

	cfg := config{
		Port:                cmd.Int("port"),
		UpstreamURL:         cmd.String("upstream-url"),
		UserAgent:           cmd.String("user-agent"),
		UpstreamTimeout:     cmd.Duration("upstream-timeout"),
		UpstreamMaxAttempts: cmd.Int("upstream-max-attempts"),
		RedisAddr:           cmd.String("redis-addr"),
		RedisPassword:       cmd.String("redis-password"),
		RedisDB:             cmd.Int("redis-db"),
		CacheTTL:            cmd.Duration("cache-ttl"),
		LogLevel:            level,
		LogPretty:           cmd.Bool("log-pretty"),
	}
	if cfg.UpstreamMaxAttempts < 1 {
		return config{}, fmt.Errorf("upstream-max-attempts must be >= 1 (got %d)", cfg.UpstreamMaxAttempts)
	}
	if cfg.CacheTTL < 0 {
		return config{}, fmt.Errorf("cache-ttl must not be negative (got %s)", cfg.CacheTTL)
	}
	return cfg, nil
}

// app holds the wired components of a running service.
type app struct {
	upstream  *client.Client
	store     cache.Store
	employees *cache.EmployeeCache
	router    *echo.Echo
	closers   []func() error
}

func (a *app) Close() {
	for _, closeFn := range a.closers {
		_ = closeFn()
	}
}

// newApp wires client, cache store, cache, service and router.
func newApp(ctx context.Context, cfg config, logger zerolog.Logger) (*app, error) {
	clientCfg := client.DefaultConfig(cfg.UpstreamURL)
	clientCfg.UserAgent = cfg.UserAgent
	clientCfg.Timeout = cfg.UpstreamTimeout
	clientCfg.Retry.MaxAttempts = cfg.UpstreamMaxAttempts
	clientCfg.Throttle = ratelimit.NewTracker(logger.With().Str("component", "upstream-throttle").Logger())

	upstream, err := client.New(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create upstream client: %w", err)
	}

	a := &app{upstream: upstream, closers: []func() error{upstream.Close}}

	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		a.closers = append(a.closers, redisClient.Close)

		if err := redisClient.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		logger.Info().Str("addr", cfg.RedisAddr).Msg("Connected to Redis")
		a.store = cache.NewRedisStore(redisClient, "")
	} else {
		a.store = cache.NewMemoryStore()
	}

	a.employees = cache.NewEmployeeCache(upstream, a.store, logger, cache.WithTTL(cfg.CacheTTL))
	svc := service.New(a.employees, logger)

	a.router = api.NewServer(logger)
	api.NewHandler(svc, logger).Register(a.router.Group(api.BasePath))

	a.router.GET("/health", healthHandler)
	a.router.GET("/ready", readyHandler(a.store, upstream.Throttle()))
	a.router.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	a.router.POST("/admin/cache/invalidate", invalidateHandler(a.employees))

	return a, nil
}

func run(ctx context.Context, cfg config) error {
	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.Pretty = cfg.LogPretty
	logCfg.Service = "employee-api"
	logger := logging.Setup(logCfg)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to start")
		return err
	}
	defer a.Close()

	addr := ":" + strconv.Itoa(cfg.Port)
	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", addr).
			Str("upstream", cfg.UpstreamURL).
			Str("user_agent", cfg.UserAgent).
			Bool("redis", cfg.RedisAddr != "").
			Msg("Starting employee API server")
		if err := a.router.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("Server failed")
			return err
		}
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.router.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func healthHandler(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

type pinger interface {
	Ping(ctx context.Context) error
}

// readyHandler reports ready when the cache store answers and no upstream
// cooldown is active. Upstream itself is not probed.
func readyHandler(store cache.Store, throttle *ratelimit.Tracker) echo.HandlerFunc {
	return func(c echo.Context) error {
		if p, ok := store.(pinger); ok {
			ctx, cancel := context.WithTimeout(c.Request().Context(), readyTimeout)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				return c.String(http.StatusServiceUnavailable, "cache store unavailable")
			}
		}

		if throttle.GetState().IsBlocked() {
			return c.String(http.StatusServiceUnavailable, "upstream cooldown active")
		}

		return c.String(http.StatusOK, "OK")
	}
}

type invalidator interface {
	Invalidate(ctx context.Context) error
}

func invalidateHandler(employees invalidator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := employees.Invalidate(c.Request().Context()); err != nil {
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{
				Status:  http.StatusInternalServerError,
				Error:   http.StatusText(http.StatusInternalServerError),
				Message: "cache could not be invalidated",
			})
		}
		return c.NoContent(http.StatusNoContent)
	}
}
