// Command whisperbot runs the voice transcription service.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/kbukum/whisperbot/auth"
	"github.com/kbukum/whisperbot/bootstrap"
	"github.com/kbukum/whisperbot/chat"
	"github.com/kbukum/whisperbot/config"
	"github.com/kbukum/whisperbot/httpapi"
	"github.com/kbukum/whisperbot/logger"
	"github.com/kbukum/whisperbot/observability"
	"github.com/kbukum/whisperbot/server"
	"github.com/kbukum/whisperbot/server/endpoint"
	"github.com/kbukum/whisperbot/sse"
	"github.com/kbukum/whisperbot/transcriber"
	"github.com/kbukum/whisperbot/version"
)

const serviceName = "whisperbot"

func main() {
	configFile := pflag.StringP("config", "c", "", "config file (default: search cmd/whisperbot, config, .)")
	envFile := pflag.String("env-file", "", ".env file to load before reading the environment")
	showVersion := pflag.BoolP("version", "v", false, "print version and exit")
	tokenFor := pflag.String("token", "", "print an access token for the given chat id and exit")
	pflag.Parse()

	if *showVersion {
		fmt.Println(version.Get().String())
		return
	}

	var opts []config.LoaderOption
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		opts = append(opts, config.WithEnvFile(*envFile))
	}

	cfg := &AppConfig{}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		fail(err)
	}

	if *tokenFor != "" {
		if err := printToken(cfg, *tokenFor); err != nil {
			fail(err)
		}
		return
	}

	if err := run(context.Background(), cfg); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
	os.Exit(1)
}

func printToken(cfg *AppConfig, chatID string) error {
	cfg.Auth.ApplyDefaults()
	tokens, err := auth.NewService(cfg.Auth)
	if err != nil {
		return err
	}
	token, err := tokens.Issue(chatID)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func run(ctx context.Context, cfg *AppConfig) error {
	if cfg.Version == "" {
		cfg.Version = version.Get().Short()
	}
	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}
	log := app.Logger

	shutdownTelemetry, err := observability.Setup(ctx, cfg.Observability, observability.ServiceInfo{
		Name:        cfg.Name,
		Version:     cfg.Version,
		Environment: cfg.Environment,
	})
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			log.Warn("telemetry shutdown failed", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	metrics, err := observability.NewMetrics(observability.Meter(observability.InstrumentationName))
	if err != nil {
		return err
	}

	hub := sse.NewHub(log, time.Duration(cfg.SSE.KeepAlive)*time.Second)
	store := chat.NewStore(
		chat.WithBroadcaster(hub),
		chat.WithHistory(cfg.API.HistoryLimit),
		chat.WithLogger(log),
	)
	spool, err := httpapi.NewSpool(cfg.API.SpoolDir)
	if err != nil {
		return err
	}

	svc := transcriber.NewService(cfg.Transcriber, store, spool,
		transcriber.WithLogger(log),
		transcriber.WithMetrics(metrics),
	)

	apiOpts := []httpapi.Option{httpapi.WithLogger(log)}
	if cfg.Auth.Enabled() {
		tokens, err := auth.NewService(cfg.Auth)
		if err != nil {
			return err
		}
		apiOpts = append(apiOpts, httpapi.WithAuth(tokens))
	}

	srv := server.New(cfg.HTTP, log)
	srv.ApplyMiddleware()
	router := srv.GinEngine()
	router.GET("/healthz", endpoint.Health(cfg.Name, app.Components.HealthAll))
	router.GET("/livez", endpoint.Liveness())
	router.GET("/version", endpoint.Version())
	httpapi.New(cfg.API, store, svc, spool, hub, apiOpts...).Register(router)

	if err := app.RegisterComponent(sse.NewComponent(hub)); err != nil {
		return err
	}
	if err := app.RegisterComponent(svc); err != nil {
		return err
	}
	if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
		return err
	}

	log.Info("configuration loaded", logger.Fields(
		"version", version.Get().String(),
		"environment", cfg.Environment,
		"auth", cfg.Auth.Describe(),
		"queue_capacity", cfg.Transcriber.QueueCapacity,
	))
	return app.Run(ctx)
}
