package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/thomas-vilte/mateticket/internal/config"
	"github.com/thomas-vilte/mateticket/internal/httpapi"
	"github.com/thomas-vilte/mateticket/internal/i18n"
	"github.com/thomas-vilte/mateticket/internal/infrastructure/di"
	"github.com/thomas-vilte/mateticket/internal/logger"
	"github.com/thomas-vilte/mateticket/internal/telemetry"
	"github.com/thomas-vilte/mateticket/internal/version"
	"github.com/urfave/cli/v3"
)

const (
	serviceName     = "mateticket"
	shutdownTimeout = 10 * time.Second
)

type runFunc func(ctx context.Context, cfg *config.Config, t *i18n.Translations) error

type ServeCommand struct {
	run runFunc
}

func NewServeCommand() *ServeCommand {
	return &ServeCommand{run: run}
}

func (c *ServeCommand) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	loc := t.Localizer(cfg.Language)
	return &cli.Command{
		Name:  "serve",
		Usage: i18n.GetMessage(loc, "serve_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   i18n.GetMessage(loc, "serve_config_flag", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: i18n.GetMessage(loc, "serve_debug_flag", 0, nil),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"V"},
				Usage:   i18n.GetMessage(loc, "serve_verbose_flag", 0, nil),
				Value:   true,
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: i18n.GetMessage(loc, "serve_host_flag", 0, nil),
				Value: cfg.API.Host,
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   i18n.GetMessage(loc, "serve_port_flag", 0, nil),
				Value:   int64(cfg.API.Port),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			resolved, err := applyFlags(cmd, cfg)
			if err != nil {
				return err
			}
			return c.run(ctx, resolved, t)
		},
	}
}

// applyFlags reloads the configuration when --config is given and layers
// the remaining flags on top.
func applyFlags(cmd *cli.Command, cfg *config.Config) (*config.Config, error) {
	if path := cmd.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cmd.Bool("debug") {
		cfg.Debug = true
	}
	if cmd.IsSet("host") {
		cfg.API.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.API.Port = int(cmd.Int("port"))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Initialize(cfg.Debug, cmd.Bool("verbose"), cfg.LogFormat)
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config, t *i18n.Translations) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing := telemetry.Setup(ctx, serviceName)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn(ctx, "error flushing traces", "error", err)
		}
	}()

	container := di.NewContainer(cfg, t)
	if err := container.Init(ctx); err != nil {
		return err
	}
	defer container.Close()

	go container.RunCacheJanitor(ctx)

	handler, err := container.GetHandler()
	if err != nil {
		return err
	}
	server := httpapi.NewServer(cfg.ListenAddr(), handler.Routes())

	serverErr := make(chan error, 1)
	go func() {
		logger.Info(ctx, "mateticket listening",
			"addr", server.Addr,
			"version", version.Version,
			"ai_enabled", container.AIEnabled(),
			"sla_model", cfg.SLAModel)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	return nil
}
