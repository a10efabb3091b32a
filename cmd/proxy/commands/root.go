package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/florianilch/llm-openai-proxy/internal/app"
	"github.com/florianilch/llm-openai-proxy/internal/observability"
)

// Execute runs the root command with the given context and arguments.
func Execute(ctx context.Context, args []string) error {
	cmd := &cli.Command{
		Name:  "llm-openai-proxy",
		Usage: "translating proxy for the OpenAI Chat Completions, OpenAI Responses, and Anthropic Messages APIs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug|info|warn|error)",
				Value: slog.LevelInfo.String(),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
		},
	}

	return cmd.Run(ctx, args)
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "start the proxy server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format (text|json)",
				Value: string(app.DefaultConfigLogFormat),
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "listen port",
				Value: app.DefaultConfigServerPort,
			},
			&cli.StringFlag{
				Name:  "service-name",
				Usage: "service name reported by / and /health",
				Value: app.DefaultConfigServiceName,
			},
			&cli.StringFlag{
				Name:  "service-version",
				Usage: "service version reported by /",
				Value: app.DefaultConfigServiceVersion,
			},
			&cli.StringFlag{
				Name:  "models",
				Usage: "comma-separated model ids listed by /v1/models in echo mode",
				Value: app.DefaultConfigModels,
			},
			&cli.StringFlag{
				Name:  "custom-llm-url",
				Usage: "upstream Chat Completions base URL; empty enables echo mode",
			},
			&cli.StringFlag{
				Name:  "custom-llm-key",
				Usage: "bearer key sent to the upstream, if any",
			},
			&cli.StringFlag{
				Name:  "proxy-key",
				Usage: "key callers must present; empty disables authentication",
			},
		},
		Action: serveAction,
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd.String("config"), cmd, os.Environ)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := observability.Instrument(cfg.LogLevel, string(cfg.LogFormat)); err != nil {
		return fmt.Errorf("failed to set up observability layer: %w", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}

	slog.InfoContext(ctx, "starting")

	if err := application.Start(ctx); err != nil {
		return fmt.Errorf("app failed to start: %w", err)
	}

	slog.InfoContext(ctx, "stopped gracefully")
	return nil
}
