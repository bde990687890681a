package main

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/isdmx/nexus/api"
	"github.com/isdmx/nexus/auditor"
	"github.com/isdmx/nexus/config"
	"github.com/isdmx/nexus/generator"
	"github.com/isdmx/nexus/llm"
	"github.com/isdmx/nexus/logger"
	"github.com/isdmx/nexus/mcpserver"
	"github.com/isdmx/nexus/metrics"
	"github.com/isdmx/nexus/orchestrator"
	"github.com/isdmx/nexus/prompts"
	"github.com/isdmx/nexus/sandbox"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.New,
			logger.NewFromConfig,
			prompts.Load,

			// Model client shared by the generator and the auditor
			llm.New,

			fx.Annotate(generator.New, fx.As(new(orchestrator.Generator))),
			fx.Annotate(auditor.New, fx.As(new(orchestrator.Auditor))),

			sandbox.NewExecutor,

			metrics.NewRegistry,
			metrics.New,

			fx.Annotate(orchestrator.New, fx.As(new(mcpserver.Runner))),

			mcpserver.New,
			api.New,
		),

		fx.Invoke(startTransport),

		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)

	app.Run()
}

func startTransport(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, mcp *mcpserver.MCPServer, srv *api.Server) {
	switch cfg.Server.Transport {
	case "stdio":
		go func() {
			if err := mcp.ServeStdio(); err != nil {
				log.Error("stdio transport stopped", zap.Error(err))
			}
		}()
	case "http":
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				srv.Start()
				return nil
			},
			OnStop: srv.Shutdown,
		})
	default:
		panic("unsupported transport: " + cfg.Server.Transport)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			_ = log.Sync()
			return nil
		},
	})
}
