package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/isdmx/nexus/config"
	"github.com/isdmx/nexus/llm"
	"github.com/isdmx/nexus/mcpserver"
	"github.com/isdmx/nexus/orchestrator"
)

const readHeaderTimeout = 10 * time.Second

// GenerateRequest is the body of POST /generate
type GenerateRequest struct {
	Task string `json:"task" binding:"required"`
}

// ErrorResponse is returned when a run cannot produce a RunResult
type ErrorResponse struct {
	Error string   `json:"error"`
	Logs  []string `json:"logs"`
}

// Server is the HTTP front end of the service
type Server struct {
	logger     *zap.Logger
	runner     mcpserver.Runner
	router     *gin.Engine
	httpServer *http.Server
}

// New builds the router. The MCP streamable transport is mounted at /mcp.
func New(cfg *config.Config, logger *zap.Logger, runner mcpserver.Runner, mcp *mcpserver.MCPServer, reg *prometheus.Registry) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		logger: logger.Named("api"),
		runner: runner,
		router: gin.New(),
	}

	s.router.Use(gin.Recovery(), s.requestLogger(), corsMiddleware())

	s.router.POST("/generate", s.handleGenerate)
	s.router.GET("/health", handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	if mcp != nil {
		s.router.Any("/mcp", gin.WrapH(mcp.HTTPHandler()))
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s
}

// Handler exposes the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens in the background. Listener errors other than a clean shutdown are logged.
func (s *Server) Start() {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()
}

// Shutdown stops accepting requests and waits for in-flight runs until ctx expires
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error(), Logs: []string{}})
		return
	}

	result, err := s.runner.Run(c.Request.Context(), req.Task)
	if err != nil {
		logs := result.Logs
		if logs == nil {
			logs = []string{}
		}
		status := statusFor(err)
		s.logger.Warn("run ended with error",
			zap.Error(err),
			zap.String("run_id", result.RunID),
			zap.Int("status", status))
		c.JSON(status, ErrorResponse{Error: err.Error(), Logs: logs})
		return
	}

	c.JSON(http.StatusOK, result)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, orchestrator.ErrEmptyTask):
		return http.StatusBadRequest
	case errors.Is(err, llm.ErrUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
