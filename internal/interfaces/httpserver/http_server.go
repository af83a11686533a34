package httpserver

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"pirizgpt/internal/config"
	middleware "pirizgpt/internal/interfaces/httpserver/middlewares"
	chatroute "pirizgpt/internal/interfaces/httpserver/routes/chat"
	historyroute "pirizgpt/internal/interfaces/httpserver/routes/history"
)

type HTTPServer struct {
	engine       *gin.Engine
	chatRoute    *chatroute.ChatRoute
	historyRoute *historyroute.HistoryRoute
	config       *config.Config
}

func NewHTTPServer(
	cfg *config.Config,
	logger zerolog.Logger,
	chatRoute *chatroute.ChatRoute,
	historyRoute *historyroute.HistoryRoute,
) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)
	server := &HTTPServer{
		engine:       gin.New(),
		chatRoute:    chatRoute,
		historyRoute: historyRoute,
		config:       cfg,
	}

	server.engine.Use(middleware.RequestID())
	server.engine.Use(middleware.LoggingMiddleware(logger))
	server.engine.Use(middleware.CORSMiddleware())
	server.engine.Use(middleware.MetricsMiddleware())

	server.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	server.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Static entry page
	server.engine.StaticFile("/", filepath.Join(cfg.StaticDir, "index.html"))

	return server
}

// Engine exposes the underlying gin engine, mainly for tests.
func (httpServer *HTTPServer) Engine() *gin.Engine {
	return httpServer.engine
}

// RegisterRoutes binds the API routes onto the engine.
func (httpServer *HTTPServer) RegisterRoutes() {
	root := httpServer.engine.Group("/")
	httpServer.chatRoute.RegisterRouter(root)
	httpServer.historyRoute.RegisterRouter(root)
}

func (httpServer *HTTPServer) Run() error {
	httpServer.RegisterRoutes()
	if err := httpServer.engine.Run(fmt.Sprintf(":%d", httpServer.config.HTTPPort)); err != nil {
		return err
	}
	return nil
}
