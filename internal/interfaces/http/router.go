package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lawglot/lawglot/internal/config"
	"github.com/lawglot/lawglot/internal/infrastructure/monitoring/logging"
)

// NewRouter assembles the gin engine: middleware, the API routes, the health
// probe, and the metrics exposition.  metricsHandler may be nil, in which
// case no /metrics route is registered.
func NewRouter(cfg config.ServerConfig, handler *Handler, metricsHandler http.Handler, logger logging.Logger) *gin.Engine {
	gin.SetMode(ginMode(cfg.Mode))

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestID())
	engine.Use(RequestLogging(logger))
	engine.Use(CORS())

	engine.GET("/healthz", handler.Health)
	if metricsHandler != nil {
		engine.GET("/metrics", gin.WrapH(metricsHandler))
	}

	v1 := engine.Group("/api/v1")
	{
		v1.POST("/translate", handler.Translate)
	}
	return engine
}

func ginMode(mode string) string {
	switch mode {
	case "debug":
		return gin.DebugMode
	case "test":
		return gin.TestMode
	default:
		return gin.ReleaseMode
	}
}
