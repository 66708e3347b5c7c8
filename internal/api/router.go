package api

import (
	"io/fs"
	"net/http"
	"path"
	"strings"

	"multistore/pkg/metrics"
	"multistore/pkg/middleware"
	"multistore/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// RouterConfig collects what NewRouter wires together.
type RouterConfig struct {
	Log      *zap.Logger
	Metrics  *metrics.HTTPMetrics
	Assets   fs.FS // browser forms; nil disables static serving
	Handlers []*UserHandler

	// APIKeyHeader is reported by /health so the forms know which header
	// the guarded backends expect.
	APIKeyHeader string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewHTTPMetrics("api-service")
	}
	registerValidators(cfg.Log)

	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(middleware.CorrelationID(cfg.Log))
	r.Use(cfg.Metrics.Middleware())

	// Health check
	r.GET("/health", healthHandler(cfg.Handlers, cfg.Metrics, cfg.APIKeyHeader))

	r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// User routes, one group per backend
	api := r.Group("/api")
	for _, h := range cfg.Handlers {
		h.metrics = cfg.Metrics
		h.Register(api.Group("/" + h.Store.Name()))
	}

	r.NoRoute(noRoute(cfg.Assets))
	return r
}

func registerValidators(log *zap.Logger) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		log.Warn("gin validator engine is not go-playground; notblank rule not registered")
		return
	}
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		log.Error("failed to register notblank validator", zap.Error(err))
	}
}

func healthHandler(handlers []*UserHandler, m *metrics.HTTPMetrics, keyHeader string) gin.HandlerFunc {
	return func(c *gin.Context) {
		backends := make(map[string]string, len(handlers))
		for _, h := range handlers {
			ready := h.Store.Ready()
			m.SetBackendReady(h.Store.Name(), ready)
			if ready {
				backends[h.Store.Name()] = "connected"
			} else {
				backends[h.Store.Name()] = "disconnected"
			}
		}
		data := gin.H{"status": "ok", "backends": backends}
		if keyHeader != "" {
			data["apiKeyHeader"] = keyHeader
		}
		c.JSON(http.StatusOK, models.OK(data))
	}
}

// noRoute serves the static forms and answers unknown API paths with JSON.
func noRoute(assets fs.FS) gin.HandlerFunc {
	var files http.Handler
	if assets != nil {
		files = http.FileServer(http.FS(assets))
	}

	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if files == nil || strings.HasPrefix(p, "/api/") || p == "/api" || !isRead(c.Request.Method) {
			c.JSON(http.StatusNotFound, models.Fail("Route not found"))
			return
		}

		name := strings.TrimPrefix(path.Clean(p), "/")
		if name == "" {
			name = "."
		}
		if _, err := fs.Stat(assets, name); err != nil {
			c.JSON(http.StatusNotFound, models.Fail("Route not found"))
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	}
}

func isRead(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}
