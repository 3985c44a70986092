package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"gorm.io/gorm"

	"github.com/Utkarsh-Singh-byte/agro-tech/internal/config"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/interfaces/httpserver/handlers"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/interfaces/httpserver/middlewares"
	v1 "github.com/Utkarsh-Singh-byte/agro-tech/internal/interfaces/httpserver/routes/v1"
)

// HttpServer wraps the gin engine with graceful shutdown helpers.
type HttpServer struct {
	cfg    *config.Config
	engine *gin.Engine
	log    zerolog.Logger
	db     *gorm.DB
}

// New constructs the HTTP server with default middleware and routes. db may
// be nil in tests; readiness then skips the database probe.
func New(cfg *config.Config, log zerolog.Logger, db *gorm.DB, handlerProvider *handlers.Provider) *HttpServer {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middlewares.RequestID(),
		middlewares.CORSMiddleware(),
		middlewares.LoggingMiddleware(log),
		middlewares.MetricsMiddleware(),
	)

	server := &HttpServer{
		cfg:    cfg,
		engine: engine,
		log:    log,
		db:     db,
	}

	routeProvider := v1.NewRoutes(handlerProvider)
	server.registerCoreRoutes(routeProvider)

	return server
}

// Run starts the HTTP listener and handles graceful shutdown via context cancellation.
func (s *HttpServer) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.cfg.Addr(),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr()).Msg("assistant HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.log.Info().Msg("context cancelled, shutting down HTTP server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// Engine exposes the underlying gin engine for tests.
func (s *HttpServer) Engine() *gin.Engine {
	return s.engine
}

func (s *HttpServer) registerCoreRoutes(routes *v1.Routes) {
	s.engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": s.cfg.ServiceName, "status": "ok"})
	})
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	s.engine.GET("/readyz", func(c *gin.Context) {
		if s.db != nil {
			sqlDB, err := s.db.DB()
			if err == nil {
				err = sqlDB.PingContext(c.Request.Context())
			}
			if err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.Register(s.engine)
}
