package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jobboard-api/internal/api/middleware"
	"jobboard-api/internal/api/routes"
	"jobboard-api/internal/app"
)

// ErrCrashed is returned by Run when a request handler panicked.
var ErrCrashed = errors.New("server stopped after a panic")

const shutdownTimeout = 10 * time.Second

type Server struct {
	router *gin.Engine
	app    *app.Application // Store the application container
	logger *zap.Logger
	// crashed receives the first recovered panic
	crashed chan any
}

func NewServer(app *app.Application) *Server {
	gin.SetMode(app.Config.Server.Mode)
	router := gin.New()

	s := &Server{
		router:  router,
		app:     app,
		logger:  app.Logger,
		crashed: make(chan any, 1),
	}

	router.Use(middleware.Recovery(app.Logger, s.onPanic))
	router.Use(middleware.Logger(app.Logger))
	router.Use(secure.New(securityConfig()))

	// --- Configure and Apply CORS Middleware ---
	app.Logger.Info("Configuring CORS", zap.Strings("origins", app.Config.CORS.AllowedOrigins))
	router.Use(cors.New(corsConfig(app.Config.CORS.AllowedOrigins)))

	if app.Config.RateLimit.Enabled && app.RateLimiter != nil {
		router.Use(middleware.RateLimit(app.RateLimiter, app.Config.RateLimit.Requests, app.Config.RateLimit.Window, app.Logger))
	}

	_ = router.SetTrustedProxies(nil) // Remove the gin warning about untrusted proxies

	routes.RegisterRoutes(router, app)
	return s
}

func corsConfig(allowedOrigins []string) cors.Config {
	return cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true, // the session cookie travels with requests
		MaxAge:           12 * time.Hour,
	}
}

// securityConfig sets the browser hardening headers sent with every response.
// HSTS is only emitted for requests that arrived over TLS.
func securityConfig() secure.Config {
	return secure.Config{
		STSSeconds:           int64((365 * 24 * time.Hour).Seconds()),
		STSIncludeSubdomains: true,
		FrameDeny:            true,
		ContentTypeNosniff:   true,
		BrowserXssFilter:     true,
		IENoOpen:             true,
		ReferrerPolicy:       "strict-origin-when-cross-origin",
		SSLProxyHeaders:      map[string]string{"X-Forwarded-Proto": "https"},
	}
}

// onPanic asks Run to stop; only the first panic is kept.
func (s *Server) onPanic(recovered any) {
	select {
	case s.crashed <- recovered:
	default:
	}
}

// Handler exposes the configured engine.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled or a handler panics, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.app.Config.Server.Host, s.app.Config.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if t := s.app.Config.Server.RequestTimeout; t > 0 {
		httpServer.ReadTimeout = t
		httpServer.WriteTimeout = t
	}

	s.logger.Info("Server starting", zap.String("addr", addr))
	listenErr := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
		close(listenErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		s.logger.Info("Shutdown signal received")
	case err, ok := <-listenErr:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case recovered := <-s.crashed:
		s.logger.Error("Shutting down after unhandled panic", zap.Any("panic", recovered))
		runErr = ErrCrashed
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Join(runErr, fmt.Errorf("graceful shutdown failed: %w", err))
	}
	<-listenErr
	s.logger.Info("Server stopped")
	return runErr
}
