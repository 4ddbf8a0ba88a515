package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"

	"github.com/tendant/simple-share/pkg/simpleshare"
	"github.com/tendant/simple-share/pkg/simpleshare/api"
	"github.com/tendant/simple-share/pkg/simpleshare/config"
)

// HTTPServer wraps the simple-share service for HTTP access
type HTTPServer struct {
	handler    *api.Handler
	config     *config.ServerConfig
	httpLogger *httplog.Logger
}

// NewHTTPServer creates a new HTTP server wrapper
func NewHTTPServer(service simpleshare.Service, serverConfig *config.ServerConfig, logger *slog.Logger) *HTTPServer {
	httpLogger := httplog.NewLogger("simple-share", httplog.Options{
		JSON:            serverConfig.LogFormat == "json",
		LogLevel:        serverConfig.Level(),
		Concise:         !serverConfig.IsProduction(),
		RequestHeaders:  serverConfig.IsProduction(),
		QuietDownRoutes: []string{"/", "/healthz"},
		QuietDownPeriod: 10 * time.Second,
	})

	return &HTTPServer{
		handler: api.NewHandler(service, serverConfig.UploadSecret,
			api.WithMaxUploadSize(serverConfig.MaxUploadSize),
			api.WithLogger(logger),
		),
		config:     serverConfig,
		httpLogger: httpLogger,
	}
}

// Routes sets up the HTTP routes
func (s *HTTPServer) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(s.httpLogger))
	r.Use(middleware.Recoverer)

	if len(s.config.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "HEAD", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "Range"},
			ExposedHeaders:   []string{"Content-Disposition", "Content-Length", "Content-Range"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Mount("/", s.handler.Routes())

	return r
}
