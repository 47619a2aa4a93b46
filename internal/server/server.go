package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"dadjoke/internal/config"
	"dadjoke/internal/models"
	"dadjoke/internal/service"
	"dadjoke/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type JokeService interface {
	Joke(ctx context.Context) service.Result
	Recent(ctx context.Context) ([]models.Joke, error)
	Persistent() bool
}

type Server struct {
	cfg  config.HTTPConfig
	echo *echo.Echo
	svc  JokeService
}

func New(cfg config.HTTPConfig, svc JokeService) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{cfg: cfg, echo: e, svc: svc}
	s.registerMiddleware()
	s.registerRoutes()

	return s
}

func (s *Server) registerMiddleware() {
	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return p == "/health" || p == "/metrics"
		},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("HTTP request",
				logger.String("method", v.Method),
				logger.String("uri", v.URI),
				logger.Int("status", v.Status),
				logger.Duration("latency", v.Latency),
				logger.String("request_id", v.RequestID),
			)
			return nil
		},
	}))
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAccept},
	}))

	if s.cfg.StaticDir != "" {
		s.echo.Use(middleware.StaticWithConfig(middleware.StaticConfig{
			Root:  s.cfg.StaticDir,
			Index: "index.html",
			HTML5: true,
			Skipper: func(c echo.Context) bool {
				p := c.Request().URL.Path
				return p == "/joke" || strings.HasPrefix(p, "/jokes/") || p == "/health" || p == "/metrics"
			},
		}))
	}
}

func (s *Server) registerRoutes() {
	s.echo.GET("/joke", s.handleJoke)
	s.echo.GET("/jokes/recent", s.handleRecent)
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	logger.Info("HTTP server starting", logger.String("addr", s.cfg.Addr()))
	if err := s.echo.Start(s.cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
