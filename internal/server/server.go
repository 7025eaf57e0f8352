// Package server provides the Burrow HTTP server.
//
// Two surfaces expose the same five todo operations:
//   - /api/todos...  - bearer-token authenticated, fails closed with 401
//   - /web/todos...  - cookie authenticated, stale cookies fail open to anonymous
//
// Both return identical JSON bodies; only credential transport and failure
// policy differ. Registration and login live under /api and serve both
// surfaces (login returns the token and sets the cookie).
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dyluth/burrow/internal/auth"
	"github.com/dyluth/burrow/internal/config"
	"github.com/dyluth/burrow/pkg/taskboard"
)

// Server is the Burrow HTTP server.
type Server struct {
	cfg    *config.BurrowConfig
	store  *taskboard.Client
	tokens *auth.TokenService
	gate   *auth.Gate

	echo *echo.Echo
	http *http.Server
}

// New creates a server over an already-constructed store client and token
// service. The store client's lifetime is owned by the caller.
func New(cfg *config.BurrowConfig, store *taskboard.Client, tokens *auth.TokenService) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.HTTPErrorHandler = errorHandler

	s := &Server{
		cfg:    cfg,
		store:  store,
		tokens: tokens,
		gate:   auth.NewGate(tokens, store),
		echo:   e,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")
	api.POST("/register", s.handleRegister)
	api.POST("/login", s.handleLogin)
	api.POST("/logout", s.handleLogout)

	// API surface: bearer token, fail closed
	todos := api.Group("/todos", s.gate.RequireBearer())
	todos.GET("", s.handleListTodos)
	todos.POST("", s.handleCreateTodo)
	todos.PUT("/:id", s.handleUpdateTodo)
	todos.DELETE("/:id", s.handleDeleteTodo)
	todos.PATCH("/:id/read", s.handleMarkTodoRead)

	// Browser surface: cookie, fail open; same handlers, same bodies
	web := s.echo.Group("/web/todos", s.gate.WithCookie())
	web.GET("", s.handleListTodos)
	web.POST("", s.handleCreateTodo)
	web.PUT("/:id", s.handleUpdateTodo)
	web.DELETE("/:id", s.handleDeleteTodo)
	web.PATCH("/:id/read", s.handleMarkTodoRead)

	s.echo.GET("/health", s.handleHealth)
}

// Handler returns the root HTTP handler, used directly by tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s.echo,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s.http.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// errorHandler renders every handler error as {"error": message}.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "internal error"

	if httpErr, ok := err.(*echo.HTTPError); ok {
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
	}

	if writeErr := c.JSON(code, map[string]string{"error": message}); writeErr != nil {
		c.Logger().Error(writeErr)
	}
}
