package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dyluth/burrow/internal/auth"
	"github.com/dyluth/burrow/pkg/taskboard"
)

// credentialsRequest carries a username/password pair for register and login.
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// createTodoRequest is the body for POST /todos.
type createTodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// updateTodoRequest is the body for PUT /todos/:id. Pointer fields give
// partial-update semantics: absent fields leave the record untouched.
type updateTodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// handleRegister creates a new account.
// POST /api/register {username, password} -> 201 user
func (s *Server) handleRegister(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.Username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username is required")
	}
	if req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "password is required")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.Logger().Errorf("failed to hash password: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := &taskboard.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		PasswordHash: hash,
		CreatedAtMs:  time.Now().UnixMilli(),
	}

	if err := s.store.CreateUser(c.Request().Context(), user); err != nil {
		if errors.Is(err, taskboard.ErrUsernameTaken) {
			return echo.NewHTTPError(http.StatusConflict, "username already taken")
		}
		c.Logger().Errorf("failed to create user: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusCreated, user)
}

// handleLogin verifies credentials and issues an identity token. The token
// is returned in the body for API clients and set as a cookie for the
// browser surface.
// POST /api/login {username, password} -> 200 {token}
func (s *Server) handleLogin(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, err := s.store.GetUserByUsername(c.Request().Context(), req.Username)
	if err != nil {
		if taskboard.IsNotFound(err) {
			// Same response as a wrong password: never confirm usernames
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
		}
		c.Logger().Errorf("failed to look up user: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		c.Logger().Errorf("failed to issue token: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	auth.SetCookie(c, token, s.tokens.Lifetime())
	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

// handleLogout clears the token cookie. Tokens themselves stay valid until
// expiry; there is no server-side revocation list.
// POST /api/logout -> 200 {message}
func (s *Server) handleLogout(c echo.Context) error {
	auth.ClearCookie(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

// identity returns the authenticated identity or a 401 error. The bearer
// middleware already guarantees one on the API surface; on the cookie
// surface anonymous requests reach the handler and are rejected here.
func (s *Server) identity(c echo.Context) (*auth.Identity, error) {
	ident, ok := auth.IdentityFrom(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing credentials")
	}
	return ident, nil
}

// todoID parses and validates the :id path parameter.
func todoID(c echo.Context) (string, error) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid todo id")
	}
	return id, nil
}

// handleListTodos returns all of the caller's todos, newest first.
// GET /todos -> 200 [todo]
func (s *Server) handleListTodos(c echo.Context) error {
	ident, err := s.identity(c)
	if err != nil {
		return err
	}

	todos, err := s.store.ListTodos(c.Request().Context(), ident.UserID)
	if err != nil {
		c.Logger().Errorf("failed to list todos: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, todos)
}

// handleCreateTodo creates a todo owned by the caller.
// POST /todos {title, description?} -> 201 todo
func (s *Server) handleCreateTodo(c echo.Context) error {
	ident, err := s.identity(c)
	if err != nil {
		return err
	}

	var req createTodoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}

	now := time.Now().UnixMilli()
	todo := &taskboard.Todo{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     ident.UserID,
		CreatedAtMs: now,
		UpdatedAtMs: now,
	}

	if err := s.store.CreateTodo(c.Request().Context(), todo); err != nil {
		c.Logger().Errorf("failed to create todo: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusCreated, todo)
}

// handleUpdateTodo applies a partial update to an owner-scoped todo.
// PUT /todos/:id {title?, description?, completed?} -> 200 todo
func (s *Server) handleUpdateTodo(c echo.Context) error {
	ident, err := s.identity(c)
	if err != nil {
		return err
	}

	id, err := todoID(c)
	if err != nil {
		return err
	}

	var req updateTodoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.Title != nil && *req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title cannot be empty")
	}

	ctx := c.Request().Context()

	// Owner-scoped load: a foreign-owned id 404s exactly like a missing one
	todo, err := s.store.GetTodo(ctx, ident.UserID, id)
	if err != nil {
		if taskboard.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "todo not found")
		}
		c.Logger().Errorf("failed to load todo: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	// Absent fields stay untouched
	if req.Title != nil {
		todo.Title = *req.Title
	}
	if req.Description != nil {
		todo.Description = *req.Description
	}
	if req.Completed != nil {
		todo.Completed = *req.Completed
	}
	todo.UpdatedAtMs = time.Now().UnixMilli()

	if err := s.store.UpdateTodo(ctx, todo); err != nil {
		c.Logger().Errorf("failed to update todo: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, todo)
}

// handleDeleteTodo removes an owner-scoped todo.
// DELETE /todos/:id -> 200 {message}
func (s *Server) handleDeleteTodo(c echo.Context) error {
	ident, err := s.identity(c)
	if err != nil {
		return err
	}

	id, err := todoID(c)
	if err != nil {
		return err
	}

	if err := s.store.DeleteTodo(c.Request().Context(), ident.UserID, id); err != nil {
		if taskboard.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "todo not found")
		}
		c.Logger().Errorf("failed to delete todo: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "todo deleted"})
}

// handleMarkTodoRead sets read=true on an owner-scoped todo. Idempotent.
// PATCH /todos/:id/read -> 200 todo
func (s *Server) handleMarkTodoRead(c echo.Context) error {
	ident, err := s.identity(c)
	if err != nil {
		return err
	}

	id, err := todoID(c)
	if err != nil {
		return err
	}

	todo, err := s.store.MarkTodoRead(c.Request().Context(), ident.UserID, id)
	if err != nil {
		if taskboard.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "todo not found")
		}
		c.Logger().Errorf("failed to mark todo read: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, todo)
}

// handleHealth reports server and store health.
// GET /health -> 200 {status, redis}
func (s *Server) handleHealth(c echo.Context) error {
	health := map[string]string{
		"status": "ok",
		"redis":  "ok",
	}

	if err := s.store.Ping(c.Request().Context()); err != nil {
		health["status"] = "degraded"
		health["redis"] = "unreachable"
	}

	return c.JSON(http.StatusOK, health)
}
