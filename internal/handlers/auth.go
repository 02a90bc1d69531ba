package handlers

import (
	"net/http"

	"github.com/anonto42/cookbook/backend/internal/middleware"
	"github.com/anonto42/cookbook/backend/internal/models"
	"github.com/anonto42/cookbook/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles token login/logout HTTP requests
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterAuthRoutes registers authentication routes. loginLimit guards the
// credential endpoints and may be nil.
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, loginLimit echo.MiddlewareFunc) {
	var guards []echo.MiddlewareFunc
	if loginLimit != nil {
		guards = append(guards, loginLimit)
	}
	g.POST("/token/login", h.Login, guards...)
	g.POST("/token/logout", h.Logout, middleware.RequireAuth)
	if h.authService.FirebaseEnabled() {
		g.POST("/token/firebase", h.FirebaseLogin, guards...)
	}
}

type tokenResponse struct {
	AuthToken string `json:"auth_token"`
}

// Login exchanges email and password for a token
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return HandleServiceError(err)
	}
	return c.JSON(http.StatusOK, tokenResponse{AuthToken: token})
}

// Logout revokes the token the request was authenticated with
func (h *AuthHandler) Logout(c echo.Context) error {
	token, _ := c.Get(middleware.TokenKey).(string)
	if err := h.authService.Logout(c.Request().Context(), token); err != nil {
		return HandleServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// FirebaseLogin exchanges a Firebase ID token for a local token
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.authService.LoginWithFirebase(c.Request().Context(), req.IDToken)
	if err != nil {
		return HandleServiceError(err)
	}
	return c.JSON(http.StatusOK, tokenResponse{AuthToken: token})
}
