package controller

import (
	"net/http"
	"time"

	"github.com/Evgen-Mutagen/finances/internal/core"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

const TokenCookieName = "jwt"

type AuthController struct {
	authService core.AuthService
	tokenTTL    time.Duration
	logger      *zap.Logger
}

func NewAuthController(authService core.AuthService, tokenTTL time.Duration, logger *zap.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		tokenTTL:    tokenTTL,
		logger:      logger,
	}
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := decodeJSON(r, &request); err != nil {
		c.logger.Debug("Invalid request format", zap.Error(err))
		WriteError(w, r, err)
		return
	}

	token, err := c.authService.Login(r.Context(), request.Email, request.Password)
	if err != nil {
		c.logger.Warn("Login failed",
			zap.String("email", request.Email),
			zap.Error(err))
		WriteError(w, r, err)
		return
	}

	c.logger.Info("User logged in successfully",
		zap.String("email", request.Email))

	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(c.tokenTTL),
		HttpOnly: true,
	})
	render.JSON(w, r, LoginResponse{AccessToken: token})
}
