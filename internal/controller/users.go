package controller

import (
	"net/http"

	"github.com/Evgen-Mutagen/finances/internal/core"
	"github.com/Evgen-Mutagen/finances/internal/model"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type UserController struct {
	userService core.UserService
	logger      *zap.Logger
}

func NewUserController(userService core.UserService, logger *zap.Logger) *UserController {
	return &UserController{
		userService: userService,
		logger:      logger,
	}
}

func (c *UserController) Create(w http.ResponseWriter, r *http.Request) {
	var request model.CreateUserInput
	if err := decodeJSON(r, &request); err != nil {
		WriteError(w, r, err)
		return
	}

	user, err := c.userService.CreateUser(r.Context(), request)
	if err != nil {
		c.logger.Warn("Registration failed",
			zap.String("email", request.Email),
			zap.Error(err))
		WriteError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, user)
}

func (c *UserController) List(w http.ResponseWriter, r *http.Request) {
	users, err := c.userService.ListUsers(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	render.JSON(w, r, users)
}

func (c *UserController) Get(w http.ResponseWriter, r *http.Request) {
	user, err := c.userService.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	render.JSON(w, r, user)
}

func (c *UserController) GetByEmail(w http.ResponseWriter, r *http.Request) {
	user, err := c.userService.GetUserByEmail(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	render.JSON(w, r, user)
}

func (c *UserController) Update(w http.ResponseWriter, r *http.Request) {
	var request model.UpdateUserInput
	if err := decodeJSON(r, &request); err != nil {
		WriteError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	user, err := c.userService.UpdateUser(r.Context(), id, request)
	if err != nil {
		c.logger.Warn("User update failed",
			zap.String("user_id", id),
			zap.Error(err))
		WriteError(w, r, err)
		return
	}
	render.JSON(w, r, user)
}

func (c *UserController) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := c.userService.DeleteUser(r.Context(), id); err != nil {
		WriteError(w, r, err)
		return
	}
	render.JSON(w, r, MessageResponse{Message: "user deleted"})
}
