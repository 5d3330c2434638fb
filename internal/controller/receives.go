package controller

import (
	"net/http"

	"github.com/Evgen-Mutagen/finances/internal/core"
	"github.com/Evgen-Mutagen/finances/internal/model"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type ReceiveController struct {
	ledgerService core.LedgerService
	logger        *zap.Logger
}

func NewReceiveController(ledgerService core.LedgerService, logger *zap.Logger) *ReceiveController {
	return &ReceiveController{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

func (c *ReceiveController) Create(w http.ResponseWriter, r *http.Request) {
	var request model.CreateReceiveInput
	if err := decodeJSON(r, &request); err != nil {
		WriteError(w, r, err)
		return
	}

	receive, err := c.ledgerService.CreateReceive(r.Context(), request)
	if err != nil {
		c.logger.Warn("Create receive failed",
			zap.String("actor", actorID(r)),
			zap.String("user_id", request.UserID),
			zap.Error(err))
		WriteError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, receive)
}

func (c *ReceiveController) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	receives, err := c.ledgerService.ListReceives(r.Context(), query.Get("user_id"), query.Get("date"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	render.JSON(w, r, receives)
}

func (c *ReceiveController) ListAll(w http.ResponseWriter, r *http.Request) {
	receives, err := c.ledgerService.ListAllReceives(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	render.JSON(w, r, receives)
}

func (c *ReceiveController) Get(w http.ResponseWriter, r *http.Request) {
	receive, err := c.ledgerService.GetReceive(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	render.JSON(w, r, receive)
}

func (c *ReceiveController) Update(w http.ResponseWriter, r *http.Request) {
	var request model.UpdateReceiveInput
	if err := decodeJSON(r, &request); err != nil {
		WriteError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	receive, err := c.ledgerService.UpdateReceive(r.Context(), id, request)
	if err != nil {
		c.logger.Warn("Update receive failed",
			zap.String("actor", actorID(r)),
			zap.String("receive_id", id),
			zap.Error(err))
		WriteError(w, r, err)
		return
	}
	render.JSON(w, r, receive)
}

func (c *ReceiveController) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := c.ledgerService.DeleteReceive(r.Context(), id); err != nil {
		c.logger.Warn("Delete receive failed",
			zap.String("actor", actorID(r)),
			zap.String("receive_id", id),
			zap.Error(err))
		WriteError(w, r, err)
		return
	}
	render.JSON(w, r, MessageResponse{Message: "receive deleted"})
}

func actorID(r *http.Request) string {
	if identity, ok := core.IdentityFromContext(r.Context()); ok {
		return identity.UserID
	}
	return ""
}
