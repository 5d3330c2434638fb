package controller

import (
	"errors"
	"net/http"

	"github.com/Evgen-Mutagen/finances/internal/core"
	"github.com/Evgen-Mutagen/finances/internal/util/logger"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Kind    string            `json:"kind"`
	Message string            `json:"message"`
	Fields  []core.FieldError `json:"fields,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// WriteError renders err as an ErrorResponse. Errors outside the domain
// kinds are logged and reported as a bare internal error.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	kind := core.Kind(err)
	resp := ErrorResponse{Kind: kind, Message: err.Error()}

	var verr *core.ValidationError
	if errors.As(err, &verr) {
		resp.Message = "validation failed"
		resp.Fields = verr.Fields
	}

	if kind == "internal" {
		logger.Log.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		resp.Message = "internal server error"
	}

	render.Status(r, statusFor(kind))
	render.JSON(w, r, resp)
}

func statusFor(kind string) int {
	switch kind {
	case "validation":
		return http.StatusBadRequest
	case "not_found":
		return http.StatusNotFound
	case "conflict":
		return http.StatusConflict
	case "unauthorized":
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return core.NewValidationError("body", "invalid request format")
	}
	return nil
}
