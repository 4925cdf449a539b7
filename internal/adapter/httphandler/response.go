package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/service"
)

type statusCoder interface {
	StatusCode() int
}

type publicMessager interface {
	PublicMessage() string
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to write response body", "err", err)
	}
}

// writeError maps a service error to a JSON error response. Backend
// conflicts and validation rejections keep their status, other backend
// failures respond 502.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "status", status, "err", err)
	} else {
		log.Warn("request rejected", "status", status, "err", err)
	}
	writeJSON(w, log, status, body)
}

func errorResponse(err error) (int, errorBody) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, errorBody{Error: verr.Message, Fields: verr.Fields}
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: publicMessage(err, "not found")}
	case errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest, errorBody{Error: domain.ErrInvalidStatus.Error()}
	case errors.Is(err, service.ErrNoImages):
		return http.StatusBadRequest, errorBody{Error: service.ErrNoImages.Error()}
	case errors.Is(err, service.ErrUploadsDisabled):
		return http.StatusServiceUnavailable, errorBody{Error: service.ErrUploadsDisabled.Error()}
	case errors.Is(err, service.ErrCatalogNotLoaded):
		return http.StatusServiceUnavailable, errorBody{Error: "catalog is loading, retry later"}
	case errors.Is(err, domain.ErrImageUpload):
		return http.StatusBadGateway, errorBody{Error: "image upload failed"}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, errorBody{Error: "backend timeout"}
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		switch code := sc.StatusCode(); code {
		case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
			return code, errorBody{Error: publicMessage(err, http.StatusText(code))}
		}
		return http.StatusBadGateway, errorBody{Error: publicMessage(err, "backend failure")}
	}
	return http.StatusInternalServerError, errorBody{Error: "internal error"}
}

func publicMessage(err error, fallback string) string {
	var pm publicMessager
	if errors.As(err, &pm) && pm.PublicMessage() != "" {
		return pm.PublicMessage()
	}
	return fallback
}

func decodeJSON(w http.ResponseWriter, r *http.Request, log *slog.Logger, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Warn("failed to parse JSON", "err", err)
		writeJSON(w, log, http.StatusBadRequest, errorBody{Error: "invalid JSON data"})
		return false
	}
	return true
}
