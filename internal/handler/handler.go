package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"product-manager/internal/middleware"
	"product-manager/internal/model"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError translates err into a status code and a model.ErrorResponse.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	status, resp := errorResponse(err)
	resp.CorrelationID = chimiddleware.GetReqID(r.Context())

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Int("status", status).
		Str("path", r.URL.Path).
		Str("request_id", resp.CorrelationID).
		Msg("handler error")

	writeJSON(w, status, resp)
}

func errorResponse(err error) (int, model.ErrorResponse) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, model.ErrorResponse{
			Error:      model.ErrCodeValidation,
			Message:    verr.Error(),
			Violations: verr.Violations,
		}
	}

	var rerr *model.ReplicationError
	if errors.As(err, &rerr) {
		return http.StatusServiceUnavailable, model.ErrorResponse{
			Error:   model.ErrCodeReplication,
			Message: rerr.Error(),
		}
	}

	var derr *model.DomainError
	if errors.As(err, &derr) {
		return statusFor(err), model.ErrorResponse{Error: derr.Code, Message: derr.Message}
	}

	return http.StatusInternalServerError, model.ErrorResponse{
		Error:   model.ErrCodeInternalError,
		Message: "internal server error",
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrArgument):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, model.ErrUnauthorised):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a single JSON document from the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return model.NewDomainError(model.ErrArgument, model.ErrCodeInvalidJSON, "request body is required")
		}
		return model.NewDomainError(model.ErrArgument, model.ErrCodeInvalidJSON, fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}

// callerEmail returns the authenticated manufacturer's email.
func callerEmail(r *http.Request) (string, error) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok || strings.TrimSpace(claims.Email) == "" {
		return "", model.NewUnauthorisedError("authentication required")
	}
	return claims.Email, nil
}

// sameEmail compares exactly after trimming, the same rule IsOwnedBy and the
// manufacturer lookup apply.
func sameEmail(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
