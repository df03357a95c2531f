// Package respond writes the portal's JSON envelope:
//
//	{ "success": bool, "message"?: string, "error"?: string, ...payload }
//
// Failures go through Error, which maps typed failures to one status and a
// stable code. 5xx bodies carry a generic message and the correlation id
// only; the cause is logged, never echoed.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/limits"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Payload is merged into the top level of the envelope.
type Payload map[string]any

// JSON writes a success envelope with the given status.
func JSON(w http.ResponseWriter, status int, message string, payload Payload) {
	body := make(map[string]any, len(payload)+2)
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = true
	if message != "" {
		body["message"] = message
	}
	write(w, status, body)
}

// OK writes a 200 success envelope.
func OK(w http.ResponseWriter, payload Payload) {
	JSON(w, http.StatusOK, "", payload)
}

// Error writes a failure envelope for err.
func Error(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	e := apperr.From(err)
	status := apperr.Status(e)

	body := map[string]any{
		"success": false,
		"error":   string(e.Code),
	}

	if status >= http.StatusInternalServerError {
		cid := CorrelationID(r)
		if log != nil {
			log.Error("request failed",
				zap.String("correlation_id", cid),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("code", string(e.Code)),
				zap.Error(e))
		}
		body["message"] = apperr.ErrInternal.Message
		if e.Code == apperr.CodeTimeout {
			body["message"] = apperr.ErrTimeout.Message
		}
		body["correlation_id"] = cid
	} else {
		body["message"] = e.Message
	}

	write(w, status, body)
}

// CorrelationID returns the request id assigned by chi's RequestID
// middleware, or a fresh uuid when the middleware is not mounted.
func CorrelationID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return uuid.NewString()
}

// DecodeJSON reads a JSON body into dst. Malformed bodies are a validation
// failure.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, limits.MaxJSONBody))
	if err := dec.Decode(dst); err != nil {
		return apperr.ErrInvalidField.WithMessage("request body must be valid JSON")
	}
	return nil
}

func write(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
