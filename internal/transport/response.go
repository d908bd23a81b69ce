package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"orderdesk-be/internal/apperror"
	"orderdesk-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// Response is the JSON envelope of every API response.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Response{Data: data})
}

// WriteError maps err onto the error envelope. Internal causes are logged
// and never written to the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperror.From(err)
	status := apperror.HTTPStatus(appErr)

	if appErr.Kind == apperror.KindInternal {
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(errors.Unwrap(appErr)),
		)
	}

	WriteJSON(w, status, Response{Error: &ErrorResponse{
		Code:      string(appErr.Kind),
		Message:   appErr.Message,
		Field:     appErr.Field,
		RequestID: logger.RequestIDFrom(r.Context()),
	}})
}

// decodeJSON reads a single JSON object from the body into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return apperror.ValidationField(typeErr.Field, fmt.Sprintf("must be %s", typeErr.Type)).Wrap(err)
		}
		return apperror.Validation("malformed JSON body").Wrap(err)
	}
	if dec.More() {
		return apperror.Validation("body must contain a single JSON object")
	}
	return nil
}

func parseUUID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.ValidationField(field, "must be a valid UUID").Wrap(err)
	}
	return id, nil
}
