package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/KromaEnergia/api-crm/internal/logger"
	"github.com/KromaEnergia/api-crm/internal/policy"
)

// ErrorBody é o corpo JSON de toda resposta de erro.
type ErrorBody struct {
	Error     string            `json:"error"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// StatusFor mapeia a taxonomia de erros da policy para códigos HTTP.
func StatusFor(err error) int {
	var verr *policy.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, policy.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, policy.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, policy.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, policy.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// WriteError escreve o erro mapeado. Erros internos são logados e a mensagem original não vaza.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	body := ErrorBody{Error: err.Error(), RequestID: logger.RequestID(r.Context())}

	switch status {
	case http.StatusBadRequest:
		body.Error = "validation failed"
		body.Fields, _ = policy.FieldErrors(err)
	case http.StatusUnauthorized:
		body.Error = "not authenticated"
	case http.StatusConflict:
		body.Error = "The record was modified by another user. Please reload and try again."
	case http.StatusInternalServerError:
		logger.WithContext(r.Context()).WithError(err).
			WithField("path", r.URL.Path).Error("erro interno")
		body.Error = "internal server error"
	}
	WriteJSON(w, status, body)
}

// BadRequest responde 400 sem campos (payload malformado, id inválido).
func BadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	WriteJSON(w, http.StatusBadRequest, ErrorBody{Error: msg, RequestID: logger.RequestID(r.Context())})
}

// DecodeJSON lê o corpo e recusa campos desconhecidos.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
