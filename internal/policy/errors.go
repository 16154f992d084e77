package policy

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("access denied")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("concurrent update conflict")
)

// ValidationError agrupa erros por campo. A chave é o nome JSON do campo.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func NewValidationError(field, msg string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, msg)
	return v
}

// Add mantém a primeira mensagem de cada campo.
func (v *ValidationError) Add(field, msg string) {
	if v.Fields == nil {
		v.Fields = make(map[string]string)
	}
	if _, ok := v.Fields[field]; !ok {
		v.Fields[field] = msg
	}
}

func (v *ValidationError) Empty() bool { return v == nil || len(v.Fields) == 0 }

// OrNil devolve nil quando nenhum campo falhou, evitando interface não-nil com ponteiro nil.
func (v *ValidationError) OrNil() error {
	if v.Empty() {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type deniedError struct {
	reason string
}

func (e *deniedError) Error() string { return e.reason }
func (e *deniedError) Unwrap() error { return ErrForbidden }

// Deny devolve um ErrForbidden com mensagem exibível ao usuário.
func Deny(reason string) error {
	return &deniedError{reason: reason}
}

// FieldErrors extrai o mapa de campos, se err for (ou embrulhar) um ValidationError.
func FieldErrors(err error) (map[string]string, bool) {
	var v *ValidationError
	if errors.As(err, &v) && !v.Empty() {
		return v.Fields, true
	}
	return nil, false
}
