package policy

import "github.com/KromaEnergia/api-crm/internal/models"

// Caller identifica quem está executando a operação.
// O valor zero representa um chamador não autenticado.
type Caller struct {
	UserID uint
	Role   models.Role
}

func (c Caller) Authenticated() bool {
	return c.UserID != 0 && c.Role.Valid()
}

func IsManager(c Caller) bool {
	return c.Authenticated() && c.Role == models.RoleManager
}

func CurrentUserID(c Caller) (uint, error) {
	if !c.Authenticated() {
		return 0, ErrUnauthenticated
	}
	return c.UserID, nil
}

// ParseRole converte a entrada do usuário em Role ou devolve erro de campo.
func ParseRole(field, s string) (models.Role, error) {
	r, err := models.ParseRole(s)
	if err != nil {
		return "", NewValidationError(field, "Invalid role specified.")
	}
	return r, nil
}
