package policy

import (
	"fmt"

	"github.com/KromaEnergia/api-crm/internal/models"
)

// ToggleUserStatus inverte o flag de ativo do alvo. Devolve a mensagem para o usuário.
// O bloqueio de login de contas inativas é feito pelo provedor de identidade.
func ToggleUserStatus(c Caller, target *models.User) (string, error) {
	if !IsManager(c) {
		return "", Deny("Only managers can change user status.")
	}
	if target.ID == c.UserID {
		return "", Deny("You cannot deactivate your own account.")
	}
	target.IsActive = !target.IsActive
	state := "deactivated"
	if target.IsActive {
		state = "activated"
	}
	return fmt.Sprintf("User %s has been %s.", target.FullName(), state), nil
}

// ChangeRole valida o papel pedido e aplica no alvo.
func ChangeRole(c Caller, target *models.User, requested string) (string, error) {
	if !IsManager(c) {
		return "", Deny("Only managers can change roles.")
	}
	role, err := ParseRole("role", requested)
	if err != nil {
		return "", err
	}
	if target.ID == c.UserID {
		return "", Deny("You cannot change your own role.")
	}
	target.Role = role
	return fmt.Sprintf("Role for %s changed to %s.", target.FullName(), role), nil
}
