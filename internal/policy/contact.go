package policy

import (
	"context"
	"time"

	"github.com/KromaEnergia/api-crm/internal/models"
)

// Lookup responde se a linha referenciada existe (e, para usuários, está ativa).
type Lookup func(ctx context.Context, id uint) (bool, error)

// Scope é o filtro de visibilidade aplicado às consultas de listagem.
type Scope struct {
	all     bool
	ownerID uint
}

// AllContacts é o escopo sem restrição, usado nas telas administrativas.
func AllContacts() Scope { return Scope{all: true} }

func VisibilityScope(c Caller) Scope {
	if IsManager(c) {
		return Scope{all: true}
	}
	if c.Authenticated() {
		return Scope{ownerID: c.UserID}
	}
	return Scope{}
}

func (s Scope) All() bool { return s.all }

// OwnerID devolve o dono obrigatório quando o escopo é restrito.
func (s Scope) OwnerID() (uint, bool) {
	if s.all || s.ownerID == 0 {
		return 0, false
	}
	return s.ownerID, true
}

// DenyAll é verdadeiro para chamadores sem identidade.
func (s Scope) DenyAll() bool { return !s.all && s.ownerID == 0 }

func (s Scope) Allows(ownerID uint) bool {
	if s.all {
		return true
	}
	return s.ownerID != 0 && s.ownerID == ownerID
}

func CanAccess(c Caller, contact models.Contact) bool {
	if IsManager(c) {
		return true
	}
	return c.Authenticated() && contact.AssignedToID == c.UserID
}

// IsValidAssignment aceita apenas usuários existentes e ativos.
func IsValidAssignment(ctx context.Context, activeUser Lookup, candidate uint) (bool, error) {
	if candidate == 0 {
		return false, nil
	}
	return activeUser(ctx, candidate)
}

// CheckAssignment é a forma de IsValidAssignment que devolve erro de campo.
func CheckAssignment(ctx context.Context, activeUser Lookup, candidate uint) error {
	ok, err := IsValidAssignment(ctx, activeUser, candidate)
	if err != nil {
		return err
	}
	if !ok {
		return NewValidationError("assignedToId", "Invalid user assignment.")
	}
	return nil
}

// ResolveOwnerOnCreate força o próprio vendedor como dono; gerente mantém o pedido.
func ResolveOwnerOnCreate(c Caller, requested uint) uint {
	if IsManager(c) {
		return requested
	}
	return c.UserID
}

// ResolveOwnerOnUpdate: vendedor não reatribui; gerente pode.
func ResolveOwnerOnUpdate(c Caller, requested, existing uint) uint {
	if IsManager(c) {
		return requested
	}
	return existing
}

// StatusTransition troca o status se ele existir. Qualquer transição é permitida.
func StatusTransition(ctx context.Context, statusExists Lookup, contact *models.Contact, newStatusID uint, now time.Time) error {
	ok := false
	if newStatusID != 0 {
		var err error
		if ok, err = statusExists(ctx, newStatusID); err != nil {
			return err
		}
	}
	if !ok {
		return NewValidationError("statusId", "Invalid status.")
	}
	contact.StatusID = newStatusID
	contact.Status = nil
	contact.UpdatedAt = now
	return nil
}
