package models

import (
	"errors"
	"strings"
)

// Role é o papel do usuário no CRM. Só existem dois valores válidos.
type Role string

const (
	RoleManager  Role = "Manager"
	RoleSalesRep Role = "SalesRep"
)

var ErrInvalidRole = errors.New("invalid role")

// Roles lista os papéis aceitos, na ordem exibida nos formulários.
var Roles = []Role{RoleSalesRep, RoleManager}

// ParseRole aceita apenas a allow-list (sem diferenciar maiúsculas).
// "Sales Rep" é aceito como alias de SalesRep.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "manager":
		return RoleManager, nil
	case "salesrep", "sales rep":
		return RoleSalesRep, nil
	}
	return "", ErrInvalidRole
}

func (r Role) Valid() bool {
	return r == RoleManager || r == RoleSalesRep
}

func (r Role) String() string { return string(r) }
