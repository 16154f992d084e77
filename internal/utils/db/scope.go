package db

import (
	"github.com/KromaEnergia/api-crm/internal/policy"
	"gorm.io/gorm"
)

// Scoped aplica o escopo de visibilidade a uma consulta. column é a coluna do dono
// (ex.: "contacts.assigned_to_id"). Escopo sem identidade não devolve linhas.
func Scoped(s policy.Scope, column string) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if s.All() {
			return tx
		}
		if owner, ok := s.OwnerID(); ok {
			return tx.Where(column+" = ?", owner)
		}
		return tx.Where("1 = 0")
	}
}
