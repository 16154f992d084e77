package users

import (
	"time"

	"github.com/KromaEnergia/api-crm/internal/models"
)

const (
	MaxFailedAttempts = 5
	LockoutDuration   = 15 * time.Minute
)

func IsLockedOut(u models.User, now time.Time) bool {
	return u.LockoutEnd != nil && now.Before(*u.LockoutEnd)
}

// RegisterFailure conta a falha e bloqueia ao atingir MaxFailedAttempts.
// Devolve true quando a conta acabou de ser bloqueada.
func RegisterFailure(u *models.User, now time.Time) bool {
	if u.LockoutEnd != nil && !now.Before(*u.LockoutEnd) {
		// bloqueio anterior expirou
		u.LockoutEnd = nil
		u.FailedLoginCount = 0
	}
	u.FailedLoginCount++
	if u.FailedLoginCount >= MaxFailedAttempts {
		end := now.Add(LockoutDuration)
		u.LockoutEnd = &end
		u.FailedLoginCount = 0
		return true
	}
	return false
}

func ResetFailures(u *models.User) {
	u.FailedLoginCount = 0
	u.LockoutEnd = nil
}
