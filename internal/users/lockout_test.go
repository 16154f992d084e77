package users

import (
	"testing"
	"time"

	"github.com/KromaEnergia/api-crm/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRegisterFailureLocksOnFifth(t *testing.T) {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	u := &models.User{}
	for i := 1; i < MaxFailedAttempts; i++ {
		assert.False(t, RegisterFailure(u, now))
	}
	assert.True(t, RegisterFailure(u, now))
	assert.True(t, IsLockedOut(*u, now.Add(LockoutDuration-time.Second)))
	assert.False(t, IsLockedOut(*u, now.Add(LockoutDuration)))

	// falha depois do bloqueio expirado recomeça a contagem
	assert.False(t, RegisterFailure(u, now.Add(LockoutDuration)))
	assert.Nil(t, u.LockoutEnd)
	assert.Equal(t, 1, u.FailedLoginCount)

	ResetFailures(u)
	assert.Zero(t, u.FailedLoginCount)
}
