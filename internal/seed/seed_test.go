package seed

import (
	"strings"
	"testing"

	"github.com/KromaEnergia/api-crm/internal/logger"
	"github.com/KromaEnergia/api-crm/internal/models"
	"github.com/KromaEnergia/api-crm/internal/users"
	"github.com/KromaEnergia/api-crm/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUsers struct {
	users.Repository
	created []*models.User
}

func (f *fakeUsers) EmailExists(_ *gorm.DB, email string) (bool, error) {
	for _, u := range f.created {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) Create(_ *gorm.DB, u *models.User) error {
	u.ID = uint(len(f.created) + 1)
	f.created = append(f.created, u)
	return nil
}

func TestDefaultManager_GeneratesAndLogsTemporaryPassword(t *testing.T) {
	hook := test.NewLocal(logger.Get("seed"))
	repo := &fakeUsers{}

	require.NoError(t, defaultManager(nil, repo, Options{ManagerEmail: "admin@crmsystem.com"}))
	require.Len(t, repo.created, 1)
	u := repo.created[0]
	assert.Equal(t, models.RoleManager, u.Role)
	assert.True(t, u.IsActive)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	pw, ok := entry.Data["temporary_password"].(string)
	require.True(t, ok)
	assert.True(t, utils.IsStrongPassword(pw))
	assert.True(t, utils.CheckPassword(u.Password, pw))

	// segunda execução não duplica
	require.NoError(t, defaultManager(nil, repo, Options{ManagerEmail: "ADMIN@crmsystem.com"}))
	assert.Len(t, repo.created, 1)
}

func TestDefaultManager_ConfiguredPassword(t *testing.T) {
	repo := &fakeUsers{}
	require.NoError(t, defaultManager(nil, repo, Options{ManagerEmail: "boss@acme.test", ManagerPassword: "Str0ng!Pass"}))
	require.Len(t, repo.created, 1)
	assert.True(t, utils.CheckPassword(repo.created[0].Password, "Str0ng!Pass"))

	err := defaultManager(nil, &fakeUsers{}, Options{ManagerEmail: "boss@acme.test", ManagerPassword: "weak"})
	assert.ErrorIs(t, err, errWeakSeedPassword)

	require.NoError(t, defaultManager(nil, &fakeUsers{}, Options{}))
}
