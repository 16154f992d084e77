package users

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/KromaEnergia/api-crm/internal/auth"
	"github.com/KromaEnergia/api-crm/internal/models"
	"github.com/KromaEnergia/api-crm/internal/policy"
	"github.com/KromaEnergia/api-crm/internal/utils"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRepo struct {
	users    map[uint]*models.User
	contacts map[uint]int
	nextID   uint
}

func newFakeRepo(list ...models.User) *fakeRepo {
	f := &fakeRepo{users: map[uint]*models.User{}, contacts: map[uint]int{}}
	for i := range list {
		u := list[i]
		f.users[u.ID] = &u
		if u.ID > f.nextID {
			f.nextID = u.ID
		}
	}
	return f
}

func (f *fakeRepo) FindByEmail(_ *gorm.DB, email string) (*models.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, policy.ErrNotFound
}

func (f *fakeRepo) FindByID(_ *gorm.DB, id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, policy.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) EmailExists(db *gorm.DB, email string) (bool, error) {
	_, err := f.FindByEmail(db, email)
	return err == nil, nil
}

func (f *fakeRepo) Create(_ *gorm.DB, u *models.User) error {
	f.nextID++
	u.ID = f.nextID
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeRepo) ListAll(*gorm.DB) ([]models.User, error) {
	var out []models.User
	for id := uint(1); id <= f.nextID; id++ {
		if u, ok := f.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListActive(db *gorm.DB) ([]models.User, error) {
	all, _ := f.ListAll(db)
	var out []models.User
	for _, u := range all {
		if u.IsActive {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeRepo) IsActive(_ *gorm.DB, id uint) (bool, error) {
	u, ok := f.users[id]
	return ok && u.IsActive, nil
}

func (f *fakeRepo) SetActive(_ *gorm.DB, id uint, active bool) error {
	f.users[id].IsActive = active
	return nil
}

func (f *fakeRepo) SetRole(_ *gorm.DB, id uint, role models.Role) error {
	f.users[id].Role = role
	return nil
}

func (f *fakeRepo) SaveLoginState(_ *gorm.DB, u *models.User) error {
	f.users[u.ID].FailedLoginCount = u.FailedLoginCount
	f.users[u.ID].LockoutEnd = u.LockoutEnd
	return nil
}

func (f *fakeRepo) ContactCounts(*gorm.DB) (map[uint]int, error) { return f.contacts, nil }

type nopStore struct{}

func (nopStore) Save(*gorm.DB, *auth.RefreshToken) error { return nil }

func (nopStore) FindByHash(*gorm.DB, string) (*auth.RefreshToken, error) {
	return nil, auth.ErrTokenNotFound
}

func (nopStore) Revoke(*gorm.DB, uint, time.Time) error { return nil }

func (nopStore) RevokeByHash(*gorm.DB, string, time.Time) error { return nil }

func (nopStore) RevokeFamily(*gorm.DB, string, time.Time) error { return nil }

const goodPassword = "Str0ng!Pass"

var (
	mgr = policy.Caller{UserID: 1, Role: models.RoleManager}
	rep = policy.Caller{UserID: 2, Role: models.RoleSalesRep}
)

func newTestHandler(t *testing.T) (*Handler, *fakeRepo) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	auth.SetSigningKey(priv, auth.Options{KeyID: "k", Issuer: "i", Audience: "a"})

	hash, err := utils.HashPassword(goodPassword)
	require.NoError(t, err)
	repo := newFakeRepo(
		models.User{ID: 1, FirstName: "Mia", LastName: "Manager", Email: "admin@crmsystem.com", Password: hash, Role: models.RoleManager, IsActive: true},
		models.User{ID: 2, FirstName: "Ana", LastName: "Rep", Email: "ana@crm.test", Password: hash, Role: models.RoleSalesRep, IsActive: true},
	)
	h := &Handler{Repository: repo, Now: time.Now}
	h.Sessions = &auth.Sessions{Store: nopStore{}, Lookup: h.Account, Now: time.Now}
	return h, repo
}

func do(h http.HandlerFunc, method, path string, caller policy.Caller, vars map[string]string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req = req.WithContext(auth.WithCaller(req.Context(), caller))
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func login(h *Handler, email, password string) *httptest.ResponseRecorder {
	return do(h.Login, http.MethodPost, "/auth/login", policy.Caller{}, nil, LoginRequest{Email: email, Password: password})
}

func TestLoginSuccess(t *testing.T) {
	h, _ := newTestHandler(t)
	rr := login(h, "ana@crm.test", goodPassword)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp auth.TokenResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	claims, err := auth.ParseAndValidate(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(2), claims.UserID)
	assert.Equal(t, models.RoleSalesRep, claims.Role)
	assert.Contains(t, rr.Header().Get("Set-Cookie"), auth.RefreshCookie+"=")
}

func TestLoginLocksAfterFiveFailures(t *testing.T) {
	h, repo := newTestHandler(t)
	for i := 1; i < MaxFailedAttempts; i++ {
		assert.Equal(t, http.StatusUnauthorized, login(h, "ana@crm.test", "wrong").Code, "attempt %d", i)
	}
	rr := login(h, "ana@crm.test", "wrong")
	assert.Equal(t, http.StatusLocked, rr.Code)
	require.NotNil(t, repo.users[2].LockoutEnd)

	rr = login(h, "ana@crm.test", goodPassword)
	assert.Equal(t, http.StatusLocked, rr.Code)
	assert.Contains(t, rr.Body.String(), "Account locked out. Please try again later.")

	// depois do bloqueio, a senha correta volta a funcionar e zera o contador
	h.Now = func() time.Time { return time.Now().Add(LockoutDuration + time.Minute) }
	assert.Equal(t, http.StatusOK, login(h, "ana@crm.test", goodPassword).Code)
	assert.Nil(t, repo.users[2].LockoutEnd)
}

func TestLoginUnknownEmail(t *testing.T) {
	h, _ := newTestHandler(t)
	rr := login(h, "ghost@crm.test", goodPassword)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid login attempt.")
}

// Gerente não desativa a si mesmo; desativar outro bloqueia o login dele.
func TestToggleStatusScenario(t *testing.T) {
	h, repo := newTestHandler(t)

	rr := do(h.ToggleStatus, http.MethodPost, "/users/1/toggle-status", mgr, map[string]string{"id": "1"}, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "You cannot deactivate your own account.")
	assert.True(t, repo.users[1].IsActive)

	rr = do(h.ToggleStatus, http.MethodPost, "/users/2/toggle-status", mgr, map[string]string{"id": "2"}, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "User Ana Rep has been deactivated.")
	assert.False(t, repo.users[2].IsActive)

	rr = login(h, "ana@crm.test", goodPassword)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "This account has been deactivated.")

	rr = do(h.ToggleStatus, http.MethodPost, "/users/99/toggle-status", mgr, map[string]string{"id": "99"}, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(h.ToggleStatus, http.MethodPost, "/users/1/toggle-status", rep, map[string]string{"id": "1"}, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRegister(t *testing.T) {
	h, repo := newTestHandler(t)
	req := RegisterRequest{
		FirstName: "Bob", LastName: "New", Email: "bob@crm.test",
		Password: goodPassword, ConfirmPassword: goodPassword, Role: "Sales Rep",
	}

	rr := do(h.Register, http.MethodPost, "/users", mgr, nil, req)
	require.Equal(t, http.StatusCreated, rr.Code)
	created, err := repo.FindByEmail(nil, "bob@crm.test")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSalesRep, created.Role)
	assert.True(t, created.IsActive)
	assert.True(t, utils.CheckPassword(created.Password, goodPassword))

	rr = do(h.Register, http.MethodPost, "/users", mgr, nil, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "A user with this email already exists.")

	req.Email, req.Role = "eve@crm.test", "Owner"
	rr = do(h.Register, http.MethodPost, "/users", mgr, nil, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid role specified.")

	req.Role, req.Password, req.ConfirmPassword = "Manager", "weak", "weak"
	rr = do(h.Register, http.MethodPost, "/users", mgr, nil, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"password"`)

	rr = do(h.Register, http.MethodPost, "/users", rep, nil, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestChangeRole(t *testing.T) {
	h, repo := newTestHandler(t)

	rr := do(h.ChangeRole, http.MethodPut, "/users/1/role", mgr, map[string]string{"id": "1"}, ChangeRoleRequest{Role: "SalesRep"})
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "You cannot change your own role.")

	rr = do(h.ChangeRole, http.MethodPut, "/users/2/role", mgr, map[string]string{"id": "2"}, ChangeRoleRequest{Role: "superuser"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(h.ChangeRole, http.MethodPut, "/users/2/role", mgr, map[string]string{"id": "2"}, ChangeRoleRequest{Role: "Manager"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, models.RoleManager, repo.users[2].Role)
}

func TestListAndAssignable(t *testing.T) {
	h, repo := newTestHandler(t)
	repo.contacts[2] = 3
	repo.users[3] = &models.User{ID: 3, FirstName: "Old", LastName: "Rep", Role: models.RoleSalesRep, IsActive: false}
	repo.nextID = 3

	rr := do(h.List, http.MethodGet, "/users", mgr, nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var rows []UserView
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&rows))
	require.Len(t, rows, 3)
	assert.Equal(t, 3, rows[1].ContactCount)
	assert.False(t, rows[2].IsActive)

	assert.Equal(t, http.StatusForbidden, do(h.List, http.MethodGet, "/users", rep, nil, nil).Code)

	opts, err := AssignableOptions(nil, repo, mgr)
	require.NoError(t, err)
	assert.Len(t, opts, 2, "inactive users are not assignable")

	opts, err = AssignableOptions(nil, repo, rep)
	require.NoError(t, err)
	assert.Equal(t, []Option{{ID: 2, Name: "Ana Rep"}}, opts)

	_, err = AssignableOptions(nil, repo, policy.Caller{})
	assert.ErrorIs(t, err, policy.ErrUnauthenticated)
}

func TestActiveUserLookup(t *testing.T) {
	h, repo := newTestHandler(t)
	repo.users[2].IsActive = false

	ok, err := h.ActiveUser(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = h.ActiveUser(context.Background(), 2)
	assert.False(t, ok)
	ok, _ = h.ActiveUser(context.Background(), 42)
	assert.False(t, ok)
}
