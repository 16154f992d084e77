package users

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/KromaEnergia/api-crm/internal/auth"
	"github.com/KromaEnergia/api-crm/internal/logger"
	"github.com/KromaEnergia/api-crm/internal/models"
	"github.com/KromaEnergia/api-crm/internal/policy"
	"github.com/KromaEnergia/api-crm/internal/utils"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Sessions   *auth.Sessions
	Now        func() time.Time
}

func NewHandler(db *gorm.DB) *Handler {
	h := &Handler{
		DB:         db,
		Repository: NewRepository(),
		Now:        time.Now,
	}
	h.Sessions = auth.NewSessions(db, h.Account)
	return h
}

func (h *Handler) tx(ctx context.Context) *gorm.DB {
	if h.DB == nil {
		return nil
	}
	return h.DB.WithContext(ctx)
}

// Account relê papel e status; usado pelo refresh de sessão.
func (h *Handler) Account(ctx context.Context, id uint) (models.Role, bool, error) {
	u, err := h.Repository.FindByID(h.tx(ctx), id)
	if err != nil {
		return "", false, err
	}
	return u.Role, u.IsActive, nil
}

// ActiveUser é o policy.Lookup de atribuição de dono.
func (h *Handler) ActiveUser(ctx context.Context, id uint) (bool, error) {
	return h.Repository.IsActive(h.tx(ctx), id)
}

func loginFailed(w http.ResponseWriter, r *http.Request, status int, msg string) {
	utils.WriteJSON(w, status, utils.ErrorBody{Error: msg, RequestID: logger.RequestID(r.Context())})
}

// POST /auth/login
// Valida email/senha com lockout, emite access token RS256 e seta o refresh token em cookie httpOnly.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.BadRequest(w, r, "payload inválido")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	ctx := r.Context()
	log := logger.FromContext(logger.Get("auth"), ctx).WithField("email", req.Email)
	now := h.Now()

	user, err := h.Repository.FindByEmail(h.tx(ctx), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, policy.ErrNotFound) {
			loginFailed(w, r, http.StatusUnauthorized, "Invalid login attempt.")
			return
		}
		utils.WriteError(w, r, err)
		return
	}
	if !user.IsActive {
		log.Info("login de conta desativada")
		loginFailed(w, r, http.StatusForbidden, "This account has been deactivated.")
		return
	}
	if IsLockedOut(*user, now) {
		loginFailed(w, r, http.StatusLocked, "Account locked out. Please try again later.")
		return
	}

	if !utils.CheckPassword(user.Password, req.Password) {
		locked := RegisterFailure(user, now)
		if err := h.Repository.SaveLoginState(h.tx(ctx), user); err != nil {
			utils.WriteError(w, r, err)
			return
		}
		if locked {
			log.Warn("conta bloqueada por tentativas de login")
			loginFailed(w, r, http.StatusLocked, "Account locked out. Please try again later.")
			return
		}
		loginFailed(w, r, http.StatusUnauthorized, "Invalid login attempt.")
		return
	}

	if user.FailedLoginCount != 0 || user.LockoutEnd != nil {
		ResetFailures(user)
		if err := h.Repository.SaveLoginState(h.tx(ctx), user); err != nil {
			utils.WriteError(w, r, err)
			return
		}
	}

	resp, err := h.Sessions.IssueOnLogin(ctx, w, user.ID, user.Role)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	log.WithField("user_id", user.ID).Info("login efetuado")
	utils.WriteJSON(w, http.StatusOK, resp)
}

// POST /users
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	caller := auth.CallerFrom(r.Context())
	if !policy.IsManager(caller) {
		utils.WriteError(w, r, policy.Deny("Managers only."))
		return
	}

	var req RegisterRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.BadRequest(w, r, "payload inválido")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := utils.ValidateStruct(req); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	role, err := policy.ParseRole("role", req.Role)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	db := h.tx(r.Context())
	exists, err := h.Repository.EmailExists(db, req.Email)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if exists {
		utils.WriteError(w, r, policy.NewValidationError("email", "A user with this email already exists."))
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	u := models.User{
		FirstName:  strings.TrimSpace(req.FirstName),
		MiddleName: strings.TrimSpace(req.MiddleName),
		LastName:   strings.TrimSpace(req.LastName),
		Email:      req.Email,
		Password:   hash,
		Role:       role,
		IsActive:   true,
	}
	if err := h.Repository.Create(db, &u); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	logger.WithContext(r.Context()).WithField("new_user_id", u.ID).Info("usuário registrado")
	utils.WriteJSON(w, http.StatusCreated, ActionResult{
		Message: "User " + u.FullName() + " has been registered.",
		User:    &u,
	})
}

// GET /users
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if !policy.IsManager(auth.CallerFrom(r.Context())) {
		utils.WriteError(w, r, policy.Deny("Managers only."))
		return
	}
	db := h.tx(r.Context())
	list, err := h.Repository.ListAll(db)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	counts, err := h.Repository.ContactCounts(db)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	out := make([]UserView, 0, len(list))
	for _, u := range list {
		out = append(out, UserView{
			ID:           u.ID,
			FullName:     u.FullName(),
			Email:        u.Email,
			Role:         u.Role,
			IsActive:     u.IsActive,
			CreatedAt:    u.CreatedAt,
			ContactCount: counts[u.ID],
		})
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

// GET /users/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, err := policy.CurrentUserID(auth.CallerFrom(r.Context()))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	u, err := h.Repository.FindByID(h.tx(r.Context()), id)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, u)
}

func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// POST /users/{id}/toggle-status
func (h *Handler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.BadRequest(w, r, "ID inválido")
		return
	}
	caller := auth.CallerFrom(r.Context())
	if caller.Authenticated() && id == caller.UserID {
		utils.WriteError(w, r, policy.Deny("You cannot deactivate your own account."))
		return
	}

	db := h.tx(r.Context())
	u, err := h.Repository.FindByID(db, id)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	msg, err := policy.ToggleUserStatus(caller, u)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := h.Repository.SetActive(db, u.ID, u.IsActive); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	logger.WithContext(r.Context()).WithField("target_user_id", u.ID).
		WithField("active", u.IsActive).Info("status de usuário alterado")
	utils.WriteJSON(w, http.StatusOK, ActionResult{Message: msg, User: u})
}

// PUT /users/{id}/role
func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.BadRequest(w, r, "ID inválido")
		return
	}
	var req ChangeRoleRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.BadRequest(w, r, "payload inválido")
		return
	}

	db := h.tx(r.Context())
	u, err := h.Repository.FindByID(db, id)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	msg, err := policy.ChangeRole(auth.CallerFrom(r.Context()), u, req.Role)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := h.Repository.SetRole(db, u.ID, u.Role); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, ActionResult{Message: msg, User: u})
}

// GET /users/assignable
func (h *Handler) Assignable(w http.ResponseWriter, r *http.Request) {
	opts, err := AssignableOptions(h.tx(r.Context()), h.Repository, auth.CallerFrom(r.Context()))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, opts)
}

// AssignableOptions: gerente escolhe entre todos os ativos; vendedor só a si mesmo.
func AssignableOptions(db *gorm.DB, repo Repository, caller policy.Caller) ([]Option, error) {
	id, err := policy.CurrentUserID(caller)
	if err != nil {
		return nil, err
	}
	if !policy.IsManager(caller) {
		u, err := repo.FindByID(db, id)
		if err != nil {
			return nil, err
		}
		return []Option{{ID: u.ID, Name: u.FullName()}}, nil
	}
	list, err := repo.ListActive(db)
	if err != nil {
		return nil, err
	}
	out := make([]Option, 0, len(list))
	for _, u := range list {
		out = append(out, Option{ID: u.ID, Name: u.FullName()})
	}
	return out, nil
}
