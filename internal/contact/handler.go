package contact

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/KromaEnergia/api-crm/internal/auth"
	"github.com/KromaEnergia/api-crm/internal/logger"
	"github.com/KromaEnergia/api-crm/internal/models"
	"github.com/KromaEnergia/api-crm/internal/notification"
	"github.com/KromaEnergia/api-crm/internal/policy"
	"github.com/KromaEnergia/api-crm/internal/users"
	"github.com/KromaEnergia/api-crm/internal/utils"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// Handler encapsula DB, repositórios e o notificador de alertas.
type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Users      users.Repository
	Notifier   notification.Notifier
	Now        func() time.Time
}

func NewHandler(db *gorm.DB, notifier notification.Notifier) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		Users:      users.NewRepository(),
		Notifier:   notifier,
		Now:        time.Now,
	}
}

func (h *Handler) tx(ctx context.Context) *gorm.DB {
	if h.DB == nil {
		return nil
	}
	return h.DB.WithContext(ctx)
}

func (h *Handler) activeUser(ctx context.Context, id uint) (bool, error) {
	return h.Users.IsActive(h.tx(ctx), id)
}

func (h *Handler) statusExists(ctx context.Context, id uint) (bool, error) {
	return h.Repository.StatusExists(h.tx(ctx), id)
}

func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// GET /contacts/{view}  (leads, opportunities, customers, archive)
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	sv, ok := policy.StatusViewByPath(mux.Vars(r)["view"])
	if !ok {
		utils.WriteError(w, r, policy.ErrNotFound)
		return
	}
	caller := auth.CallerFrom(r.Context())
	if _, err := policy.CurrentUserID(caller); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	list, err := h.Repository.ListByStatus(h.tx(r.Context()), policy.VisibilityScope(caller), sv.StatusName)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if list == nil {
		list = []models.Contact{}
	}
	utils.WriteJSON(w, http.StatusOK, ListView{
		Title:      sv.Title,
		View:       sv.View,
		StatusName: sv.StatusName,
		Total:      len(list),
		Contacts:   list,
	})
}

// GET /contacts/form-options
func (h *Handler) FormOptions(w http.ResponseWriter, r *http.Request) {
	db := h.tx(r.Context())
	opts, err := users.AssignableOptions(db, h.Users, auth.CallerFrom(r.Context()))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	statuses, err := h.Repository.ListStatuses(db)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, FormOptions{Statuses: statuses, Users: opts})
}

// validateRequest junta erros de DTO, status e dono num único ValidationError.
func (h *Handler) validateRequest(ctx context.Context, req ContactRequest, owner uint, checkOwner bool) error {
	verr := &policy.ValidationError{}
	if err := utils.ValidateStruct(req); err != nil {
		fields, ok := policy.FieldErrors(err)
		if !ok {
			return err
		}
		for k, v := range fields {
			verr.Add(k, v)
		}
	}
	if ok, err := h.statusExists(ctx, req.StatusID); err != nil {
		return err
	} else if !ok {
		verr.Add("statusId", "Invalid status.")
	}
	if checkOwner {
		if err := policy.CheckAssignment(ctx, h.activeUser, owner); err != nil {
			fields, ok := policy.FieldErrors(err)
			if !ok {
				return err
			}
			verr.Add("assignedToId", fields["assignedToId"])
		}
	}
	return verr.OrNil()
}

// POST /contacts
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := auth.CallerFrom(ctx)
	if _, err := policy.CurrentUserID(caller); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	var req ContactRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.BadRequest(w, r, "payload inválido")
		return
	}
	if req.StatusID == 0 {
		req.StatusID = models.StatusLead
	}
	owner := policy.ResolveOwnerOnCreate(caller, req.AssignedToID)
	if err := h.validateRequest(ctx, req, owner, true); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	now := h.Now()
	c := models.Contact{StatusID: req.StatusID, AssignedToID: owner, CreatedAt: now, UpdatedAt: now}
	req.applyTo(&c)

	db := h.tx(ctx)
	dup, err := h.Repository.EmailInUse(db, c.Email, 0)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := h.Repository.Create(db, &c); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if dup {
		h.Notifier.Notify(ctx, notification.Event{
			Type:       notification.EventDuplicateEmail,
			Message:    "Alert: new contact created with an email already in use.",
			ContactID:  c.ID,
			Email:      c.Email,
			ActorID:    caller.UserID,
			OccurredAt: now,
		})
	}
	logger.WithContext(ctx).WithField("contact_id", c.ID).Info("contato criado")
	utils.WriteJSON(w, http.StatusCreated, ActionResult{
		Message:  "Contact created successfully.",
		Redirect: policy.RedirectView(c.StatusID),
		Contact:  &c,
	})
}

// GET /contacts/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.BadRequest(w, r, "ID inválido")
		return
	}
	caller := auth.CallerFrom(r.Context())
	if _, err := policy.CurrentUserID(caller); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	c, err := h.Repository.FindDetail(h.tx(r.Context()), id)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if !policy.CanAccess(caller, *c) {
		utils.WriteError(w, r, policy.Deny("You do not have access to this contact."))
		return
	}
	utils.WriteJSON(w, http.StatusOK, DetailView{Contact: c, FullName: c.FullName(), View: policy.RedirectView(c.StatusID)})
}

// PUT /contacts/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.BadRequest(w, r, "ID inválido")
		return
	}
	ctx := r.Context()
	caller := auth.CallerFrom(ctx)
	if _, err := policy.CurrentUserID(caller); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	var req ContactRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.BadRequest(w, r, "payload inválido")
		return
	}

	db := h.tx(ctx)
	var (
		updated   *models.Contact
		prevOwner uint
	)
	write := func(ctx context.Context) error {
		cur, err := h.Repository.FindByID(db, id)
		if err != nil {
			return err
		}
		if !policy.CanAccess(caller, *cur) {
			return policy.Deny("You do not have access to this contact.")
		}
		// req é compartilhado entre tentativas; o status padrão vem da leitura atual
		in := req
		if in.StatusID == 0 {
			in.StatusID = cur.StatusID
		}
		owner := policy.ResolveOwnerOnUpdate(caller, in.AssignedToID, cur.AssignedToID)
		// dono inativo mantido é aceito; só uma nova atribuição precisa de usuário ativo
		if err := h.validateRequest(ctx, in, owner, owner != cur.AssignedToID); err != nil {
			return err
		}

		seen := cur.UpdatedAt
		prevOwner = cur.AssignedToID
		in.applyTo(cur)
		cur.StatusID = in.StatusID
		cur.AssignedToID = owner
		cur.UpdatedAt = h.Now()
		if err := h.Repository.UpdateGuarded(db, cur, seen); err != nil {
			return err
		}
		updated = cur
		return nil
	}
	exists := func(context.Context) (bool, error) { return h.Repository.Exists(db, id) }

	if err := policy.RetryOnConflict(ctx, write, exists); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	if updated.AssignedToID != prevOwner {
		h.Notifier.Notify(ctx, notification.Event{
			Type:       notification.EventContactReassigned,
			Message:    "Contact " + updated.FullName() + " was reassigned.",
			ContactID:  updated.ID,
			FromUserID: prevOwner,
			ToUserID:   updated.AssignedToID,
			ActorID:    caller.UserID,
			OccurredAt: updated.UpdatedAt,
		})
	}
	if dup, err := h.Repository.EmailInUse(db, updated.Email, updated.ID); err != nil {
		logger.WithContext(ctx).WithError(err).WithField("contact_id", updated.ID).
			Warn("falha ao verificar email duplicado")
	} else if dup {
		h.Notifier.Notify(ctx, notification.Event{
			Type:       notification.EventDuplicateEmail,
			Message:    "Alert: contact updated with an email already in use.",
			ContactID:  updated.ID,
			Email:      updated.Email,
			ActorID:    caller.UserID,
			OccurredAt: updated.UpdatedAt,
		})
	}
	utils.WriteJSON(w, http.StatusOK, ActionResult{
		Message:  "Contact updated successfully.",
		Redirect: policy.RedirectView(updated.StatusID),
		Contact:  updated,
	})
}

// POST /contacts/{id}/status
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.BadRequest(w, r, "ID inválido")
		return
	}
	ctx := r.Context()
	caller := auth.CallerFrom(ctx)
	if _, err := policy.CurrentUserID(caller); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	var req ChangeStatusRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.BadRequest(w, r, "payload inválido")
		return
	}

	db := h.tx(ctx)
	var (
		updated  *models.Contact
		previous uint
	)
	write := func(ctx context.Context) error {
		cur, err := h.Repository.FindByID(db, id)
		if err != nil {
			return err
		}
		if !policy.CanAccess(caller, *cur) {
			return policy.Deny("You do not have access to this contact.")
		}
		seen := cur.UpdatedAt
		previous = cur.StatusID
		if err := policy.StatusTransition(ctx, h.statusExists, cur, req.StatusID, h.Now()); err != nil {
			return err
		}
		if err := h.Repository.UpdateGuarded(db, cur, seen); err != nil {
			return err
		}
		updated = cur
		return nil
	}
	exists := func(context.Context) (bool, error) { return h.Repository.Exists(db, id) }

	if err := policy.RetryOnConflict(ctx, write, exists); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	logger.WithContext(ctx).WithField("contact_id", id).
		WithField("from", previous).WithField("to", updated.StatusID).Info("status do contato alterado")
	utils.WriteJSON(w, http.StatusOK, ActionResult{
		Message:  "Contact status changed successfully.",
		Redirect: policy.RedirectView(previous),
		Contact:  updated,
	})
}
