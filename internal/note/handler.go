package note

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/KromaEnergia/api-crm/internal/auth"
	"github.com/KromaEnergia/api-crm/internal/contact"
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
	Contacts   contact.Repository
	Now        func() time.Time
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		Contacts:   contact.NewRepository(),
		Now:        time.Now,
	}
}

func (h *Handler) tx(ctx context.Context) *gorm.DB {
	if h.DB == nil {
		return nil
	}
	return h.DB.WithContext(ctx)
}

func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// validate junta os erros de conteúdo/tipo/prazo com a checagem da descrição.
func (h *Handler) validate(db *gorm.DB, req NoteRequest) (policy.NoteInput, error) {
	verr := &policy.ValidationError{}
	kind, err := models.ParseNoteKind(req.Type)
	if err != nil {
		verr.Add("type", "Invalid note type.")
	}
	in := policy.NoteInput{Content: req.Content, Kind: kind, TodoDescID: req.TodoDescID, DueDate: req.DueDate}
	if kind != "" {
		if fields, ok := policy.FieldErrors(in.Validate()); ok {
			for k, v := range fields {
				verr.Add(k, v)
			}
		}
	}
	if kind.Actionable() && req.TodoDescID != nil {
		ok, err := h.Repository.DescriptionExists(db, *req.TodoDescID)
		if err != nil {
			return in, err
		}
		if !ok {
			verr.Add("todoDescId", "Invalid note description.")
		}
	}
	return in, verr.OrNil()
}

// POST /contacts/{id}/notes
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	contactID, ok := pathID(r)
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

	var req NoteRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.BadRequest(w, r, "payload inválido")
		return
	}

	db := h.tx(ctx)
	parent, err := h.Contacts.FindByID(db, contactID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	// acesso antes da validação
	if !policy.CanAccess(caller, *parent) {
		utils.WriteError(w, r, policy.Deny("You do not have access to this contact."))
		return
	}
	in, err := h.validate(db, req)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	n, err := policy.NewNote(caller, *parent, in, h.Now())
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := h.Repository.Create(db, n); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	logger.WithContext(ctx).WithField("contact_id", contactID).WithField("note_id", n.ID).
		Infof("%s criado", n.Kind())
	utils.WriteJSON(w, http.StatusCreated, ActionResult{
		Message:   n.Kind().String() + " added successfully.",
		ContactID: contactID,
		Note:      n,
	})
}

// Items monta o handler de listagem de um tipo de item acionável.
// GET /notes/tasks, /notes/meetings, /notes/tasks/completed, /notes/meetings/completed
func (h *Handler) Items(kind models.NoteKind, completed bool) http.HandlerFunc {
	title := kind.String() + "s"
	if completed {
		title = "Completed " + title
	}
	return func(w http.ResponseWriter, r *http.Request) {
		caller := auth.CallerFrom(r.Context())
		if _, err := policy.CurrentUserID(caller); err != nil {
			utils.WriteError(w, r, err)
			return
		}
		list, err := h.Repository.ListItems(h.tx(r.Context()), policy.VisibilityScope(caller),
			ItemFilter{Kind: kind, Completed: completed})
		if err != nil {
			utils.WriteError(w, r, err)
			return
		}
		if list == nil {
			list = []models.Note{}
		}
		utils.WriteJSON(w, http.StatusOK, ItemsView{
			Title:     title,
			Kind:      kind,
			Completed: completed,
			Total:     len(list),
			Items:     list,
		})
	}
}

// load busca a nota com o contato pai para as ações por id.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) (policy.Caller, *models.Note, bool) {
	id, ok := pathID(r)
	if !ok {
		utils.BadRequest(w, r, "ID inválido")
		return policy.Caller{}, nil, false
	}
	caller := auth.CallerFrom(r.Context())
	if _, err := policy.CurrentUserID(caller); err != nil {
		utils.WriteError(w, r, err)
		return caller, nil, false
	}
	n, err := h.Repository.FindWithContact(h.tx(r.Context()), id)
	if err != nil {
		utils.WriteError(w, r, err)
		return caller, nil, false
	}
	return caller, n, true
}

// POST /notes/{id}/complete
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	caller, n, ok := h.load(w, r)
	if !ok {
		return
	}
	var req CompleteRequest
	// corpo opcional
	if err := utils.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		utils.BadRequest(w, r, "payload inválido")
		return
	}
	if err := policy.Complete(caller, n, *n.Contact, req.TaskUpdate, h.Now()); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := h.Repository.SaveTaskState(h.tx(r.Context()), n); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, ActionResult{
		Message:   n.Kind().String() + " marked as completed.",
		ContactID: n.ContactID,
		Note:      n,
	})
}

// POST /notes/{id}/reopen
func (h *Handler) Reopen(w http.ResponseWriter, r *http.Request) {
	caller, n, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := policy.Reopen(caller, n, *n.Contact); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := h.Repository.SaveTaskState(h.tx(r.Context()), n); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, ActionResult{
		Message:   n.Kind().String() + " reopened.",
		ContactID: n.ContactID,
		Note:      n,
	})
}

// DELETE /notes/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, n, ok := h.load(w, r)
	if !ok {
		return
	}
	if !policy.CanDeleteNote(caller, *n, *n.Contact) {
		utils.WriteError(w, r, policy.Deny("You do not have permission to delete this item."))
		return
	}
	if err := h.Repository.Delete(h.tx(r.Context()), n.ID); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	logger.WithContext(r.Context()).WithField("note_id", n.ID).Info("nota removida")
	utils.WriteJSON(w, http.StatusOK, ActionResult{Message: "Deleted successfully.", ContactID: n.ContactID})
}

// GET /notes/form-options
func (h *Handler) FormOptions(w http.ResponseWriter, r *http.Request) {
	db := h.tx(r.Context())
	types, err := h.Repository.ListTypes(db)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	descs, err := h.Repository.ListDescriptions(db)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, FormOptions{Types: types, Descriptions: descs})
}
