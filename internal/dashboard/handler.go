package dashboard

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/KromaEnergia/api-crm/internal/auth"
	"github.com/KromaEnergia/api-crm/internal/contact"
	"github.com/KromaEnergia/api-crm/internal/models"
	"github.com/KromaEnergia/api-crm/internal/note"
	"github.com/KromaEnergia/api-crm/internal/policy"
	"github.com/KromaEnergia/api-crm/internal/users"
	"github.com/KromaEnergia/api-crm/internal/utils"
	"gorm.io/gorm"
)

const recentLimit = 5

type Handler struct {
	DB       *gorm.DB
	Contacts contact.Repository
	Notes    note.Repository
	Users    users.Repository
	Now      func() time.Time
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		DB:       db,
		Contacts: contact.NewRepository(),
		Notes:    note.NewRepository(),
		Users:    users.NewRepository(),
		Now:      time.Now,
	}
}

func (h *Handler) tx(ctx context.Context) *gorm.DB {
	if h.DB == nil {
		return nil
	}
	return h.DB.WithContext(ctx)
}

// managerOnly repete a checagem do middleware para quem montar o handler fora do router.
func managerOnly(w http.ResponseWriter, r *http.Request) bool {
	caller := auth.CallerFrom(r.Context())
	if !caller.Authenticated() {
		utils.WriteError(w, r, policy.ErrUnauthenticated)
		return false
	}
	if !policy.IsManager(caller) {
		utils.WriteError(w, r, policy.Deny("Managers only."))
		return false
	}
	return true
}

// GET /dashboard
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	caller := auth.CallerFrom(r.Context())
	if _, err := policy.CurrentUserID(caller); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	db := h.tx(r.Context())
	scope := policy.VisibilityScope(caller)

	statuses, err := h.Contacts.ListStatuses(db)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	all, err := h.Contacts.ListForReport(db, scope)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	recent, err := h.Contacts.Recent(db, scope, recentLimit)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	notes, err := h.Notes.Recent(db, scope, recentLimit)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if recent == nil {
		recent = []models.Contact{}
	}
	if notes == nil {
		notes = []models.Note{}
	}

	utils.WriteJSON(w, http.StatusOK, HomeView{
		CountsByStatus: policy.CountByStatus(all, statuses),
		TotalContacts:  len(all),
		RecentContacts: recent,
		RecentNotes:    notes,
		IsManager:      policy.IsManager(caller),
	})
}

// GET /admin/dashboard
func (h *Handler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	if !managerOnly(w, r) {
		return
	}
	db := h.tx(r.Context())
	scope := policy.AllContacts()

	statuses, err := h.Contacts.ListStatuses(db)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	contacts, err := h.Contacts.ListForReport(db, scope)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	items, err := h.Notes.ListForReport(db, scope)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	list, err := h.Users.ListAll(db)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	now := h.Now()
	total, active := policy.CountUsers(list)
	utils.WriteJSON(w, http.StatusOK, AdminView{
		CountsByStatus:  policy.CountByStatus(contacts, statuses),
		TotalContacts:   len(contacts),
		OpenTasks:       policy.CountOpenActionable(items, models.KindTask),
		OverdueTasks:    policy.CountOverdue(items, models.KindTask, now),
		OpenMeetings:    policy.CountOpenActionable(items, models.KindMeeting),
		OverdueMeetings: policy.CountOverdue(items, models.KindMeeting, now),
		TotalUsers:      total,
		ActiveUsers:     active,
		SalesReps:       policy.PerUserBreakdown(list, contacts, items),
	})
}

// salesRepFilter lê ?salesRepId=; vazio é sem filtro.
func salesRepFilter(r *http.Request) (*uint, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("salesRepId"))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, policy.NewValidationError("salesRepId", "Invalid sales rep.")
	}
	v := uint(id)
	return &v, nil
}

func (h *Handler) repOptions(db *gorm.DB) ([]users.Option, error) {
	list, err := h.Users.ListActive(db)
	if err != nil {
		return nil, err
	}
	out := make([]users.Option, 0, len(list))
	for _, u := range list {
		out = append(out, users.Option{ID: u.ID, Name: u.FullName()})
	}
	return out, nil
}

// GET /admin/contacts?salesRepId=&status=
func (h *Handler) AdminContacts(w http.ResponseWriter, r *http.Request) {
	if !managerOnly(w, r) {
		return
	}
	owner, err := salesRepFilter(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	db := h.tx(r.Context())

	list, err := h.Contacts.ListFiltered(db, policy.AllContacts(), owner, status)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	statuses, err := h.Contacts.ListStatuses(db)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	reps, err := h.repOptions(db)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if list == nil {
		list = []models.Contact{}
	}
	utils.WriteJSON(w, http.StatusOK, AdminContactsView{
		Contacts:   list,
		Total:      len(list),
		Statuses:   statuses,
		SalesReps:  reps,
		SalesRepID: owner,
		Status:     status,
	})
}

// GET /admin/tasks?salesRepId=&showCompleted=
func (h *Handler) AdminTasks(w http.ResponseWriter, r *http.Request) {
	if !managerOnly(w, r) {
		return
	}
	owner, err := salesRepFilter(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	showCompleted, _ := strconv.ParseBool(r.URL.Query().Get("showCompleted"))
	db := h.tx(r.Context())

	list, err := h.Notes.ListItems(db, policy.AllContacts(), note.ItemFilter{
		Kind:      models.KindTask,
		Completed: showCompleted,
		OwnerID:   owner,
	})
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	reps, err := h.repOptions(db)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if list == nil {
		list = []models.Note{}
	}
	utils.WriteJSON(w, http.StatusOK, AdminTasksView{
		Tasks:         list,
		Total:         len(list),
		SalesReps:     reps,
		SalesRepID:    owner,
		ShowCompleted: showCompleted,
	})
}
