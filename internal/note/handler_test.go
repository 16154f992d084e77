package note

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/KromaEnergia/api-crm/internal/auth"
	"github.com/KromaEnergia/api-crm/internal/contact"
	"github.com/KromaEnergia/api-crm/internal/models"
	"github.com/KromaEnergia/api-crm/internal/policy"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeContacts struct {
	contact.Repository
	rows map[uint]models.Contact
}

func (f fakeContacts) FindByID(_ *gorm.DB, id uint) (*models.Contact, error) {
	c, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("contact %d: %w", id, policy.ErrNotFound)
	}
	return &c, nil
}

type fakeNotes struct {
	contacts fakeContacts
	rows     map[uint]*models.Note
	nextID   uint
}

func (f *fakeNotes) Create(_ *gorm.DB, n *models.Note) error {
	f.nextID++
	n.ID = f.nextID
	cp := *n
	f.rows[n.ID] = &cp
	return nil
}

func (f *fakeNotes) FindWithContact(_ *gorm.DB, id uint) (*models.Note, error) {
	n, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("note %d: %w", id, policy.ErrNotFound)
	}
	cp := *n
	c := f.contacts.rows[n.ContactID]
	cp.Contact = &c
	return &cp, nil
}

func (f *fakeNotes) SaveTaskState(_ *gorm.DB, n *models.Note) error {
	cur, ok := f.rows[n.ID]
	if !ok {
		return policy.ErrNotFound
	}
	cur.TaskStatusID, cur.TaskUpdate, cur.CompletedAt = n.TaskStatusID, n.TaskUpdate, n.CompletedAt
	return nil
}

func (f *fakeNotes) Delete(_ *gorm.DB, id uint) error {
	delete(f.rows, id)
	return nil
}

func (f *fakeNotes) visible(scope policy.Scope) []models.Note {
	var out []models.Note
	for _, n := range f.rows {
		if scope.Allows(f.contacts.rows[n.ContactID].AssignedToID) {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeNotes) ListItems(_ *gorm.DB, scope policy.Scope, filter ItemFilter) ([]models.Note, error) {
	var out []models.Note
	for _, n := range f.visible(scope) {
		if n.Kind() == filter.Kind && n.IsCompleted() == filter.Completed {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotes) ListForReport(_ *gorm.DB, scope policy.Scope) ([]models.Note, error) {
	return f.visible(scope), nil
}

func (f *fakeNotes) Recent(_ *gorm.DB, scope policy.Scope, limit int) ([]models.Note, error) {
	out := f.visible(scope)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeNotes) ListTypes(*gorm.DB) ([]models.TodoType, error) { return models.TodoTypes, nil }

func (f *fakeNotes) ListDescriptions(*gorm.DB) ([]models.TodoDesc, error) {
	return models.TodoDescs, nil
}

func (f *fakeNotes) DescriptionExists(_ *gorm.DB, id uint) (bool, error) {
	return id >= 1 && id <= uint(len(models.TodoDescs)), nil
}

var (
	repA    = policy.Caller{UserID: 1, Role: models.RoleSalesRep}
	repB    = policy.Caller{UserID: 2, Role: models.RoleSalesRep}
	manager = policy.Caller{UserID: 9, Role: models.RoleManager}
	now     = time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
)

func newTestHandler() (*Handler, *fakeNotes) {
	contacts := fakeContacts{rows: map[uint]models.Contact{
		42: {ID: 42, AssignedToID: repA.UserID, StatusID: models.StatusLead},
		43: {ID: 43, AssignedToID: repB.UserID, StatusID: models.StatusLead},
	}}
	notes := &fakeNotes{contacts: contacts, rows: map[uint]*models.Note{}}
	h := &Handler{
		Repository: notes,
		Contacts:   contacts,
		Now:        func() time.Time { return now },
	}
	return h, notes
}

func call(fn http.HandlerFunc, method string, caller policy.Caller, id string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/", bytes.NewBufferString(body))
	req = req.WithContext(auth.WithCaller(req.Context(), caller))
	if id != "" {
		req = mux.SetURLVars(req, map[string]string{"id": id})
	}
	rr := httptest.NewRecorder()
	fn(rr, req)
	return rr
}

func decodeResult(t *testing.T, rr *httptest.ResponseRecorder) ActionResult {
	t.Helper()
	var res ActionResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	return res
}

func createTask(t *testing.T, h *Handler, caller policy.Caller, contactID string) uint {
	t.Helper()
	body := fmt.Sprintf(`{"content":"call back","type":"Task","todoDescId":2,"dueDate":%q}`,
		now.Add(24*time.Hour).Format(time.RFC3339))
	rr := call(h.Create, http.MethodPost, caller, contactID, body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	res := decodeResult(t, rr)
	assert.Equal(t, "Task added successfully.", res.Message)
	return res.Note.ID
}

func TestCreate_NoteKinds(t *testing.T) {
	h, notes := newTestHandler()

	rr := call(h.Create, http.MethodPost, repA, "42", `{"content":"  met at expo  "}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	res := decodeResult(t, rr)
	assert.Equal(t, "Note added successfully.", res.Message)
	assert.Equal(t, "met at expo", notes.rows[res.Note.ID].Content)
	assert.Nil(t, notes.rows[res.Note.ID].TaskStatusID)

	id := createTask(t, h, repA, "42")
	stored := notes.rows[id]
	assert.True(t, stored.IsPending())
	assert.Equal(t, repA.UserID, stored.AuthorID)
}

func TestCreate_Validation(t *testing.T) {
	h, notes := newTestHandler()

	cases := map[string]struct {
		body  string
		field string
		msg   string
	}{
		"blank content":   {`{"content":"   "}`, "content", "Content cannot be empty."},
		"too long":        {fmt.Sprintf(`{"content":%q}`, strings.Repeat("x", 4001)), "content", "Content cannot exceed 4000 characters."},
		"meeting no date": {`{"content":"demo","type":"Meeting"}`, "dueDate", "Due date is required for a Meeting."},
		"unknown type":    {`{"content":"x","type":"Reminder"}`, "type", "Invalid note type."},
		"bad description": {`{"content":"x","type":"Task","todoDescId":99,"dueDate":"2026-05-01T00:00:00Z"}`, "todoDescId", "Invalid note description."},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rr := call(h.Create, http.MethodPost, repA, "42", tc.body)
			require.Equal(t, http.StatusBadRequest, rr.Code)
			var body struct {
				Fields map[string]string `json:"fields"`
			}
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, tc.msg, body.Fields[tc.field])
		})
	}
	assert.Empty(t, notes.rows)
}

func TestCreate_AccessRules(t *testing.T) {
	h, _ := newTestHandler()
	body := `{"content":"hello"}`

	assert.Equal(t, http.StatusForbidden, call(h.Create, http.MethodPost, repB, "42", body).Code)

	// conteúdo inválido em contato alheio continua sendo 403, sem erros de campo
	rr := call(h.Create, http.MethodPost, repB, "42", `{"content":"   ","type":"Task"}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.NotContains(t, rr.Body.String(), `"fields"`)
	assert.Equal(t, http.StatusCreated, call(h.Create, http.MethodPost, manager, "42", body).Code)
	assert.Equal(t, http.StatusNotFound, call(h.Create, http.MethodPost, repA, "77", body).Code)
	assert.Equal(t, http.StatusUnauthorized, call(h.Create, http.MethodPost, policy.Caller{}, "42", body).Code)
}

func TestCompleteAndReopen(t *testing.T) {
	h, notes := newTestHandler()
	id := createTask(t, h, repA, "42")
	sid := fmt.Sprint(id)

	assert.Equal(t, http.StatusForbidden, call(h.Complete, http.MethodPost, repB, sid, "").Code)

	rr := call(h.Complete, http.MethodPost, repA, sid, `{"taskUpdate":"sent proposal"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "Task marked as completed.", decodeResult(t, rr).Message)
	assert.True(t, notes.rows[id].IsCompleted())
	require.NotNil(t, notes.rows[id].CompletedAt)
	assert.Equal(t, "sent proposal", notes.rows[id].TaskUpdate)

	rr = call(h.Reopen, http.MethodPost, repA, sid, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Task reopened.", decodeResult(t, rr).Message)
	assert.True(t, notes.rows[id].IsPending())
	assert.Nil(t, notes.rows[id].CompletedAt)
	assert.Equal(t, "sent proposal", notes.rows[id].TaskUpdate)

	// sem corpo também conclui
	rr = call(h.Complete, http.MethodPost, manager, sid, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCompleteRejectsPlainNote(t *testing.T) {
	h, _ := newTestHandler()
	rr := call(h.Create, http.MethodPost, repA, "42", `{"content":"just a note"}`)
	id := fmt.Sprint(decodeResult(t, rr).Note.ID)

	rr = call(h.Complete, http.MethodPost, repA, id, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Notes cannot be marked as completed.")

	rr = call(h.Reopen, http.MethodPost, repA, id, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Notes cannot be reopened.")

	assert.Equal(t, http.StatusNotFound, call(h.Complete, http.MethodPost, repA, "999", "").Code)
}

func TestDelete(t *testing.T) {
	h, notes := newTestHandler()
	id := createTask(t, h, repA, "42")
	sid := fmt.Sprint(id)

	assert.Equal(t, http.StatusForbidden, call(h.Delete, http.MethodDelete, repB, sid, "").Code)

	// autor perde a posse do contato
	notes.contacts.rows[42] = models.Contact{ID: 42, AssignedToID: repB.UserID}
	assert.Equal(t, http.StatusForbidden, call(h.Delete, http.MethodDelete, repA, sid, "").Code)
	assert.Equal(t, http.StatusForbidden, call(h.Delete, http.MethodDelete, repB, sid, "").Code, "owner but not author")

	rr := call(h.Delete, http.MethodDelete, manager, sid, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Deleted successfully.", decodeResult(t, rr).Message)
	assert.NotContains(t, notes.rows, id)
}

func TestItems_ScopedByOwnership(t *testing.T) {
	h, _ := newTestHandler()
	createTask(t, h, repA, "42")
	createTask(t, h, repB, "43")

	var view ItemsView
	rr := call(h.Items(models.KindTask, false), http.MethodGet, repA, "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&view))
	assert.Equal(t, 1, view.Total)
	assert.Equal(t, "Tasks", view.Title)

	rr = call(h.Items(models.KindTask, false), http.MethodGet, manager, "", "")
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&view))
	assert.Equal(t, 2, view.Total)

	rr = call(h.Items(models.KindMeeting, true), http.MethodGet, manager, "", "")
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&view))
	assert.Zero(t, view.Total)
	assert.NotNil(t, view.Items)
	assert.Equal(t, "Completed Meetings", view.Title)

	assert.Equal(t, http.StatusUnauthorized, call(h.Items(models.KindTask, false), http.MethodGet, policy.Caller{}, "", "").Code)
}

func TestFormOptions(t *testing.T) {
	h, _ := newTestHandler()
	rr := call(h.FormOptions, http.MethodGet, repA, "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var opts FormOptions
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&opts))
	assert.Len(t, opts.Types, 2)
	assert.Len(t, opts.Descriptions, 5)
}
