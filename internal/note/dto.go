package note

import (
	"time"

	"github.com/KromaEnergia/api-crm/internal/models"
)

// NoteRequest é o corpo de POST /contacts/{id}/notes. type vazio é nota simples.
type NoteRequest struct {
	Content    string     `json:"content"`
	Type       string     `json:"type"`
	TodoDescID *uint      `json:"todoDescId"`
	DueDate    *time.Time `json:"dueDate"`
}

type CompleteRequest struct {
	TaskUpdate string `json:"taskUpdate"`
}

type ActionResult struct {
	Message   string       `json:"message"`
	ContactID uint         `json:"contactId"`
	Note      *models.Note `json:"note,omitempty"`
}

// ItemsView é a lista de tarefas ou reuniões.
type ItemsView struct {
	Title     string          `json:"title"`
	Kind      models.NoteKind `json:"kind"`
	Completed bool            `json:"completed"`
	Total     int             `json:"total"`
	Items     []models.Note   `json:"items"`
}

type FormOptions struct {
	Types        []models.TodoType `json:"types"`
	Descriptions []models.TodoDesc `json:"descriptions"`
}
