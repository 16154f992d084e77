package policy

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/KromaEnergia/api-crm/internal/models"
)

const MaxContentLength = 4000

// ValidateContent devolve o conteúdo sem espaços nas pontas.
// O limite é contado em caracteres, não em bytes.
func ValidateContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", NewValidationError("content", "Content cannot be empty.")
	}
	if utf8.RuneCountInString(trimmed) > MaxContentLength {
		return "", NewValidationError("content", "Content cannot exceed 4000 characters.")
	}
	return trimmed, nil
}

// NoteInput é o pedido de criação de nota já desserializado.
type NoteInput struct {
	Content    string
	Kind       models.NoteKind
	TodoDescID *uint
	DueDate    *time.Time
}

func (in NoteInput) Validate() error {
	verr := &ValidationError{}
	if _, err := ValidateContent(in.Content); err != nil {
		if fields, ok := FieldErrors(err); ok {
			verr.Add("content", fields["content"])
		}
	}
	switch in.Kind {
	case models.KindNote:
	case models.KindTask, models.KindMeeting:
		if in.DueDate == nil || in.DueDate.IsZero() {
			verr.Add("dueDate", "Due date is required for a "+in.Kind.String()+".")
		}
	default:
		verr.Add("type", "Invalid note type.")
	}
	return verr.OrNil()
}

// NewNote monta a nota para o contato. Itens acionáveis nascem pendentes;
// nota simples descarta os campos de tarefa.
func NewNote(c Caller, contact models.Contact, in NoteInput, now time.Time) (*models.Note, error) {
	authorID, err := CurrentUserID(c)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if !CanAccess(c, contact) {
		return nil, Deny("You do not have access to this contact.")
	}

	content, _ := ValidateContent(in.Content)
	n := &models.Note{
		Content:   content,
		ContactID: contact.ID,
		AuthorID:  authorID,
		CreatedAt: now,
	}
	if in.Kind.Actionable() {
		pending := models.TaskPending
		due := *in.DueDate
		n.TodoTypeID = in.Kind.TodoTypeID()
		n.TodoDescID = in.TodoDescID
		n.DueDate = &due
		n.TaskStatusID = &pending
	}
	return n, nil
}

// CanAccessNote: gerente ou dono do contato pai.
func CanAccessNote(c Caller, note models.Note, contact models.Contact) bool {
	return note.ContactID == contact.ID && CanAccess(c, contact)
}

// CanDeleteNote: gerente, ou autor que ainda é dono do contato pai.
func CanDeleteNote(c Caller, note models.Note, contact models.Contact) bool {
	if note.ContactID != contact.ID || !c.Authenticated() {
		return false
	}
	if IsManager(c) {
		return true
	}
	return note.AuthorID == c.UserID && contact.AssignedToID == c.UserID
}

// Complete marca o item como concluído, guardando o texto de atualização opcional.
func Complete(c Caller, note *models.Note, contact models.Contact, update string, now time.Time) error {
	if !CanAccessNote(c, *note, contact) {
		return Deny("You do not have access to this item.")
	}
	if !note.IsActionable() {
		return NewValidationError("type", "Notes cannot be marked as completed.")
	}
	update = strings.TrimSpace(update)
	if utf8.RuneCountInString(update) > MaxContentLength {
		return NewValidationError("taskUpdate", "Task update cannot exceed 4000 characters.")
	}

	done := models.TaskCompleted
	at := now
	note.TaskStatusID = &done
	note.TaskStatus = nil
	note.CompletedAt = &at
	if update != "" {
		note.TaskUpdate = update
	}
	return nil
}

// Reopen volta o item para pendente. O texto de atualização é mantido.
func Reopen(c Caller, note *models.Note, contact models.Contact) error {
	if !CanAccessNote(c, *note, contact) {
		return Deny("You do not have access to this item.")
	}
	if !note.IsActionable() {
		return NewValidationError("type", "Notes cannot be reopened.")
	}
	pending := models.TaskPending
	note.TaskStatusID = &pending
	note.TaskStatus = nil
	note.CompletedAt = nil
	return nil
}
