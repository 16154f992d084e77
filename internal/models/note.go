package models

import (
	"errors"
	"strings"
	"time"
)

// IDs fixos das tabelas de referência de notas.
const (
	TaskPending   uint = 1
	TaskCompleted uint = 2

	TodoTask    uint = 1
	TodoMeeting uint = 2
)

type TaskStatus struct {
	ID     uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Status string `gorm:"size:50;not null" json:"status"`
}

func (TaskStatus) TableName() string { return "task_status" }

type TodoType struct {
	ID   uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Type string `gorm:"size:50;not null" json:"type"`
}

func (TodoType) TableName() string { return "todo_type" }

type TodoDesc struct {
	ID          uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Description string `gorm:"size:100;not null" json:"description"`
}

func (TodoDesc) TableName() string { return "todo_desc" }

var TaskStatuses = []TaskStatus{
	{ID: TaskPending, Status: "Pending"},
	{ID: TaskCompleted, Status: "Completed"},
}

var TodoTypes = []TodoType{
	{ID: TodoTask, Type: "Task"},
	{ID: TodoMeeting, Type: "Meeting"},
}

var TodoDescs = []TodoDesc{
	{ID: 1, Description: "Follow Up Email"},
	{ID: 2, Description: "Phone Call"},
	{ID: 3, Description: "Conference"},
	{ID: 4, Description: "Meetup"},
	{ID: 5, Description: "Tech Demo"},
}

// NoteKind distingue nota simples de item acionável (Task/Meeting).
type NoteKind string

const (
	KindNote    NoteKind = "Note"
	KindTask    NoteKind = "Task"
	KindMeeting NoteKind = "Meeting"
)

var ErrInvalidNoteKind = errors.New("invalid note type")

func ParseNoteKind(s string) (NoteKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "note":
		return KindNote, nil
	case "task":
		return KindTask, nil
	case "meeting":
		return KindMeeting, nil
	}
	return "", ErrInvalidNoteKind
}

// TodoTypeID devolve o id de todo_type; nota simples não tem.
func (k NoteKind) TodoTypeID() *uint {
	var id uint
	switch k {
	case KindTask:
		id = TodoTask
	case KindMeeting:
		id = TodoMeeting
	default:
		return nil
	}
	return &id
}

func (k NoteKind) Actionable() bool { return k == KindTask || k == KindMeeting }

func (k NoteKind) String() string { return string(k) }

type Note struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	Content   string   `gorm:"size:4000;not null" json:"content"`
	ContactID uint     `gorm:"not null;index" json:"contactId"`
	Contact   *Contact `gorm:"foreignKey:ContactID" json:"contact,omitempty"`
	AuthorID  uint     `gorm:"not null;index" json:"authorId"`
	Author    *User    `gorm:"foreignKey:AuthorID;constraint:OnDelete:RESTRICT" json:"author,omitempty"`

	// Campos de item acionável; nulos em nota simples
	TodoTypeID   *uint       `gorm:"index" json:"todoTypeId,omitempty"`
	TodoType     *TodoType   `gorm:"foreignKey:TodoTypeID" json:"todoType,omitempty"`
	TodoDescID   *uint       `json:"todoDescId,omitempty"`
	TodoDesc     *TodoDesc   `gorm:"foreignKey:TodoDescID" json:"todoDesc,omitempty"`
	DueDate      *time.Time  `gorm:"index" json:"dueDate,omitempty"`
	TaskStatusID *uint       `gorm:"index" json:"taskStatusId,omitempty"`
	TaskStatus   *TaskStatus `gorm:"foreignKey:TaskStatusID" json:"taskStatus,omitempty"`
	TaskUpdate   string      `gorm:"size:4000" json:"taskUpdate,omitempty"`
	CompletedAt  *time.Time  `json:"completedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

func (n Note) Kind() NoteKind {
	if n.TodoTypeID == nil {
		return KindNote
	}
	switch *n.TodoTypeID {
	case TodoTask:
		return KindTask
	case TodoMeeting:
		return KindMeeting
	}
	return KindNote
}

func (n Note) IsActionable() bool { return n.Kind().Actionable() }

func (n Note) IsCompleted() bool {
	return n.TaskStatusID != nil && *n.TaskStatusID == TaskCompleted
}

func (n Note) IsPending() bool {
	return n.IsActionable() && !n.IsCompleted()
}
