package note

import (
	"errors"
	"fmt"

	"github.com/KromaEnergia/api-crm/internal/models"
	"github.com/KromaEnergia/api-crm/internal/policy"
	dbutil "github.com/KromaEnergia/api-crm/internal/utils/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const ownerColumn = "contacts.assigned_to_id"

// ItemFilter seleciona itens acionáveis de um tipo.
type ItemFilter struct {
	Kind      models.NoteKind
	Completed bool
	OwnerID   *uint
}

type Repository interface {
	Create(db *gorm.DB, n *models.Note) error
	FindWithContact(db *gorm.DB, id uint) (*models.Note, error)
	SaveTaskState(db *gorm.DB, n *models.Note) error
	Delete(db *gorm.DB, id uint) error
	ListItems(db *gorm.DB, scope policy.Scope, f ItemFilter) ([]models.Note, error)
	ListForReport(db *gorm.DB, scope policy.Scope) ([]models.Note, error)
	Recent(db *gorm.DB, scope policy.Scope, limit int) ([]models.Note, error)
	ListTypes(db *gorm.DB) ([]models.TodoType, error)
	ListDescriptions(db *gorm.DB) ([]models.TodoDesc, error)
	DescriptionExists(db *gorm.DB, id uint) (bool, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(db *gorm.DB, n *models.Note) error {
	return db.Omit(clause.Associations).Create(n).Error
}

// FindWithContact traz a nota com o contato pai, necessário para as checagens de acesso.
func (r *repositoryImpl) FindWithContact(db *gorm.DB, id uint) (*models.Note, error) {
	var n models.Note
	if err := db.Preload("Contact").First(&n, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("note %d: %w", id, policy.ErrNotFound)
		}
		return nil, err
	}
	if n.Contact == nil {
		return nil, fmt.Errorf("note %d contact: %w", id, policy.ErrNotFound)
	}
	return &n, nil
}

// SaveTaskState grava só o estado de tarefa (status, atualização, conclusão).
func (r *repositoryImpl) SaveTaskState(db *gorm.DB, n *models.Note) error {
	res := db.Model(&models.Note{ID: n.ID}).
		Select("task_status_id", "task_update", "completed_at").
		Updates(map[string]any{
			"task_status_id": n.TaskStatusID,
			"task_update":    n.TaskUpdate,
			"completed_at":   n.CompletedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("note %d: %w", n.ID, policy.ErrNotFound)
	}
	return nil
}

func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	res := db.Delete(&models.Note{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("note %d: %w", id, policy.ErrNotFound)
	}
	return nil
}

// scoped filtra notas pela posse do contato pai.
func (r *repositoryImpl) scoped(db *gorm.DB, scope policy.Scope) *gorm.DB {
	return db.Model(&models.Note{}).
		Joins("JOIN contacts ON contacts.id = notes.contact_id").
		Scopes(dbutil.Scoped(scope, ownerColumn))
}

// ListItems: abertos por vencimento crescente, concluídos pela conclusão mais recente.
func (r *repositoryImpl) ListItems(db *gorm.DB, scope policy.Scope, f ItemFilter) ([]models.Note, error) {
	typeID := f.Kind.TodoTypeID()
	if typeID == nil {
		return nil, policy.NewValidationError("type", "Invalid note type.")
	}
	status := models.TaskPending
	order := "notes.due_date ASC"
	if f.Completed {
		status = models.TaskCompleted
		order = "notes.completed_at DESC"
	}

	q := r.scoped(db, scope).
		Where("notes.todo_type_id = ? AND notes.task_status_id = ?", *typeID, status)
	if f.OwnerID != nil {
		q = q.Where(ownerColumn+" = ?", *f.OwnerID)
	}
	var list []models.Note
	err := q.Preload("Contact").
		Preload("Contact.AssignedTo").
		Preload("Author").
		Preload("TodoType").
		Preload("TodoDesc").
		Preload("TaskStatus").
		Order(order).
		Find(&list).Error
	return list, err
}

// ListForReport traz só os itens acionáveis com o dono atual do contato.
func (r *repositoryImpl) ListForReport(db *gorm.DB, scope policy.Scope) ([]models.Note, error) {
	var list []models.Note
	err := r.scoped(db, scope).
		Where("notes.todo_type_id IS NOT NULL").
		Preload("Contact", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "assigned_to_id")
		}).
		Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Recent(db *gorm.DB, scope policy.Scope, limit int) ([]models.Note, error) {
	var list []models.Note
	err := r.scoped(db, scope).
		Preload("Contact").
		Preload("Author").
		Preload("TodoType").
		Order("notes.created_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *repositoryImpl) ListTypes(db *gorm.DB) ([]models.TodoType, error) {
	var list []models.TodoType
	err := db.Order("id").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) ListDescriptions(db *gorm.DB) ([]models.TodoDesc, error) {
	var list []models.TodoDesc
	err := db.Order("description").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) DescriptionExists(db *gorm.DB, id uint) (bool, error) {
	var n int64
	err := db.Model(&models.TodoDesc{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}
