package contact

import (
	"errors"
	"fmt"
	"time"

	"github.com/KromaEnergia/api-crm/internal/models"
	"github.com/KromaEnergia/api-crm/internal/policy"
	dbutil "github.com/KromaEnergia/api-crm/internal/utils/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const ownerColumn = "contacts.assigned_to_id"

type Repository interface {
	Create(db *gorm.DB, c *models.Contact) error
	FindByID(db *gorm.DB, id uint) (*models.Contact, error)
	FindDetail(db *gorm.DB, id uint) (*models.Contact, error)
	Exists(db *gorm.DB, id uint) (bool, error)
	UpdateGuarded(db *gorm.DB, c *models.Contact, seen time.Time) error
	ListByStatus(db *gorm.DB, scope policy.Scope, statusName string) ([]models.Contact, error)
	ListFiltered(db *gorm.DB, scope policy.Scope, ownerID *uint, statusName string) ([]models.Contact, error)
	ListForReport(db *gorm.DB, scope policy.Scope) ([]models.Contact, error)
	Recent(db *gorm.DB, scope policy.Scope, limit int) ([]models.Contact, error)
	ListStatuses(db *gorm.DB) ([]models.ContactStatus, error)
	StatusExists(db *gorm.DB, id uint) (bool, error)
	EmailInUse(db *gorm.DB, email string, excludeID uint) (bool, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(db *gorm.DB, c *models.Contact) error {
	return db.Omit(clause.Associations).Create(c).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*models.Contact, error) {
	var c models.Contact
	if err := db.First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("contact %d: %w", id, policy.ErrNotFound)
		}
		return nil, err
	}
	return &c, nil
}

// FindDetail carrega status, dono e notas (mais novas primeiro).
func (r *repositoryImpl) FindDetail(db *gorm.DB, id uint) (*models.Contact, error) {
	var c models.Contact
	err := db.
		Preload("Status").
		Preload("AssignedTo").
		Preload("Notes", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Notes.Author").
		Preload("Notes.TodoType").
		Preload("Notes.TodoDesc").
		Preload("Notes.TaskStatus").
		First(&c, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("contact %d: %w", id, policy.ErrNotFound)
		}
		return nil, err
	}
	return &c, nil
}

func (r *repositoryImpl) Exists(db *gorm.DB, id uint) (bool, error) {
	var n int64
	err := db.Model(&models.Contact{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// UpdateGuarded grava todos os campos só se updated_at ainda for seen.
// Nenhuma linha afetada vira policy.ErrConflict.
func (r *repositoryImpl) UpdateGuarded(db *gorm.DB, c *models.Contact, seen time.Time) error {
	res := db.Model(c).
		Where("updated_at = ?", seen).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(c)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("contact %d: %w", c.ID, policy.ErrConflict)
	}
	return nil
}

func (r *repositoryImpl) listQuery(db *gorm.DB, scope policy.Scope) *gorm.DB {
	return db.Model(&models.Contact{}).
		Scopes(dbutil.Scoped(scope, ownerColumn)).
		Preload("Status").
		Preload("AssignedTo")
}

func (r *repositoryImpl) ListByStatus(db *gorm.DB, scope policy.Scope, statusName string) ([]models.Contact, error) {
	return r.ListFiltered(db, scope, nil, statusName)
}

func (r *repositoryImpl) ListFiltered(db *gorm.DB, scope policy.Scope, ownerID *uint, statusName string) ([]models.Contact, error) {
	q := r.listQuery(db, scope)
	if ownerID != nil {
		q = q.Where(ownerColumn+" = ?", *ownerID)
	}
	if statusName != "" {
		q = q.Joins("JOIN contact_status ON contact_status.id = contacts.status_id").
			Where("contact_status.status = ?", statusName)
	}
	var list []models.Contact
	err := q.Order("contacts.updated_at DESC").Find(&list).Error
	return list, err
}

// ListForReport traz só as colunas usadas nas agregações.
func (r *repositoryImpl) ListForReport(db *gorm.DB, scope policy.Scope) ([]models.Contact, error) {
	var list []models.Contact
	err := db.Model(&models.Contact{}).
		Scopes(dbutil.Scoped(scope, ownerColumn)).
		Select("id", "status_id", "assigned_to_id").
		Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Recent(db *gorm.DB, scope policy.Scope, limit int) ([]models.Contact, error) {
	var list []models.Contact
	err := r.listQuery(db, scope).
		Order("contacts.updated_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *repositoryImpl) ListStatuses(db *gorm.DB) ([]models.ContactStatus, error) {
	var list []models.ContactStatus
	err := db.Order("status").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) StatusExists(db *gorm.DB, id uint) (bool, error) {
	var n int64
	err := db.Model(&models.ContactStatus{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *repositoryImpl) EmailInUse(db *gorm.DB, email string, excludeID uint) (bool, error) {
	var n int64
	err := db.Model(&models.Contact{}).
		Where("LOWER(email) = LOWER(?) AND id <> ?", email, excludeID).
		Count(&n).Error
	return n > 0, err
}
