package users

import (
	"errors"
	"fmt"

	"github.com/KromaEnergia/api-crm/internal/models"
	"github.com/KromaEnergia/api-crm/internal/policy"
	"gorm.io/gorm"
)

type Repository interface {
	FindByEmail(db *gorm.DB, email string) (*models.User, error)
	FindByID(db *gorm.DB, id uint) (*models.User, error)
	EmailExists(db *gorm.DB, email string) (bool, error)
	Create(db *gorm.DB, u *models.User) error
	ListAll(db *gorm.DB) ([]models.User, error)
	ListActive(db *gorm.DB) ([]models.User, error)
	IsActive(db *gorm.DB, id uint) (bool, error)
	SetActive(db *gorm.DB, id uint, active bool) error
	SetRole(db *gorm.DB, id uint, role models.Role) error
	SaveLoginState(db *gorm.DB, u *models.User) error
	ContactCounts(db *gorm.DB) (map[uint]int, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func notFound(err error, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("user %v: %w", id, policy.ErrNotFound)
	}
	return err
}

func (r *repositoryImpl) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	var u models.User
	if err := db.Where("LOWER(email) = LOWER(?)", email).First(&u).Error; err != nil {
		return nil, notFound(err, email)
	}
	return &u, nil
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*models.User, error) {
	var u models.User
	if err := db.First(&u, id).Error; err != nil {
		return nil, notFound(err, id)
	}
	return &u, nil
}

func (r *repositoryImpl) EmailExists(db *gorm.DB, email string) (bool, error) {
	var n int64
	err := db.Model(&models.User{}).Where("LOWER(email) = LOWER(?)", email).Count(&n).Error
	return n > 0, err
}

func (r *repositoryImpl) Create(db *gorm.DB, u *models.User) error {
	return db.Create(u).Error
}

func (r *repositoryImpl) ListAll(db *gorm.DB) ([]models.User, error) {
	var list []models.User
	err := db.Order("first_name, last_name").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) ListActive(db *gorm.DB) ([]models.User, error) {
	var list []models.User
	err := db.Where("is_active = ?", true).Order("first_name, last_name").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) IsActive(db *gorm.DB, id uint) (bool, error) {
	var n int64
	err := db.Model(&models.User{}).Where("id = ? AND is_active = ?", id, true).Count(&n).Error
	return n > 0, err
}

func (r *repositoryImpl) SetActive(db *gorm.DB, id uint, active bool) error {
	res := db.Model(&models.User{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", id, policy.ErrNotFound)
	}
	return nil
}

func (r *repositoryImpl) SetRole(db *gorm.DB, id uint, role models.Role) error {
	res := db.Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", id, policy.ErrNotFound)
	}
	return nil
}

func (r *repositoryImpl) SaveLoginState(db *gorm.DB, u *models.User) error {
	return db.Model(&models.User{}).Where("id = ?", u.ID).Updates(map[string]any{
		"failed_login_count": u.FailedLoginCount,
		"lockout_end":        u.LockoutEnd,
	}).Error
}

// ContactCounts conta contatos por dono (assigned_to_id).
func (r *repositoryImpl) ContactCounts(db *gorm.DB) (map[uint]int, error) {
	var rows []struct {
		AssignedToID uint
		Total        int
	}
	err := db.Model(&models.Contact{}).
		Select("assigned_to_id, COUNT(*) AS total").
		Group("assigned_to_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]int, len(rows))
	for _, row := range rows {
		out[row.AssignedToID] = row.Total
	}
	return out, nil
}
