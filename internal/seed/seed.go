package seed

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KromaEnergia/api-crm/internal/auth"
	"github.com/KromaEnergia/api-crm/internal/logger"
	"github.com/KromaEnergia/api-crm/internal/models"
	"github.com/KromaEnergia/api-crm/internal/users"
	"github.com/KromaEnergia/api-crm/internal/utils"
	"gorm.io/gorm"
)

// Migrate cria/atualiza as tabelas de todos os modelos.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.ContactStatus{},
		&models.TaskStatus{},
		&models.TodoType{},
		&models.TodoDesc{},
		&models.User{},
		&models.Contact{},
		&models.Note{},
		&auth.RefreshToken{},
	)
}

// Options do gerente inicial. Senha vazia gera uma temporária.
type Options struct {
	ManagerEmail    string
	ManagerPassword string
}

// Run popula as tabelas de referência e garante um gerente. Pode rodar a cada boot.
func Run(db *gorm.DB, opts Options) error {
	if err := referenceData(db); err != nil {
		return err
	}
	return defaultManager(db, users.NewRepository(), opts)
}

func referenceData(db *gorm.DB) error {
	for _, s := range models.ContactStatuses {
		if err := db.Where(models.ContactStatus{ID: s.ID}).FirstOrCreate(&s).Error; err != nil {
			return fmt.Errorf("seed contact_status %d: %w", s.ID, err)
		}
	}
	for _, s := range models.TaskStatuses {
		if err := db.Where(models.TaskStatus{ID: s.ID}).FirstOrCreate(&s).Error; err != nil {
			return fmt.Errorf("seed task_status %d: %w", s.ID, err)
		}
	}
	for _, t := range models.TodoTypes {
		if err := db.Where(models.TodoType{ID: t.ID}).FirstOrCreate(&t).Error; err != nil {
			return fmt.Errorf("seed todo_type %d: %w", t.ID, err)
		}
	}
	for _, d := range models.TodoDescs {
		if err := db.Where(models.TodoDesc{ID: d.ID}).FirstOrCreate(&d).Error; err != nil {
			return fmt.Errorf("seed todo_desc %d: %w", d.ID, err)
		}
	}
	return nil
}

func defaultManager(db *gorm.DB, repo users.Repository, opts Options) error {
	log := logger.Get("seed")
	email := strings.TrimSpace(opts.ManagerEmail)
	if email == "" {
		return nil
	}
	exists, err := repo.EmailExists(db, email)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	password, generated, err := managerPassword(opts.ManagerPassword)
	if err != nil {
		return err
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	u := NewManager(email, hash)
	if err := repo.Create(db, u); err != nil {
		return fmt.Errorf("seed manager: %w", err)
	}

	entry := log.WithField("email", email)
	if generated {
		// exibida uma única vez; troque no primeiro acesso
		entry.WithField("temporary_password", password).Warn("gerente padrão criado com senha temporária")
		return nil
	}
	entry.Info("gerente padrão criado")
	return nil
}

var errWeakSeedPassword = errors.New("SEED_MANAGER_PASSWORD não atende à política de senha")

// managerPassword usa a senha configurada ou gera uma temporária.
func managerPassword(configured string) (string, bool, error) {
	if configured != "" {
		if !utils.IsStrongPassword(configured) {
			return "", false, errWeakSeedPassword
		}
		return configured, false, nil
	}
	pw, err := utils.GenerateTemporaryPassword()
	if err != nil {
		return "", false, err
	}
	return pw, true, nil
}

// NewManager monta o usuário gerente ativo.
func NewManager(email, hash string) *models.User {
	return &models.User{
		FirstName: "System",
		LastName:  "Administrator",
		Email:     email,
		Password:  hash,
		Role:      models.RoleManager,
		IsActive:  true,
	}
}
