package users

import (
	"time"

	"github.com/KromaEnergia/api-crm/internal/models"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	FirstName       string `json:"firstName" validate:"required,max=100"`
	MiddleName      string `json:"middleName" validate:"max=100"`
	LastName        string `json:"lastName" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email,max=256"`
	Password        string `json:"password" validate:"required,strong_password"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
	Role            string `json:"role" validate:"required"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// UserView é a linha da listagem administrativa de usuários.
type UserView struct {
	ID           uint        `json:"id"`
	FullName     string      `json:"fullName"`
	Email        string      `json:"email"`
	Role         models.Role `json:"role"`
	IsActive     bool        `json:"isActive"`
	CreatedAt    time.Time   `json:"createdAt"`
	ContactCount int         `json:"contactCount"`
}

// Option é uma escolha de dono nos formulários.
type Option struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type ActionResult struct {
	Message string       `json:"message"`
	User    *models.User `json:"user,omitempty"`
}
