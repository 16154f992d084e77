package models

import (
	"strings"
	"time"
)

type User struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	FirstName  string `gorm:"size:100;not null" json:"firstName"`
	MiddleName string `gorm:"size:100" json:"middleName,omitempty"`
	LastName   string `gorm:"size:100;not null" json:"lastName"`
	Email      string `gorm:"size:256;uniqueIndex;not null" json:"email"`
	Password   string `gorm:"size:255;not null" json:"-"` // hash bcrypt, nunca exposto
	Role       Role   `gorm:"size:20;not null;index" json:"role"`
	IsActive   bool   `gorm:"not null;default:true" json:"isActive"`

	// Controle de lockout do login
	FailedLoginCount int        `gorm:"not null;default:0" json:"-"`
	LockoutEnd       *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u User) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{u.FirstName, u.MiddleName, u.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
