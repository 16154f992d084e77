package auth

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// RefreshToken guarda apenas o hash do token; o valor bruto vive no cookie.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index"`
	FamilyID  string    `gorm:"size:64;index"`
	Hash      string    `gorm:"size:64;uniqueIndex"`
	ExpiresAt time.Time `gorm:"index"`
	RevokedAt *time.Time
	CreatedAt time.Time
}

func (t RefreshToken) Usable(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}

var ErrTokenNotFound = errors.New("refresh token não encontrado")

// ErrTokenReused: outra requisição já rotacionou o token.
var ErrTokenReused = errors.New("refresh token já utilizado")

type Store interface {
	Save(db *gorm.DB, rt *RefreshToken) error
	FindByHash(db *gorm.DB, hash string) (*RefreshToken, error)
	Revoke(db *gorm.DB, id uint, at time.Time) error
	RevokeByHash(db *gorm.DB, hash string, at time.Time) error
	RevokeFamily(db *gorm.DB, familyID string, at time.Time) error
}

type storeImpl struct{}

func NewStore() Store { return &storeImpl{} }

func (s *storeImpl) Save(db *gorm.DB, rt *RefreshToken) error {
	return db.Create(rt).Error
}

func (s *storeImpl) FindByHash(db *gorm.DB, hash string) (*RefreshToken, error) {
	var rt RefreshToken
	if err := db.Where("hash = ?", hash).First(&rt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &rt, nil
}

// Revoke só tem efeito se o token ainda estiver ativo; nenhuma linha afetada é ErrTokenReused.
func (s *storeImpl) Revoke(db *gorm.DB, id uint, at time.Time) error {
	res := db.Model(&RefreshToken{}).Where("id = ? AND revoked_at IS NULL", id).Update("revoked_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTokenReused
	}
	return nil
}

func (s *storeImpl) RevokeByHash(db *gorm.DB, hash string, at time.Time) error {
	return db.Model(&RefreshToken{}).Where("hash = ? AND revoked_at IS NULL", hash).Update("revoked_at", at).Error
}

func (s *storeImpl) RevokeFamily(db *gorm.DB, familyID string, at time.Time) error {
	return db.Model(&RefreshToken{}).Where("family_id = ? AND revoked_at IS NULL", familyID).Update("revoked_at", at).Error
}
