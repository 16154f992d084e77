package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/KromaEnergia/api-crm/internal/logger"
	"github.com/KromaEnergia/api-crm/internal/models"
	"github.com/KromaEnergia/api-crm/internal/policy"
	"github.com/KromaEnergia/api-crm/internal/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RefreshTTL    = 30 * 24 * time.Hour
	RefreshCookie = "rt"
)

// AccountLookup relê papel e status do usuário a cada refresh.
type AccountLookup func(ctx context.Context, userID uint) (role models.Role, active bool, err error)

// TokenResponse é o corpo devolvido no login e no refresh.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Sessions emite e rotaciona refresh tokens.
type Sessions struct {
	DB     *gorm.DB
	Store  Store
	Lookup AccountLookup
	Now    func() time.Time
}

func NewSessions(db *gorm.DB, lookup AccountLookup) *Sessions {
	return &Sessions{DB: db, Store: NewStore(), Lookup: lookup, Now: time.Now}
}

func (s *Sessions) tx(ctx context.Context) *gorm.DB {
	if s.DB == nil {
		return nil
	}
	return s.DB.WithContext(ctx)
}

func genRaw() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashRaw(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(h[:])
}

func cookieSecure() bool {
	k, err := currentKeys()
	return err != nil || k.secure
}

func setRTCookie(w http.ResponseWriter, raw string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    raw,
		Path:     "/auth", // cobre /auth/refresh e /auth/logout
		HttpOnly: true,
		Secure:   cookieSecure(),
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
}

func clearRTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    "",
		Path:     "/auth",
		HttpOnly: true,
		Secure:   cookieSecure(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func (s *Sessions) issue(ctx context.Context, w http.ResponseWriter, userID uint, role models.Role, familyID string) (TokenResponse, error) {
	now := s.Now()
	access, err := GenerateAccessToken(userID, role, now)
	if err != nil {
		return TokenResponse{}, err
	}
	raw, err := genRaw()
	if err != nil {
		return TokenResponse{}, err
	}
	rt := RefreshToken{
		UserID:    userID,
		FamilyID:  familyID,
		Hash:      hashRaw(raw),
		ExpiresAt: now.Add(RefreshTTL),
	}
	if err := s.Store.Save(s.tx(ctx), &rt); err != nil {
		return TokenResponse{}, fmt.Errorf("salvar refresh token: %w", err)
	}
	setRTCookie(w, raw, rt.ExpiresAt)
	return TokenResponse{AccessToken: access, TokenType: "Bearer", ExpiresIn: int(AccessTTL.Seconds())}, nil
}

// IssueOnLogin abre uma nova família de refresh tokens para o usuário.
func (s *Sessions) IssueOnLogin(ctx context.Context, w http.ResponseWriter, userID uint, role models.Role) (TokenResponse, error) {
	return s.issue(ctx, w, userID, role, uuid.NewString())
}

// POST /auth/refresh
func (s *Sessions) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(logger.Get("auth"), ctx)

	c, err := r.Cookie(RefreshCookie)
	if err != nil || c.Value == "" {
		utils.WriteError(w, r, policy.ErrUnauthenticated)
		return
	}
	db := s.tx(ctx)
	now := s.Now()

	cur, err := s.Store.FindByHash(db, hashRaw(c.Value))
	if err != nil {
		clearRTCookie(w)
		if !errors.Is(err, ErrTokenNotFound) {
			utils.WriteError(w, r, err)
			return
		}
		utils.WriteError(w, r, policy.ErrUnauthenticated)
		return
	}
	if cur.RevokedAt != nil {
		// token já rotacionado sendo reapresentado: derruba a família inteira
		log.WithField("family_id", cur.FamilyID).Warn("reuso de refresh token revogado")
		_ = s.Store.RevokeFamily(db, cur.FamilyID, now)
	}
	if !cur.Usable(now) {
		clearRTCookie(w)
		utils.WriteError(w, r, policy.ErrUnauthenticated)
		return
	}

	role, active, err := s.Lookup(ctx, cur.UserID)
	if err != nil && !errors.Is(err, policy.ErrNotFound) {
		utils.WriteError(w, r, err)
		return
	}
	if err != nil || !active {
		_ = s.Store.RevokeFamily(db, cur.FamilyID, now)
		clearRTCookie(w)
		utils.WriteError(w, r, policy.Deny("This account has been deactivated."))
		return
	}

	if err := s.Store.Revoke(db, cur.ID, now); err != nil {
		if errors.Is(err, ErrTokenReused) {
			// rotação concorrente com o mesmo cookie
			log.WithField("family_id", cur.FamilyID).Warn("refresh token rotacionado em paralelo")
			_ = s.Store.RevokeFamily(db, cur.FamilyID, now)
			clearRTCookie(w)
			utils.WriteError(w, r, policy.ErrUnauthenticated)
			return
		}
		utils.WriteError(w, r, err)
		return
	}
	resp, err := s.issue(ctx, w, cur.UserID, role, cur.FamilyID)
	if err != nil {
		clearRTCookie(w)
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

// POST /auth/logout
func (s *Sessions) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(RefreshCookie); err == nil && c.Value != "" {
		if err := s.Store.RevokeByHash(s.tx(r.Context()), hashRaw(c.Value), s.Now()); err != nil {
			logger.FromContext(logger.Get("auth"), r.Context()).WithError(err).Warn("falha ao revogar refresh token")
		}
	}
	clearRTCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
