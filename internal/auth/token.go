package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/KromaEnergia/api-crm/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims do access token: id do usuário e papel.
type Claims struct {
	UserID uint        `json:"userId"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

const AccessTTL = 15 * time.Minute

// GenerateAccessToken gera um JWT RS256 com kid, iss, aud, iat, nbf e jti.
func GenerateAccessToken(userID uint, role models.Role, now time.Time) (string, error) {
	k, err := currentKeys()
	if err != nil {
		return "", err
	}
	if !role.Valid() {
		return "", fmt.Errorf("papel inválido %q", role)
	}

	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    k.issuer,
			Audience:  []string{k.audience},
			Subject:   fmt.Sprint(userID),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-1 * time.Minute)),
			ID:        uuid.NewString(),
		},
	}

	tok := jwt.NewWithClaims(signMethod(), claims)
	tok.Header["kid"] = k.kid
	return tok.SignedString(k.priv)
}

// ParseAndValidate valida assinatura, iss, aud, exp e o papel.
func ParseAndValidate(tokenStr string) (*Claims, error) {
	k, err := currentKeys()
	if err != nil {
		return nil, err
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(k.issuer),
		jwt.WithAudience(k.audience),
		jwt.WithExpirationRequired(),
	)
	tok, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("kid ausente")
		}
		pub, ok := k.pub(kid)
		if !ok {
			return nil, errors.New("kid desconhecido")
		}
		return pub, nil
	})
	if err != nil {
		return nil, err
	}

	c, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, errors.New("token inválido")
	}
	if c.UserID == 0 || !c.Role.Valid() {
		return nil, errors.New("claims inválidas")
	}
	return c, nil
}
