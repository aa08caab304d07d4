package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campushelp/helpdesk-service/internal/domain"
)

// Claims is the identity asserted by the external identity provider. This
// service never authenticates credentials; it only verifies and decodes the
// provider's token.
type Claims struct {
	UserID    string
	Role      string
	Email     string
	FirstName string
	LastName  string
}

// TokenManager verifies HS256 bearer tokens minted by the identity provider.
type TokenManager struct {
	secret []byte
}

// NewTokenManager constructs a manager for the shared signing secret.
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret)}
}

// ParseToken validates the signature and expiry and extracts identity
// claims.
func (m *TokenManager) ParseToken(raw string) (*Claims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("unexpected claims format")
	}

	sub, err := mapClaims.GetSubject()
	if err != nil || sub == "" {
		return nil, errors.New("missing subject")
	}

	claims := &Claims{UserID: sub}
	claims.Role, _ = mapClaims["role"].(string)
	claims.Email, _ = mapClaims["email"].(string)
	claims.FirstName, _ = mapClaims["given_name"].(string)
	claims.LastName, _ = mapClaims["family_name"].(string)
	return claims, nil
}

// IssueToken mints a token in the identity provider's format. Used by tests
// and local development, where no real provider is available.
func (m *TokenManager) IssueToken(userID string, role domain.Role, email, firstName, lastName string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":         userID,
		"role":        string(role),
		"email":       email,
		"given_name":  firstName,
		"family_name": lastName,
		"iat":         now.Unix(),
		"exp":         now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}
