package auth

import (
	"errors"
	"fmt"
	"time"

	"hr-workflow/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is the authenticated caller the workflows act on behalf of
type Identity struct {
	UserID uint
	Role   string
}

type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Guard issues and verifies HS256 bearer tokens
type Guard struct {
	secret []byte
	now    func() time.Time
}

func NewGuard(secret string) *Guard {
	return &Guard{secret: []byte(secret), now: time.Now}
}

func (g *Guard) Issue(identity Identity, ttl time.Duration) (string, error) {
	if identity.UserID == 0 || !models.ValidRole(identity.Role) {
		return "", fmt.Errorf("issue token: %w", ErrInvalidToken)
	}

	now := g.now()
	claims := Claims{
		UserID: identity.UserID,
		Role:   identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", identity.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
}

// Resolve verifies the token and returns the identity it carries
func (g *Guard) Resolve(token string) (Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return g.secret, nil
	}, jwt.WithTimeFunc(g.now))
	if err != nil || !parsed.Valid {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.UserID == 0 || !models.ValidRole(claims.Role) {
		return Identity{}, ErrInvalidToken
	}

	return Identity{UserID: claims.UserID, Role: claims.Role}, nil
}
