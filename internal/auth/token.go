package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"agendaria/backend/internal/domain"
	"agendaria/backend/internal/fault"
)

type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies the HS256 bearer tokens used by the HTTP API.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

func (i *TokenIssuer) Issue(userID uuid.UUID, role domain.Role) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID: userID.String(),
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Parse validates a token and returns the actor it encodes.
func (i *TokenIssuer) Parse(token string) (domain.Actor, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !parsed.Valid {
		return domain.Actor{}, fault.New(fault.KindUnauthenticated, "invalid or expired token")
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return domain.Actor{}, fault.New(fault.KindUnauthenticated, "invalid or expired token")
	}
	role := domain.Role(claims.Role)
	if !role.Valid() {
		return domain.Actor{}, fault.New(fault.KindUnauthenticated, "invalid or expired token")
	}
	return domain.Actor{ID: userID, Role: role}, nil
}
