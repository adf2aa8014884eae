// Package services contains the core business logic: session tokens, the
// table registry, and the external song search.
package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role represents a user's permission level at a table.
type Role string

const (
	RoleAdmin Role = "admin" // Staff: moderates the queue
	RoleGuest Role = "guest" // Patron: submits and views song requests
)

// Token verification failures. Verify never fails for business-logic reasons;
// whether the user behind the claims still exists is a downstream concern.
var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")
)

// Claims is the JWT payload binding a user to a table for the session.
type Claims struct {
	UserID   int64  `json:"uid"`
	TableID  int64  `json:"tid"`
	Nickname string `json:"nick"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}

// AuthService issues and verifies signed session tokens. The signing secret is
// process-wide configuration, loaded once at startup. There is no revocation;
// compromise mitigation relies on the short TTL.
type AuthService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthService creates an AuthService with the given signing secret and
// token lifetime.
func NewAuthService(secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue creates a signed token encoding the user's table-scoped identity.
// The jti claim carries a random token id for log correlation.
func (s *AuthService) Issue(userID, tableID int64, nickname string, role Role) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:   userID,
		TableID:  tableID,
		Nickname: nickname,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    "laranacanta",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the token signature and expiry against the service clock and
// returns the claims. Failures map to ErrTokenMalformed, ErrTokenExpired, or
// ErrTokenInvalid.
func (s *AuthService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithValidMethods([]string{"HS256"}))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrTokenInvalid
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
