// Package service implements the application's business operations.
package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"biolink/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	sessionIssuer   = "biolink"
	sessionAudience = "biolink-web"
)

// Session is an issued login token bound to one user.
type Session struct {
	Token     string
	JTI       string
	UserID    uint
	ExpiresAt time.Time
	User      *models.User
}

// SessionClaims is the verified content of a session token.
type SessionClaims struct {
	UserID    uint
	JTI       string
	ExpiresAt time.Time
}

// SessionManager signs and verifies HS256 session tokens.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionManager returns a manager that issues tokens valid for ttl.
func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &SessionManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the lifetime of newly issued tokens.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a fresh token for userID with a unique jti.
func (m *SessionManager) Issue(userID uint) (*Session, error) {
	if len(m.secret) == 0 {
		return nil, errors.New("session secret not configured")
	}

	now := m.now()
	expiresAt := now.Add(m.ttl)
	jti := uuid.NewString()

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    sessionIssuer,
		Audience:  jwt.ClaimStrings{sessionAudience},
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        jti,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	return &Session{Token: token, JTI: jti, UserID: userID, ExpiresAt: expiresAt}, nil
}

// Parse verifies signature, issuer, audience and expiry and returns the claims.
func (m *SessionManager) Parse(token string) (*SessionClaims, error) {
	if token == "" {
		return nil, models.NewUnauthorizedError("missing session")
	}

	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(_ *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithAudience(sessionAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return nil, models.NewUnauthorizedError("invalid or expired session")
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return nil, models.NewUnauthorizedError("invalid session subject")
	}

	return &SessionClaims{
		UserID:    uint(userID),
		JTI:       claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
