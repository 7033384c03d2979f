// Package token issues and verifies the signed, stateless credentials that
// carry a FactEcho identity between requests.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/factecho/factecho/internal/authz"
)

var (
	// ErrTokenInvalid indicates a malformed token or a bad signature.
	ErrTokenInvalid = errors.New("token: invalid")
	// ErrTokenExpired indicates a structurally valid token past its expiry.
	ErrTokenExpired = errors.New("token: expired")
)

// Claims is the payload embedded in every FactEcho token. The role reflects
// the identity's role at issuance time; the authz freshness hook catches
// drift against the persisted role.
type Claims struct {
	UserID string `json:"uid"`
	Role   int    `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs and verifies HS256 tokens.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewManager constructs a Manager. The secret must be non-empty.
func NewManager(secret string, accessTTL, refreshTTL time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("token: secret must be provided")
	}
	return &Manager{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}, nil
}

// GenerateAccess signs a short-lived access token for the identity.
func (m *Manager) GenerateAccess(identity authz.Identity) (string, error) {
	return m.generate(identity, m.accessTTL)
}

// GenerateRefresh signs a long-lived refresh token for the identity.
func (m *Manager) GenerateRefresh(identity authz.Identity) (string, error) {
	return m.generate(identity, m.refreshTTL)
}

func (m *Manager) generate(identity authz.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: identity.UserID.String(),
		Role:   int(identity.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify validates the token and reconstructs the embedded identity.
// Expired-but-otherwise-valid tokens fail with ErrTokenExpired so the
// refresh flow can tell them apart from tampering.
func (m *Manager) Verify(rawToken string) (authz.Identity, error) {
	parsed, err := jwt.ParseWithClaims(rawToken, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return authz.Identity{}, ErrTokenExpired
		}
		return authz.Identity{}, fmt.Errorf("%w: %s", ErrTokenInvalid, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return authz.Identity{}, ErrTokenInvalid
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return authz.Identity{}, fmt.Errorf("%w: user id claim", ErrTokenInvalid)
	}
	role, err := authz.ParseRole(claims.Role)
	if err != nil {
		return authz.Identity{}, fmt.Errorf("%w: role claim", ErrTokenInvalid)
	}
	return authz.Identity{UserID: userID, Role: role}, nil
}

// AccessTTL exposes the configured access-token lifetime.
func (m *Manager) AccessTTL() time.Duration { return m.accessTTL }

// RefreshTTL exposes the configured refresh-token lifetime.
func (m *Manager) RefreshTTL() time.Duration { return m.refreshTTL }

var _ authz.TokenVerifier = (*Manager)(nil)
