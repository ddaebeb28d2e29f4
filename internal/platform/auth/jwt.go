package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = 24 * time.Hour

var (
	// ErrTokenExpired signals that the provided token has expired.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrTokenInvalid signals that the provided token failed verification.
	ErrTokenInvalid = errors.New("auth: token invalid")
)

// Claims carries the identity payload embedded in issued tokens.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HMAC-signed API tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// TokenManagerOption customises TokenManager behaviour.
type TokenManagerOption func(*TokenManager)

// WithTokenTTL overrides the token lifetime.
func WithTokenTTL(ttl time.Duration) TokenManagerOption {
	return func(m *TokenManager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithIssuer sets the issuer claim stamped on new tokens.
func WithIssuer(issuer string) TokenManagerOption {
	return func(m *TokenManager) {
		issuer = strings.TrimSpace(issuer)
		if issuer != "" {
			m.issuer = issuer
		}
	}
}

// WithClock injects the time source used for issuance and validation.
func WithClock(now func() time.Time) TokenManagerOption {
	return func(m *TokenManager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewTokenManager constructs a TokenManager signing with the supplied secret.
func NewTokenManager(secret string, opts ...TokenManagerOption) (*TokenManager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	m := &TokenManager{
		secret: []byte(secret),
		ttl:    defaultTokenTTL,
		issuer: "manira-api",
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m, nil
}

// Issue signs a token for the given principal.
func (m *TokenManager) Issue(userID, email, role string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("auth: user id is required")
	}
	now := m.now().UTC()
	claims := Claims{
		Email: email,
		Role:  normaliseRole(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses the token and returns the embedded identity.
func (m *TokenManager) Verify(tokenStr string) (*Identity, error) {
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)

	_, err := parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	role := normaliseRole(claims.Role)
	if role == "" {
		role = RoleUser
	}

	return &Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
		Roles:  []string{role},
	}, nil
}

func normaliseRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
