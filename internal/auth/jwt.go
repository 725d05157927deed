package auth

import (
	"errors"
	"fmt"
	"time"

	"helpdesk/internal/tenant"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("auth: invalid token")
	ErrExpiredToken = errors.New("auth: token expired")
)

// Claims is the verified content of a bearer token. TenantID is the
// principal's home tenant as asserted at issuance; it is the only place a
// tenant id may enter a request from the client side.
type Claims struct {
	UserID   string `json:"sub"`
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService issues and verifies bearer tokens. Verification is the boundary
// of the isolation core: everything downstream trusts the Principal built
// from these claims and nothing else about the request.
type JWTService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewJWTService constructs a JWTService.
func NewJWTService(secret, issuer string, ttl time.Duration) *JWTService {
	return &JWTService{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// Issue creates a signed token for the given principal.
func (s *JWTService) Issue(p tenant.Principal) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID:   p.ID,
		TenantID: p.HomeTenantID,
		Role:     string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates a token and returns its claims.
func (s *JWTService) Verify(raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Principal builds the per-request Principal from verified claims. It fails
// when the claims do not form a usable identity; there is no partial
// principal.
func (c *Claims) Principal() (tenant.Principal, error) {
	role := tenant.Role(c.Role)
	if c.UserID == "" || c.TenantID == "" || !role.Valid() {
		return tenant.Principal{}, tenant.ErrAuthenticationRequired
	}
	return tenant.Principal{
		ID:           c.UserID,
		HomeTenantID: c.TenantID,
		Role:         role,
	}, nil
}
