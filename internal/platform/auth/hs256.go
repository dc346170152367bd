package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	defaultRoleClaim = "role"
	minSigningKeyLen = 32
)

// HS256Verifier accepts bearer tokens signed with a shared HMAC key.
type HS256Verifier struct {
	key       []byte
	issuer    string
	roleClaim string
	parser    *jwt.Parser
}

var _ TokenVerifier = (*HS256Verifier)(nil)

// NewHS256Verifier builds a verifier for key. A non-empty issuer must match the
// iss claim of every token.
func NewHS256Verifier(key, issuer string) (*HS256Verifier, error) {
	key = strings.TrimSpace(key)
	if len(key) < minSigningKeyLen {
		return nil, fmt.Errorf("auth: signing key must be at least %d bytes", minSigningKeyLen)
	}
	return &HS256Verifier{
		key:       []byte(key),
		issuer:    strings.TrimSpace(issuer),
		roleClaim: defaultRoleClaim,
		parser:    jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}, nil
}

func (v *HS256Verifier) Verify(_ context.Context, token string) (*Identity, error) {
	claims := jwt.MapClaims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return v.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if _, hasExp := claims["exp"]; !hasExp {
		return nil, fmt.Errorf("%w: exp claim is required", ErrTokenInvalid)
	}
	if v.issuer != "" && !claims.VerifyIssuer(v.issuer, true) {
		return nil, fmt.Errorf("%w: issuer mismatch", ErrTokenInvalid)
	}
	subject := claimAsString(claims, "sub")
	if subject == "" {
		return nil, fmt.Errorf("%w: sub claim is required", ErrTokenInvalid)
	}
	return &Identity{
		Subject: subject,
		Email:   claimAsString(claims, "email"),
		Roles:   rolesFromClaims(claims, v.roleClaim),
		Source:  "hs256",
	}, nil
}

// Issue signs a token for subject. Used by the token CLI and tests.
func (v *HS256Verifier) Issue(subject string, roles []string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", errors.New("auth: subject is required")
	}
	if ttl <= 0 {
		return "", errors.New("auth: ttl must be positive")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":       subject,
		"iat":       now.Unix(),
		"exp":       now.Add(ttl).Unix(),
		v.roleClaim: roles,
	}
	if v.issuer != "" {
		claims["iss"] = v.issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.key)
}
