package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL applies when JWTConfig.Expiration is zero.
const DefaultTokenTTL = time.Hour

var (
	// ErrInvalidToken wraps every ValidateToken failure.
	ErrInvalidToken = errors.New("invalid token")
	// ErrCannotSign is returned by IssueToken on a validation-only service.
	ErrCannotSign = errors.New("token service has no signing key")
	// ErrMissingSubject is returned for tokens without a borrower subject.
	ErrMissingSubject = errors.New("token has no subject")
)

// JWTConfig holds JWT configuration. Exactly one kind of key material is
// used, in order of preference: PrivateKeyPEM, PublicKeyPEM, Secret.
type JWTConfig struct {
	// Secret is the HMAC-SHA256 symmetric key.
	Secret string
	// PrivateKeyPEM signs and validates RS256 tokens.
	PrivateKeyPEM string
	// PublicKeyPEM validates RS256 tokens issued elsewhere.
	PublicKeyPEM string

	Issuer string
	// Audience, when set, is stamped on issued tokens and required on
	// validated ones.
	Audience   string
	Expiration time.Duration
	// Leeway is the clock skew tolerated on exp, nbf and iat.
	Leeway time.Duration
}

// JWTService issues and validates borrower access tokens.
type JWTService struct {
	method    jwt.SigningMethod
	signKey   any
	verifyKey any
	issuer    string
	audience  string
	ttl       time.Duration
	parser    *jwt.Parser
}

// NewJWTService builds a service from cfg. With only PublicKeyPEM set the
// service validates but cannot issue tokens.
func NewJWTService(cfg JWTConfig) (*JWTService, error) {
	s := &JWTService{
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.Expiration,
	}
	if s.ttl == 0 {
		s.ttl = DefaultTokenTTL
	}

	switch {
	case cfg.PrivateKeyPEM != "":
		key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(cfg.PrivateKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("jwt: parse private key: %w", err)
		}
		s.method, s.signKey, s.verifyKey = jwt.SigningMethodRS256, key, &key.PublicKey
	case cfg.PublicKeyPEM != "":
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("jwt: parse public key: %w", err)
		}
		s.method, s.verifyKey = jwt.SigningMethodRS256, key
	case cfg.Secret != "":
		key := []byte(cfg.Secret)
		s.method, s.signKey, s.verifyKey = jwt.SigningMethodHS256, key, key
	default:
		return nil, errors.New("jwt: one of PrivateKeyPEM, PublicKeyPEM or Secret is required")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}
	s.parser = jwt.NewParser(opts...)
	return s, nil
}

// CanIssue reports whether the service holds a signing key.
func (s *JWTService) CanIssue() bool {
	return s.signKey != nil
}

// IssueToken signs a token whose subject is the borrower's user ID.
func (s *JWTService) IssueToken(subject string, roles ...string) (string, error) {
	if subject == "" {
		return "", ErrMissingSubject
	}
	if !s.CanIssue() {
		return "", ErrCannotSign
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Roles: roles,
	}
	if s.audience != "" {
		claims.Audience = jwt.ClaimStrings{s.audience}
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.signKey)
	if err != nil {
		return "", fmt.Errorf("jwt: sign: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies the signature, algorithm, lifetime, issuer and
// audience of raw and returns its claims. Every failure wraps ErrInvalidToken.
func (s *JWTService) ValidateToken(raw string) (*Claims, error) {
	claims := &Claims{}
	if _, err := s.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.verifyKey, nil
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims, nil
}
