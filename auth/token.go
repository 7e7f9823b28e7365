package auth

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Claims scopes a token to one chat through its subject.
type Claims struct {
	gojwt.RegisteredClaims
}

// ChatID returns the chat the token grants access to.
func (c *Claims) ChatID() string { return c.Subject }

// Service signs and verifies chat tokens.
type Service struct {
	cfg Config
	now func() time.Time
}

// NewService creates a Service. cfg must be enabled.
func NewService(cfg Config) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled() {
		return nil, errors.New("auth: secret is required")
	}
	return &Service{cfg: cfg, now: time.Now}, nil
}

// Issue returns a signed token for chatID.
func (s *Service) Issue(chatID string) (string, error) {
	if chatID == "" {
		return "", errors.New("auth: chat id is required")
	}
	now := s.now()
	claims := &Claims{RegisteredClaims: gojwt.RegisteredClaims{
		Subject:   chatID,
		Issuer:    s.cfg.Issuer,
		IssuedAt:  gojwt.NewNumericDate(now),
		ExpiresAt: gojwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
	}}
	signed, err := gojwt.NewWithClaims(s.cfg.signingMethod(), claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature, expiry and issuer of token.
func (s *Service) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := gojwt.ParseWithClaims(token, claims, s.keyFunc,
		gojwt.WithValidMethods([]string{s.cfg.signingMethod().Alg()}),
		gojwt.WithIssuer(s.cfg.Issuer),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("auth: parse token: %w", err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, errors.New("auth: invalid token")
	}
	return claims, nil
}

func (s *Service) keyFunc(token *gojwt.Token) (interface{}, error) {
	if token.Method.Alg() != s.cfg.signingMethod().Alg() {
		return nil, fmt.Errorf("auth: unexpected signing method: %s", token.Method.Alg())
	}
	return []byte(s.cfg.Secret), nil
}
