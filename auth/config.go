package auth

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/whisperbot/util"
)

// SigningMethod is an HMAC JWT algorithm.
type SigningMethod string

const (
	HS256 SigningMethod = "HS256"
	HS384 SigningMethod = "HS384"
	HS512 SigningMethod = "HS512"
)

// Config configures chat tokens.
type Config struct {
	// Secret is the HMAC signing key. Empty disables authentication.
	Secret   string        `yaml:"secret" mapstructure:"secret"`
	Method   SigningMethod `yaml:"method" mapstructure:"method"`
	Issuer   string        `yaml:"issuer" mapstructure:"issuer"`
	TokenTTL time.Duration `yaml:"token_ttl" mapstructure:"token_ttl"`
}

// Enabled reports whether tokens are required.
func (c *Config) Enabled() bool { return c.Secret != "" }

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Method == "" {
		c.Method = HS256
	}
	if c.Issuer == "" {
		c.Issuer = "whisperbot"
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = 24 * time.Hour
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.signingMethod() == nil {
		return fmt.Errorf("auth: unsupported signing method %q", c.Method)
	}
	if c.Enabled() && len(c.Secret) < 16 {
		return errors.New("auth: secret must be at least 16 bytes")
	}
	if c.TokenTTL < 0 {
		return errors.New("auth: token_ttl must be non-negative")
	}
	return nil
}

// Describe returns a one-liner for the startup summary.
func (c *Config) Describe() string {
	if !c.Enabled() {
		return "disabled"
	}
	return fmt.Sprintf("JWT(%s) secret=%s ttl=%s", c.Method, util.MaskSecret(c.Secret, 4), c.TokenTTL)
}

func (c *Config) signingMethod() gojwt.SigningMethod {
	switch c.Method {
	case HS256:
		return gojwt.SigningMethodHS256
	case HS384:
		return gojwt.SigningMethodHS384
	case HS512:
		return gojwt.SigningMethodHS512
	default:
		return nil
	}
}
