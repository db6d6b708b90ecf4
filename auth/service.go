// Package auth mints the machine-to-machine tokens attached to outbound bus
// publishes. Tokens are cached and reused until shortly before expiry.
package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMissingSecret signals the service was built without signing material.
var ErrMissingSecret = errors.New("auth: missing client secret")

// renewMargin is how long before expiry a cached token stops being reused.
const renewMargin = 10 * time.Second

// Config carries the token claims and lifetime settings.
type Config struct {
	ClientID     string
	ClientSecret string
	Audience     string
	Issuer       string
	CacheTime    time.Duration
}

// Service issues HMAC-signed machine tokens.
type Service struct {
	cfg Config
	now func() time.Time

	mu     sync.Mutex
	cached string
	expiry time.Time
}

func NewService(cfg Config) *Service {
	return &Service{
		cfg: cfg,
		now: time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Token returns a cached token when still comfortably valid, minting a fresh
// one otherwise.
func (s *Service) Token() (string, error) {
	if s.cfg.ClientSecret == "" {
		return "", ErrMissingSecret
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	if s.cached != "" && now.Before(s.expiry.Add(-renewMargin)) {
		return s.cached, nil
	}

	expiry := now.Add(s.cfg.CacheTime)
	claims := jwt.MapClaims{
		"sub": s.cfg.ClientID,
		"aud": s.cfg.Audience,
		"iss": s.cfg.Issuer,
		"iat": now.Unix(),
		"exp": expiry.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.ClientSecret))
	if err != nil {
		return "", fmt.Errorf("auth: sign machine token: %w", err)
	}

	s.cached = token
	s.expiry = expiry
	return token, nil
}
