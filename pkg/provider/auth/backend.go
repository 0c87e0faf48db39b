// pkg/provider/auth/backend.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/edubridge/lti-provider/pkg/provider/lti"
)

// ErrMissingUserParam is returned when a verified launch does not carry the
// parameters needed to identify the launching user.
var ErrMissingUserParam = errors.New("auth: launch request carries no user identity")

// SessionClaims is the local session minted from a verified launch. The
// browser presents it on subsequent tool requests instead of re-launching.
type SessionClaims struct {
	Email        string   `json:"email,omitempty"`
	FullName     string   `json:"name,omitempty"`
	Roles        []string `json:"roles,omitempty"`
	ConsumerSlug string   `json:"consumer,omitempty"`
	ContextID    string   `json:"context_id,omitempty"`
	jwt.RegisteredClaims
}

// SessionBackend turns verified launches into signed HS256 session tokens
// and validates them back. It plays the part a framework authentication
// backend would: the launch is the credential, the session is local.
type SessionBackend struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionBackend(secret string, ttl time.Duration) *SessionBackend {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &SessionBackend{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Authenticate derives a session from a verified launch. user_id and
// lis_person_contact_email_primary are mandatory, mirroring what an LMS is
// expected to send for a trusted launch.
func (b *SessionBackend) Authenticate(launch *lti.LaunchRequest) (string, SessionClaims, error) {
	userID := launch.Param("user_id")
	email := launch.Param("lis_person_contact_email_primary")
	if userID == "" || email == "" {
		return "", SessionClaims{}, ErrMissingUserParam
	}

	now := b.now()
	claims := SessionClaims{
		Email:        email,
		FullName:     launch.Param("lis_person_name_full"),
		Roles:        launch.Roles().Slice(),
		ConsumerSlug: launch.Passport().ConsumerSlug,
		ContextID:    launch.Param("context_id"),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(b.ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(b.secret)
	if err != nil {
		return "", SessionClaims{}, fmt.Errorf("auth: sign session: %w", err)
	}
	return signed, claims, nil
}

// Parse validates a session token and returns its claims.
func (b *SessionBackend) Parse(raw string) (SessionClaims, error) {
	var claims SessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method %v", t.Header["alg"])
		}
		return b.secret, nil
	}, jwt.WithTimeFunc(b.now))
	if err != nil {
		return SessionClaims{}, fmt.Errorf("auth: parse session: %w", err)
	}
	return claims, nil
}
