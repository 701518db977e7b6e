// Package session carries the two credentials of the service: the mentee
// access token cookie and the signed mentor session cookie.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

const (
	MenteeCookie = "auth_token"
	MentorCookie = "session"
)

var ErrInvalidSession = errors.New("invalid session")

// IssueCredential stores the mentee access token in an HttpOnly cookie.
func IssueCredential(w http.ResponseWriter, token string, maxAge time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     MenteeCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ReadCredential returns the mentee token presented with r, or "" when absent.
func ReadCredential(r *http.Request) string {
	c, err := r.Cookie(MenteeCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// Signer issues and verifies HS256 mentor session tokens.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl}
}

func (s *Signer) TTL() time.Duration {
	return s.ttl
}

func (s *Signer) Issue(mentorID uuid.UUID, now time.Time) (string, error) {
	claims := jwt.StandardClaims{
		Subject:   mentorID.String(),
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Parse verifies the token and returns the mentor id it was issued for.
func (s *Signer) Parse(token string) (uuid.UUID, error) {
	claims := &jwt.StandardClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: subject: %v", ErrInvalidSession, err)
	}
	return id, nil
}

func (s *Signer) SetCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     MentorCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearMentorCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     MentorCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// MentorToken returns the mentor session token presented with r, or "".
func MentorToken(r *http.Request) string {
	c, err := r.Cookie(MentorCookie)
	if err != nil {
		return ""
	}
	return c.Value
}
