package mentee

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

// tokenBytes random bytes encode to an 11 character URL-safe token, which fits the 16 character column.
const tokenBytes = 8

const maxTokenAttempts = 10

var errTokenSpaceExhausted = errors.New("could not generate a unique token")

// TokenSource produces candidate tokens. Uniqueness is checked by the caller.
type TokenSource func() (string, error)

// RandomToken returns a random URL-safe token.
func RandomToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateUniqueToken draws tokens until one is not used by any mentee.
func (a *Accessor) GenerateUniqueToken(ctx context.Context) (string, error) {
	query := `SELECT EXISTS(SELECT 1 FROM mentorados WHERE token = $1)`

	for range maxTokenAttempts {
		token, err := a.newToken()
		if err != nil {
			return "", err
		}

		var exists bool
		if err := a.db.QueryRowContext(ctx, query, token).Scan(&exists); err != nil {
			return "", fmt.Errorf("check token: %w", err)
		}
		if !exists {
			return token, nil
		}
	}

	return "", errTokenSpaceExhausted
}
