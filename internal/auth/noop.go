package auth

import (
	"context"
	"errors"
)

// noopVerifier accepts any non-empty token and uses it verbatim as the user ID.
// Only suitable for local development and tests.
type noopVerifier struct{}

func newNoopVerifier() Verifier {
	return noopVerifier{}
}

func (noopVerifier) Verify(_ context.Context, token string) (AuthenticatedUser, error) {
	if token == "" {
		return AuthenticatedUser{}, errors.New("empty token")
	}
	return AuthenticatedUser{UserID: token, Token: token}, nil
}
