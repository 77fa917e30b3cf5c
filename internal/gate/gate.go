// Package gate is the static-credential prompt run before any catalog
// operation. It keeps casual users out of the till; it is not
// authentication and nothing downstream trusts it as such.
package gate

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	inErrors "github.com/Alturino/medstore/internal/errors"
	"github.com/Alturino/medstore/internal/log"
)

const DefaultPassword = "admin123"

type Gate struct {
	passwordHash string
}

// New builds a gate. With an empty hash the compile-time default password
// is expected.
func New(passwordHash string) Gate {
	return Gate{passwordHash: passwordHash}
}

func (g Gate) Check(c context.Context, password string) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Gate Check").
		Str(log.KeyProcess, "verifying password").
		Bool("hashConfigured", g.passwordHash != "").
		Logger()

	logger.Trace().Msg("verifying password")
	if g.passwordHash == "" {
		if subtle.ConstantTimeCompare([]byte(password), []byte(DefaultPassword)) != 1 {
			logger.Warn().Msg("access denied")
			return inErrors.ErrAccessDenied
		}
		logger.Trace().Msg("verified password")
		return nil
	}

	err := bcrypt.CompareHashAndPassword([]byte(g.passwordHash), []byte(password))
	if err != nil {
		logger.Warn().Err(err).Msg("access denied")
		return fmt.Errorf("%w: %w", inErrors.ErrAccessDenied, err)
	}
	logger.Trace().Msg("verified password")
	return nil
}

// HashPassword produces a value for application.password_hash.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed hashing password with error=%w", err)
	}
	return string(hashed), nil
}
