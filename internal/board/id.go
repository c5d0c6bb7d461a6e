package board

import (
	"fmt"
	"math/rand/v2"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mtaverne/corkboard/internal/apperr"
)

const (
	idLength   = 8
	idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

	// maxIDAttempts caps the allocation retry loop. The space holds 36^8
	// identifiers, so hitting the cap means the random source is broken.
	maxIDAttempts = 64
)

var idPattern = regexp.MustCompile(`^[a-z0-9]{8}$`)

// ValidID reports whether id is a well-formed board identifier: exactly
// eight characters, each a lowercase letter or digit.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// ValidateID returns a validation error unless id is well-formed.
func ValidateID(id string) error {
	if err := validation.Validate(id, validation.Required, validation.Match(idPattern)); err != nil {
		return fmt.Errorf("%w: board id %q", apperr.ErrValidation, id)
	}
	return nil
}

// GenerateID produces one identifier drawn uniformly from the id alphabet.
func GenerateID() string {
	buf := make([]byte, idLength)
	for i := range buf {
		buf[i] = idAlphabet[rand.IntN(len(idAlphabet))]
	}
	return string(buf)
}

// AllocateID generates identifiers until one is absent from the key set
// reported by exists. Attempts are capped; see maxIDAttempts.
func AllocateID(exists func(id string) (bool, error)) (string, error) {
	for range maxIDAttempts {
		id := GenerateID()
		taken, err := exists(id)
		if err != nil {
			return "", fmt.Errorf("board: check id: %w", err)
		}
		if !taken {
			return id, nil
		}
	}
	return "", apperr.ErrIDSpaceExhausted
}
