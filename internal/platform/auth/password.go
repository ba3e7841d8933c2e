package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/senemedecine/api/internal/platform/apperr"
)

const MinPasswordLength = 8

// dummyHash is compared against when the user does not exist, so a login for
// an unknown email costs the same as one with a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("senemedecine-timing-equalizer"), bcrypt.DefaultCost)

func HashPassword(plain string) (string, error) {
	if len(plain) < MinPasswordLength {
		return "", apperr.Validation("Le mot de passe doit contenir au moins %d caractères", MinPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches hash. An empty hash is checked
// against a dummy value and always fails.
func CheckPassword(hash, plain string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plain))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
