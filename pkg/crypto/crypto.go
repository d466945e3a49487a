package crypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GeneratedPasswordLength is the length of server-generated account passwords.
const GeneratedPasswordLength = 10

// HashPassword returns a bcrypt hash of the supplied password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares the hashed password with the plaintext candidate.
func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// GeneratePassword returns a random alphanumeric password for newly
// registered accounts. The plaintext is handed to the caller exactly once;
// only its hash is ever stored.
func GeneratePassword() (string, error) {
	buffer := make([]byte, GeneratedPasswordLength)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("crypto: generate password: %w", err)
	}

	for i, b := range buffer {
		buffer[i] = passwordAlphabet[int(b)%len(passwordAlphabet)]
	}
	return string(buffer), nil
}
