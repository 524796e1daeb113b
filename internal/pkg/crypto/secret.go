package crypto

import (
	"crypto/rand"
	"fmt"
)

// secretChars contains characters used in generated signing secrets.
const secretChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// SigningSecretLength is the length of secrets produced by GenerateSigningSecret.
const SigningSecretLength = 48

// GenerateSigningSecret generates a random signing secret suitable for the
// auth.signing_secret configuration value.
func GenerateSigningSecret() (string, error) {
	return generateRandomString(SigningSecretLength, secretChars)
}

// generateRandomString generates a random string of the specified length
// using characters from the provided character set.
func generateRandomString(length int, charset string) (string, error) {
	result := make([]byte, length)
	charsetLen := len(charset)

	randomBytes := make([]byte, length)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	for i := 0; i < length; i++ {
		result[i] = charset[int(randomBytes[i])%charsetLen]
	}

	return string(result), nil
}
