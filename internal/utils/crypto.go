// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

func GenerateRandomString(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}

// GeneratePairingSecret returns the secret a producer's wallet sends back to
// the chatbot when pairing. It is unique per call.
func GeneratePairingSecret(now time.Time) string {
	return fmt.Sprintf("%s_%d", uuid.NewString(), now.UnixNano())
}

// GenerateRequestID tags a request in logs when the client did not send one.
func GenerateRequestID() string {
	id, err := GenerateRandomString(16)
	if err != nil {
		return uuid.NewString()
	}
	return id
}
