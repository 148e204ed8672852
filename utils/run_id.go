package utils

import (
	"crypto/rand"
	"errors"
	"strings"
	"time"
)

// GenerateRNS returns a 12 character random alphanumeric string
func GenerateRNS() (string, error) {
	const rnsLength = 12
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	byteArray := make([]byte, rnsLength)
	_, err := rand.Read(byteArray)
	if err != nil {
		return "", err
	}

	var rnsBuilder strings.Builder
	for _, b := range byteArray {
		rnsBuilder.WriteByte(charset[int(b)%len(charset)])
	}

	rns := rnsBuilder.String()
	if len(rns) != rnsLength {
		return "", errors.New("failed to generate RNS of correct length")
	}

	return rns, nil
}

// runIDLayout sorts lexically in time order
const runIDLayout = "20060102T150405.000Z"

// NewRunID returns an identifier for one conversion run: a UTC timestamp
// followed by a random suffix, e.g. 20261018T093012.345Z-a1B2c3D4e5F6.
func NewRunID(now time.Time) (string, error) {
	rns, err := GenerateRNS()
	if err != nil {
		return "", err
	}
	return now.UTC().Format(runIDLayout) + "-" + rns, nil
}
