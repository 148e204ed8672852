package report

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

// Issuer is stamped into every signed report
const Issuer = "icongen"

// MinKeySize is the shortest HMAC key accepted for HS256
const MinKeySize = 32

var (
	ErrKeyTooShort      = errors.New("signing key must be at least 32 bytes")
	ErrInvalidToken     = errors.New("invalid token format")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrInvalidIssuer    = errors.New("invalid issuer")
)

// Claims is the payload of a signed report
type Claims struct {
	Issuer   string `json:"iss"`
	Subject  string `json:"sub"` // run ID
	IssuedAt int64  `json:"iat"`
	Report   Report `json:"report"`
}

// Sign serializes the report as an HS256 compact JWS
func Sign(r Report, key []byte) (string, error) {
	if len(key) < MinKeySize {
		return "", ErrKeyTooShort
	}

	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: key}, (&jose.SignerOptions{}).WithType("JWT"))
	if err != nil {
		return "", fmt.Errorf("failed to create signer: %w", err)
	}

	claims := Claims{
		Issuer:   Issuer,
		Subject:  r.RunID,
		IssuedAt: time.Now().Unix(),
		Report:   r,
	}

	token, err := jwt.Signed(signer).Claims(claims).Serialize()
	if err != nil {
		return "", fmt.Errorf("failed to create JWT: %w", err)
	}
	return token, nil
}

// Verify checks the signature and issuer of a signed report and returns its claims
func Verify(token string, key []byte) (*Claims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	tok, err := jwt.ParseSigned(token, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims := &Claims{}
	if err := tok.Claims(key, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if claims.Issuer != Issuer {
		return nil, fmt.Errorf("%w: expected '%s', got '%s'", ErrInvalidIssuer, Issuer, claims.Issuer)
	}
	return claims, nil
}

// WriteSigned signs the report and writes the token to path
func WriteSigned(path string, r Report, key []byte) error {
	token, err := Sign(r, key)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write signed report: %w", err)
	}
	return nil
}
