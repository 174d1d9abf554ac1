// internal/receipt/receipt.go
//
// Completion receipts.
// When a playthrough is won the host hands the surrounding flow a signed HS256
// token instead of a bare flag, so the flow can check the win came from this
// server. The signing key is derived from RECEIPT_SECRET with HKDF so the raw
// secret is never used as a MAC key directly.

package receipt

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

// ErrInvalidReceipt covers bad signatures, expiry and malformed tokens.
var ErrInvalidReceipt = errors.New("invalid receipt")

const issuer = "resetslot"

// Claims describe one won playthrough.
type Claims struct {
	SessionID     string `json:"sid"`
	Playthrough   uint64 `json:"pt"`
	Word          string `json:"word"`
	LivesLeft     int    `json:"lives"`
	WrongAttempts int    `json:"attempts"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies receipts.
type Issuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewIssuer derives the signing key from secret. A non-positive ttl means 24h.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("receipt: empty secret")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("resetslot completion receipt v1"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("receipt: derive key: %w", err)
	}
	return &Issuer{key: key, ttl: ttl, now: time.Now}, nil
}

// Issue signs c, stamping issuer, subject and validity window.
func (i *Issuer) Issue(c Claims) (string, error) {
	now := i.now()
	c.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   c.SessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.key)
}

// Verify parses token and returns its claims.
func (i *Issuer) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.key, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(i.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !t.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReceipt, err)
	}
	return claims, nil
}
