package broker

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// SignatureHeader carries the trigger signature on process requests.
const SignatureHeader = "X-Broker-Signature"

const (
	signatureIssuer = "monolith-broker"
	signatureTTL    = 5 * time.Minute
)

var (
	ErrMissingSignature = errors.New("missing trigger signature")
	ErrInvalidSignature = errors.New("invalid trigger signature")
)

// triggerClaims binds the token to one exact request body via a SHA-256
// digest.
type triggerClaims struct {
	Body string `json:"body"`
	jwt.RegisteredClaims
}

func bodyDigest(body []byte) string {
	sum := sha256.Sum256(body)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// Signer produces HS256 tokens over a request body with the current signing
// key.
type Signer struct {
	key []byte
}

func NewSigner(currentKey string) *Signer {
	return &Signer{key: []byte(currentKey)}
}

func (s *Signer) Sign(body []byte) (string, error) {
	if len(s.key) == 0 {
		return "", errors.New("no signing key configured")
	}
	now := time.Now()
	claims := &triggerClaims{
		Body: bodyDigest(body),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    signatureIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(signatureTTL)),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign trigger: %w", err)
	}
	return signed, nil
}

// Verifier validates trigger signatures against a rotating key pair: the
// current key first, then the next key so rotation needs no downtime.
type Verifier struct {
	currentKey []byte
	nextKey    []byte
}

func NewVerifier(currentKey, nextKey string) *Verifier {
	return &Verifier{
		currentKey: []byte(currentKey),
		nextKey:    []byte(nextKey),
	}
}

// Enabled reports whether a signing key is configured at all. With no key
// the process endpoint accepts unsigned triggers.
func (v *Verifier) Enabled() bool {
	return len(v.currentKey) > 0
}

func (v *Verifier) Verify(signature string, body []byte) error {
	if !v.Enabled() {
		return nil
	}
	if signature == "" {
		return ErrMissingSignature
	}
	if err := v.verifyWithKey(signature, body, v.currentKey); err == nil {
		return nil
	}
	if len(v.nextKey) > 0 {
		if err := v.verifyWithKey(signature, body, v.nextKey); err == nil {
			return nil
		}
	}
	return ErrInvalidSignature
}

func (v *Verifier) verifyWithKey(signature string, body, key []byte) error {
	claims := &triggerClaims{}
	token, err := jwt.ParseWithClaims(signature, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidSignature
	}
	if claims.Issuer != signatureIssuer {
		return ErrInvalidSignature
	}
	if !hmac.Equal([]byte(claims.Body), []byte(bodyDigest(body))) {
		return ErrInvalidSignature
	}
	return nil
}
