package token

import (
	"errors"
	"time"

	"yundao/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// Decoded is the payload of a structurally valid access token. The
// issue-time marker doubles as the freshness nonce compared against the
// refresh cache during rotation.
type Decoded struct {
	Account      string
	MarkerMillis int64
}

type accessClaims struct {
	Account      string `json:"account"`
	MarkerMillis int64  `json:"ts"`
	jwt.RegisteredClaims
}

// Codec signs and verifies access tokens. The payload is not encrypted;
// only the HMAC binds it to the secret.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCodec(secret string, ttl time.Duration, now func() time.Time) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	if now == nil {
		now = time.Now
	}
	return &Codec{secret: []byte(secret), ttl: ttl, now: now}, nil
}

func (c *Codec) Issue(account string, markerMillis int64) (string, error) {
	if account == "" {
		return "", errors.New("account is required")
	}
	issued := time.UnixMilli(markerMillis)
	claims := accessClaims{
		Account:      account,
		MarkerMillis: markerMillis,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Decode verifies the signature first, then the marker TTL. On
// ErrTokenExpired the decoded payload is still returned so the gateway can
// run the rotation check against it.
func (c *Codec) Decode(tokenString string) (Decoded, error) {
	var claims accessClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	decoded := Decoded{Account: claims.Account, MarkerMillis: claims.MarkerMillis}
	switch {
	case err == nil:
		if decoded.Account == "" {
			return Decoded{}, domain.ErrTokenMalformed
		}
		return decoded, nil
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return Decoded{}, domain.ErrTokenSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		if decoded.Account == "" {
			return Decoded{}, domain.ErrTokenMalformed
		}
		return decoded, domain.ErrTokenExpired
	default:
		return Decoded{}, domain.ErrTokenMalformed
	}
}
