package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
)

// VerifyOptions captures common expectations used during verification.
type VerifyOptions struct {
	// Issuer the token must have (claims.iss). Empty means "don't care".
	Issuer string

	// Leeway allows small clock skew when validating exp/nbf.
	// Because time sync is never perfect.
	Leeway time.Duration
}

// Sign encodes the claims and signs them with the given HMAC-SHA256 key.
// Signing is pure: it never touches storage and never mutates the claims.
func Sign(c Claims, key []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(key)
}

// Verify parses and validates a token against the given HMAC-SHA256 key.
// Only HS256 is accepted, so a token re-signed under a different algorithm
// fails rather than downgrading. Signature comparison happens inside the
// HMAC check, which is constant time.
//
// Failure modes: ErrMalformed for structurally broken tokens, ErrInvalidSig
// for tampered payloads or wrong keys, ErrExpired / ErrNotYetValid for
// time-window violations, ErrIssuer when opts.Issuer is set and mismatched.
func Verify(token string, key []byte, opts VerifyOptions) (Claims, error) {
	var claims Claims

	_, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(opts.Leeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	if opts.Issuer != "" && claims.Issuer != opts.Issuer {
		return Claims{}, ErrIssuer
	}

	return claims, nil
}

// mapParseError translates golang-jwt errors into our stable taxonomy so
// callers never depend on the library's error values.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSig
	default:
		return ErrMalformed
	}
}
