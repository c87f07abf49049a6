package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
//
// Verify enforces the full claim set including expiry. VerifyExpired checks
// the signature and identity claims but deliberately ignores exp - the
// refresh flow needs to read the subject and prm out of an access token
// that is allowed to have lapsed.
type Verifier interface {
	Verify(token string) (Claims, error)
	VerifyExpired(token string) (Claims, error)
}

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrUnknownKID  = errors.New("jwtx: unknown kid")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")

	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrAudience     = errors.New("jwtx: audience mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// IsBadToken reports whether err means the token can never become valid
// (bad signature, malformed, wrong key, wrong identity claims) as opposed
// to merely expired.
func IsBadToken(err error) bool {
	return err != nil && !errors.Is(err, ErrExpired)
}

// RS256Verifier validates JWTs signed using RS256.
type RS256Verifier struct {
	keys   *KeySet
	issuer string
	aud    []string
}

// NewVerifierRS256 creates a verifier using a KeySet of RSA public keys.
func NewVerifierRS256(keys *KeySet, issuer string, aud []string) *RS256Verifier {
	return &RS256Verifier{keys: keys, issuer: issuer, aud: aud}
}

// Verify validates the JWT string and returns its parsed Claims.
func (v *RS256Verifier) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	return v.verify(parser, tokenStr, true)
}

// VerifyExpired is like Verify but skips the expiry check. The signature,
// issuer, and audience are still enforced.
func (v *RS256Verifier) VerifyExpired(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	return v.verify(parser, tokenStr, false)
}

func (v *RS256Verifier) verify(parser *jwt.Parser, tokenStr string, checkExpiry bool) (Claims, error) {
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		// Need the kid to know which key to use
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("%w: missing kid", ErrMalformed)
		}

		pub, err := v.keys.Get(kid)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKID, kid)
		}
		return pub, nil
	})
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return Claims{}, ErrInvalidClaim
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateAudience(v.aud); err != nil {
		return Claims{}, err
	}
	if checkExpiry {
		if err := claims.ValidateExpiry(); err != nil {
			return Claims{}, err
		}
	}
	if err := claims.ValidateSubjectAndPrm(); err != nil {
		return Claims{}, err
	}

	return *claims, nil
}

// mapParseError translates golang-jwt parse failures into our sentinels so
// callers can distinguish expired from everything else with errors.Is.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrInvalidSig, err)
	case errors.Is(err, ErrMalformed), errors.Is(err, ErrUnknownKID):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrInvalidSig, err)
	}
}
