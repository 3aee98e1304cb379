package token

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Codec encodes and decodes the signed claims set. It owns signature concerns
// only: Decode never inspects expiry, which is a separate check consumed by
// the Validator from the decoded claims.
type Codec struct {
	signer Signer
}

func NewCodec(signer Signer) *Codec {
	return &Codec{signer: signer}
}

// Encode signs the claims into a compact token string. It fails only on key
// or configuration problems, which are fatal to the caller.
func (c *Codec) Encode(claims *Claims) (string, error) {
	return c.signer.Sign(claims)
}

// Decode verifies the token's structure and signature and returns the claims.
// It returns ErrMalformedToken for structurally invalid input and
// ErrSignatureInvalid for cryptographic mismatches, including wrong signing
// algorithms. No side effects, no expiry check.
func (c *Codec) Decode(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.signer.GetSigningMethod().Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	parsed, err := parser.ParseWithClaims(tokenStr, &Claims{}, c.signer.GetVerificationKey)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformedToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, ErrSignatureInvalid
		default:
			return nil, ErrMalformedToken
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformedToken
	}

	return claims, nil
}
