package token

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/edumanager/auth-server/token/keys"
)

// Signer signs claims and supplies the verification key for parsing.
type Signer interface {
	// Sign creates a signed compact JWT from claims.
	Sign(claims jwt.Claims) (string, error)

	// GetVerificationKey returns the key used to verify a parsed token's
	// signature. It must reject unexpected signing methods.
	GetVerificationKey(token *jwt.Token) (any, error)

	// GetSigningMethod returns the JWT signing method used.
	GetSigningMethod() jwt.SigningMethod
}

// KeyPairSigner implements Signer using the service's RSA key pair with
// RS256. Tokens it produces are verifiable with the public key alone.
type KeyPairSigner struct {
	keyPair *keys.KeyPair
}

func NewKeyPairSigner(keyPair *keys.KeyPair) *KeyPairSigner {
	return &KeyPairSigner{
		keyPair: keyPair,
	}
}

func (a *KeyPairSigner) Sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(a.GetSigningMethod(), claims)

	signedToken, err := token.SignedString(a.keyPair.PrivateKey)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token with asymmetric key")
	}
	return signedToken, nil
}

func (a *KeyPairSigner) GetVerificationKey(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
		return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return a.keyPair.PublicKey, nil
}

func (a *KeyPairSigner) GetSigningMethod() jwt.SigningMethod {
	return jwt.SigningMethodRS256
}
