package token

import (
	"github.com/golang-jwt/jwt/v5"
)

// Kind distinguishes the two token kinds the service issues.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims is the signed claims set carried inside every token. Access tokens
// carry the authorities string, user id, and email; refresh tokens carry the
// user id and the token-kind marker only.
type Claims struct {
	Authorities string `json:"authorities,omitempty"`
	UserID      int64  `json:"userId,omitempty"`
	Email       string `json:"email,omitempty"`
	TokenType   string `json:"token_type,omitempty"`
	jwt.RegisteredClaims
}

// Kind returns the token kind. The marker claim is only present on refresh
// tokens; everything else is an access token.
func (c *Claims) Kind() Kind {
	if c.TokenType == string(KindRefresh) {
		return KindRefresh
	}
	return KindAccess
}
