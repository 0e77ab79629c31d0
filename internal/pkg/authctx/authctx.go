// Package authctx models the authenticated-session boundary the transfer
// executor assumes but never reads itself: initiatorUserId comes from the
// caller's session, not from the core.
package authctx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrMissingToken is returned when a request carries no bearer token.
var ErrMissingToken = errors.New("missing bearer token")

// ErrInvalidToken is returned when the token fails verification or its
// subject claim is not a UUID.
var ErrInvalidToken = errors.New("invalid bearer token")

// Extractor resolves the initiating user's identity from an inbound
// request. The transfer executor never implements this itself; it only
// consumes the uuid.UUID a handler passes into transfer.Request.
type Extractor interface {
	InitiatorID(r *http.Request) (uuid.UUID, error)
}

// JWTExtractor reads a signed bearer token and returns its "sub" claim.
// Login, session issuance, and password verification are out of scope;
// this only verifies a token already in hand.
type JWTExtractor struct {
	secret []byte
}

// NewJWTExtractor builds a JWTExtractor over a shared HMAC secret.
func NewJWTExtractor(secret string) *JWTExtractor {
	return &JWTExtractor{secret: []byte(secret)}
}

// InitiatorID extracts and verifies the bearer token's subject claim.
func (e *JWTExtractor) InitiatorID(r *http.Request) (uuid.UUID, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return uuid.Nil, ErrMissingToken
	}
	raw := strings.TrimPrefix(header, "Bearer ")
	if raw == header {
		return uuid.Nil, ErrInvalidToken
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return e.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return uuid.Nil, ErrInvalidToken
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}
