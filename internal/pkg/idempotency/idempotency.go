// Package idempotency extracts and validates the client-supplied
// idempotency key at the HTTP edge. The key is never generated here: it
// is a caller-chosen UUID, forwarded to the transfer executor verbatim.
package idempotency

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
)

// HeaderName is the header clients set to carry their idempotency key.
const HeaderName = "Idempotency-Key"

// ErrMissing is returned when the header is absent or empty.
var ErrMissing = errors.New("missing idempotency key")

// ErrMalformed is returned when the header value is not a well-formed UUID.
var ErrMalformed = errors.New("malformed idempotency key")

// FromRequest reads and parses the idempotency key header.
func FromRequest(r *http.Request) (uuid.UUID, error) {
	return FromHeader(r.Header.Get(HeaderName))
}

// FromHeader parses a raw header value into a UUID.
func FromHeader(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, ErrMissing
	}
	key, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrMalformed
	}
	return key, nil
}
