// Package deliverycode encodes delivery-token identities into the short
// scannable string embedded in QR codes, and decodes them back. It is pure:
// no storage lookups, no clock reads.
package deliverycode

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	// Prefix marks a string as a swapnest delivery code. Decoders reject
	// anything not starting with it.
	Prefix = "SWPN"

	separator = "|"

	// fields after the prefix: tokenID, productID, creation timestamp.
	payloadFields = 3
)

var ErrMalformedCode = errors.New("malformed delivery code")

// Payload is the decoded identity of a delivery code.
type Payload struct {
	TokenID   string
	ProductID string
	CreatedAt time.Time
}

// Encode renders `SWPN|<tokenID>|<productID>|<unixNano>`. Stable: the same
// inputs always produce the same string.
func Encode(tokenID, productID string, createdAt time.Time) string {
	return strings.Join([]string{
		Prefix,
		tokenID,
		productID,
		strconv.FormatInt(createdAt.UnixNano(), 10),
	}, separator)
}

// Decode parses a raw scanned string. It never panics on untrusted input;
// any structural problem comes back as ErrMalformedCode.
func Decode(raw string) (Payload, error) {
	parts := strings.Split(raw, separator)
	if len(parts) < payloadFields+1 {
		return Payload{}, ErrMalformedCode
	}
	if parts[0] != Prefix {
		return Payload{}, ErrMalformedCode
	}

	tokenID, productID := parts[1], parts[2]
	if tokenID == "" || productID == "" {
		return Payload{}, ErrMalformedCode
	}

	nanos, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return Payload{}, ErrMalformedCode
	}

	return Payload{
		TokenID:   tokenID,
		ProductID: productID,
		CreatedAt: time.Unix(0, nanos),
	}, nil
}
