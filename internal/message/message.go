// Package message holds the text rules of the relay: what a peer may
// send, how an accepted message is framed for broadcast, and how a
// receiver turns a raw byte stream back into frames.
//
// The wire has no framing contract.  One successful read on the server
// is one logical message, and a receiver may see frames coalesced or
// split, so frames end with '\n' and receivers reassemble on it.
package message

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// MaxBytes is the largest accepted message, measured in UTF-8 bytes.
const MaxBytes = 1024

// ErrInvalidUTF8 is returned by [Decode] for payloads that are not
// valid UTF-8 text.
var ErrInvalidUTF8 = errors.New("payload is not valid UTF-8")

// Validator accepts or rejects message text.
type Validator struct {
	// Limit is the maximum encoded length in bytes.  Zero means MaxBytes.
	Limit int
}

// Valid reports whether text is non-blank and at most Limit bytes long
// once encoded as UTF-8.
func (v Validator) Valid(text string) bool {
	limit := v.Limit
	if limit <= 0 {
		limit = MaxBytes
	}
	if strings.TrimSpace(text) == "" {
		return false
	}
	return len(text) <= limit
}

// Validate applies the default [Validator].
func Validate(text string) bool {
	return Validator{}.Valid(text)
}

// Decode turns one received chunk into message text: the bytes must be
// valid UTF-8 and surrounding whitespace is trimmed.
func Decode(p []byte) (string, error) {
	if !utf8.Valid(p) {
		return "", ErrInvalidUTF8
	}
	return strings.TrimSpace(string(p)), nil
}
