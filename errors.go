package crumbshare

import "errors"

var (
	// ErrUnsupportedVersion is returned when a token's format version does
	// not match FormatVersion.
	ErrUnsupportedVersion = errors.New("crumbshare: unsupported share format version")

	// ErrExpired is returned when a token's expiry timestamp has passed.
	ErrExpired = errors.New("crumbshare: share link expired")

	// ErrDecryptionFailed is returned for a wrong password or tampered or
	// corrupted ciphertext. Distinguish it from ErrMalformedToken when
	// reporting to users: the link may be fine and only the password wrong.
	ErrDecryptionFailed = errors.New("crumbshare: decryption failed")

	// ErrMalformedToken is returned when a token cannot be parsed
	// (base64, percent encoding, or JSON layer).
	ErrMalformedToken = errors.New("crumbshare: malformed share token")

	// ErrInvalidEnvelope is returned when an envelope fails shape
	// validation on encode (missing domain, payload not matching kind).
	ErrInvalidEnvelope = errors.New("crumbshare: invalid envelope")
)
