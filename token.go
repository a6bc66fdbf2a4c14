package crumbshare

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// wireEnvelope is the canonical JSON shape shared links carry. The payload
// key (c or p) doubles as the kind discriminant: exactly one is present.
type wireEnvelope struct {
	V int                 `json:"v"`
	D string              `json:"d"`
	C []Cookie            `json:"c,omitempty"`
	P map[string][]Cookie `json:"p,omitempty"`
	T int64               `json:"t"`
	E int64               `json:"e"`
}

// NewCookieEnvelope builds a cookie-share envelope for domain. A zero ttl
// means the share never expires.
func NewCookieEnvelope(domain string, cookies []Cookie, ttl time.Duration) *Envelope {
	now := timeNow().UnixMilli()
	var expires int64
	if ttl > 0 {
		expires = now + ttl.Milliseconds()
	}
	return &Envelope{
		Kind:      KindCookies,
		Version:   FormatVersion,
		Domain:    domain,
		Cookies:   cookies,
		CreatedAt: now,
		ExpiresAt: expires,
	}
}

// NewProfileEnvelope builds a profile-share envelope for domain. A zero ttl
// means the share never expires.
func NewProfileEnvelope(domain string, profiles map[string][]Cookie, ttl time.Duration) *Envelope {
	now := timeNow().UnixMilli()
	var expires int64
	if ttl > 0 {
		expires = now + ttl.Milliseconds()
	}
	return &Envelope{
		Kind:      KindProfiles,
		Version:   FormatVersion,
		Domain:    domain,
		Profiles:  profiles,
		CreatedAt: now,
		ExpiresAt: expires,
	}
}

// Expired reports whether the envelope's expiry has passed at now.
// A zero ExpiresAt never expires.
func (e *Envelope) Expired(now time.Time) bool {
	return e.ExpiresAt != 0 && e.ExpiresAt < now.UnixMilli()
}

// EncodeEnvelope serializes env into a share token:
// base64(percent-encoded canonical JSON). The transform is reversible with
// no information loss.
func EncodeEnvelope(env *Envelope) (string, error) {
	wire, err := envelopeToWire(env)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(wire)
	if err != nil {
		return "", fmt.Errorf("crumbshare: marshaling envelope: %w", err)
	}
	return base64.StdEncoding.EncodeToString([]byte(escapeURIComponent(string(raw)))), nil
}

// DecodeEnvelope reverses EncodeEnvelope and validates the result. The
// version gate (ErrUnsupportedVersion) and expiry gate (ErrExpired) run
// before any payload is handed back, so callers never see stale or
// incompatible data.
func DecodeEnvelope(token string) (*Envelope, error) {
	raw, err := decodeBase64Lenient(strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	decoded, err := unescapeURIComponent(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	var wire wireEnvelope
	if err := json.Unmarshal([]byte(decoded), &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return envelopeFromWire(&wire)
}

// EncodeEncryptedEnvelope serializes env and seals the token under password.
func EncodeEncryptedEnvelope(env *Envelope, password string) (*EncryptedBlob, error) {
	token, err := EncodeEnvelope(env)
	if err != nil {
		return nil, err
	}
	return Encrypt(token, password)
}

// DecodeEncryptedEnvelope opens blob with password and decodes the
// recovered token, applying the same version and expiry checks as
// DecodeEnvelope.
func DecodeEncryptedEnvelope(blob *EncryptedBlob, password string) (*Envelope, error) {
	token, err := Decrypt(blob, password)
	if err != nil {
		return nil, err
	}
	return DecodeEnvelope(token)
}

func envelopeToWire(env *Envelope) (*wireEnvelope, error) {
	if env == nil {
		return nil, ErrInvalidEnvelope
	}
	if env.Domain == "" {
		return nil, fmt.Errorf("%w: missing domain", ErrInvalidEnvelope)
	}
	if env.Version != FormatVersion {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedVersion, env.Version)
	}
	wire := &wireEnvelope{V: env.Version, D: env.Domain, T: env.CreatedAt, E: env.ExpiresAt}
	switch env.Kind {
	case KindCookies:
		if len(env.Cookies) == 0 || len(env.Profiles) != 0 {
			return nil, fmt.Errorf("%w: cookie envelope payload", ErrInvalidEnvelope)
		}
		wire.C = env.Cookies
	case KindProfiles:
		if len(env.Profiles) == 0 || len(env.Cookies) != 0 {
			return nil, fmt.Errorf("%w: profile envelope payload", ErrInvalidEnvelope)
		}
		wire.P = env.Profiles
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidEnvelope, env.Kind)
	}
	return wire, nil
}

func envelopeFromWire(wire *wireEnvelope) (*Envelope, error) {
	if wire.V != FormatVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, wire.V, FormatVersion)
	}
	env := &Envelope{
		Version:   wire.V,
		Domain:    wire.D,
		CreatedAt: wire.T,
		ExpiresAt: wire.E,
	}
	if env.Expired(timeNow()) {
		return nil, ErrExpired
	}
	switch {
	case wire.C != nil && wire.P == nil:
		env.Kind = KindCookies
		env.Cookies = wire.C
	case wire.P != nil && wire.C == nil:
		env.Kind = KindProfiles
		env.Profiles = wire.P
	default:
		return nil, fmt.Errorf("%w: payload must be cookies or profiles", ErrMalformedToken)
	}
	if env.Domain == "" {
		return nil, fmt.Errorf("%w: missing domain", ErrMalformedToken)
	}
	return env, nil
}

const upperhex = "0123456789ABCDEF"

// escapeURIComponent percent-encodes s the way JavaScript's
// encodeURIComponent does: everything but A-Z a-z 0-9 - _ . ! ~ * ' ( )
// becomes %XX over UTF-8 bytes. Tokens produced here must round-trip
// through JS consumers byte-for-byte.
func escapeURIComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isURIUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0f])
	}
	return b.String()
}

// unescapeURIComponent reverses escapeURIComponent. Unlike query-string
// unescaping it leaves '+' alone, since encodeURIComponent never maps
// space to '+'.
func unescapeURIComponent(s string) (string, error) {
	if !strings.ContainsRune(s, '%') {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+2 >= len(s) {
			return "", errors.New("truncated percent escape")
		}
		hi, ok1 := unhex(s[i+1])
		lo, ok2 := unhex(s[i+2])
		if !ok1 || !ok2 {
			return "", fmt.Errorf("invalid percent escape %q", s[i:i+3])
		}
		b.WriteByte(hi<<4 | lo)
		i += 2
	}
	return b.String(), nil
}

func isURIUnreserved(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

func unhex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// decodeBase64Lenient accepts standard and URL-safe alphabets, padded or
// not. Producers emit standard padded base64 (btoa), but tokens that pass
// through chat apps and URL rewriters come back in every variant.
func decodeBase64Lenient(s string) ([]byte, error) {
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.RawURLEncoding,
	} {
		if b, err := enc.DecodeString(s); err == nil {
			return b, nil
		}
	}
	return nil, errors.New("not base64")
}
