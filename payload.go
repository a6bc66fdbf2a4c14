package crumbshare

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

type payloadWrapper struct {
	Cookies []payloadCookie `json:"cookies"`
}

// payloadCookie tolerates the field spellings seen in extension exports:
// expirationDate or expires, numeric epoch seconds or RFC3339 strings,
// Chrome's no_restriction/unspecified SameSite values, and absent
// session/hostOnly flags.
type payloadCookie struct {
	Name           string      `json:"name"`
	Value          string      `json:"value"`
	Domain         string      `json:"domain"`
	Path           string      `json:"path"`
	Secure         bool        `json:"secure"`
	HTTPOnly       bool        `json:"httpOnly"`
	SameSite       string      `json:"sameSite"`
	Session        *bool       `json:"session"`
	HostOnly       *bool       `json:"hostOnly"`
	ExpirationDate interface{} `json:"expirationDate"`
	Expires        interface{} `json:"expires"`
}

// ReadCookiePayload loads cookies from an inline source. It accepts both a
// bare `[Cookie, ...]` array and a `{ cookies: [...] }` wrapper.
func ReadCookiePayload(p CookiePayload) ([]Cookie, error) {
	raw, err := readPayloadBytes(p)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("crumbshare: cookie payload empty")
	}

	var wrapper payloadWrapper
	if err := json.Unmarshal(raw, &wrapper); err == nil && len(wrapper.Cookies) > 0 {
		return payloadToCookies(wrapper.Cookies), nil
	}

	var arr []payloadCookie
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, fmt.Errorf("crumbshare: parsing cookie payload: %w", err)
	}
	return payloadToCookies(arr), nil
}

func readPayloadBytes(p CookiePayload) ([]byte, error) {
	switch {
	case len(p.JSON) > 0:
		return p.JSON, nil
	case p.Base64 != "":
		b, err := base64.StdEncoding.DecodeString(p.Base64)
		if err != nil {
			return nil, fmt.Errorf("crumbshare: decoding cookie payload: %w", err)
		}
		return b, nil
	case p.File != "":
		b, err := os.ReadFile(p.File)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, errors.New("crumbshare: no cookie payload source provided")
	}
}

func payloadToCookies(in []payloadCookie) []Cookie {
	if len(in) == 0 {
		return nil
	}
	out := make([]Cookie, 0, len(in))
	for _, c := range in {
		exp := parsePayloadExpiration(c.ExpirationDate)
		if exp == 0 {
			exp = parsePayloadExpiration(c.Expires)
		}
		session := exp == 0
		if c.Session != nil {
			session = *c.Session
		}
		if session {
			exp = 0
		}
		hostOnly := !strings.HasPrefix(c.Domain, ".")
		if c.HostOnly != nil {
			hostOnly = *c.HostOnly
		}
		out = append(out, Cookie{
			Name:           c.Name,
			Value:          c.Value,
			Domain:         c.Domain,
			Path:           c.Path,
			Secure:         c.Secure,
			HTTPOnly:       c.HTTPOnly,
			SameSite:       normalizeSameSite(c.SameSite),
			Session:        session,
			HostOnly:       hostOnly,
			ExpirationDate: exp,
		})
	}
	return out
}

func parsePayloadExpiration(v interface{}) float64 {
	switch vv := v.(type) {
	case float64:
		// JSON numbers come through as float64.
		if vv <= 0 {
			return 0
		}
		return vv
	case string:
		if vv == "" {
			return 0
		}
		if t, err := time.Parse(time.RFC3339, vv); err == nil {
			return float64(t.Unix())
		}
		return 0
	default:
		return 0
	}
}

func normalizeSameSite(v string) SameSite {
	switch v {
	case "Strict", "strict":
		return SameSiteStrict
	case "Lax", "lax":
		return SameSiteLax
	case "None", "none", "NoRestriction", "no_restriction":
		return SameSiteNone
	default:
		return ""
	}
}
