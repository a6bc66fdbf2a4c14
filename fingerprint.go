package crumbshare

import "math"

// expirationTolerance absorbs clock skew and rounding between the capture
// points of two fingerprints. Expirations within 60 seconds compare equal.
const expirationTolerance = 60.0

func fingerprintKey(c Cookie) string {
	return c.Name + "\x00" + c.Domain + "\x00" + c.Path
}

// Fingerprint builds the order-independent comparison map for a cookie
// set. Duplicate (name, domain, path) keys collapse, last write wins.
func Fingerprint(cookies []Cookie) CookieFingerprint {
	fp := make(CookieFingerprint, len(cookies))
	for _, c := range cookies {
		rec := FingerprintRecord{
			Value:    c.Value,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			HostOnly: c.HostOnly,
			SameSite: c.SameSite,
			Session:  c.Session,
		}
		if !c.Session {
			rec.ExpirationDate = c.ExpirationDate
		}
		fp[fingerprintKey(c)] = rec
	}
	return fp
}

// Equal reports whether two fingerprints describe the same cookie set.
// Neither receiver nor argument is mutated.
func (fp CookieFingerprint) Equal(other CookieFingerprint) bool {
	if len(fp) != len(other) {
		return false
	}
	for key, a := range fp {
		b, ok := other[key]
		if !ok || !a.matches(b) {
			return false
		}
	}
	return true
}

func (a FingerprintRecord) matches(b FingerprintRecord) bool {
	if a.Value != b.Value || a.Secure != b.Secure || a.HTTPOnly != b.HTTPOnly || a.HostOnly != b.HostOnly {
		return false
	}
	if a.Session != b.Session {
		return false
	}
	if a.Session {
		// Session records compare neither SameSite nor expiration.
		return true
	}
	if a.SameSite != b.SameSite {
		return false
	}
	return math.Abs(a.ExpirationDate-b.ExpirationDate) <= expirationTolerance
}
