package crumbshare

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Chromium stores times as microseconds since 1601-01-01 UTC.
const chromeEpochOffsetMicros = int64(11_644_473_600_000_000)

type chromeCookieRow struct {
	hostKey        string
	name           string
	path           string
	value          string
	encryptedValue []byte
	expiresUTC     int64
	isSecure       bool
	isHTTPOnly     bool
	sameSite       int64
}

// readChromeCookies maps domain's rows from a Chromium cookies table onto
// the extension cookie model. Values that exist only in encrypted form are
// skipped: Safe Storage decryption is deliberately not performed here.
func readChromeCookies(ctx context.Context, db *sql.DB, domain string) ([]Cookie, []string, error) {
	where, args := hostWhereClause("host_key", domain)
	nowChrome := timeNow().UnixMicro() + chromeEpochOffsetMicros
	query := strings.Join([]string{
		`SELECT host_key, name, path, value, encrypted_value, expires_utc, is_secure, is_httponly, samesite`,
		`FROM cookies`,
		`WHERE (` + where + `) AND (expires_utc = 0 OR expires_utc > ?)`,
		`ORDER BY path DESC, name ASC`,
	}, " ")
	args = append(args, nowChrome)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("crumbshare: querying chrome cookies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Cookie
	encryptedSkipped := 0
	for rows.Next() {
		var r chromeCookieRow
		var expires, secure, httpOnly, sameSite sql.NullInt64

		if err := rows.Scan(&r.hostKey, &r.name, &r.path, &r.value, &r.encryptedValue, &expires, &secure, &httpOnly, &sameSite); err != nil {
			return nil, nil, err
		}
		if expires.Valid {
			r.expiresUTC = expires.Int64
		}
		r.isSecure = secure.Valid && secure.Int64 == 1
		r.isHTTPOnly = httpOnly.Valid && httpOnly.Int64 == 1
		if sameSite.Valid {
			r.sameSite = sameSite.Int64
		}

		c, ok := chromeRowToCookie(r)
		if !ok {
			if r.value == "" && len(r.encryptedValue) > 0 {
				encryptedSkipped++
			}
			continue
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var warnings []string
	if encryptedSkipped > 0 {
		warnings = append(warnings, fmt.Sprintf("crumbshare: skipped %d encrypted cookie values (Safe Storage decryption not supported)", encryptedSkipped))
	}
	return out, warnings, nil
}

func chromeRowToCookie(r chromeCookieRow) (Cookie, bool) {
	if r.name == "" || r.hostKey == "" || r.value == "" {
		return Cookie{}, false
	}
	if r.path == "" {
		r.path = "/"
	}

	c := Cookie{
		Name:     r.name,
		Value:    r.value,
		Domain:   r.hostKey,
		Path:     r.path,
		Secure:   r.isSecure,
		HTTPOnly: r.isHTTPOnly,
		SameSite: chromeSameSiteFromInt(r.sameSite),
		HostOnly: !strings.HasPrefix(r.hostKey, "."),
	}
	if r.expiresUTC == 0 {
		c.Session = true
		return c, true
	}
	unixMicros := r.expiresUTC - chromeEpochOffsetMicros
	if unixMicros <= 0 {
		return Cookie{}, false
	}
	c.ExpirationDate = float64(unixMicros) / 1e6
	return c, true
}

func chromeSameSiteFromInt(v int64) SameSite {
	switch v {
	case 2:
		return SameSiteStrict
	case 1:
		return SameSiteLax
	case 0:
		return SameSiteNone
	default:
		return ""
	}
}
