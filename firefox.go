package crumbshare

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type firefoxCookieRow struct {
	host     string
	name     string
	value    string
	path     string
	expiry   int64
	isSecure bool
	httpOnly bool
	sameSite int64
}

// readFirefoxCookies maps domain's rows from a moz_cookies table onto the
// extension cookie model. Firefox stores values in the clear, so nothing
// is skipped for encryption reasons.
func readFirefoxCookies(ctx context.Context, db *sql.DB, domain string) ([]Cookie, []string, error) {
	where, args := hostWhereClause("host", domain)
	query := `SELECT host, name, value, path, expiry, isSecure, isHttpOnly, sameSite FROM moz_cookies WHERE (` + where + `) AND (expiry = 0 OR expiry > ?) ORDER BY path DESC, name ASC`
	args = append(args, timeNow().Unix())

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("crumbshare: querying firefox cookies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Cookie
	for rows.Next() {
		var r firefoxCookieRow
		var expiry, secure, httpOnly, sameSite sql.NullInt64

		if err := rows.Scan(&r.host, &r.name, &r.value, &r.path, &expiry, &secure, &httpOnly, &sameSite); err != nil {
			return nil, nil, err
		}
		if expiry.Valid {
			r.expiry = expiry.Int64
		}
		r.isSecure = secure.Valid && secure.Int64 == 1
		r.httpOnly = httpOnly.Valid && httpOnly.Int64 == 1
		if sameSite.Valid {
			r.sameSite = sameSite.Int64
		}

		c, ok := firefoxRowToCookie(r)
		if !ok {
			continue
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return out, nil, nil
}

func firefoxRowToCookie(r firefoxCookieRow) (Cookie, bool) {
	if r.name == "" || r.host == "" {
		return Cookie{}, false
	}
	if r.path == "" {
		r.path = "/"
	}

	c := Cookie{
		Name:     r.name,
		Value:    r.value,
		Domain:   r.host,
		Path:     r.path,
		Secure:   r.isSecure,
		HTTPOnly: r.httpOnly,
		SameSite: firefoxSameSiteFromInt(r.sameSite),
		HostOnly: !strings.HasPrefix(r.host, "."),
	}
	if r.expiry <= 0 {
		c.Session = true
		return c, true
	}
	c.ExpirationDate = float64(r.expiry)
	return c, true
}

func firefoxSameSiteFromInt(v int64) SameSite {
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
