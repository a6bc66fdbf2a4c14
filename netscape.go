package crumbshare

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const netscapeHeader = "# Netscape HTTP Cookie File"

// ParseNetscape reads a Netscape-format cookie text file, keeping only
// cookies for domain (all domains when empty). Lines starting with # are
// comments, except #HttpOnly_ which marks the cookie HTTP-only. Malformed
// lines are skipped and reported as warnings.
func ParseNetscape(path, domain string) ([]Cookie, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()

	now := timeNow().Unix()
	var cookies []Cookie
	var warnings []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		httpOnly := false
		if strings.HasPrefix(line, "#HttpOnly_") {
			httpOnly = true
			line = line[len("#HttpOnly_"):]
		} else if strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			warnings = append(warnings, fmt.Sprintf("crumbshare: skipping malformed cookie line %q", line))
			continue
		}

		cookieDomain := fields[0]
		// fields[1] is the include-subdomains flag, implied by the
		// domain's leading dot.
		cookiePath := fields[2]
		secure := strings.EqualFold(fields[3], "TRUE")
		expiry, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("crumbshare: skipping cookie with invalid expiry %q", fields[4]))
			continue
		}
		name := fields[5]
		value := fields[6]

		if domain != "" && !domainMatches(cookieDomain, domain) {
			continue
		}
		if expiry > 0 && expiry <= now {
			continue
		}

		c := Cookie{
			Name:     name,
			Value:    value,
			Domain:   cookieDomain,
			Path:     cookiePath,
			Secure:   secure,
			HTTPOnly: httpOnly,
			HostOnly: !strings.HasPrefix(cookieDomain, "."),
		}
		if expiry <= 0 {
			c.Session = true
		} else {
			c.ExpirationDate = float64(expiry)
		}
		cookies = append(cookies, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, warnings, err
	}
	return cookies, warnings, nil
}

// ExportNetscape renders cookies in the Netscape text format, round-trip
// compatible with ParseNetscape. SameSite has no column in this format
// and is dropped.
func ExportNetscape(cookies []Cookie) []byte {
	var b strings.Builder
	b.WriteString(netscapeHeader)
	b.WriteByte('\n')

	for _, c := range cookies {
		if c.HTTPOnly {
			b.WriteString("#HttpOnly_")
		}
		includeSub := "FALSE"
		if strings.HasPrefix(c.Domain, ".") {
			includeSub = "TRUE"
		}
		secure := "FALSE"
		if c.Secure {
			secure = "TRUE"
		}
		var expiry int64
		if !c.Session {
			expiry = int64(c.ExpirationDate)
		}
		path := c.Path
		if path == "" {
			path = "/"
		}
		fmt.Fprintf(&b, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			c.Domain, includeSub, path, secure, expiry, c.Name, c.Value)
	}
	return []byte(b.String())
}

// domainMatches reports whether cookieDomain covers domain: exact match,
// dotted form, or parent-domain suffix.
func domainMatches(cookieDomain, domain string) bool {
	domain = strings.TrimPrefix(strings.ToLower(domain), ".")
	cd := strings.ToLower(cookieDomain)
	if cd == domain || cd == "."+domain {
		return true
	}
	return strings.HasSuffix(cd, "."+domain)
}
