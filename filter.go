package crumbshare

// FilterCookies keeps the cookies that belong to domain and have not
// expired, normalizing empty paths to "/". An empty domain keeps all
// hosts. Inline payloads run through this before sharing so a payload
// dumped from a whole browser only leaks the requested domain.
func FilterCookies(cookies []Cookie, domain string) []Cookie {
	if len(cookies) == 0 {
		return nil
	}

	now := float64(timeNow().Unix())
	out := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		if c.Name == "" {
			continue
		}
		if !c.Session && c.ExpirationDate > 0 && c.ExpirationDate <= now {
			continue
		}
		if domain != "" && !domainMatches(c.Domain, domain) {
			continue
		}
		if c.Path == "" {
			c.Path = "/"
		}
		out = append(out, c)
	}
	return out
}
