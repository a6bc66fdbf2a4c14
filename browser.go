package crumbshare

import (
	"context"
	"fmt"
)

// ReadBrowserCookies imports cookies for domain from the first cookie
// store discovered for b. Warnings report rows that were skipped.
func ReadBrowserCookies(ctx context.Context, b Browser, domain string) ([]Cookie, []string, error) {
	locs := FindBrowserStores(b)
	if len(locs) == 0 {
		return nil, nil, fmt.Errorf("crumbshare: no cookie store found for %s", b)
	}
	return ImportCookies(ctx, locs[0].Path, domain)
}

// ReadAllBrowserCookies imports cookies for domain from every browser
// store on the machine and merges them. The first store to supply a
// cookie wins on duplicates; unreadable stores become warnings.
func ReadAllBrowserCookies(ctx context.Context, domain string) ([]Cookie, []string, error) {
	var all []Cookie
	var warnings []string
	for _, loc := range FindAllBrowserStores() {
		cookies, w, err := ImportCookies(ctx, loc.Path, domain)
		warnings = append(warnings, w...)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s (%s): %v", loc.Browser, loc.Path, err))
			continue
		}
		all = append(all, cookies...)
	}
	return DedupeCookies(all), warnings, nil
}
