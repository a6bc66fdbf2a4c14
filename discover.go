package crumbshare

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
)

// ParseBrowser maps a browser name as typed on a command line to a
// Browser. Matching is case-insensitive.
func ParseBrowser(s string) (Browser, error) {
	b := Browser(strings.ToLower(strings.TrimSpace(s)))
	switch b {
	case BrowserChrome, BrowserChromium, BrowserEdge, BrowserBrave,
		BrowserVivaldi, BrowserOpera, BrowserFirefox:
		return b, nil
	default:
		return "", fmt.Errorf("unsupported browser %q", s)
	}
}

// FindBrowserStores discovers cookie stores for b at their default
// locations for the current OS. Missing browsers yield an empty slice,
// not an error.
func FindBrowserStores(b Browser) []StoreLocation {
	if b == BrowserFirefox {
		return firefoxCookieStores()
	}
	return chromeCookieStores(b)
}

// FindAllBrowserStores discovers cookie stores across all supported
// browsers, Chrome-family first.
func FindAllBrowserStores() []StoreLocation {
	order := []Browser{
		BrowserChrome,
		BrowserEdge,
		BrowserBrave,
		BrowserChromium,
		BrowserVivaldi,
		BrowserOpera,
		BrowserFirefox,
	}
	var out []StoreLocation
	for _, b := range order {
		out = append(out, FindBrowserStores(b)...)
	}
	return out
}

func chromeCookieStores(b Browser) []StoreLocation {
	var out []StoreLocation
	for _, userData := range chromeUserDataDirs(b) {
		for _, profDir := range chromeProfileDirs(userData) {
			// Newer Chromium keeps the DB under Network/.
			candidates := []string{
				filepath.Join(userData, profDir, "Network", "Cookies"),
				filepath.Join(userData, profDir, "Cookies"),
			}
			for _, p := range candidates {
				if fileExists(p) {
					out = append(out, StoreLocation{Browser: b, Profile: profDir, Path: p})
					break
				}
			}
		}
	}
	return out
}

// chromeProfileDirs lists profile directories recorded in a user-data
// dir's Local State, falling back to Default when it cannot be read.
func chromeProfileDirs(userDataDir string) []string {
	raw, err := os.ReadFile(filepath.Join(userDataDir, "Local State"))
	if err != nil {
		return []string{"Default"}
	}

	var localState struct {
		Profile struct {
			InfoCache map[string]struct {
				Name string `json:"name"`
			} `json:"info_cache"`
		} `json:"profile"`
	}
	if err := json.Unmarshal(raw, &localState); err != nil || len(localState.Profile.InfoCache) == 0 {
		return []string{"Default"}
	}

	out := make([]string, 0, len(localState.Profile.InfoCache))
	for profDir := range localState.Profile.InfoCache {
		out = append(out, profDir)
	}
	return out
}

func firefoxCookieStores() []StoreLocation {
	var out []StoreLocation
	for _, root := range firefoxRoots() {
		cfg, err := ini.Load(filepath.Join(root, "profiles.ini"))
		if err != nil {
			continue
		}

		for _, secName := range cfg.SectionStrings() {
			if !strings.HasPrefix(secName, "Profile") {
				continue
			}
			sec := cfg.Section(secName)
			pathStr := filepath.FromSlash(sec.Key("Path").String())
			if pathStr == "" {
				continue
			}
			if sec.Key("IsRelative").String() == "1" {
				pathStr = filepath.Join(root, pathStr)
			}
			dbPath := filepath.Join(pathStr, "cookies.sqlite")
			if !fileExists(dbPath) {
				continue
			}

			prof := sec.Key("Name").String()
			if prof == "" {
				prof = filepath.Base(pathStr)
			}
			out = append(out, StoreLocation{Browser: BrowserFirefox, Profile: prof, Path: dbPath})
		}
	}
	return out
}
