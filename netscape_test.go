package crumbshare

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeNetscapeFixture(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cookies.txt")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseNetscape(t *testing.T) {
	stubTime(t, time.Unix(1_700_000_000, 0))
	path := writeNetscapeFixture(t,
		"# Netscape HTTP Cookie File",
		"# This is a comment",
		"",
		".example.com\tTRUE\t/\tTRUE\t1900000000\tsid\tabc123",
		"#HttpOnly_example.com\tFALSE\t/app\tFALSE\t0\tcsrf\txyz",
		"example.com\tFALSE\t/\tFALSE\t1000\told\tgone",
	)

	cookies, warnings, err := ParseNetscape(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings %v", warnings)
	}
	if len(cookies) != 2 {
		t.Fatalf("want 2 cookies got %d: %+v", len(cookies), cookies)
	}

	sid := cookies[0]
	if sid.Name != "sid" || sid.Value != "abc123" || sid.Domain != ".example.com" {
		t.Fatalf("unexpected cookie %+v", sid)
	}
	if !sid.Secure || sid.HTTPOnly || sid.HostOnly || sid.Session {
		t.Fatalf("unexpected flags %+v", sid)
	}
	if sid.ExpirationDate != 1900000000 {
		t.Fatalf("unexpected expiry %v", sid.ExpirationDate)
	}

	csrf := cookies[1]
	if !csrf.HTTPOnly {
		t.Fatal("#HttpOnly_ prefix must mark the cookie HTTP-only")
	}
	if !csrf.Session || csrf.ExpirationDate != 0 {
		t.Fatalf("zero expiry must mean session, got %+v", csrf)
	}
	if !csrf.HostOnly {
		t.Fatal("bare domain must be host-only")
	}
	if csrf.Path != "/app" {
		t.Fatalf("unexpected path %q", csrf.Path)
	}
}

func TestParseNetscape_WarnsOnMalformedLines(t *testing.T) {
	path := writeNetscapeFixture(t,
		"# Netscape HTTP Cookie File",
		"example.com\tFALSE\t/\tFALSE\t1900000000\tsid", // six fields
		"example.com\tFALSE\t/\tFALSE\tsoon\tsid\tv",    // bad expiry
		"example.com\tFALSE\t/\tFALSE\t1900000000\tok\tv",
	)

	cookies, warnings, err := ParseNetscape(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(cookies) != 1 || cookies[0].Name != "ok" {
		t.Fatalf("unexpected cookies %+v", cookies)
	}
	if len(warnings) != 2 {
		t.Fatalf("want 2 warnings got %v", warnings)
	}
	if !strings.Contains(warnings[0], "malformed cookie line") {
		t.Fatalf("unexpected warning %q", warnings[0])
	}
	if !strings.Contains(warnings[1], "invalid expiry") {
		t.Fatalf("unexpected warning %q", warnings[1])
	}
}

func TestParseNetscape_DomainFilter(t *testing.T) {
	path := writeNetscapeFixture(t,
		"# Netscape HTTP Cookie File",
		"example.com\tFALSE\t/\tFALSE\t1900000000\ta\t1",
		".example.com\tTRUE\t/\tFALSE\t1900000000\tb\t2",
		"api.example.com\tFALSE\t/\tFALSE\t1900000000\tc\t3",
		"other.com\tFALSE\t/\tFALSE\t1900000000\td\t4",
		"notexample.com\tFALSE\t/\tFALSE\t1900000000\te\t5",
	)

	cookies, _, err := ParseNetscape(path, "example.com")
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, c := range cookies {
		names = append(names, c.Name)
	}
	if !reflect.DeepEqual(names, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected selection %v", names)
	}
}

func TestParseNetscape_MissingFile(t *testing.T) {
	if _, _, err := ParseNetscape(filepath.Join(t.TempDir(), "nope.txt"), ""); err == nil {
		t.Fatal("want error got nil")
	}
}

func TestParseNetscape_CRLF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.txt")
	body := "# Netscape HTTP Cookie File\r\nexample.com\tFALSE\t/\tFALSE\t1900000000\tsid\tv\r\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	cookies, _, err := ParseNetscape(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(cookies) != 1 || cookies[0].Value != "v" {
		t.Fatalf("unexpected cookies %+v", cookies)
	}
}

func TestExportNetscape_RoundTrip(t *testing.T) {
	session := Cookie{Name: "tmp", Value: "x", Domain: "example.com", Path: "/", Session: true, HostOnly: true}
	persistent := testCookie("sid", "v")
	persistent.SameSite = "" // the format has no SameSite column
	httpOnly := Cookie{Name: "csrf", Value: "y", Domain: ".example.com", Path: "/app", HTTPOnly: true, ExpirationDate: 1900000000}
	cookies := []Cookie{persistent, session, httpOnly}

	out := ExportNetscape(cookies)
	if !strings.HasPrefix(string(out), netscapeHeader+"\n") {
		t.Fatalf("missing header: %q", out[:40])
	}

	path := filepath.Join(t.TempDir(), "cookies.txt")
	if err := os.WriteFile(path, out, 0o600); err != nil {
		t.Fatal(err)
	}
	back, warnings, err := ParseNetscape(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings %v", warnings)
	}
	if !reflect.DeepEqual(back, cookies) {
		t.Fatalf("export did not round-trip:\nwant %+v\ngot  %+v", cookies, back)
	}
}

func TestDomainMatches(t *testing.T) {
	cases := []struct {
		cookieDomain string
		domain       string
		want         bool
	}{
		{"example.com", "example.com", true},
		{".example.com", "example.com", true},
		{"api.example.com", "example.com", true},
		{"Example.COM", "example.com", true},
		{"example.com", ".example.com", true},
		{"other.com", "example.com", false},
		{"notexample.com", "example.com", false},
		{"example.com", "api.example.com", false},
	}
	for _, tc := range cases {
		if got := domainMatches(tc.cookieDomain, tc.domain); got != tc.want {
			t.Fatalf("domainMatches(%q, %q): want %v got %v", tc.cookieDomain, tc.domain, got, tc.want)
		}
	}
}
