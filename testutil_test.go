package crumbshare

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func openTestSQLite(t *testing.T, path string) *sql.DB {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(path)+"?mode=rwc")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type chromeTestRow struct {
	host      string
	name      string
	path      string
	value     string
	encrypted []byte
	expires   int64
	secure    int
	httpOnly  int
	sameSite  int
}

func createChromeStore(t *testing.T, path string, rows []chromeTestRow) {
	t.Helper()
	db := openTestSQLite(t, path)
	if _, err := db.Exec(`CREATE TABLE cookies(host_key TEXT, name TEXT, path TEXT, value TEXT, encrypted_value BLOB, expires_utc INTEGER, is_secure INTEGER, is_httponly INTEGER, samesite INTEGER)`); err != nil {
		t.Fatal(err)
	}
	for _, r := range rows {
		if _, err := db.Exec(
			`INSERT INTO cookies(host_key,name,path,value,encrypted_value,expires_utc,is_secure,is_httponly,samesite) VALUES(?,?,?,?,?,?,?,?,?)`,
			r.host, r.name, r.path, r.value, r.encrypted, r.expires, r.secure, r.httpOnly, r.sameSite,
		); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}
}

type firefoxTestRow struct {
	host     string
	name     string
	value    string
	path     string
	expiry   int64
	secure   int
	httpOnly int
	sameSite int
}

func createFirefoxStore(t *testing.T, path string, rows []firefoxTestRow) {
	t.Helper()
	db := openTestSQLite(t, path)
	if _, err := db.Exec(`CREATE TABLE moz_cookies(host TEXT, name TEXT, value TEXT, path TEXT, expiry INTEGER, isSecure INTEGER, isHttpOnly INTEGER, sameSite INTEGER)`); err != nil {
		t.Fatal(err)
	}
	for _, r := range rows {
		if _, err := db.Exec(
			`INSERT INTO moz_cookies(host,name,value,path,expiry,isSecure,isHttpOnly,sameSite) VALUES(?,?,?,?,?,?,?,?)`,
			r.host, r.name, r.value, r.path, r.expiry, r.secure, r.httpOnly, r.sameSite,
		); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}
}

// chromeExpiry converts a unix time to Chromium's microseconds since 1601.
func chromeExpiry(tm time.Time) int64 {
	return tm.UnixMicro() + chromeEpochOffsetMicros
}

func stubTime(t *testing.T, fixed time.Time) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return fixed }
	t.Cleanup(func() { timeNow = orig })
}

func testCookie(name, value string) Cookie {
	return Cookie{
		Name:           name,
		Value:          value,
		Domain:         ".example.com",
		Path:           "/",
		Secure:         true,
		HTTPOnly:       true,
		SameSite:       SameSiteLax,
		ExpirationDate: 1900000000,
	}
}

// memMetadataStore is an in-memory MetadataStore for tracker tests. It
// copies on the way in and out so tests catch unintended aliasing.
type memMetadataStore struct {
	mu   sync.Mutex
	data map[string]*ProfileMetadata
	puts int
}

func newMemMetadataStore() *memMetadataStore {
	return &memMetadataStore{data: make(map[string]*ProfileMetadata)}
}

func (m *memMetadataStore) Get(ctx context.Context, domain string) (*ProfileMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	meta, ok := m.data[domain]
	if !ok {
		return nil, nil
	}
	cp := *meta
	return &cp, nil
}

func (m *memMetadataStore) Put(ctx context.Context, domain string, meta *ProfileMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *meta
	m.data[domain] = &cp
	m.puts++
	return nil
}
