package crumbshare

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver (pure Go).
)

// sqliteMagic is the first 16 bytes of any SQLite database file.
var sqliteMagic = []byte("SQLite format 3\x00")

// DetectStoreFormat sniffs the cookie store at path: SQLite files are
// probed for the Chromium or Firefox schema, text files for the Netscape
// header.
func DetectStoreFormat(ctx context.Context, path string) (StoreFormat, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FormatUnknown, fmt.Errorf("crumbshare: cookie store not found: %w", err)
	}
	if info.IsDir() {
		return FormatUnknown, fmt.Errorf("crumbshare: %s is a directory, not a cookie store", path)
	}
	if info.Size() == 0 {
		return FormatUnknown, fmt.Errorf("crumbshare: cookie store %s is empty", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, err
	}
	defer func() { _ = f.Close() }()

	header := make([]byte, 16)
	n, err := f.Read(header)
	if err != nil {
		return FormatUnknown, err
	}
	if n >= 16 && string(header[:16]) == string(sqliteMagic) {
		return detectSQLiteFormat(ctx, path)
	}

	if _, err := f.Seek(0, 0); err != nil {
		return FormatUnknown, err
	}
	buf := make([]byte, 512)
	n, _ = f.Read(buf)
	firstLine := string(buf[:n])
	if idx := strings.IndexByte(firstLine, '\n'); idx >= 0 {
		firstLine = firstLine[:idx]
	}
	firstLine = strings.TrimRight(firstLine, "\r")
	if firstLine == "# Netscape HTTP Cookie File" || firstLine == "# HTTP Cookie File" {
		return FormatNetscape, nil
	}

	return FormatUnknown, fmt.Errorf("crumbshare: unsupported cookie store format at %s", path)
}

func detectSQLiteFormat(ctx context.Context, path string) (StoreFormat, error) {
	// A snapshot keeps detection from tripping over the browser's lock.
	snap, cleanup, err := snapshotStore(path)
	if err != nil {
		return FormatUnknown, err
	}
	defer cleanup()

	db, err := openSQLiteReadOnly(ctx, snap)
	if err != nil {
		return FormatUnknown, err
	}
	defer func() { _ = db.Close() }()

	var tableName string
	if err := db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name='moz_cookies'`).Scan(&tableName); err == nil {
		return FormatFirefox, nil
	}
	if err := db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name='cookies'`).Scan(&tableName); err == nil {
		return FormatChrome, nil
	}
	return FormatUnknown, fmt.Errorf("crumbshare: unrecognized cookie schema at %s", path)
}

func openSQLiteReadOnly(ctx context.Context, snapshotPath string) (*sql.DB, error) {
	dsn := "file:" + filepath.ToSlash(snapshotPath) + "?mode=ro"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ImportCookies reads domain's cookies from the browser store at path,
// detecting the format first. Chromium stores yield unencrypted values
// only; encrypted rows are skipped and counted in warnings.
func ImportCookies(ctx context.Context, path, domain string) ([]Cookie, []string, error) {
	format, err := DetectStoreFormat(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	return importAs(ctx, format, path, domain)
}

func importAs(ctx context.Context, format StoreFormat, path, domain string) ([]Cookie, []string, error) {
	switch format {
	case FormatChrome:
		return importSnapshot(ctx, path, domain, readChromeCookies)
	case FormatFirefox:
		return importSnapshot(ctx, path, domain, readFirefoxCookies)
	case FormatNetscape:
		return ParseNetscape(path, domain)
	default:
		return nil, nil, fmt.Errorf("crumbshare: unsupported cookie store format at %s", path)
	}
}

type storeReader func(ctx context.Context, db *sql.DB, domain string) ([]Cookie, []string, error)

func importSnapshot(ctx context.Context, path, domain string, read storeReader) ([]Cookie, []string, error) {
	snap, cleanup, err := snapshotStore(path)
	if err != nil {
		return nil, nil, err
	}
	defer cleanup()

	db, err := openSQLiteReadOnly(ctx, snap)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = db.Close() }()

	return read(ctx, db, domain)
}

// hostWhereClause builds the host match for one domain: exact, dotted,
// and subdomain forms.
func hostWhereClause(column, domain string) (string, []any) {
	domain = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), ".")
	if domain == "" {
		return "1=1", nil
	}
	clause := column + " = ? OR " + column + " = ? OR " + column + " LIKE ?"
	return clause, []any{domain, "." + domain, "%." + domain}
}
