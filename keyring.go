package crumbshare

import (
	"errors"
	"os"

	"github.com/zalando/go-keyring"
)

// KeyringService namespaces share passwords in the OS credential store.
// Override it before the first keyring call to share entries with
// another tool.
var KeyringService = "crumbshare"

// envSharePassword overrides the keyring lookup, for headless use and CI.
const envSharePassword = "CRUMBSHARE_SHARE_PASSWORD"

// Stubbed in tests to avoid touching the OS keyring.
var (
	keyringSet    = keyring.Set
	keyringGet    = keyring.Get
	keyringDelete = keyring.Delete
)

// RememberSharePassword stores the share password for domain in the OS
// credential store.
func RememberSharePassword(domain, password string) error {
	if domain == "" {
		return errors.New("crumbshare: empty domain")
	}
	return keyringSet(KeyringService, domain, password)
}

// LookupSharePassword returns the remembered share password for domain.
// The CRUMBSHARE_SHARE_PASSWORD environment variable, when set, wins over
// the credential store. Returns ("", false) when nothing is stored.
func LookupSharePassword(domain string) (string, bool) {
	if pw := os.Getenv(envSharePassword); pw != "" {
		return pw, true
	}
	pw, err := keyringGet(KeyringService, domain)
	if err != nil {
		return "", false
	}
	return pw, true
}

// ForgetSharePassword removes the remembered share password for domain.
// Forgetting a password that was never stored is not an error.
func ForgetSharePassword(domain string) error {
	err := keyringDelete(KeyringService, domain)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}
