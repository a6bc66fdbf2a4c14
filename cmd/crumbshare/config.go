package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-ini/ini"

	"github.com/crumbshare/crumbshare"
)

// storeDir is the --store-dir destination; empty means use the config.
var storeDir string

type appConfig struct {
	StoreDir       string
	DefaultTTL     time.Duration
	DefaultFormat  string
	KeyringEnabled bool
}

var cfg = defaultConfig()

func defaultConfig() appConfig {
	return appConfig{
		StoreDir:       filepath.Join(configDir(), "store"),
		DefaultFormat:  "json",
		KeyringEnabled: true,
	}
}

func configDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "crumbshare")
}

// loadConfig overlays config.ini on the defaults. A missing file is
// fine; a malformed one is an error.
func loadConfig(path string) error {
	if path == "" {
		path = filepath.Join(configDir(), "config.ini")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	f, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}

	st := f.Section("store")
	if v := st.Key("dir").String(); v != "" {
		cfg.StoreDir = v
	}

	sh := f.Section("share")
	if v := sh.Key("default_ttl").String(); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config share.default_ttl: %w", err)
		}
		cfg.DefaultTTL = d
	}
	if v := sh.Key("default_format").String(); v != "" {
		cfg.DefaultFormat = v
	}

	kr := f.Section("keyring")
	if kr.HasKey("enabled") {
		cfg.KeyringEnabled = kr.Key("enabled").MustBool(true)
	}
	if v := kr.Key("service").String(); v != "" {
		crumbshare.KeyringService = v
	}
	return nil
}
