package crumbshare

// FormatVersion is the envelope format this package produces and accepts.
// Tokens carrying any other version are rejected, never coerced.
const FormatVersion = 1

// PayloadKind discriminates what an Envelope carries.
type PayloadKind string

const (
	// KindCookies is a shared cookie collection for one domain.
	KindCookies PayloadKind = "cookies"
	// KindProfiles is a shared set of named profiles for one domain.
	KindProfiles PayloadKind = "profiles"
)

// SameSite is the cookie SameSite attribute as extensions store it.
type SameSite string

const (
	// SameSiteNone is SameSite=None.
	SameSiteNone SameSite = "none"
	// SameSiteLax is SameSite=Lax.
	SameSiteLax SameSite = "lax"
	// SameSiteStrict is SameSite=Strict.
	SameSiteStrict SameSite = "strict"
)

// Cookie is a browser cookie record in extension wire form.
type Cookie struct {
	Name     string   `json:"name"`
	Value    string   `json:"value"`
	Domain   string   `json:"domain"`
	Path     string   `json:"path"`
	Secure   bool     `json:"secure"`
	HTTPOnly bool     `json:"httpOnly"`
	SameSite SameSite `json:"sameSite,omitempty"`
	Session  bool     `json:"session"`
	HostOnly bool     `json:"hostOnly"`

	// ExpirationDate is seconds since epoch, zero (and omitted) for
	// session cookies.
	ExpirationDate float64 `json:"expirationDate,omitempty"`
}

// Envelope is the versioned, expiring unit exchanged via share URLs.
// Exactly one of Cookies and Profiles is set, matching Kind.
type Envelope struct {
	Kind      PayloadKind
	Version   int
	Domain    string
	Cookies   []Cookie
	Profiles  map[string][]Cookie
	CreatedAt int64 // ms since epoch
	ExpiresAt int64 // ms since epoch, 0 means never
}

// EncryptedBlob carries an encrypted payload. Data, Salt and IV are
// base64 as found on the wire; Decrypt validates the decoded lengths
// (16-byte salt, 12-byte IV).
type EncryptedBlob struct {
	Version int    `json:"v"`
	Data    string `json:"data"`
	Salt    string `json:"salt"`
	IV      string `json:"iv"`
}

// Extraction is the result of sniffing a URL fragment for a share token.
// Plain shares set Token; encrypted shares set Blob.
type Extraction struct {
	Kind      PayloadKind
	Encrypted bool
	Token     string
	Blob      *EncryptedBlob
}

// CookieFingerprint maps a composite (name, domain, path) key to the
// normalized record compared for profile drift.
type CookieFingerprint map[string]FingerprintRecord

// FingerprintRecord is the comparable subset of a cookie. Session
// records never carry an expiration.
type FingerprintRecord struct {
	Value          string   `json:"value"`
	Secure         bool     `json:"secure"`
	HTTPOnly       bool     `json:"httpOnly"`
	HostOnly       bool     `json:"hostOnly"`
	SameSite       SameSite `json:"sameSite,omitempty"`
	Session        bool     `json:"session"`
	ExpirationDate float64  `json:"expirationDate,omitempty"`
}

// ProfileMetadata is the per-domain bookkeeping behind drift detection.
type ProfileMetadata struct {
	// LastLoadedProfile is empty when no profile is loaded for the domain.
	LastLoadedProfile string `json:"lastLoadedProfile,omitempty"`
	// LoadedAt is ms since epoch at load time.
	LoadedAt int64 `json:"loadedAt"`
	// Modified flips to true once drift is detected and stays set until
	// the next load.
	Modified          bool              `json:"modified"`
	CookieCountAtLoad int               `json:"cookieCountAtLoad"`
	FingerprintAtLoad CookieFingerprint `json:"fingerprintAtLoad,omitempty"`
}

// StrengthLevel buckets a password strength score.
type StrengthLevel string

const (
	// StrengthNone is an empty password.
	StrengthNone StrengthLevel = "none"
	// StrengthWeak is a short or single-class password.
	StrengthWeak StrengthLevel = "weak"
	// StrengthMedium is a password with moderate length and variety.
	StrengthMedium StrengthLevel = "medium"
	// StrengthStrong is a long password drawing on several character classes.
	StrengthStrong StrengthLevel = "strong"
)

// PasswordStrength is the advisory result of EvaluatePasswordStrength.
// It has no cryptographic effect.
type PasswordStrength struct {
	Score    int
	Level    StrengthLevel
	Feedback []string
}

// CookiePayload is an inline cookie input source (JSON/base64/file).
type CookiePayload struct {
	// Exactly one of these is expected to be set. If multiple are set,
	// JSON wins over Base64 over File.
	JSON   []byte
	Base64 string
	File   string
}

// Browser identifies a local cookie-store vendor for import.
type Browser string

const (
	// BrowserChrome is Google Chrome.
	BrowserChrome Browser = "chrome"
	// BrowserChromium is Chromium.
	BrowserChromium Browser = "chromium"
	// BrowserEdge is Microsoft Edge.
	BrowserEdge Browser = "edge"
	// BrowserBrave is Brave Browser.
	BrowserBrave Browser = "brave"
	// BrowserVivaldi is Vivaldi.
	BrowserVivaldi Browser = "vivaldi"
	// BrowserOpera is Opera.
	BrowserOpera Browser = "opera"
	// BrowserFirefox is Mozilla Firefox.
	BrowserFirefox Browser = "firefox"
)

// StoreFormat is the detected on-disk format of a cookie store.
type StoreFormat int

const (
	// FormatUnknown means the store format could not be detected.
	FormatUnknown StoreFormat = iota
	// FormatChrome is the Chromium-family cookies SQLite schema.
	FormatChrome
	// FormatFirefox is the Firefox moz_cookies SQLite schema.
	FormatFirefox
	// FormatNetscape is the tab-separated Netscape cookies.txt format.
	FormatNetscape
)

func (f StoreFormat) String() string {
	switch f {
	case FormatChrome:
		return "chrome"
	case FormatFirefox:
		return "firefox"
	case FormatNetscape:
		return "netscape"
	default:
		return "unknown"
	}
}

// StoreLocation is a discovered browser cookie store.
type StoreLocation struct {
	Browser Browser
	Profile string
	Path    string
}
