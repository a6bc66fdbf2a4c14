package crumbshare

import "strings"

// Fragment markers recognized in share URLs. These are wire constants;
// changing any of them breaks every link already in circulation.
//
// The plain cookie form is the odd one out: its token sits under a
// query-style key that may appear anywhere in the fragment, while the
// other three use a leading prefix. That asymmetry is how the format
// grew and is kept as is.
const (
	fragmentKeyCookies          = "ce-cookies-extension-share"
	fragmentPrefixProfiles      = "ce-profiles-extension-share="
	fragmentPrefixCookiesCrypt  = "ce-cookies-extension-share-encrypted="
	fragmentPrefixProfilesCrypt = "ce-profiles-extension-share-encrypted="
)

// ExtractToken sniffs rawURL's fragment for an embedded share. It returns
// nil when there is no fragment or no recognized marker, and never fails
// on malformed input. The result is raw wire material: no base64 decoding
// and no decryption happens here.
func ExtractToken(rawURL string) *Extraction {
	frag := urlFragment(rawURL)
	if frag == "" {
		return nil
	}

	// Encrypted prefixes first: the legacy cookie key is a prefix of its
	// encrypted counterpart.
	if rest, ok := strings.CutPrefix(frag, fragmentPrefixCookiesCrypt); ok {
		return extractEncrypted(KindCookies, rest)
	}
	if rest, ok := strings.CutPrefix(frag, fragmentPrefixProfilesCrypt); ok {
		return extractEncrypted(KindProfiles, rest)
	}
	if rest, ok := strings.CutPrefix(frag, fragmentPrefixProfiles); ok {
		return extractPlain(KindProfiles, rest)
	}
	if tok, ok := fragmentParam(frag, fragmentKeyCookies); ok {
		return &Extraction{Kind: KindCookies, Token: tok}
	}
	return nil
}

func urlFragment(rawURL string) string {
	i := strings.IndexByte(rawURL, '#')
	if i < 0 {
		return ""
	}
	return rawURL[i+1:]
}

func extractPlain(kind PayloadKind, raw string) *Extraction {
	tok, err := unescapeURIComponent(raw)
	if err != nil || tok == "" {
		return nil
	}
	return &Extraction{Kind: kind, Token: tok}
}

func extractEncrypted(kind PayloadKind, rest string) *Extraction {
	data, okData := fragmentParam(rest, "data")
	salt, okSalt := fragmentParam(rest, "salt")
	iv, okIV := fragmentParam(rest, "iv")
	if !okData || !okSalt || !okIV {
		// All three or nothing: a partial blob is useless downstream.
		return nil
	}
	return &Extraction{
		Kind:      kind,
		Encrypted: true,
		Blob:      &EncryptedBlob{Version: FormatVersion, Data: data, Salt: salt, IV: iv},
	}
}

// fragmentParam finds key in a query-style fragment section and returns
// its unescaped value. Values keep literal '+' (the producers escape with
// encodeURIComponent, which never emits '+').
func fragmentParam(frag, key string) (string, bool) {
	for _, pair := range strings.Split(frag, "&") {
		k, v, _ := strings.Cut(pair, "=")
		if k != key {
			continue
		}
		val, err := unescapeURIComponent(v)
		if err != nil || val == "" {
			return "", false
		}
		return val, true
	}
	return "", false
}

// BuildShareFragment serializes env into the fragment form ExtractToken
// recognizes. A non-empty password produces the encrypted variant.
func BuildShareFragment(env *Envelope, password string) (string, error) {
	if password != "" {
		blob, err := EncodeEncryptedEnvelope(env, password)
		if err != nil {
			return "", err
		}
		prefix := fragmentPrefixCookiesCrypt
		if env.Kind == KindProfiles {
			prefix = fragmentPrefixProfilesCrypt
		}
		return prefix +
			"data=" + escapeURIComponent(blob.Data) +
			"&salt=" + escapeURIComponent(blob.Salt) +
			"&iv=" + escapeURIComponent(blob.IV), nil
	}

	token, err := EncodeEnvelope(env)
	if err != nil {
		return "", err
	}
	if env.Kind == KindProfiles {
		return fragmentPrefixProfiles + escapeURIComponent(token), nil
	}
	return fragmentKeyCookies + "=" + escapeURIComponent(token), nil
}

// BuildShareURL attaches the share fragment for env to pageURL, replacing
// any fragment already present.
func BuildShareURL(pageURL string, env *Envelope, password string) (string, error) {
	frag, err := BuildShareFragment(env, password)
	if err != nil {
		return "", err
	}
	base, _, _ := strings.Cut(pageURL, "#")
	return base + "#" + frag, nil
}
