package crumbshare

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestExtractToken_NoShare(t *testing.T) {
	cases := []string{
		"",
		"https://example.com/page",
		"https://example.com/page#",
		"https://example.com/page#section-2",
		"https://example.com/page#foo=1&bar=2",
		"https://example.com/page#ce-cookies-extension-share=",
		"https://example.com/page#ce-profiles-extension-share=",
	}
	for _, u := range cases {
		if got := ExtractToken(u); got != nil {
			t.Fatalf("ExtractToken(%q): want nil got %+v", u, got)
		}
	}
}

func TestExtractToken_LegacyCookieKeyAnywhereInFragment(t *testing.T) {
	env := NewCookieEnvelope("example.com", []Cookie{testCookie("sid", "v")}, 0)
	token, err := EncodeEnvelope(env)
	if err != nil {
		t.Fatal(err)
	}
	u := "https://app.example.com/dash#tab=settings&" +
		fragmentKeyCookies + "=" + escapeURIComponent(token) + "&theme=dark"

	ext := ExtractToken(u)
	if ext == nil {
		t.Fatal("want extraction got nil")
	}
	if ext.Kind != KindCookies || ext.Encrypted {
		t.Fatalf("unexpected extraction %+v", ext)
	}
	if ext.Token != token {
		t.Fatalf("token mangled: want %q got %q", token, ext.Token)
	}
}

func TestExtractToken_ProfilesPrefixMustLeadFragment(t *testing.T) {
	env := NewProfileEnvelope("example.com", map[string][]Cookie{"work": {testCookie("sid", "v")}}, 0)
	token, err := EncodeEnvelope(env)
	if err != nil {
		t.Fatal(err)
	}

	lead := "https://example.com/#" + fragmentPrefixProfiles + escapeURIComponent(token)
	ext := ExtractToken(lead)
	if ext == nil || ext.Kind != KindProfiles || ext.Encrypted || ext.Token != token {
		t.Fatalf("leading prefix: unexpected extraction %+v", ext)
	}

	// Unlike the legacy cookie key, the profile marker is a prefix, not a
	// query-style key, so it is not recognized mid-fragment.
	buried := "https://example.com/#tab=1&" + fragmentPrefixProfiles + escapeURIComponent(token)
	if got := ExtractToken(buried); got != nil {
		t.Fatalf("buried prefix: want nil got %+v", got)
	}
}

func TestExtractToken_EncryptedForms(t *testing.T) {
	for _, tc := range []struct {
		prefix string
		kind   PayloadKind
	}{
		{fragmentPrefixCookiesCrypt, KindCookies},
		{fragmentPrefixProfilesCrypt, KindProfiles},
	} {
		u := "https://example.com/#" + tc.prefix +
			"data=" + escapeURIComponent("Y2lwaGVy+/=") +
			"&salt=" + escapeURIComponent("c2FsdA==") +
			"&iv=" + escapeURIComponent("aXY=")
		ext := ExtractToken(u)
		if ext == nil {
			t.Fatalf("%s: want extraction got nil", tc.kind)
		}
		if ext.Kind != tc.kind || !ext.Encrypted || ext.Token != "" {
			t.Fatalf("%s: unexpected extraction %+v", tc.kind, ext)
		}
		want := &EncryptedBlob{Version: FormatVersion, Data: "Y2lwaGVy+/=", Salt: "c2FsdA==", IV: "aXY="}
		if !reflect.DeepEqual(ext.Blob, want) {
			t.Fatalf("%s: blob mismatch:\nwant %+v\ngot  %+v", tc.kind, want, ext.Blob)
		}
	}
}

func TestExtractToken_EncryptedParamOrderIrrelevant(t *testing.T) {
	u := "https://example.com/#" + fragmentPrefixCookiesCrypt + "iv=aXY%3D&data=ZGF0YQ%3D%3D&salt=c2FsdA%3D%3D"
	ext := ExtractToken(u)
	if ext == nil || !ext.Encrypted {
		t.Fatalf("want encrypted extraction got %+v", ext)
	}
	if ext.Blob.Data != "ZGF0YQ==" || ext.Blob.Salt != "c2FsdA==" || ext.Blob.IV != "aXY=" {
		t.Fatalf("blob mismatch: %+v", ext.Blob)
	}
}

func TestExtractToken_EncryptedRequiresAllParams(t *testing.T) {
	cases := []string{
		fragmentPrefixCookiesCrypt + "data=ZGF0YQ%3D%3D&salt=c2FsdA%3D%3D",
		fragmentPrefixCookiesCrypt + "data=ZGF0YQ%3D%3D&iv=aXY%3D",
		fragmentPrefixCookiesCrypt + "salt=c2FsdA%3D%3D&iv=aXY%3D",
		fragmentPrefixCookiesCrypt + "data=&salt=c2FsdA%3D%3D&iv=aXY%3D",
		fragmentPrefixProfilesCrypt + "data=ZGF0YQ%3D%3D&salt=c2FsdA%3D%3D",
		fragmentPrefixCookiesCrypt + "data=%zz&salt=c2FsdA%3D%3D&iv=aXY%3D",
	}
	for _, frag := range cases {
		if got := ExtractToken("https://example.com/#" + frag); got != nil {
			t.Fatalf("fragment %q: want nil got %+v", frag, got)
		}
	}
}

func TestBuildShareFragment_PlainRoundTrip(t *testing.T) {
	stubTime(t, time.UnixMilli(1_700_000_000_000))
	env := NewCookieEnvelope("example.com", []Cookie{testCookie("sid", "v")}, time.Hour)

	frag, err := BuildShareFragment(env, "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(frag, fragmentKeyCookies+"=") {
		t.Fatalf("unexpected fragment %q", frag)
	}

	ext := ExtractToken("https://example.com/page#" + frag)
	if ext == nil || ext.Encrypted {
		t.Fatalf("want plain extraction got %+v", ext)
	}
	got, err := DecodeEnvelope(ext.Token)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, env) {
		t.Fatalf("envelope did not round-trip:\nwant %+v\ngot  %+v", env, got)
	}
}

func TestBuildShareFragment_ProfilesRoundTrip(t *testing.T) {
	stubTime(t, time.UnixMilli(1_700_000_000_000))
	env := NewProfileEnvelope("example.com", map[string][]Cookie{"work": {testCookie("sid", "v")}}, 0)

	frag, err := BuildShareFragment(env, "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(frag, fragmentPrefixProfiles) {
		t.Fatalf("unexpected fragment %q", frag)
	}
	ext := ExtractToken("https://example.com/#" + frag)
	if ext == nil || ext.Kind != KindProfiles {
		t.Fatalf("want profile extraction got %+v", ext)
	}
	got, err := DecodeEnvelope(ext.Token)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Profiles, env.Profiles) {
		t.Fatalf("profiles did not round-trip: %+v", got.Profiles)
	}
}

func TestBuildShareFragment_EncryptedRoundTrip(t *testing.T) {
	stubTime(t, time.UnixMilli(1_700_000_000_000))
	env := NewCookieEnvelope("example.com", []Cookie{testCookie("sid", "secret")}, time.Hour)

	frag, err := BuildShareFragment(env, "hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(frag, fragmentPrefixCookiesCrypt) {
		t.Fatalf("unexpected fragment %q", frag)
	}

	ext := ExtractToken("https://example.com/page#" + frag)
	if ext == nil || !ext.Encrypted || ext.Blob == nil {
		t.Fatalf("want encrypted extraction got %+v", ext)
	}
	got, err := DecodeEncryptedEnvelope(ext.Blob, "hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Cookies, env.Cookies) {
		t.Fatalf("cookies did not survive the round-trip: %+v", got.Cookies)
	}

	if _, err := DecodeEncryptedEnvelope(ext.Blob, "wrong"); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("want ErrDecryptionFailed got %v", err)
	}
}

func TestBuildShareFragment_EncryptedProfilesPrefix(t *testing.T) {
	env := NewProfileEnvelope("example.com", map[string][]Cookie{"work": {testCookie("sid", "v")}}, 0)
	frag, err := BuildShareFragment(env, "pw")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(frag, fragmentPrefixProfilesCrypt) {
		t.Fatalf("unexpected fragment %q", frag)
	}
}

func TestBuildShareURL_ReplacesExistingFragment(t *testing.T) {
	env := NewCookieEnvelope("example.com", []Cookie{testCookie("sid", "v")}, 0)

	u, err := BuildShareURL("https://example.com/page?x=1#old-anchor", env, "")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(u, "old-anchor") {
		t.Fatalf("old fragment survived: %q", u)
	}
	if !strings.HasPrefix(u, "https://example.com/page?x=1#") {
		t.Fatalf("base URL mangled: %q", u)
	}
	if ext := ExtractToken(u); ext == nil {
		t.Fatalf("built URL does not extract: %q", u)
	}

	bare, err := BuildShareURL("https://example.com/page", env, "")
	if err != nil {
		t.Fatal(err)
	}
	if ext := ExtractToken(bare); ext == nil {
		t.Fatalf("built URL does not extract: %q", bare)
	}
}
