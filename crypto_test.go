package crumbshare

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	plaintext := `{"v":1,"d":"example.com"}`
	blob, err := Encrypt(plaintext, "hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if blob.Version != FormatVersion {
		t.Fatalf("want version %d got %d", FormatVersion, blob.Version)
	}

	got, err := Decrypt(blob, "hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if got != plaintext {
		t.Fatalf("want %q got %q", plaintext, got)
	}
}

func TestEncrypt_FreshSaltAndIVPerCall(t *testing.T) {
	a, err := Encrypt("same input", "same password")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Encrypt("same input", "same password")
	if err != nil {
		t.Fatal(err)
	}
	if a.Salt == b.Salt {
		t.Fatal("salt reused across calls")
	}
	if a.IV == b.IV {
		t.Fatal("iv reused across calls")
	}
	if a.Data == b.Data {
		t.Fatal("identical ciphertext for fresh salt and iv")
	}
}

func TestEncrypt_SaltAndIVSizes(t *testing.T) {
	blob, err := Encrypt("x", "pw")
	if err != nil {
		t.Fatal(err)
	}
	salt, err := base64.StdEncoding.DecodeString(blob.Salt)
	if err != nil {
		t.Fatal(err)
	}
	if len(salt) != 16 {
		t.Fatalf("want 16-byte salt got %d", len(salt))
	}
	iv, err := base64.StdEncoding.DecodeString(blob.IV)
	if err != nil {
		t.Fatal(err)
	}
	if len(iv) != 12 {
		t.Fatalf("want 12-byte iv got %d", len(iv))
	}
}

func TestDecrypt_WrongPassword(t *testing.T) {
	blob, err := Encrypt("secret", "right")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decrypt(blob, "wrong"); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("want ErrDecryptionFailed got %v", err)
	}
}

func TestDecrypt_TamperedCiphertext(t *testing.T) {
	blob, err := Encrypt("secret", "pw")
	if err != nil {
		t.Fatal(err)
	}
	raw, err := base64.StdEncoding.DecodeString(blob.Data)
	if err != nil {
		t.Fatal(err)
	}
	raw[0] ^= 0xff
	blob.Data = base64.StdEncoding.EncodeToString(raw)

	if _, err := Decrypt(blob, "pw"); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("want ErrDecryptionFailed got %v", err)
	}
}

func TestDecrypt_RejectsBadBlobShapes(t *testing.T) {
	good, err := Encrypt("secret", "pw")
	if err != nil {
		t.Fatal(err)
	}

	shortSalt := *good
	shortSalt.Salt = base64.StdEncoding.EncodeToString([]byte("short"))

	shortIV := *good
	shortIV.IV = base64.StdEncoding.EncodeToString([]byte("short"))

	badEncoding := *good
	badEncoding.Data = "%%% not base64 %%%"

	cases := []struct {
		name string
		blob *EncryptedBlob
	}{
		{"nil blob", nil},
		{"wrong salt length", &shortSalt},
		{"wrong iv length", &shortIV},
		{"undecodable data", &badEncoding},
	}
	for _, tc := range cases {
		if _, err := Decrypt(tc.blob, "pw"); !errors.Is(err, ErrDecryptionFailed) {
			t.Fatalf("%s: want ErrDecryptionFailed got %v", tc.name, err)
		}
	}
}

func TestDecrypt_AcceptsURLSafeBase64(t *testing.T) {
	blob, err := Encrypt("payload that is long enough to need + or / eventually", "pw")
	if err != nil {
		t.Fatal(err)
	}
	reencode := func(s string) string {
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			t.Fatal(err)
		}
		return base64.RawURLEncoding.EncodeToString(raw)
	}
	blob.Data = reencode(blob.Data)
	blob.Salt = reencode(blob.Salt)
	blob.IV = reencode(blob.IV)

	got, err := Decrypt(blob, "pw")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "payload") {
		t.Fatalf("unexpected plaintext %q", got)
	}
}

func TestDecrypt_EmptyPasswordIsAKeyLikeAnyOther(t *testing.T) {
	blob, err := Encrypt("secret", "")
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decrypt(blob, "")
	if err != nil {
		t.Fatal(err)
	}
	if got != "secret" {
		t.Fatalf("want %q got %q", "secret", got)
	}
	if _, err := Decrypt(blob, "nonempty"); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("want ErrDecryptionFailed got %v", err)
	}
}
