// Package crumbshare builds, shares and diffs browser cookie sets.
//
// It implements the cookie/profile share-link format used by cookie-editor
// extensions: a versioned, expiring envelope serialized into a URL fragment
// token, optionally encrypted with a password (PBKDF2-SHA256 + AES-256-GCM).
// It also fingerprints cookie sets so a domain's live cookies can be checked
// for drift against the profile last loaded for that domain, and imports
// cookies from local browser stores (Chrome-family, Firefox, Netscape files)
// for sharing.
//
// This is intended for local tooling (CLI helpers, dev scripts, test
// harnesses). Browser imports read local browser state and should not be
// used in server contexts.
package crumbshare
