// Package sigv2 implements the canonical query string and HMAC signature used by
// the SimpleDB query API (signature version 2).
package sigv2

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"hash"
	"net/url"
	"sort"
	"strings"
)

const (
	// Version is the value of the SignatureVersion parameter.
	Version = "2"

	// MethodHmacSHA256 is the default signature method.
	MethodHmacSHA256 = "HmacSHA256"

	// MethodHmacSHA1 is the legacy signature method.
	MethodHmacSHA1 = "HmacSHA1"

	// SignatureParam is the query parameter carrying the signature.
	SignatureParam = "Signature"
)

// HashFor returns the hash constructor for a signature method name.
func HashFor(method string) (func() hash.Hash, bool) {
	switch method {
	case MethodHmacSHA256:
		return sha256.New, true
	case MethodHmacSHA1:
		return sha1.New, true
	}
	return nil, false
}

// Escape percent-encodes s for the query string. Spaces become %20, never '+'.
func Escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// CanonicalQuery joins params as escaped key=value pairs sorted by key.
func CanonicalQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(Escape(k))
		b.WriteByte('=')
		b.WriteString(Escape(params[k]))
	}
	return b.String()
}

// StringToSign builds the string the signature is computed over.
func StringToSign(method, host, path, query string) string {
	if path == "" {
		path = "/"
	}
	return method + "\n" + host + "\n" + path + "\n" + query
}

// Sign returns the base64 HMAC of stringToSign, before escaping.
func Sign(newHash func() hash.Hash, secret, stringToSign string) string {
	mac := hmac.New(newHash, []byte(secret))
	mac.Write([]byte(stringToSign))
	return strings.TrimSpace(base64.StdEncoding.EncodeToString(mac.Sum(nil)))
}

// SignedQuery returns query with the escaped Signature parameter appended.
func SignedQuery(newHash func() hash.Hash, secret, method, host, path, query string) string {
	sig := Sign(newHash, secret, StringToSign(method, host, path, query))
	if query == "" {
		return SignatureParam + "=" + Escape(sig)
	}
	return query + "&" + SignatureParam + "=" + Escape(sig)
}

// Verify recomputes the signature of a received request and compares it with
// the Signature parameter in values. values must be the decoded query.
func Verify(values url.Values, secret, method, host, path string) bool {
	got := values.Get(SignatureParam)
	if got == "" {
		return false
	}
	newHash, ok := HashFor(values.Get("SignatureMethod"))
	if !ok {
		return false
	}

	params := make(map[string]string, len(values))
	for k, v := range values {
		if k == SignatureParam || len(v) == 0 {
			continue
		}
		params[k] = v[0]
	}

	want := Sign(newHash, secret, StringToSign(method, host, path, CanonicalQuery(params)))
	return hmac.Equal([]byte(got), []byte(want))
}

// DefaultPort returns the well-known port for a URL scheme, or 0.
func DefaultPort(scheme string) int {
	switch strings.ToLower(scheme) {
	case "http":
		return 80
	case "https":
		return 443
	}
	return 0
}
