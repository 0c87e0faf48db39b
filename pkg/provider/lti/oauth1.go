// pkg/provider/lti/oauth1.go
package lti

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

/*
OAuth 1.0 signature base string construction and HMAC-SHA1 signing, as
specified by RFC 5849 section 3.4. LTI 1.0/1.1 launch requests are plain
form POSTs signed with this scheme, so getting the normalization exactly
right (percent encoding, byte-wise parameter ordering, repeated names,
default-port elision) is what makes the provider interoperate with the
different consumer implementations out there.

Only HMAC-SHA1 is supported; it is the method every LTI 1.x consumer uses.
*/

// SignatureMethodHMACSHA1 is the only oauth_signature_method accepted here.
const SignatureMethodHMACSHA1 = "HMAC-SHA1"

// percentEncode implements RFC 5849 section 3.6: unreserved characters are
// passed through, everything else becomes %XX with uppercase hex digits.
// Note this differs from url.QueryEscape, which emits '+' for spaces.
func percentEncode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' ||
			c == '-' || c == '.' || c == '_' || c == '~' {
			b.WriteByte(c)
			continue
		}
		b.WriteString(fmt.Sprintf("%%%02X", c))
	}
	return b.String()
}

// baseStringURI normalizes the request URL per RFC 5849 section 3.4.1.2:
// lowercase scheme and host, default ports elided, query and fragment
// dropped.
func baseStringURI(rawurl string) (string, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return "", fmt.Errorf("lti: parse url: %w", err)
	}
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	switch {
	case scheme == "http" && strings.HasSuffix(host, ":80"):
		host = strings.TrimSuffix(host, ":80")
	case scheme == "https" && strings.HasSuffix(host, ":443"):
		host = strings.TrimSuffix(host, ":443")
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return scheme + "://" + host + path, nil
}

// normalizeParams encodes and orders the request parameters per RFC 5849
// section 3.4.1.3.2. oauth_signature itself is excluded. Repeated parameter
// names are kept and ordered by encoded value.
func normalizeParams(params url.Values) string {
	type pair struct{ k, v string }
	pairs := make([]pair, 0, len(params))
	for k, vs := range params {
		if k == "oauth_signature" {
			continue
		}
		ek := percentEncode(k)
		for _, v := range vs {
			pairs = append(pairs, pair{ek, percentEncode(v)})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].k != pairs[j].k {
			return pairs[i].k < pairs[j].k
		}
		return pairs[i].v < pairs[j].v
	})
	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.k)
		b.WriteByte('=')
		b.WriteString(p.v)
	}
	return b.String()
}

// SignatureBaseString builds the OAuth1 signature base string for a request.
// params must contain every oauth_* and form/query parameter of the request;
// any oauth_signature entry is ignored.
func SignatureBaseString(method, rawurl string, params url.Values) (string, error) {
	uri, err := baseStringURI(rawurl)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(method) + "&" + percentEncode(uri) + "&" + percentEncode(normalizeParams(params)), nil
}

// HMACSHA1Signature computes the base64 HMAC-SHA1 signature of a base string.
// tokenSecret is empty for LTI launches (no token step is performed).
func HMACSHA1Signature(baseString, consumerSecret, tokenSecret string) string {
	key := percentEncode(consumerSecret) + "&" + percentEncode(tokenSecret)
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(baseString))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// checkSignature recomputes the expected signature and compares it to the
// supplied one in constant time. It returns false on any mismatch, including
// an unparseable URL.
func checkSignature(method, rawurl string, params url.Values, consumerSecret, supplied string) bool {
	base, err := SignatureBaseString(method, rawurl, params)
	if err != nil {
		return false
	}
	want := HMACSHA1Signature(base, consumerSecret, "")
	return subtle.ConstantTimeCompare([]byte(want), []byte(supplied)) == 1
}
