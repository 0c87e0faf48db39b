package lti

import (
	"net/url"
	"testing"
)

// Vector from OAuth Core 1.0 Appendix A.5 (the "photos.example.net" request).
func TestHMACSHA1KnownVector(t *testing.T) {
	params := url.Values{}
	params.Set("oauth_consumer_key", "dpf43f3p2l4k3l03")
	params.Set("oauth_token", "nnch734d00sl2jdk")
	params.Set("oauth_signature_method", "HMAC-SHA1")
	params.Set("oauth_timestamp", "1191242096")
	params.Set("oauth_nonce", "kllo9940pd9333jh")
	params.Set("oauth_version", "1.0")
	params.Set("file", "vacation.jpg")
	params.Set("size", "original")

	base, err := SignatureBaseString("GET", "http://photos.example.net/photos", params)
	if err != nil {
		t.Fatalf("base string: %v", err)
	}
	wantBase := "GET&http%3A%2F%2Fphotos.example.net%2Fphotos&file%3Dvacation.jpg%26" +
		"oauth_consumer_key%3Ddpf43f3p2l4k3l03%26oauth_nonce%3Dkllo9940pd9333jh%26" +
		"oauth_signature_method%3DHMAC-SHA1%26oauth_timestamp%3D1191242096%26" +
		"oauth_token%3Dnnch734d00sl2jdk%26oauth_version%3D1.0%26size%3Doriginal"
	if base != wantBase {
		t.Fatalf("base string mismatch:\n got %s\nwant %s", base, wantBase)
	}

	sig := HMACSHA1Signature(base, "kd94hf93k423kf44", "pfkkdhi9sl3r4s00")
	if sig != "tR3+Ty81lMeYAr/Fid0kMTYa/WM=" {
		t.Fatalf("signature mismatch: got %s", sig)
	}
}

func TestPercentEncode(t *testing.T) {
	cases := map[string]string{
		"abcABC123":   "abcABC123",
		"-._~":        "-._~",
		" ":           "%20",
		"+":           "%2B",
		"&=*":         "%26%3D%2A",
		"é":           "%C3%A9", // UTF-8 bytes, uppercase hex
		"a b&c":       "a%20b%26c",
		"100%":        "100%25",
		"çà l'école!": "%C3%A7%C3%A0%20l%27%C3%A9cole%21",
	}
	for in, want := range cases {
		if got := percentEncode(in); got != want {
			t.Errorf("percentEncode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBaseStringURINormalization(t *testing.T) {
	cases := map[string]string{
		"HTTP://Example.COM:80/r%20v/X":  "http://example.com/r%20v/X",
		"https://example.com:443/launch": "https://example.com/launch",
		"https://example.com:8443/lti":   "https://example.com:8443/lti",
		"http://example.com":             "http://example.com/",
		"http://example.com/l?x=1#frag":  "http://example.com/l",
	}
	for in, want := range cases {
		got, err := baseStringURI(in)
		if err != nil {
			t.Fatalf("baseStringURI(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("baseStringURI(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeParamsOrderingAndRepeats(t *testing.T) {
	params := url.Values{
		"b":   {"2", "1"},
		"a":   {"x"},
		"z~":  {"v w"},
		"A":   {"y"},
		"b 1": {"q"},
	}
	got := normalizeParams(params)
	// Byte-wise ordering on the encoded names ("A" < "a" < "b" < "b%201" < "z~"),
	// repeated "b" entries ordered by encoded value.
	want := "A=y&a=x&b=1&b=2&b%201=q&z~=v%20w"
	if got != want {
		t.Fatalf("normalizeParams = %q, want %q", got, want)
	}
}

func TestNormalizeParamsExcludesSignature(t *testing.T) {
	params := url.Values{
		"oauth_signature": {"should-not-appear"},
		"a":               {"1"},
	}
	if got := normalizeParams(params); got != "a=1" {
		t.Fatalf("normalizeParams = %q, want %q", got, "a=1")
	}
}

// Signing then verifying with the same secret must succeed regardless of the
// order parameters were inserted in.
func TestSignVerifyRoundTrip(t *testing.T) {
	const (
		key    = "demo"
		secret = "s3cr3t"
		method = "POST"
		rawurl = "https://provider.example/launch"
	)
	params := url.Values{}
	params.Set("lti_message_type", "basic-lti-launch-request")
	params.Set("lti_version", "LTI-1p0")
	params.Set("resource_link_id", "abc123")
	params.Set("custom_param", "a value with spaces & symbols ~")

	signed, err := SignParams(key, secret, method, rawurl, params)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if !checkSignature(method, rawurl, signed, secret, signed.Get("oauth_signature")) {
		t.Fatal("round-trip verification failed")
	}
	if checkSignature(method, rawurl, signed, "other-secret", signed.Get("oauth_signature")) {
		t.Fatal("verification succeeded with the wrong secret")
	}
}
