// pkg/provider/lti/sign.go
package lti

import (
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// SignParams signs a parameter set the way an LTI consumer would: it fills
// in the oauth_* protocol parameters, computes the HMAC-SHA1 signature over
// method + url + params, and returns a new mapping including
// oauth_signature. The input mapping is not modified.
//
// It exists for tests and for driving sandbox launches against a provider;
// the verification path never calls it.
func SignParams(key, secret, method, rawurl string, params url.Values) (url.Values, error) {
	signed := make(url.Values, len(params)+6)
	for k, vs := range params {
		signed[k] = append([]string(nil), vs...)
	}
	signed.Set("oauth_consumer_key", key)
	signed.Set("oauth_signature_method", SignatureMethodHMACSHA1)
	signed.Set("oauth_timestamp", strconv.FormatInt(time.Now().Unix(), 10))
	signed.Set("oauth_nonce", uuid.NewString())
	signed.Set("oauth_version", "1.0")

	base, err := SignatureBaseString(method, rawurl, signed)
	if err != nil {
		return nil, err
	}
	signed.Set("oauth_signature", HMACSHA1Signature(base, secret, ""))
	return signed, nil
}
