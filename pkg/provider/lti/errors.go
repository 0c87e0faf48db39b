// pkg/provider/lti/errors.go
package lti

import "errors"

// Verification failures. Every failure is terminal for the request; the
// surrounding handler decides the HTTP response. Callers match with
// errors.Is since the verifier wraps these with detail.
var (
	// ErrMissingConsumerKey: the request carries no oauth_consumer_key.
	ErrMissingConsumerKey = errors.New("lti: missing oauth_consumer_key")

	// ErrUnknownConsumer: no enabled passport is registered for the key.
	ErrUnknownConsumer = errors.New("lti: unknown consumer key")

	// ErrInvalidSignature: the recomputed HMAC-SHA1 signature does not match
	// the supplied oauth_signature.
	ErrInvalidSignature = errors.New("lti: invalid oauth signature")

	// ErrStaleRequest: oauth_timestamp falls outside the freshness window.
	ErrStaleRequest = errors.New("lti: stale oauth_timestamp")

	// ErrReplayedRequest: the (key, timestamp, nonce) triple was seen before.
	ErrReplayedRequest = errors.New("lti: replayed timestamp/nonce")

	// ErrMalformedParameters: required LTI parameters are absent or not
	// acceptable for the declared message type.
	ErrMalformedParameters = errors.New("lti: malformed launch parameters")
)
