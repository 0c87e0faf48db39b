// pkg/provider/lti/verifier.go
package lti

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/edubridge/lti-provider/pkg/provider/consumer"
)

// DefaultFreshnessWindow is how far an oauth_timestamp may lie in the past
// (or the future, to absorb clock skew) before the request is rejected.
const DefaultFreshnessWindow = time.Hour

// dummySecret is used to compute a signature for unknown consumer keys so
// that the miss takes the same time as a hit with a bad signature.
const dummySecret = "dummy-client-secret-0000000000"

// Verifier validates incoming LTI 1.0/1.1 launch requests against the
// consumer registry. The zero value is not usable; construct with
// NewVerifier. A Verifier is safe for concurrent use.
type Verifier struct {
	store  consumer.Store
	replay ReplayCache
	window time.Duration
	now    func() time.Time
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithFreshnessWindow overrides DefaultFreshnessWindow.
func WithFreshnessWindow(d time.Duration) Option {
	return func(v *Verifier) { v.window = d }
}

// WithReplayCache installs a nonce replay cache. The default is NoopReplay:
// replay protection is opt-in because a process-local cache is only correct
// for single-instance deployments.
func WithReplayCache(c ReplayCache) Option {
	return func(v *Verifier) { v.replay = c }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) { v.now = now }
}

func NewVerifier(store consumer.Store, opts ...Option) *Verifier {
	v := &Verifier{
		store:  store,
		replay: NoopReplay{},
		window: DefaultFreshnessWindow,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks an OAuth1-signed launch request and returns the typed
// launch wrapper on success. method and rawurl describe the request as the
// consumer addressed it; params must hold every form and query parameter.
// Failures wrap one of the sentinel errors in this package.
func (v *Verifier) Verify(ctx context.Context, method, rawurl string, params url.Values, header http.Header) (*LaunchRequest, error) {
	key := params.Get("oauth_consumer_key")
	if key == "" {
		return nil, ErrMissingConsumerKey
	}

	if m := params.Get("oauth_signature_method"); m != SignatureMethodHMACSHA1 {
		return nil, fmt.Errorf("%w: unsupported oauth_signature_method %q", ErrMalformedParameters, m)
	}

	passport, err := v.store.FindByKey(ctx, key)
	switch {
	case errors.Is(err, consumer.ErrNotFound):
		// Burn the same signature work as the success path before reporting,
		// so registry misses are not observable through timing.
		checkSignature(method, rawurl, params, dummySecret, params.Get("oauth_signature"))
		return nil, fmt.Errorf("%w: %q", ErrUnknownConsumer, key)
	case err != nil:
		return nil, fmt.Errorf("lti: consumer lookup: %w", err)
	}

	if !checkSignature(method, rawurl, params, passport.SharedSecret, params.Get("oauth_signature")) {
		return nil, fmt.Errorf("%w (consumer %q)", ErrInvalidSignature, key)
	}

	if err := v.checkTimestamp(params.Get("oauth_timestamp")); err != nil {
		return nil, err
	}

	nonce := params.Get("oauth_nonce")
	if !v.replay.Remember(key+"|"+params.Get("oauth_timestamp")+"|"+nonce, v.window) {
		return nil, fmt.Errorf("%w (consumer %q, nonce %q)", ErrReplayedRequest, key, nonce)
	}

	if err := ValidateLaunchParams(params); err != nil {
		return nil, err
	}

	cons, err := v.store.GetConsumer(ctx, passport.ConsumerSlug)
	if err != nil && !errors.Is(err, consumer.ErrNotFound) {
		return nil, fmt.Errorf("lti: consumer lookup: %w", err)
	}

	return &LaunchRequest{
		params:   params,
		passport: passport,
		consumer: cons,
		referer:  header.Get("Referer"),
	}, nil
}

func (v *Verifier) checkTimestamp(raw string) error {
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: unparseable oauth_timestamp %q", ErrMalformedParameters, raw)
	}
	age := v.now().Sub(time.Unix(ts, 0))
	if age > v.window || age < -v.window {
		return fmt.Errorf("%w: %s outside ±%s", ErrStaleRequest, raw, v.window)
	}
	return nil
}
