// pkg/provider/lti/handler.go
package lti

import (
	"net/http"
	"strings"
)

// Handler is the dispatch contract for launch endpoints. Each request is
// verified exactly once; exactly one of the two callbacks runs per request.
type Handler interface {
	// OnValid handles a verified launch. The subclassing handler decides the
	// response (render the tool, mint a session, redirect, ...).
	OnValid(w http.ResponseWriter, r *http.Request, launch *LaunchRequest)
	// OnInvalid handles a failed verification. err wraps one of the sentinel
	// errors in this package.
	OnInvalid(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerFuncs adapts plain functions to Handler. A nil OnInvalidFn falls
// back to a 403 response.
type HandlerFuncs struct {
	OnValidFn   func(w http.ResponseWriter, r *http.Request, launch *LaunchRequest)
	OnInvalidFn func(w http.ResponseWriter, r *http.Request, err error)
}

func (h HandlerFuncs) OnValid(w http.ResponseWriter, r *http.Request, launch *LaunchRequest) {
	h.OnValidFn(w, r, launch)
}

func (h HandlerFuncs) OnInvalid(w http.ResponseWriter, r *http.Request, err error) {
	if h.OnInvalidFn == nil {
		DefaultInvalid(w, r, err)
		return
	}
	h.OnInvalidFn(w, r, err)
}

// DefaultInvalid is the fallback response for failed verifications.
func DefaultInvalid(w http.ResponseWriter, _ *http.Request, _ error) {
	http.Error(w, "Invalid LTI launch request", http.StatusForbidden)
}

// LaunchHandler returns an http.HandlerFunc that verifies the incoming
// launch (POST per the LTI spec, GET tolerated) and dispatches to h.
func LaunchHandler(v *Verifier, h Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			h.OnInvalid(w, r, ErrMalformedParameters)
			return
		}
		// r.Form merges query and body parameters, which is exactly the set
		// the consumer signed.
		launch, err := v.Verify(r.Context(), r.Method, RequestURL(r), r.Form, r.Header)
		if err != nil {
			h.OnInvalid(w, r, err)
			return
		}
		h.OnValid(w, r, launch)
	}
}

// RequestURL rebuilds the absolute URL the consumer signed against:
// scheme (honoring X-Forwarded-Proto behind a proxy), host and path.
// The query string is carried by the parameters, not the URL.
func RequestURL(r *http.Request) string {
	return schemeFromRequest(r) + "://" + r.Host + r.URL.Path
}

func schemeFromRequest(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-Proto"); xf != "" {
		// may be "https,http"; take first
		if i := strings.IndexByte(xf, ','); i >= 0 {
			return strings.TrimSpace(xf[:i])
		}
		return strings.TrimSpace(xf)
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
