package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/edubridge/lti-provider/pkg/provider/auth"
	"github.com/edubridge/lti-provider/pkg/provider/consumer"
	"github.com/edubridge/lti-provider/pkg/provider/lti"
)

const (
	testKey    = "demo"
	testSecret = "s3cr3t"
	testURL    = "https://provider.example/launch"
)

func verifiedLaunch(t *testing.T, params url.Values) *lti.LaunchRequest {
	t.Helper()
	store := consumer.NewMemoryStore()
	if err := store.CreateConsumer(context.Background(), consumer.Consumer{Slug: "test-lms", Title: "Test LMS"}); err != nil {
		t.Fatalf("create consumer: %v", err)
	}
	if err := store.CreatePassport(context.Background(), consumer.Passport{
		ConsumerSlug: "test-lms", Title: "t", OAuthConsumerKey: testKey,
		SharedSecret: testSecret, Enabled: true,
	}); err != nil {
		t.Fatalf("create passport: %v", err)
	}

	signed, err := lti.SignParams(testKey, testSecret, "POST", testURL, params)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	launch, err := lti.NewVerifier(store).Verify(context.Background(), "POST", testURL, signed, http.Header{})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	return launch
}

func fullLaunchParams() url.Values {
	p := url.Values{}
	p.Set("lti_message_type", "basic-lti-launch-request")
	p.Set("lti_version", "LTI-1p0")
	p.Set("resource_link_id", "df7")
	p.Set("roles", "Instructor")
	p.Set("user_id", "u-42")
	p.Set("lis_person_contact_email_primary", "u42@example.com")
	p.Set("lis_person_name_full", "Ada Lovelace")
	p.Set("context_id", "course-1")
	return p
}

func TestAuthenticateMintsSession(t *testing.T) {
	backend := auth.NewSessionBackend("test-secret", time.Hour)
	launch := verifiedLaunch(t, fullLaunchParams())

	token, claims, err := backend.Authenticate(launch)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if claims.Subject != "u-42" || claims.Email != "u42@example.com" {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.ConsumerSlug != "test-lms" || claims.ContextID != "course-1" {
		t.Fatalf("claims = %+v", claims)
	}

	parsed, err := backend.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Subject != "u-42" || parsed.FullName != "Ada Lovelace" {
		t.Fatalf("parsed = %+v", parsed)
	}
	if len(parsed.Roles) != 1 || parsed.Roles[0] != "instructor" {
		t.Fatalf("roles = %v", parsed.Roles)
	}
}

func TestAuthenticateMissingIdentity(t *testing.T) {
	backend := auth.NewSessionBackend("test-secret", time.Hour)

	p := fullLaunchParams()
	p.Del("user_id")
	if _, _, err := backend.Authenticate(verifiedLaunch(t, p)); !errors.Is(err, auth.ErrMissingUserParam) {
		t.Fatalf("missing user_id: got %v", err)
	}

	p = fullLaunchParams()
	p.Del("lis_person_contact_email_primary")
	if _, _, err := backend.Authenticate(verifiedLaunch(t, p)); !errors.Is(err, auth.ErrMissingUserParam) {
		t.Fatalf("missing email: got %v", err)
	}
}

func TestParseRejectsForgedToken(t *testing.T) {
	backend := auth.NewSessionBackend("test-secret", time.Hour)
	other := auth.NewSessionBackend("other-secret", time.Hour)

	token, _, err := other.Authenticate(verifiedLaunch(t, fullLaunchParams()))
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if _, err := backend.Parse(token); err == nil {
		t.Fatal("token signed with another secret must not parse")
	}
	if _, err := backend.Parse("not-a-token"); err == nil {
		t.Fatal("garbage must not parse")
	}
}
