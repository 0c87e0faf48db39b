package consumer

import (
	"strings"
	"testing"
)

func TestGenerateConsumerKey(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 50; i++ {
		key := GenerateConsumerKey()
		if len(key) < 20 || len(key) >= 30 {
			t.Fatalf("key length %d out of range: %q", len(key), key)
		}
		for _, c := range key {
			if !strings.ContainsRune(consumerKeyChars, c) {
				t.Fatalf("key %q contains unexpected character %q", key, c)
			}
		}
		if _, dup := seen[key]; dup {
			t.Fatalf("duplicate key generated: %q", key)
		}
		seen[key] = struct{}{}
	}
}

func TestGenerateSharedSecret(t *testing.T) {
	for i := 0; i < 50; i++ {
		secret := GenerateSharedSecret()
		if len(secret) < 40 || len(secret) >= 60 {
			t.Fatalf("secret length %d out of range", len(secret))
		}
		for _, c := range secret {
			if !strings.ContainsRune(sharedSecretChars, c) {
				t.Fatalf("secret contains unexpected character %q", c)
			}
		}
	}
}

func TestNewPassport(t *testing.T) {
	p := NewPassport("my-lms", "integration passport")
	if p.ConsumerSlug != "my-lms" || p.Title != "integration passport" {
		t.Fatalf("passport fields: %+v", p)
	}
	if p.OAuthConsumerKey == "" || p.SharedSecret == "" {
		t.Fatal("credentials must be generated")
	}
	if !p.Enabled {
		t.Fatal("new passports start enabled")
	}
}
