// pkg/provider/consumer/models.go
package consumer

import (
	"crypto/rand"
	"math/big"
)

// Consumer represents an LTI Tool Consumer site (an LMS such as Moodle or
// Open edX) that is allowed to launch this provider.
type Consumer struct {
	// Slug is the unique identifier for the consumer site.
	Slug string `json:"slug"`
	// Title is a human readable description of the consumer.
	Title string `json:"title"`
	// URL is the base URL of the consumer website (used to rebuild the
	// launching page URL for known consumer families).
	URL string `json:"url,omitempty"`
}

// Passport holds the OAuth1 credentials a consumer uses to sign launch
// requests. A consumer can hold several passports (one per integration).
type Passport struct {
	ConsumerSlug     string `json:"consumer_slug"`
	Title            string `json:"title"`
	OAuthConsumerKey string `json:"oauth_consumer_key"`
	SharedSecret     string `json:"shared_secret,omitempty"`
	Enabled          bool   `json:"enabled"`
}

const (
	consumerKeyChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	sharedSecretChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!#$%&*+-=?@^_"
)

// NewPassport creates an enabled passport for the given consumer with
// randomly generated credentials.
func NewPassport(consumerSlug, title string) Passport {
	return Passport{
		ConsumerSlug:     consumerSlug,
		Title:            title,
		OAuthConsumerKey: GenerateConsumerKey(),
		SharedSecret:     GenerateSharedSecret(),
		Enabled:          true,
	}
}

// GenerateConsumerKey returns a random oauth_consumer_key (20 to 29
// uppercase alphanumeric characters).
func GenerateConsumerKey() string {
	return randString(consumerKeyChars, 20, 30)
}

// GenerateSharedSecret returns a random shared secret (40 to 59 characters).
func GenerateSharedSecret() string {
	return randString(sharedSecretChars, 40, 60)
}

func randString(alphabet string, minLen, maxLen int) string {
	n := minLen + randInt(maxLen-minLen)
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[randInt(len(alphabet))]
	}
	return string(b)
}

func randInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand only fails when the platform source is broken
		panic(err)
	}
	return int(v.Int64())
}
