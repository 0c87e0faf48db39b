// pkg/provider/consumer/store.go
package consumer

import (
	"context"
	"errors"
)

// ErrNotFound is a sentinel error returned by Store implementations when a
// consumer or passport does not exist (or the passport is disabled).
var ErrNotFound = errors.New("consumer: not found")

// Store is the read-side registry contract used at verification time.
// Lookups are exact, case-sensitive matches. FindByKey only resolves
// enabled passports.
type Store interface {
	FindByKey(ctx context.Context, oauthConsumerKey string) (Passport, error)
	GetConsumer(ctx context.Context, slug string) (Consumer, error)
}
