package consumer_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/edubridge/lti-provider/internal/db"
	"github.com/edubridge/lti-provider/pkg/provider/consumer"

	_ "modernc.org/sqlite" // driver for "sqlite"
)

func openStore(t *testing.T) *consumer.SQLStore {
	t.Helper()
	// One shared in-memory database per test.
	dbh, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared&_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })
	if err := db.EnsureSchema(context.Background(), dbh, db.DriverSQLite); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return consumer.NewSQLStore(dbh, "sqlite")
}

func TestSQLStoreConsumerCRUD(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	c := consumer.Consumer{Slug: "lms-a", Title: "LMS A", URL: "https://a.example/"}
	if err := store.CreateConsumer(ctx, c); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.GetConsumer(ctx, "lms-a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != c {
		t.Fatalf("got %+v, want %+v", got, c)
	}

	c.Title = "LMS A (renamed)"
	if err := store.UpdateConsumer(ctx, c); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = store.GetConsumer(ctx, "lms-a")
	if got.Title != "LMS A (renamed)" {
		t.Fatalf("title not updated: %+v", got)
	}

	if err := store.CreateConsumer(ctx, consumer.Consumer{Slug: "lms-b", Title: "LMS B"}); err != nil {
		t.Fatalf("create second: %v", err)
	}
	list, err := store.ListConsumers(ctx, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Slug != "lms-a" || list[1].Slug != "lms-b" {
		t.Fatalf("list = %+v", list)
	}

	if err := store.DeleteConsumer(ctx, "lms-b"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetConsumer(ctx, "lms-b"); !errors.Is(err, consumer.ErrNotFound) {
		t.Fatalf("get deleted: %v", err)
	}
	if err := store.DeleteConsumer(ctx, "lms-b"); !errors.Is(err, consumer.ErrNotFound) {
		t.Fatalf("double delete: %v", err)
	}
}

func TestSQLStorePassportLookup(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	if err := store.CreateConsumer(ctx, consumer.Consumer{Slug: "lms-a", Title: "LMS A"}); err != nil {
		t.Fatalf("create consumer: %v", err)
	}
	p := consumer.NewPassport("lms-a", "prod passport")
	if err := store.CreatePassport(ctx, p); err != nil {
		t.Fatalf("create passport: %v", err)
	}

	got, err := store.FindByKey(ctx, p.OAuthConsumerKey)
	if err != nil {
		t.Fatalf("find by key: %v", err)
	}
	if got.SharedSecret != p.SharedSecret {
		t.Fatal("find by key must return the shared secret for verification")
	}

	// Case-sensitive exact match only.
	if _, err := store.FindByKey(ctx, "not-a-key"); !errors.Is(err, consumer.ErrNotFound) {
		t.Fatalf("unknown key: %v", err)
	}

	// Disabled passports are invisible to the verifier...
	if err := store.SetPassportEnabled(ctx, p.OAuthConsumerKey, false); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if _, err := store.FindByKey(ctx, p.OAuthConsumerKey); !errors.Is(err, consumer.ErrNotFound) {
		t.Fatalf("disabled passport lookup: %v", err)
	}
	// ...but still visible to the admin API.
	if _, err := store.GetPassport(ctx, p.OAuthConsumerKey); err != nil {
		t.Fatalf("get disabled passport: %v", err)
	}

	list, err := store.ListPassports(ctx, "lms-a", 0, 10)
	if err != nil {
		t.Fatalf("list passports: %v", err)
	}
	if len(list) != 1 || list[0].Enabled {
		t.Fatalf("list = %+v", list)
	}

	// Deleting the consumer cascades to its passports.
	if err := store.DeleteConsumer(ctx, "lms-a"); err != nil {
		t.Fatalf("delete consumer: %v", err)
	}
	if _, err := store.GetPassport(ctx, p.OAuthConsumerKey); !errors.Is(err, consumer.ErrNotFound) {
		t.Fatalf("passport should cascade: %v", err)
	}
}
