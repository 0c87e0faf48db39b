// pkg/provider/consumer/sqlstore.go
package consumer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLStore persists consumers and passports in a database/sql database.
// It works against the schema installed by internal/db (SQLite or Postgres).
type SQLStore struct {
	db *sql.DB
	// placeholder rewrites $1,$2,... to ? for drivers that need it
	rebind func(string) string
}

// NewSQLStore wraps db. driver is the database/sql driver name ("sqlite" or
// "pgx"); it selects the placeholder style.
func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	s := &SQLStore{db: db, rebind: func(q string) string { return q }}
	if driver == "sqlite" {
		s.rebind = rebindQuestion
	}
	return s
}

func rebindQuestion(q string) string {
	out := make([]byte, 0, len(q))
	for i := 0; i < len(q); i++ {
		if q[i] == '$' {
			out = append(out, '?')
			for i+1 < len(q) && q[i+1] >= '0' && q[i+1] <= '9' {
				i++
			}
			continue
		}
		out = append(out, q[i])
	}
	return string(out)
}

/* ------------------------------ Consumers --------------------------------- */

func (s *SQLStore) CreateConsumer(ctx context.Context, c Consumer) error {
	_, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO lti_consumer (slug, title, url) VALUES ($1, $2, $3)`),
		c.Slug, c.Title, c.URL)
	if err != nil {
		return fmt.Errorf("consumer: create %q: %w", c.Slug, err)
	}
	return nil
}

func (s *SQLStore) GetConsumer(ctx context.Context, slug string) (Consumer, error) {
	var c Consumer
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT slug, title, url FROM lti_consumer WHERE slug = $1`),
		slug).Scan(&c.Slug, &c.Title, &c.URL)
	if errors.Is(err, sql.ErrNoRows) {
		return Consumer{}, ErrNotFound
	}
	if err != nil {
		return Consumer{}, fmt.Errorf("consumer: get %q: %w", slug, err)
	}
	return c, nil
}

func (s *SQLStore) ListConsumers(ctx context.Context, offset, limit int) ([]Consumer, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT slug, title, url FROM lti_consumer ORDER BY slug LIMIT $1 OFFSET $2`),
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("consumer: list: %w", err)
	}
	defer rows.Close()

	out := []Consumer{}
	for rows.Next() {
		var c Consumer
		if err := rows.Scan(&c.Slug, &c.Title, &c.URL); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateConsumer(ctx context.Context, c Consumer) error {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE lti_consumer SET title = $1, url = $2 WHERE slug = $3`),
		c.Title, c.URL, c.Slug)
	if err != nil {
		return fmt.Errorf("consumer: update %q: %w", c.Slug, err)
	}
	return noneUpdated(res)
}

func (s *SQLStore) DeleteConsumer(ctx context.Context, slug string) error {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`DELETE FROM lti_consumer WHERE slug = $1`), slug)
	if err != nil {
		return fmt.Errorf("consumer: delete %q: %w", slug, err)
	}
	return noneUpdated(res)
}

/* ------------------------------ Passports --------------------------------- */

func (s *SQLStore) CreatePassport(ctx context.Context, p Passport) error {
	_, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO lti_passport
		  (oauth_consumer_key, shared_secret, consumer_slug, title, is_enabled)
		  VALUES ($1, $2, $3, $4, $5)`),
		p.OAuthConsumerKey, p.SharedSecret, p.ConsumerSlug, p.Title, p.Enabled)
	if err != nil {
		return fmt.Errorf("consumer: create passport: %w", err)
	}
	return nil
}

// FindByKey resolves an enabled passport by its oauth_consumer_key. This is
// the single read the request verifier performs.
func (s *SQLStore) FindByKey(ctx context.Context, key string) (Passport, error) {
	var p Passport
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT oauth_consumer_key, shared_secret, consumer_slug, title, is_enabled
		  FROM lti_passport WHERE oauth_consumer_key = $1 AND is_enabled`),
		key).Scan(&p.OAuthConsumerKey, &p.SharedSecret, &p.ConsumerSlug, &p.Title, &p.Enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return Passport{}, ErrNotFound
	}
	if err != nil {
		return Passport{}, fmt.Errorf("consumer: find by key: %w", err)
	}
	return p, nil
}

// GetPassport returns a passport regardless of its enabled flag. The shared
// secret is included; callers decide whether to expose it.
func (s *SQLStore) GetPassport(ctx context.Context, key string) (Passport, error) {
	var p Passport
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT oauth_consumer_key, shared_secret, consumer_slug, title, is_enabled
		  FROM lti_passport WHERE oauth_consumer_key = $1`),
		key).Scan(&p.OAuthConsumerKey, &p.SharedSecret, &p.ConsumerSlug, &p.Title, &p.Enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return Passport{}, ErrNotFound
	}
	if err != nil {
		return Passport{}, fmt.Errorf("consumer: get passport: %w", err)
	}
	return p, nil
}

func (s *SQLStore) ListPassports(ctx context.Context, consumerSlug string, offset, limit int) ([]Passport, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT oauth_consumer_key, consumer_slug, title, is_enabled
		  FROM lti_passport WHERE consumer_slug = $1 ORDER BY oauth_consumer_key LIMIT $2 OFFSET $3`),
		consumerSlug, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("consumer: list passports: %w", err)
	}
	defer rows.Close()

	out := []Passport{}
	for rows.Next() {
		var p Passport
		if err := rows.Scan(&p.OAuthConsumerKey, &p.ConsumerSlug, &p.Title, &p.Enabled); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLStore) SetPassportEnabled(ctx context.Context, key string, enabled bool) error {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE lti_passport SET is_enabled = $1 WHERE oauth_consumer_key = $2`),
		enabled, key)
	if err != nil {
		return fmt.Errorf("consumer: set passport enabled: %w", err)
	}
	return noneUpdated(res)
}

func (s *SQLStore) DeletePassport(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`DELETE FROM lti_passport WHERE oauth_consumer_key = $1`), key)
	if err != nil {
		return fmt.Errorf("consumer: delete passport: %w", err)
	}
	return noneUpdated(res)
}

func noneUpdated(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
