// pkg/provider/consumer/memory.go
package consumer

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is an in-memory registry, safe for concurrent use. It is meant
// for tests and single-process development setups; production deployments
// should use SQLStore.
type MemoryStore struct {
	mu        sync.RWMutex
	consumers map[string]Consumer
	passports map[string]Passport // key: oauth_consumer_key
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		consumers: map[string]Consumer{},
		passports: map[string]Passport{},
	}
}

func (m *MemoryStore) CreateConsumer(_ context.Context, c Consumer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.consumers[c.Slug]; ok {
		return fmt.Errorf("consumer: %q already exists", c.Slug)
	}
	m.consumers[c.Slug] = c
	return nil
}

func (m *MemoryStore) GetConsumer(_ context.Context, slug string) (Consumer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.consumers[slug]
	if !ok {
		return Consumer{}, ErrNotFound
	}
	return c, nil
}

func (m *MemoryStore) ListConsumers(_ context.Context, offset, limit int) ([]Consumer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	slugs := make([]string, 0, len(m.consumers))
	for slug := range m.consumers {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	out := []Consumer{}
	for i, slug := range slugs {
		if i < offset || len(out) >= limit {
			continue
		}
		out = append(out, m.consumers[slug])
	}
	return out, nil
}

func (m *MemoryStore) UpdateConsumer(_ context.Context, c Consumer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.consumers[c.Slug]; !ok {
		return ErrNotFound
	}
	m.consumers[c.Slug] = c
	return nil
}

func (m *MemoryStore) DeleteConsumer(_ context.Context, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.consumers[slug]; !ok {
		return ErrNotFound
	}
	delete(m.consumers, slug)
	for key, p := range m.passports {
		if p.ConsumerSlug == slug {
			delete(m.passports, key)
		}
	}
	return nil
}

func (m *MemoryStore) CreatePassport(_ context.Context, p Passport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.passports[p.OAuthConsumerKey]; ok {
		return fmt.Errorf("consumer: passport %q already exists", p.OAuthConsumerKey)
	}
	m.passports[p.OAuthConsumerKey] = p
	return nil
}

func (m *MemoryStore) FindByKey(_ context.Context, key string) (Passport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.passports[key]
	if !ok || !p.Enabled {
		return Passport{}, ErrNotFound
	}
	return p, nil
}

func (m *MemoryStore) GetPassport(_ context.Context, key string) (Passport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.passports[key]
	if !ok {
		return Passport{}, ErrNotFound
	}
	return p, nil
}

func (m *MemoryStore) ListPassports(_ context.Context, consumerSlug string, offset, limit int) ([]Passport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.passports))
	for key, p := range m.passports {
		if p.ConsumerSlug == consumerSlug {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	out := []Passport{}
	for i, key := range keys {
		if i < offset || len(out) >= limit {
			continue
		}
		p := m.passports[key]
		p.SharedSecret = ""
		out = append(out, p)
	}
	return out, nil
}

func (m *MemoryStore) SetPassportEnabled(_ context.Context, key string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.passports[key]
	if !ok {
		return ErrNotFound
	}
	p.Enabled = enabled
	m.passports[key] = p
	return nil
}

func (m *MemoryStore) DeletePassport(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.passports[key]; !ok {
		return ErrNotFound
	}
	delete(m.passports, key)
	return nil
}
