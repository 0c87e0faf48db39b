// pkg/provider/admin/registry.go
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/edubridge/lti-provider/pkg/provider/consumer"
)

/*
Package admin exposes a small HTTP API to manage the consumer registry:
  - Consumers (slug, title, URL)
  - Passports (oauth_consumer_key + shared_secret bound to a consumer)

It is intentionally thin and delegates persistence to a Store interface;
both consumer.SQLStore and consumer.MemoryStore satisfy it.

Passport credentials are generated server-side; the shared secret is
returned exactly once, in the creation response.

Route prefix (suggested): /admin, behind BasicAuth.
*/

// Store is the persistence interface used by the admin registry API.
type Store interface {
	CreateConsumer(ctx context.Context, c consumer.Consumer) error
	GetConsumer(ctx context.Context, slug string) (consumer.Consumer, error)
	ListConsumers(ctx context.Context, offset, limit int) ([]consumer.Consumer, error)
	UpdateConsumer(ctx context.Context, c consumer.Consumer) error
	DeleteConsumer(ctx context.Context, slug string) error

	CreatePassport(ctx context.Context, p consumer.Passport) error
	GetPassport(ctx context.Context, key string) (consumer.Passport, error)
	ListPassports(ctx context.Context, consumerSlug string, offset, limit int) ([]consumer.Passport, error)
	SetPassportEnabled(ctx context.Context, key string, enabled bool) error
	DeletePassport(ctx context.Context, key string) error
}

// Routes returns an http.Handler with CRUD endpoints for consumers and
// passports. Mount it under something like: r.Mount("/admin", admin.Routes(store))
func Routes(store Store) http.Handler {
	r := chi.NewRouter()

	r.Post("/consumers", createConsumer(store))
	r.Get("/consumers", listConsumers(store))
	r.Get("/consumers/{slug}", getConsumer(store))
	r.Put("/consumers/{slug}", updateConsumer(store))
	r.Delete("/consumers/{slug}", deleteConsumer(store))

	r.Post("/consumers/{slug}/passports", createPassport(store))
	r.Get("/consumers/{slug}/passports", listPassports(store))
	r.Get("/passports/{key}", getPassport(store))
	r.Put("/passports/{key}", setPassportEnabled(store))
	r.Delete("/passports/{key}", deletePassport(store))

	return r
}

// BasicAuth guards the admin API with HTTP basic credentials checked against
// a bcrypt hash. It mirrors how the provider binary stores its admin
// password in configuration.
func BasicAuth(user, passHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, p, ok := r.BasicAuth()
			if !ok || u != user ||
				bcrypt.CompareHashAndPassword([]byte(passHash), []byte(p)) != nil {
				w.Header().Set("WWW-Authenticate", `Basic realm="lti-provider admin"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

/* ------------------------------ Consumers --------------------------------- */

type consumerReq struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

func createConsumer(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req consumerReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
			return
		}
		if msg := validateConsumerReq(req); msg != "" {
			writeErr(w, http.StatusBadRequest, msg)
			return
		}
		c := consumer.Consumer{
			Slug:  strings.TrimSpace(req.Slug),
			Title: strings.TrimSpace(req.Title),
			URL:   strings.TrimSpace(req.URL),
		}
		if err := store.CreateConsumer(r.Context(), c); err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

func getConsumer(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := store.GetConsumer(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			if errors.Is(err, consumer.ErrNotFound) {
				writeErr(w, http.StatusNotFound, "consumer not found")
				return
			}
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func listConsumers(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, limit := parsePage(r, 0, 100)
		items, err := store.ListConsumers(r.Context(), offset, limit)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func updateConsumer(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")

		var req consumerReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
			return
		}
		// slug in path is canonical; body may omit or must match if present.
		if req.Slug != "" && strings.TrimSpace(req.Slug) != slug {
			writeErr(w, http.StatusBadRequest, "slug in body must match path")
			return
		}
		req.Slug = slug
		if msg := validateConsumerReq(req); msg != "" {
			writeErr(w, http.StatusBadRequest, msg)
			return
		}
		c := consumer.Consumer{
			Slug:  slug,
			Title: strings.TrimSpace(req.Title),
			URL:   strings.TrimSpace(req.URL),
		}
		if err := store.UpdateConsumer(r.Context(), c); err != nil {
			if errors.Is(err, consumer.ErrNotFound) {
				writeErr(w, http.StatusNotFound, "consumer not found")
				return
			}
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func deleteConsumer(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteConsumer(r.Context(), chi.URLParam(r, "slug")); err != nil {
			if errors.Is(err, consumer.ErrNotFound) {
				writeErr(w, http.StatusNotFound, "consumer not found")
				return
			}
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

/* ------------------------------ Passports --------------------------------- */

type createPassportReq struct {
	Title string `json:"title"`
}

func createPassport(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")

		var req createPassportReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
			return
		}
		if strings.TrimSpace(req.Title) == "" {
			writeErr(w, http.StatusBadRequest, "title is required")
			return
		}
		if _, err := store.GetConsumer(r.Context(), slug); err != nil {
			if errors.Is(err, consumer.ErrNotFound) {
				writeErr(w, http.StatusNotFound, "consumer not found")
				return
			}
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}

		p := consumer.NewPassport(slug, strings.TrimSpace(req.Title))
		if err := store.CreatePassport(r.Context(), p); err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		// The only response that ever carries the shared secret.
		writeJSON(w, http.StatusCreated, p)
	}
}

func getPassport(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := store.GetPassport(r.Context(), chi.URLParam(r, "key"))
		if err != nil {
			if errors.Is(err, consumer.ErrNotFound) {
				writeErr(w, http.StatusNotFound, "passport not found")
				return
			}
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		p.SharedSecret = ""
		writeJSON(w, http.StatusOK, p)
	}
}

func listPassports(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, limit := parsePage(r, 0, 100)
		items, err := store.ListPassports(r.Context(), chi.URLParam(r, "slug"), offset, limit)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		for i := range items {
			items[i].SharedSecret = ""
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func setPassportEnabled(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")

		var req struct {
			Enabled *bool `json:"enabled"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
			writeErr(w, http.StatusBadRequest, "enabled (bool) is required")
			return
		}
		if err := store.SetPassportEnabled(r.Context(), key, *req.Enabled); err != nil {
			if errors.Is(err, consumer.ErrNotFound) {
				writeErr(w, http.StatusNotFound, "passport not found")
				return
			}
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func deletePassport(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeletePassport(r.Context(), chi.URLParam(r, "key")); err != nil {
			if errors.Is(err, consumer.ErrNotFound) {
				writeErr(w, http.StatusNotFound, "passport not found")
				return
			}
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

/* ------------------------------ Validation -------------------------------- */

func validateConsumerReq(req consumerReq) string {
	if strings.TrimSpace(req.Slug) == "" {
		return "slug is required"
	}
	if strings.TrimSpace(req.Title) == "" {
		return "title is required"
	}
	if u := strings.TrimSpace(req.URL); u != "" && !isHTTPURL(u) {
		return "url must be http(s) URL"
	}
	return ""
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

/* ------------------------------ Utilities --------------------------------- */

func parsePage(r *http.Request, defOffset, defLimit int) (offset, limit int) {
	q := r.URL.Query()
	offset = defOffset
	limit = defLimit

	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	return
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errResp struct {
	Error string `json:"error"`
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errResp{Error: msg})
}
