package main

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/edubridge/lti-provider/internal/config"
	"github.com/edubridge/lti-provider/internal/db"
	"github.com/edubridge/lti-provider/pkg/provider/admin"
	"github.com/edubridge/lti-provider/pkg/provider/auth"
	"github.com/edubridge/lti-provider/pkg/provider/consumer"
	"github.com/edubridge/lti-provider/pkg/provider/lti"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := consumer.NewSQLStore(dbh, db.Driver(cfg.DBDriver).DriverName())

	// --- LTI verification ---
	verifier := lti.NewVerifier(store,
		lti.WithFreshnessWindow(cfg.FreshnessWindow),
		lti.WithReplayCache(lti.NewInMemoryReplay(cfg.ReplayPurgeN)),
	)
	sessions := auth.NewSessionBackend(cfg.SessionSecret, cfg.SessionTTL)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// LTI launch endpoint: verifies the request, mints a session and shows a
	// minimal landing page. Real deployments implement their own lti.Handler.
	r.Post("/lti/launch", lti.LaunchHandler(verifier, launchPage{sessions: sessions}))

	// Content-Item selection entry point (deep linking).
	r.Post("/lti/select", lti.LaunchHandler(verifier, selectPage{}))

	// Admin registry API
	if cfg.EnableAdminAPI {
		r.Group(func(ar chi.Router) {
			ar.Use(admin.BasicAuth(cfg.AdminUser, cfg.AdminPassHash))
			ar.Mount("/admin", admin.Routes(store))
		})
	}

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

/* ---------------------------- Launch handlers ------------------------------ */

type launchPage struct {
	sessions *auth.SessionBackend
}

func (h launchPage) OnValid(w http.ResponseWriter, r *http.Request, launch *lti.LaunchRequest) {
	token, claims, err := h.sessions.Authenticate(launch)
	if err != nil {
		log.Printf("launch authentication failed: %v", err)
		http.Error(w, "launch request carries no user identity", http.StatusForbidden)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "lti_session",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteNoneMode,
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<h1>%s</h1>", html.EscapeString(launch.ResourceLinkTitle()))
	fmt.Fprintf(w, "<p>Welcome %s (%s)</p>",
		html.EscapeString(claims.FullName), html.EscapeString(claims.Email))
	fmt.Fprintf(w, "<p>Context: %s</p>", html.EscapeString(launch.ContextTitle()))
	if launch.CanEditContent() {
		fmt.Fprint(w, "<p>You can edit this tool's content.</p>")
	}
}

func (h launchPage) OnInvalid(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("invalid launch from %s: %v", r.RemoteAddr, err)
	lti.DefaultInvalid(w, r, err)
}

type selectPage struct{}

func (selectPage) OnValid(w http.ResponseWriter, r *http.Request, launch *lti.LaunchRequest) {
	ci, ok := launch.ContentItem()
	if !ok {
		http.Error(w, "not a content-item selection request", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"accept_media_types":      ci.AcceptMediaTypes,
		"accept_targets":          ci.AcceptPresentationTargets,
		"content_item_return_url": ci.ReturnURL,
		"data":                    ci.Data,
	})
}

func (selectPage) OnInvalid(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("invalid selection request from %s: %v", r.RemoteAddr, err)
	lti.DefaultInvalid(w, r, err)
}
