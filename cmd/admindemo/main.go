// Command admindemo runs a small HTTP server around the auth engine so
// the whole flow can be exercised with curl. It is demo wiring, not a
// production server.
//
// Endpoints:
//
//	POST /login      — JSON {"email":"...", "password":"..."}
//	POST /login/2fa  — JSON {"admin_id":"...", "code":"..."}
//	POST /refresh    — rotates tokens via the refresh-token cookie
//	POST /logout     — revokes the session behind the refresh cookie
//	GET  /me         — guarded; echoes the verified identity
//	PUT  /products/demo — guarded; requires product update permission
//	GET  /metrics    — Prometheus text exposition
//
// Backend selection via ADMINAUTH_BACKEND: memory (default), redis
// (REDIS_ADDR, falls back to an embedded miniredis), or postgres
// (ADMINAUTH_PG_DSN). A super-administrator is seeded at startup from
// ADMINAUTH_SEED_EMAIL / ADMINAUTH_SEED_PASSWORD.
package main

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/norventa/adminauth"
	"github.com/norventa/adminauth/metrics/export/prometheus"
	"github.com/norventa/adminauth/middleware"
	"github.com/norventa/adminauth/password"
	"github.com/norventa/adminauth/permission"
	"github.com/norventa/adminauth/pgstore"
	"github.com/norventa/adminauth/session"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := context.Background()

	cfg, err := adminauth.LoadConfigFromEnv(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	ensureDemoKeys(&cfg, log)

	backend := strings.ToLower(os.Getenv("ADMINAUTH_BACKEND"))
	creds, sessions, cleanup, err := buildStores(ctx, backend, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", backend).Msg("build stores")
	}
	defer cleanup()

	engine, err := adminauth.New().
		WithConfig(cfg).
		WithCredentialStore(creds).
		WithSessionStore(sessions).
		WithAuditSink(adminauth.NewZerologSink(log.With().Str("component", "audit").Logger())).
		Build()
	if err != nil {
		log.Fatal().Err(err).Msg("build engine")
	}
	defer engine.Close()

	if err := seedAdmin(ctx, creds, log); err != nil {
		log.Fatal().Err(err).Msg("seed administrator")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", loginHandler(engine))
	mux.HandleFunc("POST /login/2fa", twoFactorHandler(engine))
	mux.HandleFunc("POST /refresh", refreshHandler(engine))
	mux.HandleFunc("POST /logout", logoutHandler(engine))
	mux.Handle("GET /me", middleware.RequireAuth(engine)(http.HandlerFunc(meHandler)))
	mux.Handle("PUT /products/demo",
		middleware.RequirePermission(engine, permission.ResourceProduct, permission.ActionUpdate)(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
			})))
	mux.Handle("GET /metrics", prometheus.NewExporter(engine).Handler())

	addr := os.Getenv("ADMINAUTH_LISTEN")
	if addr == "" {
		addr = ":8080"
	}
	log.Info().Str("addr", addr).Str("backend", backendName(backend)).Msg("listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal().Err(err).Msg("serve")
	}
}

// ensureDemoKeys fills in random key material when the environment
// provides none, so `go run` works out of the box. Tokens and sessions
// then do not survive a restart.
func ensureDemoKeys(cfg *adminauth.Config, log zerolog.Logger) {
	generated := false
	if len(cfg.JWT.Key) == 0 {
		cfg.JWT.Key = randomKey(32)
		generated = true
	}
	if len(cfg.Refresh.Pepper) == 0 {
		cfg.Refresh.Pepper = randomKey(16)
		generated = true
	}
	if len(cfg.TOTP.SecretCipherKey) == 0 {
		cfg.TOTP.SecretCipherKey = randomKey(32)
		generated = true
	}
	if generated {
		log.Warn().Msg("using generated demo keys; set ADMINAUTH_JWT_KEY, ADMINAUTH_REFRESH_PEPPER, ADMINAUTH_TOTP_CIPHER_KEY for stable sessions")
	}
}

func randomKey(n int) []byte {
	key := make([]byte, n)
	if _, err := rand.Read(key); err != nil {
		panic(err)
	}
	return key
}

func backendName(backend string) string {
	if backend == "" {
		return "memory"
	}
	return backend
}

func buildStores(ctx context.Context, backend string, log zerolog.Logger) (adminauth.CredentialStore, session.Store, func(), error) {
	switch backend {
	case "", "memory":
		return adminauth.NewMemoryCredentialStore(), session.NewMemoryStore(), func() {}, nil

	case "redis":
		// Credentials stay in memory; Redis carries the session state,
		// which is the part that benefits from shared storage.
		addr := os.Getenv("REDIS_ADDR")
		cleanup := func() {}
		if addr == "" {
			mr, err := miniredis.Run()
			if err != nil {
				return nil, nil, nil, err
			}
			addr = mr.Addr()
			cleanup = mr.Close
			log.Info().Str("addr", addr).Msg("using embedded miniredis")
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		prev := cleanup
		cleanup = func() {
			_ = client.Close()
			prev()
		}
		return adminauth.NewMemoryCredentialStore(), session.NewRedisStore(client, "adminauth"), cleanup, nil

	case "postgres":
		dsn := os.Getenv("ADMINAUTH_PG_DSN")
		if dsn == "" {
			return nil, nil, nil, errors.New("ADMINAUTH_PG_DSN is required for the postgres backend")
		}
		store, err := pgstore.Open(dsn)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, nil, nil, err
		}
		return store.Credentials(), store.Sessions(), func() { _ = store.Close() }, nil

	default:
		return nil, nil, nil, errors.New("unknown backend " + backend)
	}
}

func seedAdmin(ctx context.Context, creds adminauth.CredentialStore, log zerolog.Logger) error {
	email := os.Getenv("ADMINAUTH_SEED_EMAIL")
	if email == "" {
		email = "admin@example.com"
	}
	plain := os.Getenv("ADMINAUTH_SEED_PASSWORD")
	if plain == "" {
		plain = "change-me-please"
	}

	if _, err := creds.FindByEmail(ctx, email); err == nil {
		return nil
	}

	verifier, err := password.New(password.DefaultConfig())
	if err != nil {
		return err
	}
	hash, err := verifier.Hash(plain)
	if err != nil {
		return err
	}

	err = creds.Create(ctx, &adminauth.Administrator{
		Email:        email,
		DisplayName:  "Demo Administrator",
		Role:         permission.RoleSuperAdministrator,
		Active:       true,
		PasswordHash: hash,
	})
	if errors.Is(err, adminauth.ErrEmailTaken) {
		return nil
	}
	if err != nil {
		return err
	}
	log.Info().Str("email", email).Msg("seeded super-administrator")
	return nil
}

/*
====================================
HANDLERS
====================================
*/

func loginHandler(engine *adminauth.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		res, err := engine.Login(r.Context(), body.Email, body.Password, clientMeta(r))
		if err != nil {
			writeAuthError(w, err)
			return
		}
		if res.RequiresTwoFactor {
			writeJSON(w, http.StatusOK, map[string]any{
				"two_factor_required": true,
				"admin_id":            res.Admin.ID,
			})
			return
		}

		setRefreshCookie(w, r, res.RefreshToken)
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": res.AccessToken,
			"expires_at":   res.ExpiresAt.Format(time.RFC3339),
		})
	}
}

func twoFactorHandler(engine *adminauth.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			AdminID string `json:"admin_id"`
			Code    string `json:"code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		res, err := engine.VerifyTwoFactor(r.Context(), body.AdminID, body.Code, clientMeta(r))
		if err != nil {
			writeAuthError(w, err)
			return
		}

		setRefreshCookie(w, r, res.RefreshToken)
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": res.AccessToken,
			"expires_at":   res.ExpiresAt.Format(time.RFC3339),
		})
	}
}

func refreshHandler(engine *adminauth.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("refresh_token")
		if err != nil || cookie.Value == "" {
			http.Error(w, "missing refresh token", http.StatusUnauthorized)
			return
		}

		pair, err := engine.Refresh(r.Context(), cookie.Value, clientMeta(r))
		if err != nil {
			writeAuthError(w, err)
			return
		}

		setRefreshCookie(w, r, pair.RefreshToken)
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": pair.AccessToken,
			"expires_at":   pair.ExpiresAt.Format(time.RFC3339),
		})
	}
}

func logoutHandler(engine *adminauth.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("refresh_token")
		if err == nil && cookie.Value != "" {
			_ = engine.Logout(r.Context(), cookie.Value)
		}
		clearRefreshCookie(w, r)
		w.WriteHeader(http.StatusNoContent)
	}
}

func meHandler(w http.ResponseWriter, r *http.Request) {
	identity := adminauth.IdentityFromContext(r.Context())
	if identity == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":    identity.ID,
		"email": identity.Email,
		"role":  string(identity.Role),
	})
}

func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, adminauth.ErrInvalidCredentials),
		errors.Is(err, adminauth.ErrInvalidAdmin),
		errors.Is(err, adminauth.ErrInvalidTwoFactorCode),
		errors.Is(err, adminauth.ErrInvalidOrExpiredRefreshToken):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, adminauth.ErrStoreUnavailable):
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func clientMeta(r *http.Request) adminauth.ClientMeta {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return adminauth.ClientMeta{IP: host, UserAgent: r.UserAgent()}
}

func setRefreshCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    token,
		Path:     "/",
		MaxAge:   int((7 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearRefreshCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
