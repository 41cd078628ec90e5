// Package backendtest runs an in-process stand-in for the storefront backend: owner login
// and verify issuing real HS256 tokens, plus a small in-memory admin API. Tests and the
// example proxy drive it; it is not a production server.
package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goOwner/jwt"
)

const (
	// DefaultEmail and DefaultPassword are the owner credentials the stub accepts.
	DefaultEmail    = "owner"
	DefaultPassword = "correctpass"
)

// Options configures a Server. Zero values pick the defaults.
type Options struct {
	Email    string
	Password string
	// TokenField names the login response field carrying the credential. The real
	// backend uses "access_token"; some deployments answer "accessToken".
	TokenField string
	// StaticToken, when set, is returned by every successful login instead of a signed JWT
	// and is accepted by verify until revoked.
	StaticToken string
	TokenTTL    time.Duration
	Secret      []byte
	Role        string
}

// Server is the stub backend. Embeds the httptest server so URL and Close are promoted.
type Server struct {
	*httptest.Server

	opts   Options
	tokens *jwt.Manager

	loginCalls  atomic.Int64
	verifyCalls atomic.Int64
	adminCalls  atomic.Int64

	mu           sync.Mutex
	revoked      map[string]struct{}
	loginStatus  int
	loginBody    string
	verifyStatus int
	delay        time.Duration
	lastHeaders  http.Header

	data *dataset
}

// New starts a stub backend. The caller closes it; tests usually register t.Cleanup(s.Close).
func New(opts Options) *Server {
	if opts.Email == "" {
		opts.Email = DefaultEmail
	}
	if opts.Password == "" {
		opts.Password = DefaultPassword
	}
	if opts.TokenField == "" {
		opts.TokenField = "access_token"
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = time.Hour
	}
	if len(opts.Secret) == 0 {
		opts.Secret = []byte("backendtest-signing-secret-0123456789")
	}
	if opts.Role == "" {
		opts.Role = "owner"
	}

	tokens, err := jwt.NewManager(jwt.Config{TTL: opts.TokenTTL, Secret: opts.Secret, Issuer: "backendtest"})
	if err != nil {
		panic("backendtest: " + err.Error())
	}

	s := &Server{
		opts:    opts,
		tokens:  tokens,
		revoked: make(map[string]struct{}),
		data:    newDataset(),
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

// Tokens exposes the signer so tests can mint expired or foreign credentials.
func (s *Server) Tokens() *jwt.Manager { return s.tokens }

// LoginCalls reports how many login requests reached the server.
func (s *Server) LoginCalls() int64 { return s.loginCalls.Load() }

// VerifyCalls reports how many verify requests reached the server.
func (s *Server) VerifyCalls() int64 { return s.verifyCalls.Load() }

// AdminCalls reports how many admin API requests reached the server.
func (s *Server) AdminCalls() int64 { return s.adminCalls.Load() }

// FailLogin forces every login to answer status with the raw body. status 0 restores
// normal behaviour.
func (s *Server) FailLogin(status int, body string) {
	s.mu.Lock()
	s.loginStatus, s.loginBody = status, body
	s.mu.Unlock()
}

// FailVerify forces every verify to answer status. status 0 restores normal behaviour.
func (s *Server) FailVerify(status int) {
	s.mu.Lock()
	s.verifyStatus = status
	s.mu.Unlock()
}

// SetDelay holds every response for d before answering.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	s.delay = d
	s.mu.Unlock()
}

// Revoke makes verify and the admin API reject token from now on.
func (s *Server) Revoke(token string) {
	s.mu.Lock()
	s.revoked[token] = struct{}{}
	s.mu.Unlock()
}

// LastHeaders returns a copy of the headers of the most recent request.
func (s *Server) LastHeaders() http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastHeaders.Clone()
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/owner/login", s.handleLogin)
	mux.HandleFunc("GET /api/owner/verify", s.handleVerify)
	s.adminRoutes(mux)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.lastHeaders = r.Header.Clone()
		delay := s.delay
		s.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		mux.ServeHTTP(w, r)
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.loginCalls.Add(1)

	s.mu.Lock()
	forced, forcedBody := s.loginStatus, s.loginBody
	s.mu.Unlock()
	if forced != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(forced)
		_, _ = w.Write([]byte(forcedBody))
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]any{{"loc": []string{"body"}, "msg": "invalid json", "type": "value_error"}},
		})
		return
	}
	if missing := missingFields(req); len(missing) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": missing})
		return
	}
	if req.Email != s.opts.Email || req.Password != s.opts.Password {
		writeDetail(w, http.StatusUnauthorized, "Invalid owner credentials")
		return
	}

	token := s.opts.StaticToken
	if token == "" {
		var err error
		token, err = s.tokens.Issue("owner-1")
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "token issue failed")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		s.opts.TokenField: token,
		"token_type":      "bearer",
		"user": map[string]any{
			"id":    "owner-1",
			"email": s.opts.Email,
			"name":  "Owner",
			"role":  s.opts.Role,
		},
	})
}

func missingFields(req loginRequest) []map[string]any {
	var out []map[string]any
	if req.Email == "" {
		out = append(out, map[string]any{"loc": []string{"body", "email"}, "msg": "email is required", "type": "missing"})
	}
	if req.Password == "" {
		out = append(out, map[string]any{"loc": []string{"body", "password"}, "msg": "password is required", "type": "missing"})
	}
	return out
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	s.verifyCalls.Add(1)

	s.mu.Lock()
	forced := s.verifyStatus
	s.mu.Unlock()
	if forced != 0 {
		writeDetail(w, forced, http.StatusText(forced))
		return
	}

	if status, msg := s.authorize(r); status != http.StatusOK {
		writeDetail(w, status, msg)
		return
	}
	if s.opts.Role != "owner" && s.opts.Role != "admin" {
		writeDetail(w, http.StatusForbidden, "Not authorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true, "role": s.opts.Role})
}

// authorize checks the bearer credential and returns 200 or the rejection status.
func (s *Server) authorize(r *http.Request) (int, string) {
	raw := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(raw, "Bearer ")
	if !ok || token == "" {
		return http.StatusUnauthorized, "Not authenticated"
	}

	s.mu.Lock()
	_, revoked := s.revoked[token]
	s.mu.Unlock()
	if revoked {
		return http.StatusUnauthorized, "Token revoked"
	}

	if s.opts.StaticToken != "" && token == s.opts.StaticToken {
		return http.StatusOK, ""
	}
	if _, err := s.tokens.Parse(token); err != nil {
		return http.StatusUnauthorized, "Invalid token"
	}
	return http.StatusOK, ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]any{"detail": detail})
}
