package middleware

import (
	"context"
	"net/http"

	goOwner "github.com/MrEthical07/goOwner"
)

type snapshotContextKey struct{}

// SnapshotFromContext returns the session snapshot a guard attached to the request.
func SnapshotFromContext(ctx context.Context) (goOwner.Snapshot, bool) {
	snap, ok := ctx.Value(snapshotContextKey{}).(goOwner.Snapshot)
	return snap, ok
}

// RequireOwner serves next only while facade is authenticated. Anonymous requests are
// redirected (303) to loginPath with no message. While the facade is still resolving its
// startup verification the guard answers 503 with Retry-After so clients come back
// instead of being bounced to the login page.
func RequireOwner(facade *goOwner.Facade, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if facade == nil {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			guard(w, r, facade.Snapshot(), loginPath, next)
		})
	}
}

// RequireVerifiedOwner confirms the credential with the backend before every request.
// It costs one round trip per request and catches revocations immediately.
func RequireVerifiedOwner(facade *goOwner.Facade, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if facade == nil {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			facade.Verify(r.Context())
			guard(w, r, facade.Snapshot(), loginPath, next)
		})
	}
}

func guard(w http.ResponseWriter, r *http.Request, snap goOwner.Snapshot, loginPath string, next http.Handler) {
	switch snap.State {
	case goOwner.StateAuthenticated:
		ctx := context.WithValue(r.Context(), snapshotContextKey{}, snap)
		next.ServeHTTP(w, r.WithContext(ctx))
	case goOwner.StateVerifying:
		w.Header().Set("Retry-After", "1")
		http.Error(w, "session check in progress", http.StatusServiceUnavailable)
	default:
		http.Redirect(w, r, loginPath, http.StatusSeeOther)
	}
}

// RedirectIfOwner guards the login page: an authenticated owner is sent to adminPath,
// everyone else reaches next.
func RedirectIfOwner(facade *goOwner.Facade, adminPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if facade != nil && facade.Authenticated() {
				http.Redirect(w, r, adminPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
