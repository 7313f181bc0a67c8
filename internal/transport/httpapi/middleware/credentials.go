package middleware

import (
	"net/http"
	"strings"

	"github.com/glowdesk/walletd/internal/credstore"
)

// Credentials seeds the shared credential store from the incoming
// Authorization header. The gateway does not verify tokens itself; the
// upstream service is the authority, and a bad token surfaces as its 401.
// Requests without a bearer token pass through untouched so a previously
// seeded session keeps working.
func Credentials(creds *credstore.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if token, ok := strings.CutPrefix(auth, "Bearer "); ok && token != "" {
				creds.Set(token)
			}
			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}
