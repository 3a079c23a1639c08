package middlewares

import (
	"net/http"
	"slices"

	"github.com/go-chi/jwtauth"
	"github.com/mbolis/survey-desk/auth"
	"github.com/mbolis/survey-desk/httpx"
	"github.com/mbolis/survey-desk/log"
	"github.com/mbolis/survey-desk/model"
)

// Authenticate verifies the access token cookie and stores the caller's
// auth.Principal in the request context.
func Authenticate(tokens *auth.Tokens) func(http.Handler) http.Handler {
	verify := jwtauth.Verify(tokens.Access(), accessCookie)
	return func(next http.Handler) http.Handler {
		return verify(principal(next))
	}
}

func accessCookie(r *http.Request) string {
	cookie, err := r.Cookie(auth.AccessCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func principal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "auth.token")
			return
		}

		p, err := auth.PrincipalFromClaims(claims)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusUnauthorized, log.DebugLevel, "auth.claims", "Invalid token")
			return
		}

		notePrincipal(r.Context(), p)
		next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
	})
}

// RequireRole lets through callers holding one of roles. It must run after
// Authenticate.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := auth.PrincipalFrom(r.Context())
			if !ok {
				httpx.LogStatusMsg(w, http.StatusUnauthorized, log.DebugLevel, "auth.role", "User not authenticated")
				return
			}
			if !slices.Contains(roles, p.Role) {
				log.Audit("AUTHORIZE_FAILED", log.Fields{
					"userId": p.UserID,
					"role":   p.Role,
					"path":   r.URL.Path,
				})
				httpx.LogStatusMsg(w, http.StatusForbidden, log.DebugLevel, "auth.role", "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
