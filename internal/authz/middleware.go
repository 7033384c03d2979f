package authz

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/factecho/factecho/internal/platform/httpx"
)

// Header names downstream handlers read instead of re-parsing the token.
const (
	HeaderUserID = "X-User-Id"
	HeaderRole   = "X-User-Role"
)

// AccessTokenCookie is the cookie carrying the access token for browsers.
const AccessTokenCookie = "access_token"

// Middleware applies the engine's decision to every request. It runs before
// routing: denied requests never reach a handler.
func (e *Engine) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := e.Decide(r.Context(), Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Token:  ExtractToken(r),
		})
		switch decision.Outcome {
		case OutcomeRedirect:
			http.Redirect(w, r, decision.Location, http.StatusFound)
		case OutcomeFail:
			httpx.Fail(w, decision.Status, decision.Message)
		default:
			if identity := decision.Identity; identity != nil {
				r = r.WithContext(ContextWithIdentity(r.Context(), identity))
				r.Header.Set(HeaderUserID, identity.UserID.String())
				r.Header.Set(HeaderRole, strconv.Itoa(int(identity.Role)))
			} else {
				// Never trust identity headers supplied by the client.
				r.Header.Del(HeaderUserID)
				r.Header.Del(HeaderRole)
			}
			next.ServeHTTP(w, r)
		}
	})
}

// ExtractToken pulls the raw credential from the Authorization header or,
// for browser requests, the access token cookie. Empty means no credential.
func ExtractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}
