package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/factecho/factecho/internal/authz"
	"github.com/factecho/factecho/internal/token"
)

func newTestHandler(t *testing.T, store *memoryUserStore, refreshTTL time.Duration) (*Handler, *token.Manager) {
	t.Helper()
	tokens, err := token.NewManager("0123456789abcdef0123456789abcdef", 15*time.Minute, refreshTTL)
	require.NoError(t, err)
	service := NewService(store, nil, slog.Default())
	return NewHandler(slog.Default(), service, tokens, false), tokens
}

func mountTestRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/auth", h.MountRoutes)
	return r
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestRegisterLoginFlow(t *testing.T) {
	store := newMemoryUserStore()
	handler, _ := newTestHandler(t, store, 24*time.Hour)
	router := mountTestRouter(handler)

	body := `{"name":"Ada","email":"ada@example.com","password":"s3cret-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	require.NotNil(t, cookieByName(rr.Result().Cookies(), authz.AccessTokenCookie))
	require.NotNil(t, cookieByName(rr.Result().Cookies(), RefreshTokenCookie))

	var envelope struct {
		StatusText string `json:"statusText"`
		Payload    struct {
			User struct {
				Email        string `json:"email"`
				PasswordHash string `json:"passwordHash"`
			} `json:"user"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	require.Equal(t, "SUCCESS", envelope.StatusText)
	require.Equal(t, "ada@example.com", envelope.Payload.User.Email)
	require.Empty(t, envelope.Payload.User.PasswordHash, "hash must never leave the server")

	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"ada@example.com","password":"s3cret-pass"}`))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"ada@example.com","password":"wrong"}`))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Contains(t, rr.Body.String(), "Invalid email or password")
}

func TestRefreshMintsFromPersistedRole(t *testing.T) {
	store := newMemoryUserStore()
	handler, tokens := newTestHandler(t, store, 24*time.Hour)
	router := mountTestRouter(handler)

	service := NewService(store, nil, slog.Default())
	user, err := service.Register(context.Background(), "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)

	refresh, err := tokens.GenerateRefresh(authz.Identity{UserID: user.ID, Role: user.Role})
	require.NoError(t, err)

	// Promote after the refresh token was issued.
	promoted := user
	promoted.Role = authz.RoleAuthor
	store.byID[user.ID] = promoted
	store.byEmail[user.Email] = promoted

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: refresh})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	access := cookieByName(rr.Result().Cookies(), authz.AccessTokenCookie)
	require.NotNil(t, access)

	identity, err := tokens.Verify(access.Value)
	require.NoError(t, err)
	require.Equal(t, authz.RoleAuthor, identity.Role, "new access token carries the persisted role")
}

func TestRefreshWithoutCookie(t *testing.T) {
	handler, _ := newTestHandler(t, newMemoryUserStore(), 24*time.Hour)
	router := mountTestRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Contains(t, rr.Body.String(), "Invalid or expired refresh token")
}

func TestRefreshWithExpiredTokenClearsCookies(t *testing.T) {
	store := newMemoryUserStore()
	handler, tokens := newTestHandler(t, store, -time.Minute)
	router := mountTestRouter(handler)

	service := NewService(store, nil, slog.Default())
	user, err := service.Register(context.Background(), "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)

	expired, err := tokens.GenerateRefresh(authz.Identity{UserID: user.ID, Role: user.Role})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: expired})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	for _, name := range []string{authz.AccessTokenCookie, RefreshTokenCookie} {
		cookie := cookieByName(rr.Result().Cookies(), name)
		require.NotNil(t, cookie, "%s must be cleared", name)
		require.Empty(t, cookie.Value)
		require.Negative(t, cookie.MaxAge)
	}
}

func TestRefreshForDeletedAccount(t *testing.T) {
	store := newMemoryUserStore()
	handler, tokens := newTestHandler(t, store, 24*time.Hour)
	router := mountTestRouter(handler)

	service := NewService(store, nil, slog.Default())
	user, err := service.Register(context.Background(), "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)

	refresh, err := tokens.GenerateRefresh(authz.Identity{UserID: user.ID, Role: user.Role})
	require.NoError(t, err)

	delete(store.byID, user.ID)
	delete(store.byEmail, user.Email)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: refresh})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Contains(t, rr.Body.String(), "Account no longer exists")
}

func TestLogoutClearsCookies(t *testing.T) {
	handler, _ := newTestHandler(t, newMemoryUserStore(), 24*time.Hour)
	router := mountTestRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	for _, name := range []string{authz.AccessTokenCookie, RefreshTokenCookie} {
		cookie := cookieByName(rr.Result().Cookies(), name)
		require.NotNil(t, cookie)
		require.Empty(t, cookie.Value)
	}
}
