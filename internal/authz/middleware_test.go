package authz

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareInjectsIdentity(t *testing.T) {
	id := uuid.New()
	verifier := &stubVerifier{identity: Identity{UserID: id, Role: RoleAdmin}}
	engine := testEngine(verifier, nil)

	var gotUserID, gotRole string
	var gotIdentity *Identity
	handler := engine.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = r.Header.Get(HeaderUserID)
		gotRole = r.Header.Get(HeaderRole)
		gotIdentity = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, id.String(), gotUserID)
	require.Equal(t, strconv.Itoa(int(RoleAdmin)), gotRole)
	require.NotNil(t, gotIdentity)
	require.Equal(t, id, gotIdentity.UserID)
}

func TestMiddlewareStripsClientSuppliedIdentityHeaders(t *testing.T) {
	engine := testEngine(&stubVerifier{}, nil)

	var gotUserID, gotRole string
	handler := engine.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = r.Header.Get(HeaderUserID)
		gotRole = r.Header.Get(HeaderRole)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	req.Header.Set(HeaderUserID, uuid.NewString())
	req.Header.Set(HeaderRole, "3")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Empty(t, gotUserID, "spoofed user id header must be dropped")
	require.Empty(t, gotRole, "spoofed role header must be dropped")
}

func TestMiddlewareFailsClosedWithJSONBody(t *testing.T) {
	engine := testEngine(&stubVerifier{}, nil)

	handler := engine.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run on denied requests")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Contains(t, rr.Body.String(), `"FAIL"`)
	require.Contains(t, rr.Body.String(), MsgInvalidToken)
}

func TestMiddlewareRedirectsPages(t *testing.T) {
	engine := testEngine(&stubVerifier{}, nil)

	handler := engine.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run on redirected requests")
	}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusFound, rr.Code)
	require.Equal(t, LoginPath, rr.Header().Get("Location"))
}

func TestExtractToken(t *testing.T) {
	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer abc.def.ghi")
		require.Equal(t, "abc.def.ghi", ExtractToken(req))
	})

	t.Run("cookie fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "cookietoken"})
		require.Equal(t, "cookietoken", ExtractToken(req))
	})

	t.Run("header beats cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer fromheader")
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "fromcookie"})
		require.Equal(t, "fromheader", ExtractToken(req))
	})

	t.Run("non-bearer scheme ignored", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		require.Empty(t, ExtractToken(req))
	})

	t.Run("missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		require.Empty(t, ExtractToken(req))
	})
}
