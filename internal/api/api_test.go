package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/auth"
	"library-backend/internal/database"
	"library-backend/internal/notify"
)

// testClient drives the API the way a browser would, carrying cookies
// between requests.
type testClient struct {
	t       *testing.T
	e       *echo.Echo
	cookies map[string]string
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()
	dir := t.TempDir()
	store, err := database.Open(database.Config{Path: filepath.Join(dir, "test.db")})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	hub := notify.NewHub()
	go hub.Run()

	e := echo.New()
	RegisterRoutes(e.Group("/api"), store, hub, nil)

	return &testClient{t: t, e: e, cookies: make(map[string]string)}
}

func (tc *testClient) do(method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	tc.t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for name, value := range tc.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	rec := httptest.NewRecorder()
	tc.e.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.MaxAge < 0 {
			delete(tc.cookies, cookie.Name)
			continue
		}
		tc.cookies[cookie.Name] = cookie.Value
	}

	var payload map[string]interface{}
	if rec.Body.Len() > 0 {
		json.Unmarshal(rec.Body.Bytes(), &payload)
	}
	return rec, payload
}

func (tc *testClient) join(email string) {
	tc.t.Helper()
	rec, _ := tc.do(http.MethodPost, "/api/auth/join",
		`{"email":"`+email+`","password":"secret","confirm_password":"secret"}`)
	if rec.Code != http.StatusCreated {
		tc.t.Fatalf("join: status %d body %s", rec.Code, rec.Body.String())
	}
}

func TestHealthEndpoint(t *testing.T) {
	tc := newTestClient(t)
	rec, payload := tc.do(http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", payload["status"])
}

func TestProtectedRoutesNeedLogin(t *testing.T) {
	tc := newTestClient(t)

	rec, _ := tc.do(http.MethodGet, "/api/resources/search?title=Dune", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The 401 handed out a session cookie, but still no token
	assert.NotEmpty(t, tc.cookies[auth.SessionCookie])
	rec, _ = tc.do(http.MethodGet, "/api/resources/search?title=Dune", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJoinLoginFlow(t *testing.T) {
	tc := newTestClient(t)
	tc.join("alice@example.com")

	rec, payload := tc.do(http.MethodGet, "/api/auth/me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice@example.com", payload["email"])

	// Duplicate email is rejected
	rec, _ = tc.do(http.MethodPost, "/api/auth/join",
		`{"email":"alice@example.com","password":"other","confirm_password":"other"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Logout ends access until the next login
	rec, _ = tc.do(http.MethodPost, "/api/auth/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = tc.do(http.MethodGet, "/api/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = tc.do(http.MethodPost, "/api/auth/login",
		`{"email":"alice@example.com","password":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = tc.do(http.MethodGet, "/api/auth/me", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInventoryAndLendingFlow(t *testing.T) {
	tc := newTestClient(t)
	tc.join("librarian@example.com")

	body := `{"title":"Dune","author_first":"Frank","author_last":"Herbert","isbn_10":"0441013597"}`
	rec, payload := tc.do(http.MethodPost, "/api/resources", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	resourceID := int64(payload["id"].(float64))
	assert.Equal(t, "Frank Herbert", payload["author_name"])

	// Second intake of the same ISBN adds stock, not a new resource
	rec, payload = tc.do(http.MethodPost, "/api/resources", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, resourceID, int64(payload["id"].(float64)))

	rec, payload = tc.do(http.MethodGet, "/api/resources/search?title=Dune", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), payload["count"])

	rec, payload = tc.do(http.MethodGet, "/api/resources/search?title=dune", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), payload["count"])

	rec, payload = tc.do(http.MethodGet, "/api/resources/"+strconv.FormatInt(resourceID, 10)+"/stock", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(2), payload["count"])
	stock := payload["stock"].([]interface{})
	stockID := int64(stock[0].(map[string]interface{})["id"].(float64))

	stockBody := `{"stock_id":` + strconv.FormatInt(stockID, 10) + `}`
	rec, _ = tc.do(http.MethodPost, "/api/borrows/checkout", stockBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, payload = tc.do(http.MethodGet, "/api/borrows", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), payload["count"])

	rec, _ = tc.do(http.MethodPost, "/api/borrows/checkin", stockBody)
	require.Equal(t, http.StatusOK, rec.Code)

	// Audit trail recorded the whole flow
	rec, payload = tc.do(http.MethodGet, "/api/audit?action_prefix=borrow.", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), payload["total"])
}

func TestMemberSelfDeactivation(t *testing.T) {
	tc := newTestClient(t)
	tc.join("leaving@example.com")

	_, payload := tc.do(http.MethodGet, "/api/auth/me", "")
	memberID := int64(payload["id"].(float64))

	// Another member's account is off limits
	rec, _ := tc.do(http.MethodDelete, "/api/members/999", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = tc.do(http.MethodDelete, "/api/members/"+strconv.FormatInt(memberID, 10), "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = tc.do(http.MethodGet, "/api/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
