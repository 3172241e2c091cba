package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/Matheus-Salgado02/cinelist/config"
	"github.com/Matheus-Salgado02/cinelist/data_access"
	"github.com/Matheus-Salgado02/cinelist/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	handler http.Handler
	store   *data_access.MemoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	tmdb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search/movie":
			w.Write([]byte(`{"page":1,"results":[{"id":1}],"total_pages":1,"total_results":1}`))
		case "/movie/500":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.Write([]byte(`{"path":"` + r.URL.Path + `"}`))
		}
	}))
	t.Cleanup(tmdb.Close)

	store := data_access.NewMemoryStore()
	tokens := services.NewTokenService("test-secret", services.DefaultTokenTTL)
	hasher := services.NewPasswordHasher(bcrypt.MinCost)
	engine := NewRouter(Deps{
		Auth:      services.NewAuthService(store, store, tokens, hasher),
		Watchlist: services.NewWatchlistService(store, store),
		Reviews:   services.NewReviewService(store, store),
		Catalog:   services.NewCatalogService(data_access.NewTMDBClient(config.TMDBConfig{BaseURL: tmdb.URL, APIKey: "k", Timeout: 5 * time.Second})),
		Directory: services.NewUserDirectory(store, store, hasher),
		Health:    store,
		RateLimit: config.RateLimitConfig{Requests: 1000, Window: time.Minute},
	})
	return &testServer{handler: Handler(engine, []string{"*"}), store: store}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)

	var out map[string]any
	if strings.HasPrefix(strings.TrimSpace(w.Body.String()), "{") {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w, out
}

func (s *testServer) register(t *testing.T, email string) string {
	t.Helper()
	w, out := s.do(t, http.MethodPost, "/auth/register", "", map[string]any{"email": email, "password": "pw"})
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d body = %s", w.Code, w.Body)
	}
	return out["token"].(string)
}

func assertNoPassword(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	if strings.Contains(w.Body.String(), "password") {
		t.Errorf("response leaks password: %s", w.Body)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "a@x.com")

	w, out := s.do(t, http.MethodPost, "/auth/register", "", map[string]any{"email": "a@x.com", "password": "pw"})
	if w.Code != http.StatusConflict || out["message"] == nil {
		t.Errorf("duplicate register = %d %s", w.Code, w.Body)
	}

	w, _ = s.do(t, http.MethodPost, "/auth/register", "", map[string]any{"email": "not-an-email", "password": "pw"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid email status = %d", w.Code)
	}

	w, out = s.do(t, http.MethodPost, "/auth/login", "", map[string]any{"email": "a@x.com", "password": "pw"})
	if w.Code != http.StatusOK || out["token"] == "" {
		t.Fatalf("login = %d %s", w.Code, w.Body)
	}
	assertNoPassword(t, w)

	w, _ = s.do(t, http.MethodPost, "/auth/login", "", map[string]any{"email": "a@x.com", "password": "bad"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad password status = %d", w.Code)
	}
}

func TestMe(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "a@x.com")

	w, out := s.do(t, http.MethodGet, "/auth/me", token, nil)
	if w.Code != http.StatusOK || out["user"] == nil {
		t.Fatalf("GET /auth/me = %d %s", w.Code, w.Body)
	}
	assertNoPassword(t, w)

	w, _ = s.do(t, http.MethodGet, "/auth/me", "", map[string]any{"email": "a@x.com", "password": "pw"})
	if w.Code != http.StatusOK {
		t.Errorf("credential fallback status = %d", w.Code)
	}

	w, _ = s.do(t, http.MethodGet, "/auth/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d", w.Code)
	}

	w, _ = s.do(t, http.MethodGet, "/auth/me", "", map[string]any{"email": "ghost@x.com", "password": "pw"})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown user status = %d", w.Code)
	}
}

func TestUpdateProfileIgnoresPassword(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "a@x.com")

	w, out := s.do(t, http.MethodPut, "/auth/me", token, map[string]any{"name": "Ana", "password": "hacked"})
	if w.Code != http.StatusOK {
		t.Fatalf("PUT /auth/me = %d %s", w.Code, w.Body)
	}
	assertNoPassword(t, w)
	if out["user"].(map[string]any)["name"] != "Ana" {
		t.Errorf("name not updated: %s", w.Body)
	}

	w, _ = s.do(t, http.MethodPost, "/auth/login", "", map[string]any{"email": "a@x.com", "password": "pw"})
	if w.Code != http.StatusOK {
		t.Error("original password should still work")
	}
	w, _ = s.do(t, http.MethodPost, "/auth/login", "", map[string]any{"email": "a@x.com", "password": "hacked"})
	if w.Code != http.StatusUnauthorized {
		t.Error("password in a profile update must be ignored")
	}

	w, _ = s.do(t, http.MethodPut, "/auth/me", "", map[string]any{"name": "x"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated PUT status = %d", w.Code)
	}
}

func TestWatchlistEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "a@x.com")

	for _, id := range []any{42, "42", 7} {
		w, _ := s.do(t, http.MethodPost, "/watchlist", token, map[string]any{"movieId": id})
		if w.Code != http.StatusOK {
			t.Fatalf("POST /watchlist %v = %d %s", id, w.Code, w.Body)
		}
	}
	w, out := s.do(t, http.MethodDelete, "/watchlist/99", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("DELETE unknown = %d", w.Code)
	}
	list := out["user"].(map[string]any)["watchlist"].([]any)
	if len(list) != 2 || list[0].(float64) != 42 || list[1].(float64) != 7 {
		t.Errorf("watchlist = %v", list)
	}
	assertNoPassword(t, w)

	w, _ = s.do(t, http.MethodPost, "/watchlist", token, map[string]any{"movieId": "abc"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("non-numeric movieId status = %d", w.Code)
	}
	w, _ = s.do(t, http.MethodPost, "/watchlist", token, map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing movieId status = %d", w.Code)
	}
	w, _ = s.do(t, http.MethodPost, "/watchlist", "", map[string]any{"movieId": 1})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d", w.Code)
	}
}

func TestWatchlistDisconnected(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "a@x.com")
	s.store.SetConnected(false)

	w, _ := s.do(t, http.MethodPost, "/watchlist", token, map[string]any{"movieId": 1})
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}

	w, out := s.do(t, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK || out["ok"] != true || out["dbConnected"] != false {
		t.Errorf("/health = %d %s", w.Code, w.Body)
	}
}

func TestReviewEndpoints(t *testing.T) {
	s := newTestServer(t)
	a := s.register(t, "a@x.com")
	b := s.register(t, "b@x.com")

	for _, rating := range []any{0, 6} {
		w, _ := s.do(t, http.MethodPost, "/reviews", a, map[string]any{"movieId": 7, "rating": rating})
		if w.Code != http.StatusBadRequest {
			t.Errorf("rating %v status = %d", rating, w.Code)
		}
	}

	w, out := s.do(t, http.MethodPost, "/reviews", a, map[string]any{"movieId": 42, "rating": 4, "text": "first"})
	if w.Code != http.StatusOK {
		t.Fatalf("POST /reviews = %d %s", w.Code, w.Body)
	}
	review := out["review"].(map[string]any)
	if review["id"] == nil || review["rating"].(float64) != 4 {
		t.Errorf("review = %v", review)
	}
	time.Sleep(5 * time.Millisecond)
	if w, _ := s.do(t, http.MethodPost, "/reviews", b, map[string]any{"movieId": "42", "rating": "5", "text": "second"}); w.Code != http.StatusOK {
		t.Fatalf("string rating = %d %s", w.Code, w.Body)
	}

	w, out = s.do(t, http.MethodGet, "/reviews/movie/42", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET reviews = %d", w.Code)
	}
	reviews := out["reviews"].([]any)
	if len(reviews) != 2 || reviews[0].(map[string]any)["text"] != "second" {
		t.Errorf("reviews = %v", reviews)
	}

	w, out = s.do(t, http.MethodDelete, "/reviews/"+review["id"].(string), a, nil)
	if w.Code != http.StatusOK || len(out["user"].(map[string]any)["reviews"].([]any)) != 0 {
		t.Errorf("DELETE review = %d %s", w.Code, w.Body)
	}
	w, _ = s.do(t, http.MethodDelete, "/reviews/unknown", a, nil)
	if w.Code != http.StatusOK {
		t.Errorf("DELETE unknown review = %d", w.Code)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	s := newTestServer(t)

	w, out := s.do(t, http.MethodGet, "/tmdb/search", "", nil)
	if w.Code != http.StatusBadRequest || out["error"] != "q query required" {
		t.Errorf("search without q = %d %s", w.Code, w.Body)
	}

	w, out = s.do(t, http.MethodGet, "/tmdb/search?q=alien", "", nil)
	if w.Code != http.StatusOK || out["total_pages"].(float64) != 1 {
		t.Errorf("search = %d %s", w.Code, w.Body)
	}

	w, out = s.do(t, http.MethodGet, "/tmdb/now-playing", "", nil)
	if w.Code != http.StatusOK || out["path"] != "/movie/now_playing" {
		t.Errorf("now-playing = %d %s", w.Code, w.Body)
	}

	w, out = s.do(t, http.MethodGet, "/tmdb/movie/500", "", nil)
	if w.Code != http.StatusInternalServerError || out["error"] != "TMDB movie error" {
		t.Errorf("upstream failure = %d %s", w.Code, w.Body)
	}
}

func TestUsersDirectory(t *testing.T) {
	s := newTestServer(t)

	w, out := s.do(t, http.MethodPost, "/users", "", map[string]any{"username": "neo", "password": "pw"})
	if w.Code != http.StatusCreated || out["username"] != "neo" || out["id"] == nil {
		t.Fatalf("POST /users = %d %s", w.Code, w.Body)
	}
	w, out = s.do(t, http.MethodPost, "/users", "", map[string]any{"username": "neo", "password": "pw"})
	if w.Code != http.StatusConflict || out["error"] == nil {
		t.Errorf("duplicate = %d %s", w.Code, w.Body)
	}

	w, _ = s.do(t, http.MethodGet, "/users", "", nil)
	var list []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil || len(list) != 1 {
		t.Fatalf("GET /users = %s", w.Body)
	}
	assertNoPassword(t, w)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/watchlist", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Errorf("missing CORS headers: %v", w.Header())
	}
}

func TestUserCollectionsEncodeAsArrays(t *testing.T) {
	s := newTestServer(t)
	w, out := s.do(t, http.MethodPost, "/auth/register", "", map[string]any{"username": "n", "password": "pw"})
	if w.Code != http.StatusCreated {
		t.Fatalf("register = %d %s", w.Code, w.Body)
	}
	token := out["token"].(string)

	assertArrays := func(w *httptest.ResponseRecorder) {
		t.Helper()
		for _, want := range []string{`"watchlist":[]`, `"reviews":[]`, `"favoriteGenres":[]`} {
			if !strings.Contains(w.Body.String(), want) {
				t.Errorf("body %s missing %s", w.Body, want)
			}
		}
	}
	assertArrays(w)

	if w, _ := s.do(t, http.MethodPost, "/watchlist", token, map[string]any{"movieId": 5}); w.Code != http.StatusOK {
		t.Fatalf("POST /watchlist = %d", w.Code)
	}
	w, _ = s.do(t, http.MethodDelete, "/watchlist/5", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("DELETE /watchlist/5 = %d", w.Code)
	}
	assertArrays(w)

	w, _ = s.do(t, http.MethodGet, "/auth/me", token, nil)
	assertArrays(w)
}

func TestWatchlistRejectsOutOfRangeMovieID(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "a@x.com")

	for _, id := range []any{"1e30", 1e30} {
		w, _ := s.do(t, http.MethodPost, "/watchlist", token, map[string]any{"movieId": id})
		if w.Code != http.StatusBadRequest {
			t.Errorf("movieId %v status = %d, want 400", id, w.Code)
		}
	}
}

func TestRegisterPasswordTooLong(t *testing.T) {
	s := newTestServer(t)
	w, out := s.do(t, http.MethodPost, "/auth/register", "", map[string]any{
		"email":    "long@x.com",
		"password": strings.Repeat("p", 80),
	})
	if w.Code != http.StatusBadRequest || out["message"] != "Password must be at most 72 bytes" {
		t.Errorf("register = %d %s", w.Code, w.Body)
	}
}

func TestPaddedEmailIsTrimmed(t *testing.T) {
	s := newTestServer(t)
	w, out := s.do(t, http.MethodPost, "/auth/register", "", map[string]any{"email": " pad@x.com ", "password": "pw"})
	if w.Code != http.StatusCreated {
		t.Fatalf("register padded email = %d %s", w.Code, w.Body)
	}
	if got := out["user"].(map[string]any)["email"]; got != "pad@x.com" {
		t.Errorf("stored email = %v", got)
	}
	token := out["token"].(string)

	w, out = s.do(t, http.MethodPut, "/auth/me", token, map[string]any{"email": "  new@x.com\t"})
	if w.Code != http.StatusOK || out["user"].(map[string]any)["email"] != "new@x.com" {
		t.Errorf("PUT padded email = %d %s", w.Code, w.Body)
	}

	w, _ = s.do(t, http.MethodPut, "/auth/me", token, map[string]any{"email": " nope "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("PUT invalid email status = %d", w.Code)
	}
}

func TestNoLogoutRoute(t *testing.T) {
	s := newTestServer(t)
	if w, _ := s.do(t, http.MethodPost, "/auth/logout", "", nil); w.Code != http.StatusNotFound {
		t.Errorf("POST /auth/logout status = %d, want 404", w.Code)
	}
}
