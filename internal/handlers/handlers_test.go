package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felipeejunges/currency-converter-front/internal/session"
	"github.com/felipeejunges/currency-converter-front/internal/storage"
)

const testTemplateDir = "../../web/templates"

// apiFake is a configurable stand-in for the remote currency API that
// counts calls so tests can prove validation short-circuits networking.
type apiFake struct {
	srv *httptest.Server

	loginCalls   atomic.Int32
	convertCalls atomic.Int32

	convertStatus  int
	convertMessage string
	history        map[string]any
	historyStatus  int
}

func newAPIFake() *apiFake {
	f := &apiFake{
		convertStatus: http.StatusOK,
		historyStatus: http.StatusOK,
		history: map[string]any{
			"conversions": []any{},
			"pagination":  map[string]int{"page": 1, "count": 0, "limit": 10, "pages": 0},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/login", func(w http.ResponseWriter, r *http.Request) {
		f.loginCalls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user":  map[string]any{"id": 1, "email": "jane@example.com", "name": "Jane Doe"},
			"token": "tok-1",
		})
	})
	mux.HandleFunc("POST /api/v1/register", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]any{"id": 2, "email": "jane@example.com"},
		})
	})
	mux.HandleFunc("DELETE /api/v1/logout", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("GET /api/v1/currencies", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"currencies": []map[string]any{
				{"id": 1, "code": "USD", "name": "US Dollar", "symbol": "$", "symbol_native": "$"},
				{"id": 2, "code": "EUR", "name": "Euro", "symbol": "€", "symbol_native": "€"},
				{"id": 3, "code": "BRL", "name": "Brazilian Real", "symbol": "R$", "symbol_native": "R$"},
			},
		})
	})
	mux.HandleFunc("POST /api/v1/currencies/conversions", func(w http.ResponseWriter, r *http.Request) {
		f.convertCalls.Add(1)
		if f.convertStatus != http.StatusOK {
			w.WriteHeader(f.convertStatus)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": f.convertMessage})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"transaction_id": 42,
			"user_id":        1,
			"from_currency":  "USD",
			"to_currency":    "BRL",
			"from_value":     "100.0",
			"to_value":       525.32,
			"rate":           "5.2532",
			"timestamp":      "2024-03-15T14:30:00Z",
		})
	})
	mux.HandleFunc("GET /api/v1/currencies/conversions", func(w http.ResponseWriter, r *http.Request) {
		if f.historyStatus != http.StatusOK {
			w.WriteHeader(f.historyStatus)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "boom"})
			return
		}
		_ = json.NewEncoder(w).Encode(f.history)
	})

	f.srv = httptest.NewServer(mux)
	return f
}

type fixture struct {
	db      *storage.DB
	backend *apiFake
	store   *session.Store
	h       *Handlers
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := storage.NewDB(":memory:")
	require.NoError(t, err, "failed to create test database")
	t.Cleanup(func() { db.Close() })

	backend := newAPIFake()
	t.Cleanup(backend.srv.Close)

	store := session.NewStore(db, backend.srv.URL)
	return &fixture{
		db:      db,
		backend: backend,
		store:   store,
		h:       NewHandlers(store, testTemplateDir),
	}
}

func (f *fixture) loadAnonymous(t *testing.T) {
	t.Helper()
	require.NoError(t, f.store.Load())
}

func (f *fixture) loadAuthenticated(t *testing.T) {
	t.Helper()
	require.NoError(t, f.db.SetSession("tok-1",
		`{"id":1,"email":"jane@example.com","first_name":"Jane","last_name":"Doe","full_name":"Jane Doe"}`))
	require.NoError(t, f.store.Load())
}

func postForm(handler http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func get(handler http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestRequireAuthWhileLoadingRendersNothing(t *testing.T) {
	f := newFixture(t)
	// Load intentionally not called: the session is still resolving

	guarded := f.h.RequireAuth(http.HandlerFunc(f.h.ConvertPage))
	w := get(guarded, "/convert")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Empty(t, w.Body.String(), "loading state must render nothing")
}

func TestRequireAuthAnonymousRedirectsWithReturnPath(t *testing.T) {
	f := newFixture(t)
	f.loadAnonymous(t)

	guarded := f.h.RequireAuth(http.HandlerFunc(f.h.Conversions))
	w := get(guarded, "/conversions?page=2")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?from="+url.QueryEscape("/conversions?page=2"), w.Header().Get("Location"))
}

func TestRequireAnonAuthenticatedRedirectsWithoutFlash(t *testing.T) {
	f := newFixture(t)
	f.loadAuthenticated(t)

	for _, page := range []http.HandlerFunc{f.h.LoginForm, f.h.RegisterPage} {
		guarded := f.h.RequireAnon(page)
		w := get(guarded, "/login")

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, DefaultLanding, w.Header().Get("Location"))
		assert.NotContains(t, w.Body.String(), "<form", "form must never flash for authenticated users")
	}
}

func TestHomeRedirectsByState(t *testing.T) {
	f := newFixture(t)
	f.loadAnonymous(t)
	w := get(http.HandlerFunc(f.h.Home), "/")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	f2 := newFixture(t)
	f2.loadAuthenticated(t)
	w = get(http.HandlerFunc(f2.h.Home), "/")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, DefaultLanding, w.Header().Get("Location"))
}

func TestLoginValidationShortCircuitsNetwork(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		want     string
	}{
		{"missing email", "", "secret", "Email is required"},
		{"malformed email", "not-an-email", "secret", "Please enter a valid email address"},
		{"missing password", "jane@example.com", "", "Password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.loadAnonymous(t)

			w := postForm(http.HandlerFunc(f.h.Login), "/login", url.Values{
				"email":    {tt.email},
				"password": {tt.password},
			})

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
			assert.Equal(t, int32(0), f.backend.loginCalls.Load(),
				"validation failure must not reach the backend")
		})
	}
}

func TestLoginSuccessRedirectsToRememberedPath(t *testing.T) {
	f := newFixture(t)
	f.loadAnonymous(t)

	w := postForm(http.HandlerFunc(f.h.Login), "/login", url.Values{
		"email":    {"jane@example.com"},
		"password": {"secret"},
		"from":     {"/conversions?page=2"},
	})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/conversions?page=2", w.Header().Get("Location"))
	assert.True(t, f.store.IsAuthenticated())
}

func TestLoginRejectsForeignReturnPath(t *testing.T) {
	f := newFixture(t)
	f.loadAnonymous(t)

	w := postForm(http.HandlerFunc(f.h.Login), "/login", url.Values{
		"email":    {"jane@example.com"},
		"password": {"secret"},
		"from":     {"https://evil.example"},
	})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, DefaultLanding, w.Header().Get("Location"))
}

func TestRegisterFieldValidation(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{
			"missing email",
			url.Values{"first_name": {"Jane"}, "last_name": {"Doe"}, "password": {"secret"}, "password_confirmation": {"secret"}},
			"Email is required",
		},
		{
			"malformed email",
			url.Values{"email": {"nope"}, "first_name": {"Jane"}, "last_name": {"Doe"}, "password": {"secret"}, "password_confirmation": {"secret"}},
			"Please enter a valid email address",
		},
		{
			"missing first name",
			url.Values{"email": {"jane@example.com"}, "last_name": {"Doe"}, "password": {"secret"}, "password_confirmation": {"secret"}},
			"First name is required",
		},
		{
			"missing last name",
			url.Values{"email": {"jane@example.com"}, "first_name": {"Jane"}, "password": {"secret"}, "password_confirmation": {"secret"}},
			"Last name is required",
		},
		{
			"short password",
			url.Values{"email": {"jane@example.com"}, "first_name": {"Jane"}, "last_name": {"Doe"}, "password": {"12345"}, "password_confirmation": {"12345"}},
			"Password must be at least 6 characters long",
		},
		{
			"mismatched confirmation",
			url.Values{"email": {"jane@example.com"}, "first_name": {"Jane"}, "last_name": {"Doe"}, "password": {"secret"}, "password_confirmation": {"different"}},
			"Passwords do not match",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.loadAnonymous(t)

			w := postForm(http.HandlerFunc(f.h.Register), "/register", tt.form)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
			assert.False(t, f.store.IsAuthenticated())
		})
	}
}

func TestRegisterSuccessShowsMessageWithoutAuthenticating(t *testing.T) {
	f := newFixture(t)
	f.loadAnonymous(t)

	w := postForm(http.HandlerFunc(f.h.Register), "/register", url.Values{
		"email":                 {"jane@example.com"},
		"first_name":            {"Jane"},
		"last_name":             {"Doe"},
		"password":              {"secret"},
		"password_confirmation": {"secret"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), session.DefaultRegisterMessage)
	assert.False(t, f.store.IsAuthenticated(), "registration must not authenticate")
}

func TestLogoutClearsSessionAndGuardsProtectedViews(t *testing.T) {
	f := newFixture(t)
	f.loadAuthenticated(t)

	w := postForm(http.HandlerFunc(f.h.Logout), "/logout", url.Values{})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	// Durable storage holds neither key anymore
	_, err := f.db.Get(storage.KeyToken)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = f.db.Get(storage.KeyUser)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// A subsequent navigation to a protected view redirects to login
	guarded := f.h.RequireAuth(http.HandlerFunc(f.h.ConvertPage))
	w = get(guarded, "/convert")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/login")
}
