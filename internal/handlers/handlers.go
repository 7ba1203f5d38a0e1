package handlers

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/felipeejunges/currency-converter-front/internal/api"
	"github.com/felipeejunges/currency-converter-front/internal/format"
	"github.com/felipeejunges/currency-converter-front/internal/models"
	"github.com/felipeejunges/currency-converter-front/internal/session"
)

// DefaultLanding is where authenticated users land when no other
// destination was requested.
const DefaultLanding = "/convert"

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	session     *session.Store
	templateDir string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store *session.Store, templateDir string) *Handlers {
	return &Handlers{session: store, templateDir: templateDir}
}

// Page carries the fields every view needs for the shared chrome.
type Page struct {
	Title             string
	User              *models.User
	ShowConvertButton bool
	ShowHistoryButton bool
	AvatarInitial     string
}

func (h *Handlers) page(title string, showConvert, showHistory bool) Page {
	user := h.session.User()
	return Page{
		Title:             title,
		User:              user,
		ShowConvertButton: showConvert,
		ShowHistoryButton: showHistory,
		AvatarInitial:     avatarInitial(user),
	}
}

func avatarInitial(user *models.User) string {
	if user == nil {
		return "U"
	}
	if user.FirstName != "" {
		return strings.ToUpper(user.FirstName[:1])
	}
	if user.Email != "" {
		return strings.ToUpper(user.Email[:1])
	}
	return "U"
}

// RequireAuth gates protected views. While the session is still loading it
// renders nothing, so the user never sees a flash of the wrong page. An
// anonymous visitor is sent to login with the requested path remembered.
func (h *Handlers) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch h.session.State() {
		case session.StateLoading:
			w.WriteHeader(http.StatusServiceUnavailable)
		case session.StateAnonymous:
			http.Redirect(w, r, "/login?from="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// RequireAnon gates the login and register views: an authenticated user is
// redirected straight to the landing view without the form ever rendering.
func (h *Handlers) RequireAnon(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch h.session.State() {
		case session.StateLoading:
			w.WriteHeader(http.StatusServiceUnavailable)
		case session.StateAuthenticated:
			http.Redirect(w, r, DefaultLanding, http.StatusFound)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// Home redirects the root path by session state.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	switch h.session.State() {
	case session.StateLoading:
		w.WriteHeader(http.StatusServiceUnavailable)
	case session.StateAuthenticated:
		http.Redirect(w, r, DefaultLanding, http.StatusFound)
	default:
		http.Redirect(w, r, "/login", http.StatusFound)
	}
}

// LoginViewModel holds data for the login page.
type LoginViewModel struct {
	Page
	Email      string
	EmailError string
	Error      string
	From       string
}

// LoginForm renders the login page.
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login.html", LoginViewModel{
		Page: h.page("Welcome Back", false, false),
		From: sanitizeReturnPath(r.URL.Query().Get("from")),
	})
}

// Login handles the login form submission.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, "login.html", LoginViewModel{
			Page:  h.page("Welcome Back", false, false),
			Error: "Invalid form submission",
		})
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	from := sanitizeReturnPath(r.FormValue("from"))

	vm := LoginViewModel{
		Page:  h.page("Welcome Back", false, false),
		Email: email,
		From:  from,
	}

	// Field checks run before any network call.
	if email == "" {
		vm.EmailError = "Email is required"
		h.render(w, r, "login.html", vm)
		return
	}
	if !format.IsValidEmail(email) {
		vm.EmailError = "Please enter a valid email address"
		h.render(w, r, "login.html", vm)
		return
	}
	if password == "" {
		vm.Error = "Password is required"
		h.render(w, r, "login.html", vm)
		return
	}

	if err := h.session.Login(r.Context(), email, password); err != nil {
		vm.Error = requestErrorMessage(err, "Login failed. Please try again.")
		h.render(w, r, "login.html", vm)
		return
	}

	if from == "" {
		from = DefaultLanding
	}
	http.Redirect(w, r, from, http.StatusFound)
}

// Logout clears the session and returns to the login view. The backend
// notification happens inside the store and never blocks the redirect.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.session.Logout(r.Context())
	http.Redirect(w, r, "/login", http.StatusFound)
}

// sanitizeReturnPath keeps post-login redirects on this site. Anything that
// is not a local absolute path collapses to "".
func sanitizeReturnPath(from string) string {
	if !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") {
		return ""
	}
	return from
}

// requestErrorMessage surfaces the server-provided message when the failure
// was an API error with one, else the static fallback.
func requestErrorMessage(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

var templateFuncs = template.FuncMap{
	"formatCurrency": func(v models.FlexFloat, symbol string) string {
		return format.Currency(v.Float64(), symbol)
	},
	"formatRate": func(v models.FlexFloat) string {
		return format.Rate(v.Float64())
	},
	"formatDate": format.Date,
	"symbol":     format.Symbol,
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, viewName string, data any) {
	tmpl, err := template.New("base.html").Funcs(templateFuncs).ParseFiles(
		filepath.Join(h.templateDir, "base.html"),
		filepath.Join(h.templateDir, viewName),
	)
	if err != nil {
		slog.Error("template parse failed", "view", viewName, "error", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	target := "base.html"
	if r.Header.Get("HX-Request") == "true" {
		target = "content"
	}
	if err := tmpl.ExecuteTemplate(w, target, data); err != nil {
		slog.Error("template execution failed", "view", viewName, "error", err)
	}
}
