package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/felipeejunges/currency-converter-front/internal/handlers"
	"github.com/felipeejunges/currency-converter-front/internal/logging"
	"github.com/felipeejunges/currency-converter-front/internal/middleware"
	"github.com/felipeejunges/currency-converter-front/internal/session"
	"github.com/felipeejunges/currency-converter-front/internal/storage"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	// A missing .env file is fine; env vars and flags still apply.
	_ = godotenv.Load()

	addr := flag.String("addr", getEnv("ADDR", ":3000"), "Address to listen on")
	apiURL := flag.String("api", getEnv("API_URL", "http://localhost:8080"), "Base URL of the currency API")
	dbPath := flag.String("db", getEnv("DB_PATH", "converter.db"), "Path to the session database file")
	templateDir := flag.String("templates", getEnv("TEMPLATE_DIR", "web/templates"), "Path to the template directory")
	staticDir := flag.String("static", getEnv("STATIC_DIR", "web/static"), "Path to the static assets directory")
	flag.Parse()

	logging.Setup()

	db, err := storage.NewDB(*dbPath)
	if err != nil {
		slog.Error("failed to open session database", "path", *dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store := session.NewStore(db, *apiURL)
	// The durable session is read exactly once, before any route decision
	// can be made; the guard never observes the loading state in practice.
	if err := store.Load(); err != nil {
		slog.Error("failed to load session", "error", err)
		os.Exit(1)
	}
	slog.Info("session resolved", "state", store.State().String())

	h := handlers.NewHandlers(store, *templateDir)
	mux := setupRouter(h, *staticDir)
	handler := middleware.Logging(middleware.Metrics(mux))

	slog.Info("listening", "addr", *addr, "api", *apiURL)
	if err := http.ListenAndServe(*addr, handler); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func setupRouter(h *handlers.Handlers, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.Home)

	mux.Handle("GET /login", h.RequireAnon(http.HandlerFunc(h.LoginForm)))
	mux.Handle("POST /login", h.RequireAnon(http.HandlerFunc(h.Login)))
	mux.Handle("GET /register", h.RequireAnon(http.HandlerFunc(h.RegisterPage)))
	mux.Handle("POST /register", h.RequireAnon(http.HandlerFunc(h.Register)))
	mux.HandleFunc("POST /logout", h.Logout)

	mux.Handle("GET /convert", h.RequireAuth(http.HandlerFunc(h.ConvertPage)))
	mux.Handle("POST /convert", h.RequireAuth(http.HandlerFunc(h.Convert)))
	mux.Handle("GET /conversions", h.RequireAuth(http.HandlerFunc(h.Conversions)))

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}
