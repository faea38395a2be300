// Package server exposes the link store over a read-only HTTP JSON API.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielledeleo/wikigraph/internal/storage"
	"github.com/danielledeleo/wikigraph/wiki"
	"github.com/danielledeleo/wikigraph/wiki/lang"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// Store is the query surface the API serves.
type Store interface {
	GetLinksForPage(ctx context.Context, language lang.ID, pageID int64, dir wiki.Direction, opts ...wiki.PageLinkOption) (*storage.Cursor, error)
	GetLink(ctx context.Context, language lang.ID, src, dst int64) (wiki.LinkRecord, error)
	GetCount(ctx context.Context, language lang.ID, isParseable bool, locType wiki.LocationType) (int, error)
}

// App holds the API dependencies.
type App struct {
	Store     Store
	Languages *lang.Registry
	Config    *wiki.Config
}

// NewApp returns an App serving store with the default language registry.
func NewApp(store Store, config *wiki.Config) *App {
	return &App{Store: store, Languages: lang.Default, Config: config}
}

// Router returns the API routes wrapped in request logging, panic recovery
// and response compression.
func (a *App) Router() http.Handler {
	router := mux.NewRouter().StrictSlash(true)

	api := router.PathPrefix("/api/{lang}").Subrouter()
	api.HandleFunc("/pages/{id:[0-9]+}/outlinks", a.PageLinksHandler(wiki.Outlinks)).Methods("GET")
	api.HandleFunc("/pages/{id:[0-9]+}/inlinks", a.PageLinksHandler(wiki.Inlinks)).Methods("GET")
	api.HandleFunc("/links/{source:[0-9]+}/{dest:[0-9]+}", a.LinkHandler).Methods("GET")
	api.HandleFunc("/count", a.CountHandler).Methods("GET")
	router.HandleFunc("/healthz", a.HealthHandler).Methods("GET")
	router.Use(routeInfoMiddleware)

	var handler http.Handler = router
	handler = handlers.CompressHandler(handler)
	handler = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{}))(handler)
	return SlogLoggingMiddleware(handler)
}

// recoveryLogger routes recovered panics to slog.
type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	slog.Error("handler panic", "panic", v)
}

type requestInfoKey struct{}

// requestInfo collects what the handlers learned about a request for the
// access log.
type requestInfo struct {
	route string
	lang  string
	rows  int
}

func infoFrom(req *http.Request) *requestInfo {
	info, _ := req.Context().Value(requestInfoKey{}).(*requestInfo)
	return info
}

// routeInfoMiddleware records the matched route template and language.
func routeInfoMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if info := infoFrom(r); info != nil {
			if route := mux.CurrentRoute(r); route != nil {
				info.route, _ = route.GetPathTemplate()
			}
			info.lang = mux.Vars(r)["lang"]
		}
		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// Flush lets streaming handlers flush through the wrapper.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// SlogLoggingMiddleware logs each request with its route, language and the
// number of link rows it returned.
func SlogLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		info := &requestInfo{}
		r = r.WithContext(context.WithValue(r.Context(), requestInfoKey{}, info))

		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"size", wrapped.size,
			"duration", time.Since(start),
		}
		if info.route != "" {
			attrs = append(attrs, "route", info.route)
		}
		if info.lang != "" {
			attrs = append(attrs, "lang", info.lang, "rows", info.rows)
		}
		level := slog.LevelInfo
		if wrapped.status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		slog.Log(r.Context(), level, "http request", attrs...)
	})
}
