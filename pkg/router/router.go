package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// --- ANSI color codes ---
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

type HandlerFunc = http.HandlerFunc

// Router wraps a chi mux with request IDs, panic recovery and a colored
// one-line request log.
type Router struct {
	chi.Router
	accessLog *log.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithAccessLog sends the request log to w. A nil writer disables it.
func WithAccessLog(w io.Writer) Option {
	return func(r *Router) {
		if w == nil {
			r.accessLog = nil
			return
		}
		r.accessLog = log.New(w, "", 0)
	}
}

func New(opts ...Option) *Router {
	r := &Router{
		Router:    chi.NewRouter(),
		accessLog: log.New(os.Stdout, "", 0),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if r.accessLog != nil {
		r.Use(r.logRequests)
	}
	r.Use(middleware.Recoverer)
	return r
}

// logRequests prints one colored line per request once it completes
func (r *Router) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		r.accessLog.Printf("%s[%s]%s %s%s%s %s %s%d%s %s(%v)%s %s",
			colorCyan, start.Format("2006-01-02 15:04:05"), colorReset,
			methodColor(req.Method), req.Method, colorReset,
			req.URL.Path,
			statusColor(status), status, colorReset,
			colorBlue, time.Since(start), colorReset,
			middleware.GetReqID(req.Context()),
		)
	})
}

// --- Register paths ---
func (r *Router) GET(path string, handler HandlerFunc)    { r.Get(path, handler) }
func (r *Router) POST(path string, handler HandlerFunc)   { r.Post(path, handler) }
func (r *Router) PUT(path string, handler HandlerFunc)    { r.Put(path, handler) }
func (r *Router) PATCH(path string, handler HandlerFunc)  { r.Patch(path, handler) }
func (r *Router) DELETE(path string, handler HandlerFunc) { r.Delete(path, handler) }

// RouteList returns every registered route as "METHOD PATH", sorted.
func (r *Router) RouteList() []string {
	var routes []string
	chi.Walk(r.Router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, method+" "+route)
		return nil
	})
	sort.Strings(routes)
	return routes
}

// ServerOptions are the http.Server timeouts used by Start.
type ServerOptions struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// --- Start server ---

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (r *Router) Start(ctx context.Context, addr string, opts ServerOptions) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  opts.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🚀 Server started on %shttp://localhost%s%s", colorGreen, addr, colorReset)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Printf("🛑 Server stopped")
	return nil
}

// --- Color helpers ---
func statusColor(code int) string {
	switch {
	case code >= 200 && code < 300:
		return colorGreen
	case code >= 300 && code < 400:
		return colorCyan
	case code >= 400 && code < 500:
		return colorYellow
	default:
		return colorRed
	}
}

func methodColor(method string) string {
	switch method {
	case http.MethodGet:
		return colorGreen
	case http.MethodPost:
		return colorBlue
	case http.MethodPut, http.MethodPatch:
		return colorYellow
	case http.MethodDelete:
		return colorRed
	default:
		return colorCyan
	}
}
