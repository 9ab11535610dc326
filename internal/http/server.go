package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"

	"feesbook/internal/ledger"
	applog "feesbook/internal/log"
	"feesbook/internal/receipt"
	"feesbook/internal/registry"
	"feesbook/internal/stats"
	appweb "feesbook/web"
)

// PaymentPublisher notifies the register sync pipeline of a recorded
// payment. Nil when sync is not configured.
type PaymentPublisher interface {
	PublishPaymentSync(ctx context.Context, paymentID string) error
}

// Deps wires the server to the application components.
type Deps struct {
	Registry  *registry.Registry
	Ledger    *ledger.Ledger
	Stats     *stats.Engine
	Receipts  *receipt.Renderer
	Publisher PaymentPublisher
	Institute receipt.Institute
}

type Server struct {
	http.Server
	templates *template.Template
	registry  *registry.Registry
	ledger    *ledger.Ledger
	stats     *stats.Engine
	receipts  *receipt.Renderer
	publisher PaymentPublisher
	institute receipt.Institute
	validate  *validator.Validate

	rateLimiter  *rateLimiter
	metrics      *securityMetrics
	structLog    *applog.StructuredLogger
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		registry:    deps.Registry,
		ledger:      deps.Ledger,
		stats:       deps.Stats,
		receipts:    deps.Receipts,
		publisher:   deps.Publisher,
		institute:   deps.Institute,
		validate:    validator.New(),
		rateLimiter: newRateLimiter(),
		metrics:     &securityMetrics{},
		structLog:   applog.NewStructuredLogger(applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)),
	}

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Tiny cache for static assets
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/students", s.withSecurityHeaders(s.handleCreateStudent))
	mux.HandleFunc("/students/update", s.withSecurityHeaders(s.handleUpdateStudent))
	mux.HandleFunc("/students/delete", s.withSecurityHeaders(s.handleDeleteStudent))
	mux.HandleFunc("/payments", s.withSecurityHeaders(s.handleCreatePayment))
	mux.HandleFunc("/receipts", s.withSecurityHeaders(s.handleReceipt))

	// UI partials
	mux.HandleFunc("/ui/month-overview", s.withSecurityHeaders(s.handleMonthOverview))
	mux.HandleFunc("/ui/students", s.withSecurityHeaders(s.handleStudentsTable))
	mux.HandleFunc("/ui/payments", s.withSecurityHeaders(s.handlePaymentHistory))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
