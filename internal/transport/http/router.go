package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"atelier/internal/audited"
	"atelier/internal/platform/middleware"
	"atelier/internal/ports"
	"atelier/internal/usecase"
	"atelier/internal/useradmin"
	dErrors "atelier/pkg/domain-errors"
	"atelier/pkg/platform/httputil"
	"atelier/pkg/platform/middleware/auth"
	"atelier/pkg/platform/middleware/metadata"
	"atelier/pkg/platform/middleware/requesttime"
	"atelier/pkg/requestcontext"
)

const defaultRequestTimeout = 30 * time.Second

// Handler is the thin HTTP layer over the use-cases. Every mutation runs
// inside one TxRunner call with audited repositories, so the write and its
// journal entry commit together.
type Handler struct {
	deps   usecase.Deps
	tx     ports.TxRunner
	admin  *useradmin.Service
	audit  ports.AuditSink
	logger *slog.Logger
}

type Option func(*Handler)

// WithAuditSink journals every successful mutation to sink.
func WithAuditSink(sink ports.AuditSink) Option {
	return func(h *Handler) { h.audit = sink }
}

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

func NewHandler(deps usecase.Deps, tx ports.TxRunner, admin *useradmin.Service, opts ...Option) *Handler {
	h := &Handler{deps: deps, tx: tx, admin: admin, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RouterConfig carries the cross-cutting pieces of the router.
type RouterConfig struct {
	// Validator authenticates bearer tokens. Nil leaves every request anonymous.
	Validator      auth.JWTValidator
	Observer       middleware.HTTPObserver
	MetricsHandler http.Handler
	Health         func(ctx context.Context) error
	RequestTimeout time.Duration
}

// NewRouter wires every public endpoint behind the shared middleware stack.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.Tracing)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.Logger(h.logger))
	r.Use(requesttime.Middleware)
	r.Use(middleware.Timeout(timeout))
	if cfg.Observer != nil {
		r.Use(middleware.LatencyMiddleware(cfg.Observer))
	}

	r.Get("/healthz", healthHandler(cfg.Health))
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		if cfg.Validator != nil {
			r.Use(auth.Authenticate(cfg.Validator, h.logger))
		}
		h.registerUsers(r)
		h.registerEvents(r)
		h.registerAdmin(r)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, dErrors.NotFound("route"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
	return r
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// requestDeps binds the dependency bundle to the request clock.
func (h *Handler) requestDeps(ctx context.Context) usecase.Deps {
	d := h.deps
	if d.Now == nil {
		now := requestcontext.Now(ctx)
		d.Now = func() time.Time { return now }
	}
	return d
}

// mutate runs fn in a transaction with repositories that journal action.
func (h *Handler) mutate(ctx context.Context, action string, fn func(ctx context.Context, d usecase.Deps) error) error {
	return h.tx.RunInTx(ctx, func(ctx context.Context) error {
		d := h.requestDeps(ctx)
		if h.audit != nil {
			d = audited.Wrap(d, h.audit, audited.Options{Action: action, Now: d.Now})
		}
		return fn(ctx, d)
	})
}

// writeError renders err and logs the failures callers cannot fix.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeTimeout:
		ctx := r.Context()
		h.logger.ErrorContext(ctx, "request failed",
			"error", err,
			"path", r.URL.Path,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	httputil.WriteError(w, err)
}
