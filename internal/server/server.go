// Package server exposes the scoring engine, the conversational front-end
// and the gated audit history over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/mifid-advisor/internal/advisor"
	"github.com/sells-group/mifid-advisor/internal/audit"
	"github.com/sells-group/mifid-advisor/internal/config"
	"github.com/sells-group/mifid-advisor/internal/session"
)

// Chatter runs conversation turns.
type Chatter interface {
	Chat(ctx context.Context, sessionID, message string) (advisor.Reply, error)
	Model() string
}

// AuditLog is the audit trail as the server uses it.
type AuditLog interface {
	audit.Sink
	audit.Reader
}

// Options configures a Server.
type Options struct {
	Server    config.ServerConfig
	AccessKey string
	// LogSource names the audit backing store in /logs responses.
	LogSource string
}

// Server holds the HTTP dependencies.
type Server struct {
	opts     Options
	chat     Chatter
	sessions *session.Store
	audit    AuditLog
	now      func() time.Time

	limits map[string]*clientLimiter
}

// New creates a Server.
func New(opts Options, chat Chatter, sessions *session.Store, log AuditLog) *Server {
	rl := opts.Server.RateLimits
	return &Server{
		opts:     opts,
		chat:     chat,
		sessions: sessions,
		audit:    log,
		now:      time.Now,
		limits: map[string]*clientLimiter{
			"chat":      newClientLimiter("chat", rl.Chat),
			"calculate": newClientLimiter("calculate", rl.Calculate),
			"audit":     newClientLimiter("audit", rl.Audit),
			"logs":      newClientLimiter("logs", rl.Logs),
		},
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", AuditKeyHeader},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.With(s.limits["calculate"].middleware).Post("/calculate-profile", s.handleCalculateProfile)
	r.With(s.limits["chat"].middleware).Post("/chat/{sessionID}", s.handleChat)
	r.Get("/history/{sessionID}", s.handleHistory)
	r.Get("/sessions", s.handleSessions)
	r.Post("/webhook/voice", s.handleVoiceWebhook)

	r.Group(func(r chi.Router) {
		r.Use(requireKey(s.opts.AccessKey))
		r.With(s.limits["audit"].middleware).Get("/audit", s.handleAudit)
		r.With(s.limits["audit"].middleware).Get("/audit/profiles", s.handleAuditProfiles)
		r.With(s.limits["audit"].middleware).Get("/audit/latest-profile", s.handleLatestProfile)
		r.With(s.limits["logs"].middleware).Get("/logs", s.handleLogs)
	})

	return r
}

// ListenAndServe serves on the given port until ctx is cancelled, then
// drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zap.L().Error("server shutdown", zap.Error(err))
		}
	}()

	zap.L().Info("starting server", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "server: listen")
	}
	return nil
}
