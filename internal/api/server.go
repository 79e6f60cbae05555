// Package api exposes the edge HTTP surface: share cards, slug resolution,
// and the JSON API handlers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/salambumi/property-edge/internal/clock"
	"github.com/salambumi/property-edge/internal/config"
	"github.com/salambumi/property-edge/internal/metrics"
	"github.com/salambumi/property-edge/internal/ratelimit"
	"github.com/salambumi/property-edge/internal/sharecard"
	"github.com/salambumi/property-edge/internal/store"
)

// DescriptionGenerator drafts a listing description from a prompt.
type DescriptionGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Server wires HTTP handlers to the backing store, rate limiter and
// renderers. Route priority is explicit in NewServer: rate limit and
// observability middleware first, then /p/ share links, then the API
// subtree, and finally the slug fallthrough registered as chi's NotFound
// handler so unknown paths resolve to a listing or the SPA shell.
type Server struct {
	router    chi.Router
	store     store.Provider
	limiter   ratelimit.Limiter
	renderer  *sharecard.Renderer
	generator DescriptionGenerator
	clock     clock.Clock
	cfg       config.Config
	logger    *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	provider store.Provider,
	limiter ratelimit.Limiter,
	renderer *sharecard.Renderer,
	generator DescriptionGenerator,
	clk clock.Clock,
	cfg config.Config,
	logger *zap.Logger,
) *Server {
	s := &Server{
		store:     provider,
		limiter:   limiter,
		renderer:  renderer,
		generator: generator,
		clock:     clk,
		cfg:       cfg,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(s.rateLimitMiddleware)

	r.Get("/metrics", metrics.Handler().ServeHTTP)
	r.Get("/robots.txt", s.handleRobots)
	r.Get("/favicon.ico", s.handleFavicon)
	r.Get("/p/{code}", s.handlePropertyShare)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", "Authorization", "X-API-Key"},
			AllowCredentials: false,
			MaxAge:           86400,
		}))
		r.Get("/health", s.handleHealth)
		r.Post("/leads", s.handleLeadCapture)
		r.Get("/leads", s.handleListLeads)
		r.Post("/generate-description", s.handleGenerateDescription)
	})

	// Everything else is either an SEO slug or a client-side route.
	r.NotFound(s.handleFallthrough)

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// tierFor picks the rate-limit budget for a request, mirroring the route
// classes: /api/* is heavy, POST /upload is the upload budget, everything
// else is the default.
func tierFor(r *http.Request) ratelimit.Tier {
	switch {
	case strings.HasPrefix(r.URL.Path, "/api/"):
		return ratelimit.TierAPI
	case r.URL.Path == "/upload" && r.Method == http.MethodPost:
		return ratelimit.TierUpload
	default:
		return ratelimit.TierDefault
	}
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		tier := tierFor(r)
		key := clientIP(r) + ":" + r.URL.Path
		res := s.limiter.Allow(key, tier)
		if !res.Allowed {
			metrics.RateLimitRejected(string(tier))
			s.logger.Warn("rate limit exceeded",
				zap.String("key", key),
				zap.String("tier", string(tier)),
			)
			w.Header().Set("Retry-After", strconv.Itoa(res.RetryAfterSeconds))
			w.Header().Set("X-RateLimit-Remaining", "0")
			writeJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":      "Rate limit exceeded",
				"message":    "Terlalu banyak permintaan. Silakan coba lagi nanti.",
				"retryAfter": res.RetryAfterSeconds,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP prefers the edge-provided headers and falls back to the socket
// address.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// First hop in the chain is the client.
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "unknown"
	}
	return host
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		metrics.ObserveRequest(r.Method, ww.status, time.Since(start))
	})
}

// recoverMiddleware is the router boundary: nothing propagates to the
// runtime as a panic. The body mirrors the catch-all JSON error the SPA
// clients expect, timestamp and synthetic request ID included.
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered",
					zap.Any("error", rec),
					zap.String("path", r.URL.Path),
				)
				now := s.clock.Now()
				writeJSON(w, http.StatusInternalServerError, map[string]any{
					"error":     "Internal Server Error",
					"message":   "Terjadi kesalahan pada server. Tim kami telah diberitahu dan sedang memperbaikinya.",
					"timestamp": now.Format(time.RFC3339),
					"requestId": fmt.Sprintf("req_%d", now.UnixMilli()),
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type requestIDKey struct{}

type responseWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.written {
		return
	}
	rw.written = true
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.written = true
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// securityHeaders are attached to every HTML response the edge produces.
func securityHeaders(w http.ResponseWriter) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
}
