// Package http exposes the ledger as a JSON API: transactions,
// summary, gamification, budgets, goals, advisor chat and accounts.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"thrifty/internal/auth"
	"thrifty/internal/log"
	"thrifty/internal/services"
)

type Server struct {
	http.Server

	ledger      *services.LedgerService
	authService *auth.Service
	rateLimiter *rateLimiter
	logger      *log.Logger

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server. authService may be nil; the account endpoints then answer 404
// and the rest of the API is open.
func NewServer(addr string, ledger *services.LedgerService, authService *auth.Service) *Server {
	mux := http.NewServeMux()
	logger := log.Default(log.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:      ledger,
		authService: authService,
		rateLimiter: newRateLimiter(60),
		logger:      logger,
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/api/transactions", s.withCommon(s.requireAuth(s.handleTransactions)))
	mux.HandleFunc("/api/transactions/", s.withCommon(s.requireAuth(s.handleTransactionByID)))
	mux.HandleFunc("/api/gamification", s.withCommon(s.requireAuth(s.handleGamification)))
	mux.HandleFunc("/api/advisor", s.withCommon(s.requireAuth(s.handleAdvisor)))
	mux.HandleFunc("/api/budgets", s.withCommon(s.requireAuth(s.handleBudgets)))
	mux.HandleFunc("/api/budgets/", s.withCommon(s.requireAuth(s.handleBudgetByID)))
	mux.HandleFunc("/api/goals", s.withCommon(s.requireAuth(s.handleGoals)))
	mux.HandleFunc("/api/goals/", s.withCommon(s.requireAuth(s.handleGoalByID)))

	mux.HandleFunc("/api/auth/register", s.withCommon(s.handleRegister))
	mux.HandleFunc("/api/auth/login", s.withCommon(s.handleLogin))
	mux.HandleFunc("/api/auth/me", s.withCommon(s.handleMe))

	return s
}

// withCommon adds request tracing, security headers and mutation rate
// limiting.
func (s *Server) withCommon(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ip := clientIP(r)

		requestID := generateRequestID()
		reqLogger := s.logger.With(log.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		ctx = context.WithValue(ctx, log.LoggerContextKey, reqLogger)
		r = r.WithContext(ctx)

		requests := log.NewStructuredLogger(reqLogger)
		requests.LogHTTPStart(ctx, r, ip)

		if isMutation(r.Method) && !s.rateLimiter.allow(ip) {
			reqLogger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, ip,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		requests.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), ip)
	}
}

// requireAuth enforces a valid bearer token when auth is configured.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	if s.authService == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
			return
		}
		if _, err := s.authService.Verify(token); err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid or expired token"})
			return
		}
		next(w, r)
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown stops the server and its background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
