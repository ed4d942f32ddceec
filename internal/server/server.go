// Package server exposes the link engine over HTTP: beacon ingestion,
// recommendation queries, and the authenticated reporting snapshot.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aitools-hub/link-engine/internal/server/middleware"
	"github.com/aitools-hub/link-engine/internal/server/ratelimit"
	"github.com/aitools-hub/link-engine/internal/tracker"
)

const (
	readTimeout     = 10 * time.Second
	writeTimeout    = 30 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 15 * time.Second

	maxBeaconBodyBytes = 1 << 20 // click/engagement payloads
	maxPageBodyBytes   = 4 << 20 // rendered page HTML for audits
)

// Server is the HTTP front end over the in-memory link store.
type Server struct {
	store              *tracker.Store
	jwtService         *JWTService
	limiter            *ratelimit.Limiter
	maxRecommendations int
	port               string
	httpServer         *http.Server
}

// New creates a server. jwtService may be nil, in which case the
// snapshot endpoint is disabled.
func New(store *tracker.Store, jwtService *JWTService, maxRecommendations int, port string) *Server {
	s := &Server{
		store:              store,
		jwtService:         jwtService,
		limiter:            ratelimit.NewLimiter(ratelimit.LoadConfig()),
		maxRecommendations: maxRecommendations,
		port:               port,
	}
	s.httpServer = &http.Server{
		Addr:         ":" + port,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
	return s
}

// Handler builds the route table wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /events/click", s.handleClickEvent)
	mux.HandleFunc("POST /events/page", s.handlePageAudit)
	mux.HandleFunc("POST /links/engagement", s.handleEngagement)
	mux.HandleFunc("POST /links/recommendations", s.handleRecommendations)
	mux.HandleFunc("GET /links/anchors", s.handleAnchors)

	if s.jwtService != nil {
		mux.Handle("GET /snapshot", middleware.RequireAuth(s.jwtService, http.HandlerFunc(s.handleSnapshot)))
	}

	return s.withRateLimit(s.withLogging(s.withCORS(mux)))
}

// Start runs the server until SIGINT/SIGTERM, then shuts down
// gracefully.
func (s *Server) Start() error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[server] listening on :%s", s.port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		log.Printf("[server] received %v, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.limiter.Stop()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Printf("[server] stopped")
	return nil
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := s.limiter.Allow(r)
		if info.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		}
		if !info.Allowed {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())+1))
			errorResponse(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[server] %s %s %d %v", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func jsonResponse(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[server] encoding response: %v", err)
	}
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}
