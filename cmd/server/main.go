// Command server runs the shift-assignment solver's HTTP API: solve
// requests, the schedule workspace snapshot store, and health/metrics.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/paiban/paiban-core/internal/config"
	"github.com/paiban/paiban-core/internal/database"
	"github.com/paiban/paiban-core/internal/handler"
	"github.com/paiban/paiban-core/internal/metrics"
	"github.com/paiban/paiban-core/internal/proxy"
	"github.com/paiban/paiban-core/internal/state"
	"github.com/paiban/paiban-core/pkg/logger"
)

// Build metadata, injected via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{Level: cfg.App.LogLevel, Output: "stdout"})

	fmt.Printf("paiban-core solver v%s\n", Version)
	fmt.Printf("build: %s (%s)\n", BuildTime, GitCommit)

	db, err := database.New(&cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	stateStore := state.NewStore(db)
	ctx, cancelInit := context.WithTimeout(context.Background(), 10*time.Second)
	if err := stateStore.EnsureSchema(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to ensure app_state schema: %v\n", err)
		os.Exit(1)
	}
	cancelInit()

	solver := proxy.New(cfg.Solver)
	solveHandler := handler.NewSolveHandler(solver)
	stateHandler := handler.NewStateHandler(stateStore)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handler.Health)
	mux.HandleFunc("/solve", solveHandler.Solve)
	mux.HandleFunc("/solve/schedule", solveHandler.Solve)
	mux.HandleFunc("/state/schedule", stateHandler.Schedule)
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	rateLimiter := newRateLimiter(float64(cfg.API.RateLimit))

	// middleware order: requestID -> rateLimit -> cors -> logging -> mux
	rootHandler := requestIDMiddleware(rateLimiter.middleware(corsMiddleware(cfg.API.CORS, loggingMiddleware(mux))))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rootHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.LogEvent("info", "server.start",
			logger.F("port", cfg.App.Port),
			logger.F("version", Version),
			logger.F("env", cfg.App.Env),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.LogEvent("error", "server.start_failed", logger.F("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.LogEvent("info", "server.shutdown_start")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.LogEvent("error", "server.shutdown_failed", logger.F("error", err.Error()))
		os.Exit(1)
	}
	logger.LogEvent("info", "server.shutdown_done")
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDContextKey{}, requestID)))
	})
}

type requestIDContextKey struct{}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID, _ := r.Context().Value(requestIDContextKey{}).(string)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		logger.LogEvent("info", "http.request",
			logger.F("request_id", requestID),
			logger.F("method", r.Method),
			logger.F("path", r.URL.Path),
			logger.F("status", rw.statusCode),
			logger.F("duration_ms", duration.Milliseconds()),
		)
		metrics.RecordRequest(r.Method, r.URL.Path, rw.statusCode, duration)
	})
}

// rateLimiter is a simple token-bucket request limiter.
type rateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64
	lastRefill time.Time
	mu         sync.Mutex
}

func newRateLimiter(requestsPerSecond float64) *rateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 100
	}
	return &rateLimiter{
		tokens:     requestsPerSecond,
		maxTokens:  requestsPerSecond * 2,
		refillRate: requestsPerSecond,
		lastRefill: time.Now(),
	}
}

func (rl *rateLimiter) allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.tokens += elapsed * rl.refillRate
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":   true,
				"code":    "RATE_LIMITED",
				"message": "too many requests, retry shortly",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(cfg config.CORSConfig, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cfg.Enabled {
			origin := "*"
			if len(cfg.Origins) > 0 {
				origin = cfg.Origins[0]
			}
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-Id")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
