// Package main implements the Marhaba tourism-assistant API server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/MarhabaAI/marhaba-mvp/engine/chat"
	"github.com/MarhabaAI/marhaba-mvp/engine/domain"
	"github.com/MarhabaAI/marhaba-mvp/engine/geo"
	"github.com/MarhabaAI/marhaba-mvp/engine/ingest"
	"github.com/MarhabaAI/marhaba-mvp/engine/retrieval"
	"github.com/MarhabaAI/marhaba-mvp/engine/safety"
	"github.com/MarhabaAI/marhaba-mvp/engine/semantic"
	"github.com/MarhabaAI/marhaba-mvp/pkg/gemini"
	"github.com/MarhabaAI/marhaba-mvp/pkg/metrics"
	"github.com/MarhabaAI/marhaba-mvp/pkg/mid"
	"github.com/MarhabaAI/marhaba-mvp/pkg/resilience"
)

// Config holds all environment-based configuration.
type Config struct {
	Port         string
	MetricsPort  int
	GeminiAPIKey string
	QdrantURL    string // empty disables the vector index
	Collection   string
	Neo4jURL     string // empty disables graph enrichment
	Neo4jUser    string
	Neo4jPass    string
	NATSURL      string // empty disables the ingest subject
	CORSOrigin   string
}

func loadConfig() Config {
	return Config{
		Port:         envOr("PORT", "8000"),
		MetricsPort:  9090,
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		QdrantURL:    os.Getenv("QDRANT_URL"),
		Collection:   envOr("QDRANT_COLLECTION", "dubai_locations"),
		Neo4jURL:     os.Getenv("NEO4J_URL"),
		Neo4jUser:    envOr("NEO4J_USER", "neo4j"),
		Neo4jPass:    envOr("NEO4J_PASS", "password"),
		NATSURL:      os.Getenv("NATS_URL"),
		CORSOrigin:   envOr("CORS_ORIGIN", "http://localhost:3000"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var met = metrics.New()

var (
	mSearchTotal    = met.Counter("marhaba_search_total", "Search requests")
	mSearchFallback = met.Counter("marhaba_search_fallback_total", "Searches served by the keyword fallback")
	mChatTotal      = met.Counter("marhaba_chat_total", "Chat requests")
	mSafetyTotal    = func(level string) *metrics.Counter {
		return met.Counter(metrics.WithLabels("marhaba_safety_total", "risk_level", level), "Safety checks by resulting level")
	}
	mRequestDur = met.Histogram("marhaba_request_duration_seconds", "Handler latency", nil)
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()
	if cfg.GeminiAPIKey == "" {
		logger.Error("GEMINI_API_KEY is required")
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	met.ServeAsync(cfg.MetricsPort)

	// --- Gemini provider ---
	provider := gemini.New(cfg.GeminiAPIKey)
	gen := &guardedGenerator{
		inner:   provider,
		breaker: resilience.NewBreaker(resilience.DefaultBreakerOpts),
	}

	// --- Vector index (optional) ---
	var index retrieval.VectorSearcher
	var store *semantic.VectorStore
	if cfg.QdrantURL != "" {
		var err error
		store, err = semantic.New(cfg.QdrantURL, cfg.Collection, gemini.EmbedDimensions)
		if err != nil {
			return fmt.Errorf("qdrant connect: %w", err)
		}
		defer store.Close()
		if err := store.EnsureCollection(ctx); err != nil {
			return fmt.Errorf("qdrant collection: %w", err)
		}
		index = store
	} else {
		logger.Warn("no QDRANT_URL configured, search runs on the keyword fallback only")
	}

	// --- Location graph (optional) ---
	var places *geo.Store
	if cfg.Neo4jURL != "" {
		driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURL, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPass, ""))
		if err != nil {
			return fmt.Errorf("neo4j driver: %w", err)
		}
		defer driver.Close(ctx)
		places = geo.New(driver)
	}

	// --- Services ---
	matcher := retrieval.NewMatcher(retrieval.SeedLocations)
	embedder := retrieval.NewSafeEmbedder(provider, gemini.EmbedDimensions, logger)
	searchOpts := retrieval.DefaultOptions()
	searchOpts.OnFallback = mSearchFallback.Inc
	searchSvc := retrieval.New(embedder, index, matcher, searchOpts, logger)

	var enricher chat.PlaceEnricher
	if places != nil {
		enricher = places
	}
	chatSvc := chat.New(gen, enricher, logger)
	safetySvc := safety.New(gen, logger)

	// --- NATS ingest subject (optional) ---
	var nc *nats.Conn
	if cfg.NATSURL != "" {
		var err error
		nc, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("nats connect: %w", err)
		}
		defer nc.Close()
	}

	// --- HTTP server ---
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.Handle("POST /api/chat", protected(handleChat(chatSvc)))
	mux.Handle("POST /api/search", protected(handleSearch(searchSvc)))
	mux.Handle("POST /api/safety", protected(handleSafety(safetySvc)))
	if nc != nil {
		mux.Handle("POST /api/locations", protected(handleAddLocation(nc, logger)))
	}

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.Logger(logger),
		mid.CORS(cfg.CORSOrigin),
		mid.OTel("marhaba-api"),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// protected applies the identity middleware to a single route.
func protected(h http.Handler) http.Handler {
	return mid.RequireUser()(h)
}

// guardedGenerator routes generation calls through a circuit breaker.
type guardedGenerator struct {
	inner   *gemini.Client
	breaker *resilience.Breaker
}

func (g *guardedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	var out string
	err := g.breaker.Call(ctx, func(ctx context.Context) error {
		var err error
		out, err = g.inner.Generate(ctx, prompt)
		return err
	})
	return out, err
}

// --- Handlers ---

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "marhaba-api"})
}

// ChatRequest is the JSON body for POST /api/chat.
type ChatRequest struct {
	Message string            `json:"message"`
	History []domain.ChatTurn `json:"history,omitempty"`
}

// ChatResponse is the JSON response for POST /api/chat.
type ChatResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

func handleChat(svc *chat.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer mRequestDur.Since(time.Now())
		mChatTotal.Inc()

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, ChatResponse{Error: "invalid request body"})
			return
		}
		if err := domain.ValidateChat(req.Message, req.History); err != nil {
			writeJSON(w, http.StatusBadRequest, ChatResponse{Error: err.Error()})
			return
		}

		reply := svc.Reply(r.Context(), req.Message, req.History)
		writeJSON(w, http.StatusOK, ChatResponse{Success: true, Response: reply})
	}
}

// SearchRequest is the JSON body for POST /api/search.
type SearchRequest struct {
	Query   string                `json:"query"`
	Limit   int                   `json:"limit,omitempty"`
	Filters *domain.SearchFilters `json:"filters,omitempty"`
}

// SearchResponse is the JSON response for POST /api/search.
type SearchResponse struct {
	Success bool               `json:"success"`
	Results []retrieval.Ranked `json:"results"`
	Count   int                `json:"count"`
	Error   string             `json:"error,omitempty"`
}

func handleSearch(svc *retrieval.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer mRequestDur.Since(time.Now())
		mSearchTotal.Inc()

		var req SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, SearchResponse{Error: "invalid request body"})
			return
		}

		q := domain.SearchQuery{
			Text:    req.Query,
			Limit:   req.Limit,
			Filters: req.Filters,
			UserID:  mid.UserID(r.Context()),
		}
		if err := domain.ValidateSearchQuery(&q); err != nil {
			writeJSON(w, http.StatusBadRequest, SearchResponse{Error: err.Error()})
			return
		}

		results := svc.Search(r.Context(), q)
		writeJSON(w, http.StatusOK, SearchResponse{
			Success: true,
			Results: results,
			Count:   len(results),
		})
	}
}

// SafetyRequest is the JSON body for POST /api/safety.
type SafetyRequest struct {
	LocationName string             `json:"location_name"`
	Coordinates  domain.Coordinates `json:"coordinates"`
	TimeOfDay    domain.TimeOfDay   `json:"time_of_day"`
}

// SafetyResponse is the JSON response for POST /api/safety.
type SafetyResponse struct {
	Success         bool             `json:"success"`
	RiskScore       int              `json:"risk_score"`
	RiskLevel       domain.RiskLevel `json:"risk_level,omitempty"`
	Analysis        string           `json:"analysis,omitempty"`
	Recommendations []string         `json:"recommendations,omitempty"`
	Location        string           `json:"location,omitempty"`
	TimeOfDay       domain.TimeOfDay `json:"time_of_day,omitempty"`
	Error           string           `json:"error,omitempty"`
}

func handleSafety(svc *safety.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer mRequestDur.Since(time.Now())

		var req SafetyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, SafetyResponse{Error: "invalid request body"})
			return
		}

		dreq := domain.SafetyRequest{
			LocationName: req.LocationName,
			Coordinates:  req.Coordinates,
			TimeOfDay:    req.TimeOfDay,
			UserID:       mid.UserID(r.Context()),
		}
		if err := domain.ValidateSafetyRequest(dreq); err != nil {
			writeJSON(w, http.StatusBadRequest, SafetyResponse{Error: err.Error()})
			return
		}

		assessment := svc.Assess(r.Context(), dreq)
		mSafetyTotal(string(assessment.RiskLevel)).Inc()
		writeJSON(w, http.StatusOK, SafetyResponse{
			Success:         true,
			RiskScore:       assessment.RiskScore,
			RiskLevel:       assessment.RiskLevel,
			Analysis:        assessment.Analysis,
			Recommendations: assessment.Recommendations,
			Location:        assessment.Location,
			TimeOfDay:       assessment.TimeOfDay,
		})
	}
}

// AddLocationResponse is the JSON response for POST /api/locations.
type AddLocationResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// handleAddLocation publishes a location document to the ingest subject;
// the ingest worker picks it up asynchronously.
func handleAddLocation(nc *nats.Conn, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var loc domain.Location
		if err := json.NewDecoder(r.Body).Decode(&loc); err != nil {
			writeJSON(w, http.StatusBadRequest, AddLocationResponse{Error: "invalid request body"})
			return
		}

		if err := ingest.PublishLocation(r.Context(), nc, loc); err != nil {
			logger.Error("location publish failed", "err", err)
			writeJSON(w, http.StatusServiceUnavailable, AddLocationResponse{Error: "ingest unavailable"})
			return
		}
		writeJSON(w, http.StatusAccepted, AddLocationResponse{Success: true})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
