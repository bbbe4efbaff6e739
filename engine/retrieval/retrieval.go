// Package retrieval orchestrates semantic location search. It embeds the
// query, searches the vector index, and degrades to keyword matching over an
// in-memory collection whenever the index is unconfigured or failing. The
// degraded path is a resilience boundary: Search never surfaces provider
// errors to the caller.
package retrieval

import (
	"context"
	"log/slog"
	"time"

	"github.com/MarhabaAI/marhaba-mvp/engine/domain"
	"github.com/MarhabaAI/marhaba-mvp/engine/semantic"
	"github.com/MarhabaAI/marhaba-mvp/pkg/fn"
)

// Ranked is a single search result, ordered by descending relevance.
type Ranked struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Score       float32  `json:"score"` // [0,1], higher is more similar
	Tags        []string `json:"tags,omitempty"`
}

// Embedder converts text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorSearcher abstracts the Qdrant index.
type VectorSearcher interface {
	Search(ctx context.Context, embedding []float32, topK int, filters *domain.SearchFilters) ([]semantic.Hit, error)
}

// Options configures the retrieval service.
type Options struct {
	SearchTimeout time.Duration
	// OnFallback, when set, is called once per search served by the
	// keyword fallback instead of the vector index.
	OnFallback func()
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{SearchTimeout: 5 * time.Second}
}

// Service is the retrieval orchestrator.
type Service struct {
	embed    Embedder
	index    VectorSearcher // nil when no index is configured
	fallback *Matcher
	opts     Options
	logger   *slog.Logger
}

// New creates a retrieval Service. index may be nil, in which case every
// search uses the fallback matcher.
func New(embed Embedder, index VectorSearcher, fallback *Matcher, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if fallback == nil {
		fallback = NewMatcher(nil)
	}
	return &Service{
		embed:    embed,
		index:    index,
		fallback: fallback,
		opts:     opts,
		logger:   logger,
	}
}

// Search returns at most q.Limit results ordered by descending score.
// Provider failures select the fallback path instead of propagating.
func (s *Service) Search(ctx context.Context, q domain.SearchQuery) []Ranked {
	r := s.vectorSearch(ctx, q)
	if r.IsErr() {
		_, err := r.Unwrap()
		s.logger.Warn("vector search unavailable, using keyword fallback", "err", err)
		if s.opts.OnFallback != nil {
			s.opts.OnFallback()
		}
		return s.fallback.Match(q.Text, q.Limit, q.Filters)
	}
	hits, _ := r.Unwrap()
	return s.rank(hits, q)
}

// vectorSearch runs embed + index query as a Result so the caller can
// pattern-match on failure.
func (s *Service) vectorSearch(ctx context.Context, q domain.SearchQuery) fn.Result[[]semantic.Hit] {
	if s.index == nil {
		return fn.Errf[[]semantic.Hit]("retrieval: no vector index configured")
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.SearchTimeout)
	defer cancel()

	embedding := fn.FromPair(s.embed.Embed(ctx, q.Text))
	if embedding.IsErr() {
		_, err := embedding.Unwrap()
		return fn.Errf[[]semantic.Hit]("retrieval: embed query: %w", err)
	}

	vec, _ := embedding.Unwrap()
	return fn.FromPair(s.index.Search(ctx, vec, q.Limit, q.Filters))
}

// rank converts index hits into the uniform result shape, applying the
// price-range part of the filter conjunction that the index cannot express.
func (s *Service) rank(hits []semantic.Hit, q domain.SearchQuery) []Ranked {
	out := make([]Ranked, 0, len(hits))
	for _, h := range hits {
		if !priceInRange(h.Location, q.Filters) {
			continue
		}
		out = append(out, Ranked{
			ID:          h.Location.ID,
			Name:        h.Location.Name,
			Description: h.Location.Description,
			Category:    h.Location.Category,
			Score:       h.Score,
			Tags:        h.Location.Tags,
		})
		if len(out) == q.Limit {
			break
		}
	}
	return out
}

func priceInRange(loc domain.Location, f *domain.SearchFilters) bool {
	if f == nil {
		return true
	}
	if f.MinPrice != 0 && loc.PriceLevel < f.MinPrice {
		return false
	}
	if f.MaxPrice != 0 && loc.PriceLevel > f.MaxPrice {
		return false
	}
	return true
}
