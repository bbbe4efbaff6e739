package retrieval

import (
	"context"
	"log/slog"
)

// SafeEmbedder wraps an Embedder so provider failures degrade to a zero
// vector of the fixed dimension instead of an error. Similarity against a
// zero vector is uniformly low, which is acceptable degraded behaviour;
// downstream math stays well-defined.
type SafeEmbedder struct {
	inner  Embedder
	dims   int
	logger *slog.Logger
}

// NewSafeEmbedder wraps inner with zero-vector degradation.
func NewSafeEmbedder(inner Embedder, dims int, logger *slog.Logger) *SafeEmbedder {
	if logger == nil {
		logger = slog.Default()
	}
	return &SafeEmbedder{inner: inner, dims: dims, logger: logger}
}

// Embed never returns an error. On provider failure it returns a zero
// vector of the expected dimension.
func (e *SafeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		e.logger.Warn("embedding provider failed, returning zero vector", "err", err)
		return make([]float32, e.dims), nil
	}
	return vec, nil
}
