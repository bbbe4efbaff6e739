package semantic

import "github.com/MarhabaAI/marhaba-mvp/engine/domain"

// Hit is a single vector search result. Score is the cosine similarity
// reported by Qdrant, already in [0,1] with higher meaning more similar.
type Hit struct {
	ID       string          `json:"id"`
	Score    float32         `json:"score"`
	Location domain.Location `json:"location"`
}

// Record is a single location vector to store.
type Record struct {
	ID        string
	Embedding []float32
	Location  domain.Location
}
