// Package ingest processes curated location documents into the vector index
// and the location graph. Documents arrive over NATS or from local JSON
// files; each runs through validate, embed, and upsert stages.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/MarhabaAI/marhaba-mvp/engine/domain"
	"github.com/MarhabaAI/marhaba-mvp/engine/geo"
	"github.com/MarhabaAI/marhaba-mvp/engine/retrieval"
	"github.com/MarhabaAI/marhaba-mvp/engine/semantic"
	"github.com/MarhabaAI/marhaba-mvp/pkg/fn"
	"github.com/MarhabaAI/marhaba-mvp/pkg/natsutil"
)

const (
	// Subject is the NATS subject for incoming location documents.
	Subject = "tourism.locations.ingest"
	// DLQSubject receives documents that exhausted their retries.
	DLQSubject = "tourism.locations.ingest.dlq"
	// MaxAttempts before a document goes to the DLQ.
	MaxAttempts = 3
	// EmbedWorkers bounds concurrent embedding calls for batch ingestion.
	EmbedWorkers = 4
)

// ErrInvalidLocation marks documents that fail the ingestion gate.
var ErrInvalidLocation = errors.New("ingest: invalid location")

// Document wraps a location with its delivery attempt count.
type Document struct {
	Location domain.Location `json:"location"`
	Attempt  int             `json:"attempt"`
}

// Upserter is the slice of the vector store the pipeline needs.
type Upserter interface {
	Upsert(ctx context.Context, records []semantic.Record) error
}

// PlaceSaver optionally mirrors locations into the graph.
type PlaceSaver interface {
	SavePlace(ctx context.Context, p geo.Place) error
	LinkDistrict(ctx context.Context, placeID string) error
}

// Pipeline ingests location documents.
type Pipeline struct {
	embed  retrieval.Embedder
	store  Upserter
	places PlaceSaver // nil disables graph mirroring
	logger *slog.Logger

	run fn.Stage[domain.Location, semantic.Record]
}

// New creates an ingestion Pipeline.
func New(embed retrieval.Embedder, store Upserter, places PlaceSaver, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{embed: embed, store: store, places: places, logger: logger}
	p.run = fn.Then(
		fn.TracedStage("ingest.validate", validateStage),
		fn.TracedStage("ingest.embed", p.embedStage),
	)
	return p
}

// validateStage gates documents and mints IDs for new locations.
var validateStage fn.Stage[domain.Location, domain.Location] = func(_ context.Context, loc domain.Location) fn.Result[domain.Location] {
	if strings.TrimSpace(loc.Name) == "" || strings.TrimSpace(loc.Description) == "" {
		return fn.Errf[domain.Location]("%w: name and description are required", ErrInvalidLocation)
	}
	if loc.ID == "" {
		loc.ID = uuid.NewString()
	}
	return fn.Ok(loc)
}

// embedStage turns a location into a vector record.
func (p *Pipeline) embedStage(ctx context.Context, loc domain.Location) fn.Result[semantic.Record] {
	vec, err := p.embed.Embed(ctx, domain.SearchableText(loc))
	if err != nil {
		return fn.Errf[semantic.Record]("ingest: embed %s: %w", loc.ID, err)
	}
	return fn.Ok(semantic.Record{ID: loc.ID, Embedding: vec, Location: loc})
}

// Ingest processes a single location end to end and returns its point ID.
func (p *Pipeline) Ingest(ctx context.Context, loc domain.Location) (string, error) {
	rec, err := p.run(ctx, loc).Unwrap()
	if err != nil {
		return "", err
	}
	if err := p.store.Upsert(ctx, []semantic.Record{rec}); err != nil {
		return "", fmt.Errorf("ingest: upsert %s: %w", rec.ID, err)
	}
	p.mirrorPlace(ctx, rec.Location)
	p.logger.Info("location ingested", "id", rec.ID, "name", rec.Location.Name)
	return rec.ID, nil
}

// IngestBatch processes locations with bounded embedding concurrency and a
// single upsert. It fails as a unit: one bad document fails the batch.
func (p *Pipeline) IngestBatch(ctx context.Context, locs []domain.Location) ([]string, error) {
	batch := fn.BatchStage(EmbedWorkers, p.run)
	records, err := batch(ctx, locs).Unwrap()
	if err != nil {
		return nil, err
	}
	if err := p.store.Upsert(ctx, records); err != nil {
		return nil, fmt.Errorf("ingest: upsert batch of %d: %w", len(records), err)
	}
	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
		p.mirrorPlace(ctx, rec.Location)
	}
	return ids, nil
}

// mirrorPlace writes the location into the graph and links it to the rest
// of its district; failures are logged only, the graph is enrichment data,
// not the source of truth.
func (p *Pipeline) mirrorPlace(ctx context.Context, loc domain.Location) {
	if p.places == nil {
		return
	}
	err := p.places.SavePlace(ctx, geo.Place{
		ID:       loc.ID,
		Name:     loc.Name,
		District: loc.District,
		Category: loc.Category,
	})
	if err != nil {
		p.logger.Warn("graph mirror failed", "id", loc.ID, "err", err)
		return
	}
	if loc.District == "" {
		return
	}
	if err := p.places.LinkDistrict(ctx, loc.ID); err != nil {
		p.logger.Warn("district link failed", "id", loc.ID, "err", err)
	}
}

// PublishLocation sends a location document to the ingest subject.
func PublishLocation(ctx context.Context, nc *nats.Conn, loc domain.Location) error {
	return natsutil.Publish(ctx, nc, Subject, Document{Location: loc})
}

// Subscribe consumes documents from the ingest subject. Failed documents are
// republished with an incremented attempt count until MaxAttempts, then sent
// to the DLQ.
func (p *Pipeline) Subscribe(nc *nats.Conn) (*nats.Subscription, error) {
	return natsutil.Subscribe(nc, Subject, func(ctx context.Context, doc Document) {
		if _, err := p.Ingest(ctx, doc.Location); err != nil {
			doc.Attempt++
			if doc.Attempt >= MaxAttempts {
				p.logger.Error("document exhausted retries, sending to DLQ",
					"name", doc.Location.Name, "err", err)
				if pubErr := natsutil.Publish(ctx, nc, DLQSubject, doc); pubErr != nil {
					p.logger.Error("DLQ publish failed", "err", pubErr)
				}
				return
			}
			p.logger.Warn("ingest failed, requeueing", "attempt", doc.Attempt, "err", err)
			if pubErr := natsutil.Publish(ctx, nc, Subject, doc); pubErr != nil {
				p.logger.Error("requeue publish failed", "err", pubErr)
			}
		}
	})
}
