// Command ingest loads curated location JSON files into the vector index and
// then consumes the NATS ingest subject for documents published by the API.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/MarhabaAI/marhaba-mvp/engine/domain"
	"github.com/MarhabaAI/marhaba-mvp/engine/geo"
	"github.com/MarhabaAI/marhaba-mvp/engine/ingest"
	"github.com/MarhabaAI/marhaba-mvp/engine/semantic"
	"github.com/MarhabaAI/marhaba-mvp/pkg/gemini"
	"github.com/MarhabaAI/marhaba-mvp/pkg/metrics"
)

var met = metrics.New()

var (
	mLocationsTotal = met.Counter("marhaba_ingest_locations_total", "Locations ingested")
	mErrorsTotal    = met.Counter("marhaba_ingest_errors_total", "Ingestion errors")
	mFilesLoaded    = met.Counter("marhaba_ingest_files_total", "Seed files loaded")
)

func main() {
	var (
		seedDir    = flag.String("seed", "", "directory of location JSON files to load at startup")
		qdrantAddr = flag.String("qdrant", "localhost:6334", "Qdrant gRPC address")
		collection = flag.String("collection", "dubai_locations", "Qdrant collection name")
		natsURL    = flag.String("nats", "", "NATS URL (empty disables the subscriber)")
		neo4jURL   = flag.String("neo4j", "", "Neo4j bolt URL (empty disables graph mirroring)")
		neo4jUser  = flag.String("neo4j-user", "neo4j", "Neo4j username")
		neo4jPass  = flag.String("neo4j-pass", "password", "Neo4j password")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		logger.Error("GEMINI_API_KEY is required")
		os.Exit(1)
	}

	met.ServeAsync(9091)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := semantic.New(*qdrantAddr, *collection, gemini.EmbedDimensions)
	if err != nil {
		logger.Error("qdrant connect failed", "err", err)
		os.Exit(1)
	}
	defer store.Close()
	if err := store.EnsureCollection(ctx); err != nil {
		logger.Error("ensure collection failed", "err", err)
		os.Exit(1)
	}

	var places ingest.PlaceSaver
	if *neo4jURL != "" {
		driver, err := neo4j.NewDriverWithContext(*neo4jURL, neo4j.BasicAuth(*neo4jUser, *neo4jPass, ""))
		if err != nil {
			logger.Error("neo4j driver failed", "err", err)
			os.Exit(1)
		}
		defer driver.Close(ctx)
		places = geo.New(driver)
	}

	provider := gemini.New(apiKey)
	pipeline := ingest.New(provider, store, places, logger)

	if *seedDir != "" {
		loadSeedDir(ctx, pipeline, *seedDir, logger)
	}

	if *natsURL == "" {
		logger.Info("no NATS URL, exiting after seed load")
		return
	}

	nc, err := nats.Connect(*natsURL)
	if err != nil {
		logger.Error("nats connect failed", "err", err)
		os.Exit(1)
	}
	defer nc.Close()

	sub, err := pipeline.Subscribe(nc)
	if err != nil {
		logger.Error("subscribe failed", "err", err)
		os.Exit(1)
	}
	defer sub.Unsubscribe()

	logger.Info("ingest worker running", "subject", ingest.Subject)
	<-ctx.Done()
	logger.Info("shutdown signal received")
}

// loadSeedDir ingests every *.json file in dir. Each file holds either a
// single location object or an array of them.
func loadSeedDir(ctx context.Context, pipeline *ingest.Pipeline, dir string, logger *slog.Logger) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Error("read seed dir failed", "dir", dir, "err", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		locs, err := readLocations(path)
		if err != nil {
			logger.Error("seed file unreadable", "file", path, "err", err)
			mErrorsTotal.Inc()
			continue
		}

		ids, err := pipeline.IngestBatch(ctx, locs)
		if err != nil {
			logger.Error("seed batch failed", "file", path, "err", err)
			mErrorsTotal.Inc()
			continue
		}
		mFilesLoaded.Inc()
		mLocationsTotal.Add(int64(len(ids)))
		logger.Info("seed file ingested", "file", path, "locations", len(ids))
	}
}

func readLocations(path string) ([]domain.Location, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var many []domain.Location
	if err := json.Unmarshal(data, &many); err == nil {
		return many, nil
	}

	var one domain.Location
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, err
	}
	return []domain.Location{one}, nil
}
