// Package semantic owns all Qdrant operations for the location index.
package semantic

import (
	"context"
	"errors"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/MarhabaAI/marhaba-mvp/engine/domain"
)

// ErrDimensionMismatch means a vector's length differs from the collection
// dimension. This is a logic error, never folded into the fallback path.
var ErrDimensionMismatch = errors.New("semantic: embedding dimension mismatch")

// VectorStore is the sole owner of all Qdrant operations.
type VectorStore struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
	dims        int
}

// New creates a VectorStore connected to Qdrant at the given gRPC address.
// dims is the fixed embedding dimension for the collection.
func New(addr, collection string, dims int) (*VectorStore, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("semantic: dial qdrant %s: %w", addr, err)
	}
	return &VectorStore{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
		dims:        dims,
	}, nil
}

// Close closes the underlying gRPC connection.
func (v *VectorStore) Close() error {
	return v.conn.Close()
}

// Dims returns the fixed embedding dimension of the collection.
func (v *VectorStore) Dims() int { return v.dims }

// EnsureCollection creates the collection if it doesn't exist.
func (v *VectorStore) EnsureCollection(ctx context.Context) error {
	list, err := v.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("semantic: list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == v.collection {
			return nil
		}
	}

	_, err = v.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: v.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(v.dims),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("semantic: create collection %s: %w", v.collection, err)
	}
	return nil
}

// Upsert stores location records. Re-ingestion replaces by point ID.
func (v *VectorStore) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, len(records))
	for i, r := range records {
		if len(r.Embedding) != v.dims {
			return fmt.Errorf("%w: record %s has %d, collection wants %d",
				ErrDimensionMismatch, r.ID, len(r.Embedding), v.dims)
		}
		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: r.ID},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: r.Embedding},
				},
			},
			Payload: locationPayload(r.Location),
		}
	}

	wait := true
	_, err := v.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: v.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("semantic: upsert %d points: %w", len(records), err)
	}
	return nil
}

// Delete removes a location point by ID.
func (v *VectorStore) Delete(ctx context.Context, id string) error {
	wait := true
	_, err := v.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: v.collection,
		Wait:           &wait,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{
					Ids: []*pb.PointId{{PointIdOptions: &pb.PointId_Uuid{Uuid: id}}},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("semantic: delete point %s: %w", id, err)
	}
	return nil
}

// Search performs k-NN similarity search with optional exact-match payload
// conditions. Price-range filtering happens in the retrieval orchestrator
// since Qdrant keyword conditions only cover equality here.
func (v *VectorStore) Search(ctx context.Context, embedding []float32, topK int, filters *domain.SearchFilters) ([]Hit, error) {
	if len(embedding) != v.dims {
		return nil, fmt.Errorf("%w: query has %d, collection wants %d",
			ErrDimensionMismatch, len(embedding), v.dims)
	}

	req := &pb.SearchPoints{
		CollectionName: v.collection,
		Vector:         embedding,
		Limit:          uint64(topK),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	}
	if f := filterConditions(filters); len(f) > 0 {
		req.Filter = &pb.Filter{Must: f}
	}

	resp, err := v.points.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("semantic: search: %w", err)
	}

	hits := make([]Hit, len(resp.GetResult()))
	for i, r := range resp.GetResult() {
		hits[i] = Hit{
			ID:       r.GetId().GetUuid(),
			Score:    r.GetScore(),
			Location: locationFromPayload(r.GetId().GetUuid(), r.GetPayload()),
		}
	}
	return hits, nil
}

func filterConditions(f *domain.SearchFilters) []*pb.Condition {
	if f == nil {
		return nil
	}
	var must []*pb.Condition
	if f.Category != "" {
		must = append(must, keywordMatch("category", f.Category))
	}
	if f.IsHalal != nil {
		must = append(must, boolMatch("is_halal", *f.IsHalal))
	}
	if f.IsFamilyFriendly != nil {
		must = append(must, boolMatch("is_family_friendly", *f.IsFamilyFriendly))
	}
	return must
}

func keywordMatch(key, value string) *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key: key,
				Match: &pb.Match{
					MatchValue: &pb.Match_Keyword{Keyword: value},
				},
			},
		},
	}
}

func boolMatch(key string, value bool) *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key: key,
				Match: &pb.Match{
					MatchValue: &pb.Match_Boolean{Boolean: value},
				},
			},
		},
	}
}

func locationPayload(loc domain.Location) map[string]*pb.Value {
	tags := make([]*pb.Value, len(loc.Tags))
	for i, t := range loc.Tags {
		tags[i] = &pb.Value{Kind: &pb.Value_StringValue{StringValue: t}}
	}
	return map[string]*pb.Value{
		"name":               {Kind: &pb.Value_StringValue{StringValue: loc.Name}},
		"description":        {Kind: &pb.Value_StringValue{StringValue: loc.Description}},
		"category":           {Kind: &pb.Value_StringValue{StringValue: loc.Category}},
		"district":           {Kind: &pb.Value_StringValue{StringValue: loc.District}},
		"tags":               {Kind: &pb.Value_ListValue{ListValue: &pb.ListValue{Values: tags}}},
		"price_level":        {Kind: &pb.Value_IntegerValue{IntegerValue: int64(loc.PriceLevel)}},
		"is_halal":           {Kind: &pb.Value_BoolValue{BoolValue: loc.IsHalal}},
		"is_family_friendly": {Kind: &pb.Value_BoolValue{BoolValue: loc.IsFamilyFriendly}},
	}
}

func locationFromPayload(id string, payload map[string]*pb.Value) domain.Location {
	loc := domain.Location{ID: id}
	for k, val := range payload {
		switch k {
		case "name":
			loc.Name = val.GetStringValue()
		case "description":
			loc.Description = val.GetStringValue()
		case "category":
			loc.Category = val.GetStringValue()
		case "district":
			loc.District = val.GetStringValue()
		case "tags":
			for _, t := range val.GetListValue().GetValues() {
				loc.Tags = append(loc.Tags, t.GetStringValue())
			}
		case "price_level":
			loc.PriceLevel = int(val.GetIntegerValue())
		case "is_halal":
			loc.IsHalal = val.GetBoolValue()
		case "is_family_friendly":
			loc.IsFamilyFriendly = val.GetBoolValue()
		}
	}
	return loc
}
