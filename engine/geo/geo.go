// Package geo maintains a lightweight location graph in Neo4j: places,
// district membership, and NEAR edges between places in the same district.
// The chat orchestrator uses it to enrich prompts with nearby context;
// nothing else depends on it.
package geo

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/MarhabaAI/marhaba-mvp/pkg/repo"
)

// Place is a node in the location graph.
type Place struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	District string `json:"district,omitempty"`
	Category string `json:"category,omitempty"`
}

// rows is the minimal interface needed from a neo4j result.
type rows interface {
	Next(ctx context.Context) bool
	Record() *neo4j.Record
}

// runner is the minimal interface needed from a neo4j session.
type runner interface {
	Run(ctx context.Context, cypher string, params map[string]any) (rows, error)
	Close(ctx context.Context) error
}

type sessionAdapter struct {
	sess neo4j.SessionWithContext
}

func (a *sessionAdapter) Run(ctx context.Context, cypher string, params map[string]any) (rows, error) {
	return a.sess.Run(ctx, cypher, params)
}

func (a *sessionAdapter) Close(ctx context.Context) error {
	return a.sess.Close(ctx)
}

// Store provides graph operations on top of the generic Neo4j repository.
type Store struct {
	driver     neo4j.DriverWithContext
	places     *repo.Neo4jRepo[Place, string]
	newSession func(ctx context.Context) runner // test seam
}

// New creates a Store.
func New(driver neo4j.DriverWithContext) *Store {
	return &Store{
		driver: driver,
		places: repo.NewNeo4jRepo[Place, string](driver, "Place", placeToMap, placeFromRecord),
	}
}

func (s *Store) session(ctx context.Context) runner {
	if s.newSession != nil {
		return s.newSession(ctx)
	}
	return &sessionAdapter{sess: s.driver.NewSession(ctx, neo4j.SessionConfig{})}
}

// SavePlace creates or updates a place node.
func (s *Store) SavePlace(ctx context.Context, p Place) error {
	return s.places.Save(ctx, p)
}

// LinkDistrict connects a place to every other place in its district with
// NEAR edges in both directions. A place without a district links nothing.
func (s *Store) LinkDistrict(ctx context.Context, placeID string) error {
	sess := s.session(ctx)
	defer sess.Close(ctx)

	cypher := `MATCH (a:Place {id: $id}), (b:Place)
		WHERE a.district <> '' AND b.district = a.district AND b.id <> a.id
		MERGE (a)-[:NEAR]->(b)
		MERGE (b)-[:NEAR]->(a)`
	_, err := sess.Run(ctx, cypher, map[string]any{"id": placeID})
	return err
}

// Neighbors returns places within the given traversal depth of a place.
func (s *Store) Neighbors(ctx context.Context, placeID string, depth int) ([]Place, error) {
	if depth <= 0 {
		depth = 1
	}
	sess := s.session(ctx)
	defer sess.Close(ctx)

	cypher := fmt.Sprintf(
		`MATCH (start:Place {id: $id})-[:NEAR*1..%d]-(n:Place)
		 WHERE n.id <> $id
		 RETURN DISTINCT n`, depth)
	result, err := sess.Run(ctx, cypher, map[string]any{"id": placeID})
	if err != nil {
		return nil, err
	}
	return collectPlaces(ctx, result)
}

// MentionedIn returns places whose name appears, case-insensitively, inside
// the given text. The containment runs text-contains-name, so a chat message
// like "tell me about the gold souk" matches the "Gold Souk" node.
func (s *Store) MentionedIn(ctx context.Context, text string) ([]Place, error) {
	sess := s.session(ctx)
	defer sess.Close(ctx)

	cypher := `MATCH (n:Place) WHERE n.name <> '' AND toLower($text) CONTAINS toLower(n.name) RETURN n`
	result, err := sess.Run(ctx, cypher, map[string]any{"text": text})
	if err != nil {
		return nil, err
	}
	return collectPlaces(ctx, result)
}

func placeToMap(p Place) map[string]any {
	return map[string]any{
		"id":       p.ID,
		"name":     p.Name,
		"district": p.District,
		"category": p.Category,
	}
}

func placeFromRecord(rec *neo4j.Record) (Place, error) {
	v, ok := rec.Get("n")
	if !ok {
		return Place{}, fmt.Errorf("geo: record has no node")
	}
	node, ok := v.(dbtype.Node)
	if !ok {
		return Place{}, fmt.Errorf("geo: record value is not a node")
	}
	return placeFromProps(node.Props), nil
}

func placeFromProps(props map[string]any) Place {
	p := Place{}
	if s, ok := props["id"].(string); ok {
		p.ID = s
	}
	if s, ok := props["name"].(string); ok {
		p.Name = s
	}
	if s, ok := props["district"].(string); ok {
		p.District = s
	}
	if s, ok := props["category"].(string); ok {
		p.Category = s
	}
	return p
}

func collectPlaces(ctx context.Context, result rows) ([]Place, error) {
	var places []Place
	for result.Next(ctx) {
		p, err := placeFromRecord(result.Record())
		if err != nil {
			return nil, err
		}
		places = append(places, p)
	}
	return places, nil
}
