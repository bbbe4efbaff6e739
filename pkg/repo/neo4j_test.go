package repo

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
)

type testCity struct {
	ID   string
	Name string
}

func cityToMap(c testCity) map[string]any {
	return map[string]any{"id": c.ID, "name": c.Name}
}

func cityFromRecord(rec *neo4j.Record) (testCity, error) {
	node, ok := rec.Values[0].(neo4j.Node)
	if !ok {
		return testCity{}, errors.New("record value is not a node")
	}
	id, _ := node.Props["id"].(string)
	name, _ := node.Props["name"].(string)
	return testCity{ID: id, Name: name}, nil
}

// fakeResult replays canned records.
type fakeResult struct {
	records []*neo4j.Record
	idx     int
}

func (f *fakeResult) Next(context.Context) bool {
	if f.idx >= len(f.records) {
		return false
	}
	f.idx++
	return true
}

func (f *fakeResult) Record() *neo4j.Record { return f.records[f.idx-1] }

// fakeRunner records executed cypher and returns canned results.
type fakeRunner struct {
	cypher  []string
	params  []map[string]any
	results []*fakeResult
	runErr  error
	closed  bool
}

func (f *fakeRunner) Run(_ context.Context, cypher string, params map[string]any) (result, error) {
	f.cypher = append(f.cypher, cypher)
	f.params = append(f.params, params)
	if f.runErr != nil {
		return nil, f.runErr
	}
	if len(f.results) == 0 {
		return &fakeResult{}, nil
	}
	res := f.results[0]
	f.results = f.results[1:]
	return res, nil
}

func (f *fakeRunner) Close(context.Context) error {
	f.closed = true
	return nil
}

func cityRecord(id, name string) *neo4j.Record {
	return &db.Record{
		Values: []any{neo4j.Node{Props: map[string]any{"id": id, "name": name}}},
		Keys:   []string{"n"},
	}
}

func newTestRepo(r *fakeRunner) *Neo4jRepo[testCity, string] {
	repo := NewNeo4jRepo[testCity, string](nil, "City", cityToMap, cityFromRecord)
	repo.newSession = func(context.Context) runner { return r }
	return repo
}

func TestNeo4jRepo_Get(t *testing.T) {
	runner := &fakeRunner{results: []*fakeResult{{records: []*neo4j.Record{cityRecord("c1", "Deira")}}}}
	repo := newTestRepo(runner)

	got, err := repo.Get(context.Background(), "c1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Deira" {
		t.Errorf("Name = %q", got.Name)
	}
	if !strings.Contains(runner.cypher[0], "MATCH (n:City {id: $id})") {
		t.Errorf("cypher = %q", runner.cypher[0])
	}
	if !runner.closed {
		t.Error("session not closed")
	}
}

func TestNeo4jRepo_Get_NotFound(t *testing.T) {
	repo := newTestRepo(&fakeRunner{results: []*fakeResult{{}}})

	if _, err := repo.Get(context.Background(), "missing"); err == nil {
		t.Error("want error for missing node")
	}
}

func TestNeo4jRepo_List(t *testing.T) {
	runner := &fakeRunner{results: []*fakeResult{{records: []*neo4j.Record{
		cityRecord("c1", "Deira"),
		cityRecord("c2", "Marina"),
	}}}}
	repo := newTestRepo(runner)

	items, err := repo.List(context.Background(), ListOpts{Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[1].ID != "c2" {
		t.Errorf("items = %+v", items)
	}
	if runner.params[0]["limit"] != 10 {
		t.Errorf("limit param = %v", runner.params[0]["limit"])
	}
}

func TestNeo4jRepo_List_DefaultLimit(t *testing.T) {
	runner := &fakeRunner{results: []*fakeResult{{}}}
	repo := newTestRepo(runner)

	if _, err := repo.List(context.Background(), ListOpts{}); err != nil {
		t.Fatal(err)
	}
	if runner.params[0]["limit"] != 100 {
		t.Errorf("limit param = %v, want default 100", runner.params[0]["limit"])
	}
}

func TestNeo4jRepo_Save(t *testing.T) {
	runner := &fakeRunner{}
	repo := newTestRepo(runner)

	if err := repo.Save(context.Background(), testCity{ID: "c1", Name: "Deira"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(runner.cypher[0], "MERGE (n:City {id: $id})") {
		t.Errorf("cypher = %q", runner.cypher[0])
	}
	if runner.params[0]["id"] != "c1" {
		t.Errorf("id param = %v", runner.params[0]["id"])
	}
}

func TestNeo4jRepo_Delete(t *testing.T) {
	runner := &fakeRunner{}
	repo := newTestRepo(runner)

	if err := repo.Delete(context.Background(), "c1"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(runner.cypher[0], "DETACH DELETE n") {
		t.Errorf("cypher = %q", runner.cypher[0])
	}
}

func TestNeo4jRepo_RunError(t *testing.T) {
	wantErr := errors.New("connection refused")
	repo := newTestRepo(&fakeRunner{runErr: wantErr})

	if _, err := repo.Get(context.Background(), "c1"); !errors.Is(err, wantErr) {
		t.Errorf("Get err = %v", err)
	}
	if err := repo.Save(context.Background(), testCity{ID: "c1"}); !errors.Is(err, wantErr) {
		t.Errorf("Save err = %v", err)
	}
}
