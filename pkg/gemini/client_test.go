package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "text-embedding-004:embedContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("api key header = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"embedding": map[string]any{"values": []float32{0.1, 0.2, 0.3}},
		})
	}))
	defer srv.Close()

	c := New("test-key", WithBaseURL(srv.URL))
	vec, err := c.Embed(context.Background(), "romantic sunset spots")
	if err != nil {
		t.Fatal(err)
	}
	if len(vec) != 3 || vec[0] != 0.1 {
		t.Errorf("vec = %v", vec)
	}
}

func TestEmbed_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New("k", WithBaseURL(srv.URL))
	if _, err := c.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error for empty embedding")
	}
}

func TestEmbed_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New("k", WithBaseURL(srv.URL))
	_, err := c.Embed(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("err = %v, want status 429 surfaced", err)
	}
}

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-2.0-flash-exp:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req generateRequest
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Contents) != 1 || req.Contents[0].Parts[0].Text != "hello" {
			t.Errorf("request body = %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": "hi there"}}}},
			},
		})
	}))
	defer srv.Close()

	c := New("k", WithBaseURL(srv.URL))
	got, err := c.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if got != "hi there" {
		t.Errorf("reply = %q", got)
	}
}

func TestGenerate_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := New("k", WithBaseURL(srv.URL))
	if _, err := c.Generate(context.Background(), "x"); err == nil {
		t.Fatal("expected error for empty candidates")
	}
}

func TestWithModels(t *testing.T) {
	c := New("k", WithModels("embed-x", "chat-y"))
	if c.embedModel != "embed-x" || c.chatModel != "chat-y" {
		t.Errorf("models = %q, %q", c.embedModel, c.chatModel)
	}
	c2 := New("k", WithModels("", ""))
	if c2.embedModel != DefaultEmbedModel || c2.chatModel != DefaultChatModel {
		t.Errorf("empty overrides must keep defaults")
	}
}
