package gemini

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(serverURL string) *Client {
	c := NewClient("test-model", "test-key", 5*time.Second, nil)
	c.baseURL = serverURL

	return c
}

func TestClient_GenerateContent_Success(t *testing.T) {
	var gotPath, gotKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"ok\":true}"}]}}]}`))
	}))
	defer server.Close()

	text, err := newTestClient(server.URL).GenerateContent(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("GenerateContent returned error: %v", err)
	}

	if text != `{"ok":true}` {
		t.Errorf("text = %q", text)
	}

	if gotPath != "/models/test-model:generateContent" {
		t.Errorf("path = %q", gotPath)
	}

	if gotKey != "test-key" {
		t.Errorf("api key header = %q", gotKey)
	}
}

func TestClient_GenerateContent_Overloaded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GenerateContent(context.Background(), "prompt")
	if !errors.Is(err, ErrOverloaded) {
		t.Errorf("error = %v, want ErrOverloaded", err)
	}
}

func TestClient_GenerateContent_NonRetryableStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GenerateContent(context.Background(), "prompt")
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Errorf("error = %v, want ErrUnexpectedStatus", err)
	}

	if errors.Is(err, ErrOverloaded) {
		t.Error("429 must not be classified as transient overload")
	}
}

func TestClient_GenerateContent_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GenerateContent(context.Background(), "prompt")
	if !errors.Is(err, ErrMalformedOutput) {
		t.Errorf("error = %v, want ErrMalformedOutput", err)
	}
}
