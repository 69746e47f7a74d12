package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestFetchFile verifies local paths are read from disk.
func TestFetchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "programs.json")
	if err := os.WriteFile(path, []byte(`{"programs":[]}`), 0644); err != nil {
		t.Fatal(err)
	}
	data, err := NewFetcher(time.Second).Fetch(context.Background(), path)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != `{"programs":[]}` {
		t.Errorf("data = %s", data)
	}
}

// TestFetchMissingFile verifies a missing file is an error.
func TestFetchMissingFile(t *testing.T) {
	if _, err := NewFetcher(time.Second).Fetch(context.Background(), "/nonexistent/programs.json"); err == nil {
		t.Fatal("expected error")
	}
}

// TestFetchHTTP verifies remote sources are fetched with no-store caching.
func TestFetchHTTP(t *testing.T) {
	var gotCache string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCache = r.Header.Get("Cache-Control")
		w.Write([]byte(`{"exercises":[]}`))
	}))
	defer srv.Close()

	data, err := NewFetcher(time.Second).Fetch(context.Background(), srv.URL+"/exercise_library.json")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != `{"exercises":[]}` {
		t.Errorf("data = %s", data)
	}
	if gotCache != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", gotCache)
	}
}

// TestFetchHTTPStatus verifies non-2xx responses surface ErrStatus.
func TestFetchHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewFetcher(time.Second).Fetch(context.Background(), srv.URL+"/programs.json")
	if !errors.Is(err, ErrStatus) {
		t.Errorf("err = %v, want ErrStatus", err)
	}
}

// TestIsRemote verifies URL detection.
func TestIsRemote(t *testing.T) {
	if !IsRemote("https://example.com/p.json") || IsRemote("./p.json") {
		t.Error("IsRemote misclassified a location")
	}
}
