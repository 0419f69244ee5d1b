package spotify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/melodia/melodia/internal/music"
)

func TestRetryOnServerError(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"tracks": map[string]any{"items": []map[string]any{trackJSON("t1", "a", "x", 50)}},
		})
	}))
	defer server.Close()

	c := NewWithClients(server.Client(), nil, server.URL)
	c.maxRetries = 3
	c.baseBackoff = time.Millisecond

	songs, err := c.SearchTracks(context.Background(), "a", "", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(songs) != 1 {
		t.Errorf("songs = %d, want 1", len(songs))
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestRetryExhaustion(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewWithClients(server.Client(), nil, server.URL)
	c.maxRetries = 2
	c.baseBackoff = time.Millisecond

	if _, err := c.SearchTracks(context.Background(), "a", "", 5); err == nil {
		t.Fatal("want error after retry exhaustion")
	}
	if got := atomic.LoadInt32(&attempts); got != 2 {
		t.Errorf("attempts = %d, want 2", got)
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	c := NewWithClients(server.Client(), nil, server.URL)
	c.maxRetries = 3
	c.baseBackoff = time.Millisecond

	if _, err := c.SearchTracks(context.Background(), "a", "", 5); err == nil {
		t.Fatal("want error on 400")
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("attempts = %d, want 1 (4xx is not retryable)", got)
	}
}

func TestRetryAfterHeader(t *testing.T) {
	var attempts int32
	start := time.Now()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"tracks": []map[string]any{}})
	}))
	defer server.Close()

	c := NewWithClients(server.Client(), nil, server.URL)
	c.maxRetries = 2
	c.baseBackoff = time.Millisecond

	_, err := c.GetRecommendations(context.Background(), music.SeedIDs{Genres: []string{"pop"}}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < time.Second {
		t.Errorf("elapsed = %s, want >= 1s honoring Retry-After", elapsed)
	}
}

func TestRetryRespectsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewWithClients(server.Client(), nil, server.URL)
	c.maxRetries = 5
	c.baseBackoff = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	if _, err := c.SearchTracks(ctx, "a", "", 5); err == nil {
		t.Fatal("want error on cancellation")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("cancellation ignored, elapsed = %s", elapsed)
	}
}
