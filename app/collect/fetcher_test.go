package collect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetcher_Fetch(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("feed-body"))
	}))
	defer server.Close()

	data, err := NewFetcher(server.Client(), "Herald/test", time.Second).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if string(data) != "feed-body" {
		t.Errorf("Expected 'feed-body', got '%s'", string(data))
	}
	if gotUA != "Herald/test" {
		t.Errorf("Expected user agent 'Herald/test', got '%s'", gotUA)
	}
}

func TestFetcher_FetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	if _, err := NewFetcher(server.Client(), "", time.Second).Fetch(context.Background(), server.URL); err == nil {
		t.Error("Expected error for non-200 response")
	}
}

func TestFetcher_FetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	if _, err := NewFetcher(server.Client(), "", 50*time.Millisecond).Fetch(context.Background(), server.URL); err == nil {
		t.Error("Expected timeout error")
	}
}
