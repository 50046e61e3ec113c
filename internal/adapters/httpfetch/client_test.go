package httpfetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/felixgeelhaar/hostprep/internal/ports"
)

func TestClient_Fetch(t *testing.T) {
	body := "#!/bin/sh\necho ok\n"
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	client := NewClientWithHTTP(server.Client())
	data, err := client.Fetch(context.Background(), server.URL, "tok-12345")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != body {
		t.Errorf("Fetch() body = %q", data)
	}
	if gotAuth != "Bearer tok-12345" {
		t.Errorf("Authorization = %q, want bearer credential", gotAuth)
	}
}

func TestClient_Fetch_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClientWithHTTP(server.Client())
	_, err := client.Fetch(context.Background(), server.URL, "tok")

	var statusErr *ports.HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Fetch() error = %v, want HTTPStatusError", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", statusErr.StatusCode)
	}
}

func TestClient_Fetch_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClientWithHTTP(server.Client())
	_, err := client.Fetch(context.Background(), server.URL, "bad-token")

	var statusErr *ports.HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Fetch() error = %v, want HTTPStatusError", err)
	}
	if statusErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", statusErr.StatusCode)
	}
}

func TestClient_Fetch_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClientWithHTTP(server.Client())
	if _, err := client.Fetch(ctx, server.URL, "tok"); err == nil {
		t.Error("Fetch() should fail when the context is cancelled")
	}
}
