package network

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if got := r.Header.Get("Cookie"); got != "session=abc" {
			t.Errorf("Cookie = %q, want session=abc", got)
		}
		if got := r.Header.Get("User-Agent"); got != "tester/1" {
			t.Errorf("User-Agent = %q", got)
		}
		w.Header().Set("X-Trace", "1")
		w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	c := New(WithUserAgent("tester/1"))
	res, err := c.Get(context.Background(), server.URL+"/page", Request{Headers: map[string]string{"Cookie": "session=abc"}})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if res.StatusCode != http.StatusOK || string(res.Body) != "<html>ok</html>" {
		t.Errorf("Get() = %d %q", res.StatusCode, res.Body)
	}
	if res.Header.Get("X-Trace") != "1" {
		t.Errorf("Header = %v", res.Header)
	}
	if res.URL != server.URL+"/page" {
		t.Errorf("URL = %q", res.URL)
	}
}

func TestClient_PostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		var body map[string]int
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		if body["totalPages"] != 2 {
			t.Errorf("body = %v", body)
		}
		w.Write([]byte(`{"title":"T"}`))
	}))
	defer server.Close()

	res, err := New().Post(context.Background(), server.URL, map[string]int{"totalPages": 2},
		Request{Headers: map[string]string{"Content-Type": "application/json"}})
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if string(res.Body) != `{"title":"T"}` {
		t.Errorf("Body = %s", res.Body)
	}
}

func TestClient_StatusErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := New(WithRetries(2))

	_, err := c.Get(context.Background(), server.URL+"/missing", Request{Retry: DefaultRetry})
	if !errors.Is(err, ErrStatus) || !IsNotFound(err) {
		t.Errorf("Get(missing) error = %v, want not found status", err)
	}
	if calls.Load() != 1 {
		t.Errorf("404 attempted %d times, want 1", calls.Load())
	}

	calls.Store(0)
	_, err = c.Get(context.Background(), server.URL+"/flaky", Request{Retry: DefaultRetry})
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadGateway {
		t.Errorf("Get(flaky) error = %v, want 502", err)
	}
	if calls.Load() != 3 {
		t.Errorf("502 attempted %d times, want 3", calls.Load())
	}

	calls.Store(0)
	if _, err := c.Get(context.Background(), server.URL+"/flaky", Request{}); err == nil {
		t.Error("Get() expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("zero Request attempted %d times, want 1", calls.Load())
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	start := time.Now()
	_, err := New().Get(context.Background(), server.URL, Request{Timeout: 50 * time.Millisecond})
	if err == nil {
		t.Fatal("Get() expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Get() took %v, want prompt timeout", elapsed)
	}
}

func TestClient_Download(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "%PDF-1.4 fake")
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "paper.pdf")
	if err := New().Download(context.Background(), server.URL+"/paper.pdf", dest, Request{}); err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "%PDF-1.4 fake" {
		t.Errorf("downloaded %q", data)
	}
}
