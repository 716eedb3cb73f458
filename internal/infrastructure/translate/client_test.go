package translate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nexuscampus/campusmap/internal/reliability/retry"
)

func fastRetry() *retry.Config {
	return &retry.Config{MaxAttempts: 2, InitialBackoff: 1, MaxBackoff: 1, BackoffMultiplier: 1}
}

func TestDetect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/language/translate/v2/detect" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "k" {
			t.Errorf("missing api key")
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["q"] != "hallo welt" {
			t.Errorf("unexpected payload %v", body)
		}
		w.Write([]byte(`{"data":{"detections":[[{"language":"de"}]]}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", nil)
	c.retryCfg = fastRetry()

	lang, err := c.Detect(context.Background(), "hallo welt")
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if lang != "de" {
		t.Fatalf("expected de, got %q", lang)
	}
}

func TestTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/language/translate/v2" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["target"] != "en" {
			t.Errorf("unexpected target %v", body["target"])
		}
		w.Write([]byte(`{"data":{"translations":[{"translatedText":"hello world"}]}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", nil)
	c.retryCfg = fastRetry()

	out, err := c.Translate(context.Background(), "hallo welt", "en")
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if out != "hello world" {
		t.Fatalf("expected translation, got %q", out)
	}
}

func TestRetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"data":{"detections":[[{"language":"de"}]]}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", nil)
	c.retryCfg = fastRetry()

	if _, err := c.Detect(context.Background(), "hallo"); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestCircuitOpensAfterRepeatedFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", nil)
	c.retryCfg = fastRetry()

	// Each Detect is one breaker-visible failure; five trips the circuit.
	for i := 0; i < 5; i++ {
		if _, err := c.Detect(context.Background(), "x"); err == nil {
			t.Fatalf("expected failure")
		}
	}

	_, err := c.Detect(context.Background(), "x")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable from open circuit, got %v", err)
	}
}

func TestEmptyResponseIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"translations":[]}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", nil)
	c.retryCfg = fastRetry()

	if _, err := c.Translate(context.Background(), "x", "en"); err == nil {
		t.Fatalf("expected error on empty translation response")
	}
}
