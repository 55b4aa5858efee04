package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSubmitResultMergesIdentityIntoPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/save_test_result" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	err := c.SubmitResult(context.Background(), "sparcs", "Jane Doe", map[string]any{
		"total_points": 20,
		"quadrant_1":   5,
	})
	if err != nil {
		t.Fatalf("SubmitResult: %v", err)
	}

	if got["test_name"] != "sparcs" || got["patient_name"] != "Jane Doe" {
		t.Errorf("identity fields not merged: %v", got)
	}
	if got["quadrant_1"] != float64(5) {
		t.Errorf("payload field lost: %v", got)
	}
}

func TestSubmitResultReportsServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if err := c.SubmitResult(context.Background(), "edge", "X", nil); err == nil {
		t.Fatal("expected an error for a 500 response")
	}
}

func TestSubmitResultAbandonsSlowDelivery(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c := NewClient(srv.URL)
	c.http.Timeout = 50 * time.Millisecond

	start := time.Now()
	err := c.SubmitResult(context.Background(), "motion", "X", nil)
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("delivery was not abandoned promptly: took %v", elapsed)
	}
}
