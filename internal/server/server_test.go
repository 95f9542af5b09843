package server

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"keywordpyramid/internal/config"
)

// TestErrorHandlerEnvelope verifies that unmatched routes come back as the
// standard JSON error envelope rather than Fiber's plain-text default.
func TestErrorHandlerEnvelope(t *testing.T) {
	s := New(&config.Config{Env: "test"})

	req, _ := http.NewRequest("GET", "/no/such/route", nil)
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var envelope struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("response is not JSON: %s", body)
	}
	if envelope.Status != "error" {
		t.Errorf("envelope status = %q, want %q", envelope.Status, "error")
	}
	if envelope.Error == "" {
		t.Error("envelope error message is empty")
	}
}
