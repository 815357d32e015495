package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ravenstack/ticket-classifier/internal/classifier"
	"github.com/ravenstack/ticket-classifier/internal/processor"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	scorer := classifier.NewHeuristicScorer(classifier.DefaultRuleTable(), nil)
	trainer := classifier.NewWeakLabelTrainer(scorer, nil)
	pipeline := processor.NewPipeline(scorer, trainer, processor.Config{Concurrency: 2}, nil, nil)
	return NewRouter(NewHandler(scorer, pipeline, nil), nil)
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestClassifyEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := postJSON(t, router, "/api/v1/classify", map[string]string{
		"subject": "Question about my invoice",
		"body":    "I was charged twice and need a refund.",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		PredictedTopic string             `json:"predicted_topic"`
		Confidence     float64            `json:"confidence"`
		Probabilities  map[string]float64 `json:"probabilities"`
		UsedModel      bool               `json:"used_model"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.PredictedTopic != "Billing and Payment" {
		t.Errorf("predicted_topic = %q", resp.PredictedTopic)
	}
	if resp.UsedModel {
		t.Error("single classification must not use a model")
	}
	if len(resp.Probabilities) != 5 {
		t.Errorf("got %d probability fields, want 5", len(resp.Probabilities))
	}
	if _, ok := resp.Probabilities["prob_Billing_and_Payment"]; !ok {
		t.Error("missing prob_Billing_and_Payment field")
	}
}

func TestClassifyEndpointBadRequest(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/classify", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestClassifyBatchEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := postJSON(t, router, "/api/v1/classify/batch", map[string]any{
		"tickets": []map[string]string{
			{"ticket_id": "1", "subject": "Invoice question", "body": "Refund for a duplicate charge."},
			{"ticket_id": "2", "subject": "App crash", "body": "Error 500 with a stack trace."},
			{"ticket_id": "3", "subject": "How to export", "body": "Need a tutorial for the export feature."},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Results []struct {
			TicketID       string  `json:"ticket_id"`
			PredictedTopic string  `json:"predicted_topic"`
			Confidence     float64 `json:"confidence"`
		} `json:"results"`
		Stats struct {
			Total        int     `json:"total"`
			FallbackRate float64 `json:"fallback_rate"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(resp.Results))
	}
	if resp.Results[0].TicketID != "1" {
		t.Errorf("result order not preserved: first id %q", resp.Results[0].TicketID)
	}
	if resp.Stats.Total != 3 {
		t.Errorf("stats.total = %d, want 3", resp.Stats.Total)
	}
}

func TestClassifyBatchEndpointEmpty(t *testing.T) {
	router := newTestRouter(t)
	w := postJSON(t, router, "/api/v1/classify/batch", map[string]any{"tickets": []any{}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	// Before any batch the endpoint reports no stats.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var before struct {
		LastBatch *json.RawMessage `json:"last_batch"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &before); err != nil {
		t.Fatal(err)
	}
	if before.LastBatch != nil && string(*before.LastBatch) != "null" {
		t.Errorf("expected null last_batch before any run, got %s", *before.LastBatch)
	}

	postJSON(t, router, "/api/v1/classify/batch", map[string]any{
		"tickets": []map[string]string{
			{"ticket_id": "1", "subject": "Invoice", "body": "Refund for a duplicate charge."},
		},
	})

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))
	var after struct {
		LastBatch *struct {
			Total int `json:"total"`
		} `json:"last_batch"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &after); err != nil {
		t.Fatal(err)
	}
	if after.LastBatch == nil || after.LastBatch.Total != 1 {
		t.Errorf("last_batch after run = %+v, want total 1", after.LastBatch)
	}
}

func TestHealthAndReady(t *testing.T) {
	router := newTestRouter(t)
	for _, path := range []string{"/health", "/ready"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, w.Code)
		}
	}
}
