// Package api exposes the classifier over HTTP.
package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ravenstack/ticket-classifier/internal/classifier"
	"github.com/ravenstack/ticket-classifier/internal/domain"
	"github.com/ravenstack/ticket-classifier/internal/logger"
	"github.com/ravenstack/ticket-classifier/internal/processor"
)

const maxBatchTickets = 10000

// Handler serves the classification endpoints.
type Handler struct {
	scorer   *classifier.HeuristicScorer
	pipeline *processor.Pipeline
	log      logger.Logger

	mu        sync.RWMutex
	lastStats *processor.BatchStats
}

// NewHandler builds the endpoint handler.
func NewHandler(scorer *classifier.HeuristicScorer, pipeline *processor.Pipeline, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{scorer: scorer, pipeline: pipeline, log: log}
}

type classifyRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type classifyResponse struct {
	PredictedTopic string             `json:"predicted_topic"`
	Confidence     float64            `json:"confidence"`
	Probabilities  map[string]float64 `json:"probabilities"`
	UsedModel      bool               `json:"used_model"`
}

type batchRequest struct {
	Tickets []domain.Ticket `json:"tickets"`
}

type batchTicketResponse struct {
	TicketID string `json:"ticket_id"`
	classifyResponse
}

type batchResponse struct {
	Results []batchTicketResponse `json:"results"`
	Stats   *processor.BatchStats `json:"stats"`
}

func toClassifyResponse(res domain.ClassificationResult) classifyResponse {
	probs := make(map[string]float64, domain.NumTopics)
	for _, topic := range domain.LabelOrder {
		probs[domain.ProbabilityField(topic)] = res.Probabilities[topic]
	}
	return classifyResponse{
		PredictedTopic: string(res.PredictedTopic),
		Confidence:     res.Confidence,
		Probabilities:  probs,
		UsedModel:      res.UsedModel,
	}
}

// Classify scores a single ticket with the heuristic stage. The
// statistical stage is batch-trained and has no standing model to
// consult for a lone ticket.
func (h *Handler) Classify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	predictor := classifier.NewHybridPredictor(h.scorer, nil, 0, 0)
	res := predictor.Predict(req.Subject, req.Body)
	c.JSON(http.StatusOK, toClassifyResponse(res))
}

// ClassifyBatch runs the full train-then-predict pipeline over the
// posted tickets and returns per-ticket results plus batch stats.
func (h *Handler) ClassifyBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Tickets) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tickets must not be empty"})
		return
	}
	if len(req.Tickets) > maxBatchTickets {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "batch too large"})
		return
	}

	results, stats, err := h.pipeline.Run(c.Request.Context(), req.Tickets)
	if err != nil {
		h.log.Error("batch classification failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "classification failed"})
		return
	}

	h.mu.Lock()
	h.lastStats = stats
	h.mu.Unlock()

	resp := batchResponse{
		Results: make([]batchTicketResponse, 0, len(results)),
		Stats:   stats,
	}
	for i := range results {
		resp.Results = append(resp.Results, batchTicketResponse{
			TicketID:         results[i].ID,
			classifyResponse: toClassifyResponse(results[i].Result),
		})
	}
	c.JSON(http.StatusOK, resp)
}

// Stats returns diagnostics for the most recent batch.
func (h *Handler) Stats(c *gin.Context) {
	h.mu.RLock()
	stats := h.lastStats
	h.mu.RUnlock()

	if stats == nil {
		c.JSON(http.StatusOK, gin.H{"last_batch": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"last_batch": stats})
}

// Health reports process liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}

// Ready reports whether the classifier can serve requests.
func (h *Handler) Ready(c *gin.Context) {
	if h.scorer == nil || h.pipeline == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
