package storage

import (
	"context"
	"testing"
	"time"

	"github.com/ravenstack/ticket-classifier/internal/domain"
)

func newTestRepository(t *testing.T) *TicketRepository {
	t.Helper()

	db, err := Open(DBConfig{
		Driver: DriverSQLite,
		DSN:    ":memory:",
		// An in-memory sqlite database exists per connection.
		MaxConnections: 1,
		MaxIdleConns:   1,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := NewTicketRepository(db, nil)
	if err := repo.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repo
}

func testTickets() []domain.Ticket {
	return []domain.Ticket{
		{ID: "T1", Subject: "Invoice question", Body: "Refund for a duplicate charge."},
		{ID: "T2", Subject: "App crash", Body: "Error 500 on login."},
		{ID: "T3", Subject: "How to export", Body: "Need a tutorial for the export feature."},
	}
}

func classify(t domain.Ticket, topic domain.Topic) domain.ClassifiedTicket {
	probs := make(domain.Distribution, domain.NumTopics)
	for _, label := range domain.LabelOrder {
		probs[label] = 0.1
	}
	probs[topic] = 0.6
	return domain.ClassifiedTicket{
		Ticket: t,
		Result: domain.ClassificationResult{
			PredictedTopic: topic,
			Confidence:     0.6,
			Probabilities:  probs,
		},
		ClassifiedAt: time.Now().UTC(),
	}
}

func TestRepositoryFetchPending(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if err := repo.InsertTickets(ctx, testTickets()); err != nil {
		t.Fatalf("insert: %v", err)
	}

	pending, err := repo.FetchPending(ctx, 10)
	if err != nil {
		t.Fatalf("fetch pending: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("got %d pending tickets, want 3", len(pending))
	}
	if pending[0].ID != "T1" || pending[0].Subject != "Invoice question" {
		t.Errorf("unexpected first ticket: %+v", pending[0])
	}

	limited, err := repo.FetchPending(ctx, 2)
	if err != nil {
		t.Fatalf("fetch limited: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("got %d tickets with limit 2", len(limited))
	}
}

func TestRepositorySaveClassified(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	tickets := testTickets()
	if err := repo.InsertTickets(ctx, tickets); err != nil {
		t.Fatalf("insert: %v", err)
	}

	results := []domain.ClassifiedTicket{
		classify(tickets[0], domain.TopicBilling),
		classify(tickets[1], domain.TopicTechnical),
		classify(tickets[2], domain.TopicUsage),
	}
	if err := repo.SaveClassified(ctx, results); err != nil {
		t.Fatalf("save classified: %v", err)
	}

	// Classified tickets leave the pending set.
	pending, err := repo.FetchPending(ctx, 10)
	if err != nil {
		t.Fatalf("fetch pending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("%d tickets still pending after classification", len(pending))
	}

	counts, err := repo.TopicCounts(ctx)
	if err != nil {
		t.Fatalf("topic counts: %v", err)
	}
	for _, topic := range []domain.Topic{domain.TopicBilling, domain.TopicTechnical, domain.TopicUsage} {
		if counts[topic] != 1 {
			t.Errorf("count for %q = %d, want 1", topic, counts[topic])
		}
	}
}

func TestRepositorySaveClassifiedUpsert(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	tickets := testTickets()[:1]
	if err := repo.InsertTickets(ctx, tickets); err != nil {
		t.Fatalf("insert: %v", err)
	}

	first := classify(tickets[0], domain.TopicBilling)
	if err := repo.SaveClassified(ctx, []domain.ClassifiedTicket{first}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	second := classify(tickets[0], domain.TopicFeedback)
	if err := repo.SaveClassified(ctx, []domain.ClassifiedTicket{second}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	counts, err := repo.TopicCounts(ctx)
	if err != nil {
		t.Fatalf("topic counts: %v", err)
	}
	if counts[domain.TopicBilling] != 0 || counts[domain.TopicFeedback] != 1 {
		t.Errorf("reclassification not upserted: %v", counts)
	}
}

func TestRepositorySaveClassifiedEmpty(t *testing.T) {
	repo := newTestRepository(t)
	if err := repo.SaveClassified(context.Background(), nil); err != nil {
		t.Errorf("empty save must be a no-op, got %v", err)
	}
}
