package processor

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ravenstack/ticket-classifier/internal/domain"
)

type fakeStore struct {
	mu      sync.Mutex
	pending []domain.Ticket
	saved   []domain.ClassifiedTicket
	fetchEr error
}

func (s *fakeStore) FetchPending(_ context.Context, limit int) ([]domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchEr != nil {
		return nil, s.fetchEr
	}
	if limit > len(s.pending) {
		limit = len(s.pending)
	}
	batch := s.pending[:limit]
	s.pending = s.pending[limit:]
	return batch, nil
}

func (s *fakeStore) SaveClassified(_ context.Context, results []domain.ClassifiedTicket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, results...)
	return nil
}

func TestPollOnceDrainsPendingTickets(t *testing.T) {
	store := &fakeStore{pending: sampleTickets()}
	poller := NewPoller(store, newTestPipeline(2), PollerConfig{BatchSize: 10}, nil)

	if err := poller.pollOnce(context.Background()); err != nil {
		t.Fatalf("pollOnce: %v", err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.saved) != 5 {
		t.Fatalf("saved %d tickets, want 5", len(store.saved))
	}
	if len(store.pending) != 0 {
		t.Errorf("%d tickets still pending", len(store.pending))
	}
	for _, res := range store.saved {
		if res.Result.PredictedTopic == "" {
			t.Errorf("ticket %s saved without a predicted topic", res.ID)
		}
		if res.ClassifiedAt.IsZero() {
			t.Errorf("ticket %s saved without a timestamp", res.ID)
		}
	}
}

func TestPollOnceNoPendingTickets(t *testing.T) {
	store := &fakeStore{}
	poller := NewPoller(store, newTestPipeline(1), PollerConfig{}, nil)

	if err := poller.pollOnce(context.Background()); err != nil {
		t.Fatalf("pollOnce: %v", err)
	}
	if len(store.saved) != 0 {
		t.Errorf("saved %d tickets from an empty store", len(store.saved))
	}
}

func TestPollOncePropagatesFetchError(t *testing.T) {
	wantErr := errors.New("connection refused")
	store := &fakeStore{fetchEr: wantErr}
	poller := NewPoller(store, newTestPipeline(1), PollerConfig{}, nil)

	if err := poller.pollOnce(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("pollOnce error = %v, want %v", err, wantErr)
	}
}

func TestPollerStopTerminatesStart(t *testing.T) {
	store := &fakeStore{}
	poller := NewPoller(store, newTestPipeline(1), PollerConfig{}, nil)

	done := make(chan error, 1)
	go func() {
		done <- poller.Start(context.Background())
	}()
	poller.Stop()

	if err := <-done; err != nil {
		t.Errorf("Start returned %v after Stop, want nil", err)
	}
}
