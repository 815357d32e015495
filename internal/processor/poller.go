package processor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ravenstack/ticket-classifier/internal/domain"
	"github.com/ravenstack/ticket-classifier/internal/logger"
)

const defaultPollInterval = 30 * time.Second

// TicketStore is the repository surface the poller drains and fills.
type TicketStore interface {
	// FetchPending returns up to limit tickets awaiting classification.
	FetchPending(ctx context.Context, limit int) ([]domain.Ticket, error)
	// SaveClassified persists classified tickets and marks them done.
	SaveClassified(ctx context.Context, results []domain.ClassifiedTicket) error
}

// Poller periodically drains pending tickets from the store, runs the
// batch pipeline over them, and writes the results back.
type Poller struct {
	store    TicketStore
	pipeline *Pipeline
	limiter  *RateLimiter
	log      logger.Logger

	batchSize    int
	pollInterval time.Duration

	mu      sync.Mutex
	stop    chan struct{}
	running bool
}

// PollerConfig holds poller configuration.
type PollerConfig struct {
	BatchSize    int
	PollInterval time.Duration
	StoreQPS     int
}

// NewPoller creates a poller.
func NewPoller(store TicketStore, pipeline *Pipeline, cfg PollerConfig, log logger.Logger) *Poller {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Poller{
		store:        store,
		pipeline:     pipeline,
		limiter:      NewRateLimiter(cfg.StoreQPS, cfg.StoreQPS, log),
		log:          log,
		batchSize:    cfg.BatchSize,
		pollInterval: cfg.PollInterval,
		stop:         make(chan struct{}),
	}
}

// Start runs the poll loop until Stop is called or the context ends.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return errors.New("poller already running")
	}
	p.running = true
	p.mu.Unlock()

	p.log.Info("poller starting",
		logger.Int("batch_size", p.batchSize),
		logger.Duration("poll_interval", p.pollInterval))

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		if err := p.pollOnce(ctx); err != nil {
			p.log.Error("poll cycle failed", logger.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stop:
			return nil
		case <-ticker.C:
		}
	}
}

// Stop terminates the poll loop. Safe to call more than once and
// before Start.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	select {
	case <-p.stop:
	default:
		close(p.stop)
	}
}

// pollOnce drains one batch of pending tickets, if any.
func (p *Poller) pollOnce(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	tickets, err := p.store.FetchPending(ctx, p.batchSize)
	if err != nil {
		return err
	}
	if len(tickets) == 0 {
		p.log.Debug("no pending tickets")
		return nil
	}

	results, _, err := p.pipeline.Run(ctx, tickets)
	if err != nil {
		return err
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	return p.store.SaveClassified(ctx, results)
}
