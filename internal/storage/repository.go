// Package storage provides the ticket source and result sink adapters:
// a sqlx-backed repository (postgres or sqlite) and CSV files.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite driver

	"github.com/ravenstack/ticket-classifier/internal/domain"
	"github.com/ravenstack/ticket-classifier/internal/logger"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

const defaultConnMaxLifetime = time.Hour

// DBConfig holds connection settings for the ticket repository.
type DBConfig struct {
	Driver          string
	DSN             string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open connects to the configured database and verifies the connection.
func Open(cfg DBConfig) (*sqlx.DB, error) {
	if cfg.Driver != DriverPostgres && cfg.Driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	db, err := sqlx.Connect(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Driver, err)
	}
	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	lifetime := cfg.ConnMaxLifetime
	if lifetime == 0 {
		lifetime = defaultConnMaxLifetime
	}
	db.SetConnMaxLifetime(lifetime)
	return db, nil
}

// TicketRepository reads pending tickets and persists classifications.
type TicketRepository struct {
	db  *sqlx.DB
	log logger.Logger
}

// NewTicketRepository creates a repository over an open connection.
func NewTicketRepository(db *sqlx.DB, log logger.Logger) *TicketRepository {
	if log == nil {
		log = logger.NewNop()
	}
	return &TicketRepository{db: db, log: log}
}

// Migrate creates the ticket tables if they do not exist.
func (r *TicketRepository) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS support_tickets (
			ticket_id             TEXT PRIMARY KEY,
			subject               TEXT NOT NULL DEFAULT '',
			body                  TEXT NOT NULL DEFAULT '',
			classification_status TEXT NOT NULL DEFAULT 'pending',
			submitted_at          TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS ticket_classifications (
			ticket_id                TEXT PRIMARY KEY,
			predicted_topic          TEXT NOT NULL,
			confidence               DOUBLE PRECISION NOT NULL,
			prob_billing_and_payment DOUBLE PRECISION NOT NULL,
			prob_technical_issue     DOUBLE PRECISION NOT NULL,
			prob_product_usage       DOUBLE PRECISION NOT NULL,
			prob_account_and_access  DOUBLE PRECISION NOT NULL,
			prob_general_feedback    DOUBLE PRECISION NOT NULL,
			used_model               BOOLEAN NOT NULL,
			classified_at            TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_support_tickets_status
			ON support_tickets (classification_status)`,
	}
	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate ticket tables: %w", err)
		}
	}
	return nil
}

// InsertTickets loads tickets into the source table with pending status.
func (r *TicketRepository) InsertTickets(ctx context.Context, tickets []domain.Ticket) error {
	query := r.db.Rebind(`INSERT INTO support_tickets (ticket_id, subject, body, classification_status)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (ticket_id) DO UPDATE SET
			subject = excluded.subject,
			body = excluded.body,
			classification_status = excluded.classification_status`)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert tickets: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	for _, t := range tickets {
		if _, err := tx.ExecContext(ctx, query, t.ID, t.Subject, t.Body, domain.StatusPending); err != nil {
			return fmt.Errorf("insert ticket %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

// FetchPending returns up to limit tickets awaiting classification, in
// insertion order.
func (r *TicketRepository) FetchPending(ctx context.Context, limit int) ([]domain.Ticket, error) {
	query := r.db.Rebind(`SELECT ticket_id, subject, body
		FROM support_tickets
		WHERE classification_status = ?
		ORDER BY ticket_id
		LIMIT ?`)

	var tickets []domain.Ticket
	if err := r.db.SelectContext(ctx, &tickets, query, domain.StatusPending, limit); err != nil {
		return nil, fmt.Errorf("fetch pending tickets: %w", err)
	}
	return tickets, nil
}

// SaveClassified upserts classification rows and marks the source
// tickets classified, atomically per batch.
func (r *TicketRepository) SaveClassified(ctx context.Context, results []domain.ClassifiedTicket) error {
	if len(results) == 0 {
		return nil
	}

	insert := r.db.Rebind(`INSERT INTO ticket_classifications (
			ticket_id, predicted_topic, confidence,
			prob_billing_and_payment, prob_technical_issue, prob_product_usage,
			prob_account_and_access, prob_general_feedback,
			used_model, classified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (ticket_id) DO UPDATE SET
			predicted_topic = excluded.predicted_topic,
			confidence = excluded.confidence,
			prob_billing_and_payment = excluded.prob_billing_and_payment,
			prob_technical_issue = excluded.prob_technical_issue,
			prob_product_usage = excluded.prob_product_usage,
			prob_account_and_access = excluded.prob_account_and_access,
			prob_general_feedback = excluded.prob_general_feedback,
			used_model = excluded.used_model,
			classified_at = excluded.classified_at`)
	mark := r.db.Rebind(`UPDATE support_tickets SET classification_status = ? WHERE ticket_id = ?`)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save classifications: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	for i := range results {
		res := &results[i]
		probs := res.Result.Probabilities
		if _, err := tx.ExecContext(ctx, insert,
			res.ID,
			string(res.Result.PredictedTopic),
			res.Result.Confidence,
			probs[domain.TopicBilling],
			probs[domain.TopicTechnical],
			probs[domain.TopicUsage],
			probs[domain.TopicAccount],
			probs[domain.TopicFeedback],
			res.Result.UsedModel,
			res.ClassifiedAt,
		); err != nil {
			return fmt.Errorf("save classification for ticket %s: %w", res.ID, err)
		}
		if _, err := tx.ExecContext(ctx, mark, domain.StatusClassified, res.ID); err != nil {
			return fmt.Errorf("mark ticket %s classified: %w", res.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit classifications: %w", err)
	}

	r.log.Debug("saved classifications", logger.Int("count", len(results)))
	return nil
}

// TopicCounts returns the number of classified tickets per topic.
func (r *TicketRepository) TopicCounts(ctx context.Context) (map[domain.Topic]int, error) {
	rows := []struct {
		Topic string `db:"predicted_topic"`
		Count int    `db:"count"`
	}{}
	query := `SELECT predicted_topic, COUNT(*) AS count
		FROM ticket_classifications
		GROUP BY predicted_topic`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("topic counts: %w", err)
	}

	counts := make(map[domain.Topic]int, len(rows))
	for _, row := range rows {
		counts[domain.Topic(row.Topic)] = row.Count
	}
	return counts, nil
}
