package domain

import "time"

// Ticket is an immutable support ticket supplied by the ticket source.
// Subject and body may be empty; Attributes carries any extra source
// columns untouched through the pipeline.
type Ticket struct {
	ID      string `db:"ticket_id" json:"ticket_id"`
	Subject string `db:"subject"   json:"subject"`
	Body    string `db:"body"      json:"body"`

	Attributes map[string]string `db:"-" json:"attributes,omitempty"`
}

// ClassifiedTicket is a ticket enriched with its classification result.
type ClassifiedTicket struct {
	Ticket
	Result       ClassificationResult `json:"result"`
	ClassifiedAt time.Time            `json:"classified_at"`
}

// Ticket classification status values used by the repository.
const (
	StatusPending    = "pending"
	StatusClassified = "classified"
	StatusFailed     = "failed"
)
