package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ravenstack/ticket-classifier/internal/domain"
)

// Column names recognized in input files and emitted in output files.
const (
	columnTicketID       = "ticket_id"
	columnSubject        = "subject"
	columnBody           = "body"
	columnPredictedTopic = "predicted_topic"
	columnConfidence     = "confidence"
)

const probabilityPrecision = 6

// ReadTicketsCSV parses a ticket batch from a CSV file. The header must
// contain subject and body columns; ticket_id is optional and generated
// from the row number when absent. Any other columns are preserved in
// ticket attributes and passed through to the output unchanged.
func ReadTicketsCSV(path string) ([]domain.Ticket, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open ticket file: %w", err)
	}
	defer f.Close()

	tickets, extra, err := readTickets(f)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	return tickets, extra, nil
}

func readTickets(r io.Reader) ([]domain.Ticket, []string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	var extra []string
	for i, name := range header {
		index[name] = i
		switch name {
		case columnTicketID, columnSubject, columnBody:
		default:
			extra = append(extra, name)
		}
	}
	if _, ok := index[columnSubject]; !ok {
		return nil, nil, fmt.Errorf("missing required column %q", columnSubject)
	}
	if _, ok := index[columnBody]; !ok {
		return nil, nil, fmt.Errorf("missing required column %q", columnBody)
	}

	field := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var tickets []domain.Ticket
	for row := 1; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", row, err)
		}

		t := domain.Ticket{
			ID:      field(record, columnTicketID),
			Subject: field(record, columnSubject),
			Body:    field(record, columnBody),
		}
		if t.ID == "" {
			t.ID = strconv.Itoa(row)
		}
		if len(extra) > 0 {
			t.Attributes = make(map[string]string, len(extra))
			for _, name := range extra {
				t.Attributes[name] = field(record, name)
			}
		}
		tickets = append(tickets, t)
	}
	return tickets, extra, nil
}

// WriteResultsCSV writes classified tickets to a CSV file: the original
// columns, then predicted_topic, confidence, and one probability column
// per topic in label order. extra lists passthrough column names in
// their original order.
func WriteResultsCSV(path string, results []domain.ClassifiedTicket, extra []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create result file: %w", err)
	}
	defer f.Close()

	if err := writeResults(f, results, extra); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func writeResults(w io.Writer, results []domain.ClassifiedTicket, extra []string) error {
	cw := csv.NewWriter(w)

	header := []string{columnTicketID, columnSubject, columnBody}
	header = append(header, extra...)
	header = append(header, columnPredictedTopic, columnConfidence)
	for _, topic := range domain.LabelOrder {
		header = append(header, domain.ProbabilityField(topic))
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, 0, len(header))
	for i := range results {
		res := &results[i]
		record = record[:0]
		record = append(record, res.ID, res.Subject, res.Body)
		for _, name := range extra {
			record = append(record, res.Attributes[name])
		}
		record = append(record,
			string(res.Result.PredictedTopic),
			formatProbability(res.Result.Confidence),
		)
		for _, topic := range domain.LabelOrder {
			record = append(record, formatProbability(res.Result.Probabilities[topic]))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write ticket %s: %w", res.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatProbability(v float64) string {
	return strconv.FormatFloat(v, 'f', probabilityPrecision, 64)
}
