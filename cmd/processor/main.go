// Command processor classifies support tickets in batches. It runs in
// one of three modes: a one-shot CSV batch (--input/--output), a
// built-in end-to-end check (--self-test), or a database poller loop
// (default).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ravenstack/ticket-classifier/internal/bootstrap"
	"github.com/ravenstack/ticket-classifier/internal/config"
	"github.com/ravenstack/ticket-classifier/internal/domain"
	"github.com/ravenstack/ticket-classifier/internal/logger"
	"github.com/ravenstack/ticket-classifier/internal/processor"
	"github.com/ravenstack/ticket-classifier/internal/storage"
)

func main() {
	var (
		configPath = flag.String("config", config.ConfigPath(), "path to config file")
		inputPath  = flag.String("input", "", "classify tickets from this CSV file and exit")
		outputPath = flag.String("output", "classified_tickets.csv", "CSV file for --input results")
		selfTest   = flag.Bool("self-test", false, "run the built-in sample batch and exit")
	)
	flag.Parse()

	app, err := bootstrap.New(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *selfTest:
		err = runSelfTest(ctx, app)
	case *inputPath != "":
		err = runCSVBatch(ctx, app, *inputPath, *outputPath)
	default:
		err = runPoller(ctx, app)
	}
	if err != nil {
		app.Log.Error("processor exited with error", logger.Error(err))
		app.Close()
		os.Exit(1)
	}
}

// runCSVBatch classifies one CSV file and writes the results.
func runCSVBatch(ctx context.Context, app *bootstrap.App, input, output string) error {
	tickets, extra, err := storage.ReadTicketsCSV(input)
	if err != nil {
		return err
	}
	app.Log.Info("loaded tickets",
		logger.String("input", input),
		logger.Int("count", len(tickets)))

	results, stats, err := app.Pipeline.Run(ctx, tickets)
	if err != nil {
		return err
	}
	if err := storage.WriteResultsCSV(output, results, extra); err != nil {
		return err
	}

	app.Log.Info("batch complete",
		logger.String("output", output),
		logger.Int("total", stats.Total),
		logger.Float64("avg_confidence", stats.AvgConfidence),
		logger.Float64("fallback_rate", stats.FallbackRate),
		logger.Bool("calibrated", stats.Calibrated))
	return nil
}

// runPoller processes pending tickets from the database until the
// context is cancelled.
func runPoller(ctx context.Context, app *bootstrap.App) error {
	db, err := storage.Open(storage.DBConfig{
		Driver:          app.Config.Database.Driver,
		DSN:             app.Config.Database.DSN,
		MaxConnections:  app.Config.Database.MaxConnections,
		MaxIdleConns:    app.Config.Database.MaxIdleConns,
		ConnMaxLifetime: app.Config.Database.ConnMaxLifetime.Std(),
	})
	if err != nil {
		return err
	}
	defer db.Close()

	repo := storage.NewTicketRepository(db, app.Log)
	if err := repo.Migrate(ctx); err != nil {
		return err
	}

	poller := processor.NewPoller(repo, app.Pipeline, processor.PollerConfig{
		BatchSize:    app.Config.Processor.BatchSize,
		PollInterval: app.Config.Processor.PollInterval.Std(),
		StoreQPS:     app.Config.Processor.StoreQPS,
	}, app.Log)
	defer poller.Stop()

	return poller.Start(ctx)
}

// sampleTicket pairs a ticket with its expected topic.
type sampleTicket struct {
	ticket   domain.Ticket
	expected domain.Topic
}

func sampleBatch() []sampleTicket {
	return []sampleTicket{
		{
			ticket: domain.Ticket{
				ID:      "T1",
				Subject: "Invoice payment failed",
				Body:    "My credit card was declined when trying to pay the monthly invoice.",
			},
			expected: domain.TopicBilling,
		},
		{
			ticket: domain.Ticket{
				ID:      "T2",
				Subject: "API returning 500 error",
				Body:    "Getting internal server error when calling the /users endpoint.",
			},
			expected: domain.TopicTechnical,
		},
		{
			ticket: domain.Ticket{
				ID:      "T3",
				Subject: "How to export CSV report",
				Body:    "I need help understanding how to export my data as CSV file.",
			},
			expected: domain.TopicUsage,
		},
		{
			ticket: domain.Ticket{
				ID:      "T4",
				Subject: "Cannot login to account",
				Body:    "Forgot my password and the reset email is not arriving.",
			},
			expected: domain.TopicAccount,
		},
		{
			ticket: domain.Ticket{
				ID:      "T5",
				Subject: "Love the product but pricing feels high",
				Body:    "Great features but would suggest reviewing the pricing structure.",
			},
			expected: domain.TopicFeedback,
		},
	}
}

// runSelfTest classifies the built-in sample batch end to end and
// requires at least four of the five expected topics to match.
func runSelfTest(ctx context.Context, app *bootstrap.App) error {
	samples := sampleBatch()
	tickets := make([]domain.Ticket, len(samples))
	for i := range samples {
		tickets[i] = samples[i].ticket
	}

	start := time.Now()
	results, stats, err := app.Pipeline.Run(ctx, tickets)
	if err != nil {
		return fmt.Errorf("self-test batch: %w", err)
	}

	matched := 0
	for i := range results {
		got := results[i].Result.PredictedTopic
		want := samples[i].expected
		status := "ok"
		if got == want {
			matched++
		} else {
			status = "MISMATCH"
		}
		fmt.Printf("%-4s %-10s got=%-22q want=%-22q confidence=%.3f\n",
			results[i].ID, status, string(got), string(want), results[i].Result.Confidence)
	}

	fmt.Printf("\nmatched %d/%d, avg confidence %.3f, fallback rate %.2f, calibrated=%v, took %s\n",
		matched, len(samples), stats.AvgConfidence, stats.FallbackRate, stats.Calibrated,
		time.Since(start).Round(time.Millisecond))

	if matched < len(samples)-1 {
		return fmt.Errorf("self-test failed: %d/%d tickets matched", matched, len(samples))
	}
	return nil
}
