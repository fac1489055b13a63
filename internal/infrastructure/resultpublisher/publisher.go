package resultpublisher

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/vlk/settlecore/internal/domain"
	"github.com/vlk/settlecore/internal/usecase"
)

// ResultPublisher drains the outbox and delivers transfer status events
// to the originating channel. Delivery is at-least-once: an event is
// marked published only after the publisher accepted it.
type ResultPublisher struct {
	outboxRepo usecase.OutboxRepository
	publisher  Publisher
	logger     *slog.Logger
	batchSize  int
	interval   time.Duration
}

// Publisher delivers one status event to an external system.
type Publisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}

// Config for ResultPublisher.
type Config struct {
	OutboxRepo usecase.OutboxRepository
	Publisher  Publisher
	Logger     *slog.Logger
	BatchSize  int           // Number of events to fetch per batch
	Interval   time.Duration // Polling interval
}

// New creates a new ResultPublisher.
func New(cfg Config) *ResultPublisher {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval == 0 {
		cfg.Interval = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &ResultPublisher{
		outboxRepo: cfg.OutboxRepo,
		publisher:  cfg.Publisher,
		logger:     cfg.Logger,
		batchSize:  cfg.BatchSize,
		interval:   cfg.Interval,
	}
}

// Start begins the publishing worker. It runs until the context is
// cancelled.
func (rp *ResultPublisher) Start(ctx context.Context) error {
	rp.logger.Info("result publisher started",
		slog.Int("batch_size", rp.batchSize),
		slog.Duration("interval", rp.interval))

	ticker := time.NewTicker(rp.interval)
	defer ticker.Stop()

	// Drain immediately on start
	if err := rp.processBatch(ctx); err != nil {
		rp.logger.Error("error publishing results on start", slog.String("error", err.Error()))
	}

	for {
		select {
		case <-ctx.Done():
			rp.logger.Info("result publisher shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := rp.processBatch(ctx); err != nil {
				rp.logger.Error("error publishing results", slog.String("error", err.Error()))
			}
		}
	}
}

func (rp *ResultPublisher) processBatch(ctx context.Context) error {
	events, err := rp.outboxRepo.GetUnpublished(ctx, rp.batchSize)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		return nil
	}

	for _, event := range events {
		if err := rp.publisher.Publish(ctx, event); err != nil {
			rp.logger.Error("failed to publish result",
				slog.String("event_id", event.ID),
				slog.String("event_type", event.EventType),
				slog.String("error", err.Error()))
			// Leave unpublished; the next sweep retries it.
			continue
		}

		if err := rp.outboxRepo.MarkPublished(ctx, event.ID, time.Now().UTC()); err != nil {
			rp.logger.Error("failed to mark result as published",
				slog.String("event_id", event.ID),
				slog.String("error", err.Error()))
		}
	}

	return nil
}

// LogPublisher is a Publisher that writes events to the log. It stands
// in for the originating channel's real transport.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	p.logger.Info("transfer result published",
		slog.String("event_id", event.ID),
		slog.String("event_type", event.EventType),
		slog.String("transfer_id", event.TransferID),
		slog.String("payload", string(payload)))

	return nil
}
