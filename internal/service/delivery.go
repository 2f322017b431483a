package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ouerghi-selim/merelformation-api/internal/models"
	"github.com/ouerghi-selim/merelformation-api/pkg/config"
	"github.com/ouerghi-selim/merelformation-api/pkg/jobs"
)

// Mailer is the outgoing mail transport. The production transport lives
// outside this service; LogMailer stands in for it in development.
type Mailer interface {
	Send(ctx context.Context, from, to string, message models.RenderedMessage) error
}

// dedupStore marks a delivery key as seen. Acquire returns false when the
// key was already marked inside the TTL window.
type dedupStore interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

type notifiedMarker interface {
	MarkNotified(ctx context.Context, auditID string) error
}

// LogMailer writes outgoing mail to the log instead of a wire transport.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer constructs a LogMailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

// Send logs the message and reports success.
func (m *LogMailer) Send(_ context.Context, from, to string, message models.RenderedMessage) error {
	m.logger.Info("outgoing mail",
		zap.String("from", from),
		zap.String("to", to),
		zap.String("subject", message.Subject))
	return nil
}

// QueueSink delivers outbound emails through the in-memory job queue. A
// message is retried on transport failure; the audit notified flag is
// flipped at most once per dedup key, so redeliveries stay harmless.
type QueueSink struct {
	queue    *jobs.Queue
	mailer   Mailer
	dedup    dedupStore
	audits   notifiedMarker
	from     string
	dedupTTL time.Duration
	logger   *zap.Logger
}

// NewQueueSink wires the delivery queue. Start must be called before any
// Dispatch.
func NewQueueSink(mailer Mailer, dedup dedupStore, audits notifiedMarker, cfg config.NotificationsConfig, logger *zap.Logger) *QueueSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	sink := &QueueSink{
		mailer:   mailer,
		dedup:    dedup,
		audits:   audits,
		from:     cfg.FromAddress,
		dedupTTL: cfg.DedupTTL,
		logger:   logger,
	}
	sink.queue = jobs.NewQueue("notifications", sink.deliver, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return sink
}

// Start launches the delivery workers.
func (s *QueueSink) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *QueueSink) Stop() {
	s.queue.Stop()
}

// Dispatch enqueues the email for asynchronous delivery.
func (s *QueueSink) Dispatch(_ context.Context, email models.OutboundEmail) error {
	return s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    "notification",
		Payload: email,
	})
}

func (s *QueueSink) deliver(ctx context.Context, job jobs.Job) error {
	email, ok := job.Payload.(models.OutboundEmail)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}

	if err := s.mailer.Send(ctx, s.from, email.Recipient, email.Message); err != nil {
		return fmt.Errorf("send to %s: %w", email.Recipient, err)
	}

	// The dedup key is acquired after the send succeeds so a retried send is
	// possible, but the notified flip happens exactly once per key.
	first, err := s.dedup.Acquire(ctx, email.DedupKey, s.dedupTTL)
	if err != nil {
		s.logger.Warn("dedup check failed after delivery",
			zap.String("dedup_key", email.DedupKey),
			zap.Error(err))
		return nil
	}
	if !first {
		s.logger.Debug("duplicate delivery suppressed",
			zap.String("dedup_key", email.DedupKey))
		return nil
	}
	if email.AuditID != "" {
		if err := s.audits.MarkNotified(ctx, email.AuditID); err != nil {
			s.logger.Warn("failed to mark audit notified",
				zap.String("audit_id", email.AuditID),
				zap.Error(err))
		}
	}
	return nil
}
