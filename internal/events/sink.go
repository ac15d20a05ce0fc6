// Package events delivers domain events to downstream consumers. Delivery
// is fire-and-forget: a sink failure is logged and never propagated back
// into the escrow engine.
package events

import (
	"context"

	"github.com/tobiasgatti02/Tolio-sub002/internal/domain"
	"github.com/tobiasgatti02/Tolio-sub002/internal/logger"
	"github.com/tobiasgatti02/Tolio-sub002/internal/repository"
)

// Sink consumes emitted domain events.
type Sink interface {
	Emit(ctx context.Context, event domain.Event)
}

// LogSink writes every event to the structured log.
type LogSink struct{}

func NewLogSink() *LogSink {
	return &LogSink{}
}

func (s *LogSink) Emit(ctx context.Context, event domain.Event) {
	payload, err := event.PayloadToJSON()
	if err != nil {
		logger.Error("Failed to serialize event", "event_type", event.EventType(), "error", err)
		return
	}
	logger.Info("Domain event", "event_type", event.EventType(), "payload", string(payload))
}

// AuditSink appends events to the event repository as an immutable trail.
type AuditSink struct {
	repo repository.EventRepository
}

func NewAuditSink(repo repository.EventRepository) *AuditSink {
	return &AuditSink{repo: repo}
}

func (s *AuditSink) Emit(ctx context.Context, event domain.Event) {
	payload, err := event.PayloadToJSON()
	if err != nil {
		logger.Error("Failed to serialize event for audit", "event_type", event.EventType(), "error", err)
		return
	}
	meta := event.Meta()
	if err := s.repo.Append(ctx, meta.EventID, event.EventType(), meta.DealID, payload); err != nil {
		logger.Error("Failed to append event to audit trail", "event_type", event.EventType(), "deal_id", meta.DealID, "error", err)
	}
}

// FanoutSink forwards each event to every registered sink in order.
type FanoutSink struct {
	sinks []Sink
}

func NewFanoutSink(sinks ...Sink) *FanoutSink {
	return &FanoutSink{sinks: sinks}
}

func (s *FanoutSink) Emit(ctx context.Context, event domain.Event) {
	for _, sink := range s.sinks {
		sink.Emit(ctx, event)
	}
}
