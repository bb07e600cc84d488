// Package audit records access decisions. Recording never blocks or fails the
// decision it describes.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"talents/internal/models"
	"talents/internal/observability"
	"talents/internal/repository"
)

// Sink accepts access decisions. Implementations must return promptly and
// must not report failures to the caller.
type Sink interface {
	Record(ctx context.Context, decision models.AccessDecision)
}

// Discard drops every decision.
var Discard Sink = discardSink{}

type discardSink struct{}

func (discardSink) Record(context.Context, models.AccessDecision) {}

// multiSink counts each decision and fans it out.
type multiSink struct {
	sinks []Sink
}

// New returns a sink that meters every decision and forwards it to sinks.
func New(sinks ...Sink) Sink {
	return &multiSink{sinks: sinks}
}

func (m *multiSink) Record(ctx context.Context, decision models.AccessDecision) {
	if decision.Timestamp.IsZero() {
		decision.Timestamp = time.Now().UTC()
	}
	observability.RecordAccessDecision(decision.ResourceType, decision.Action, decision.Granted)
	for _, s := range m.sinks {
		s.Record(ctx, decision)
	}
}

// LogSink writes decisions to the structured log. Denials log at info,
// grants at debug.
type LogSink struct{}

func (LogSink) Record(ctx context.Context, d models.AccessDecision) {
	level := slog.LevelDebug
	if !d.Granted {
		level = slog.LevelInfo
	}
	observability.GlobalLogger.Log(ctx, level, "access decision",
		slog.Uint64("actor_id", uint64(d.ActorID)),
		slog.String("resource_type", d.ResourceType),
		slog.Uint64("resource_id", uint64(d.ResourceID)),
		slog.String("action", d.Action),
		slog.Bool("granted", d.Granted),
		slog.String("reason", d.Reason),
		slog.String("correlation_id", observability.ExtractCorrelationID(ctx)),
	)
}

// DBSink appends decisions to the access_decisions table in the background.
type DBSink struct {
	repo    repository.AccessDecisionRepository
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDBSink creates a persistent sink. Each write gets its own timeout and
// outlives the request that produced it.
func NewDBSink(repo repository.AccessDecisionRepository, timeout time.Duration) *DBSink {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &DBSink{repo: repo, timeout: timeout}
}

func (s *DBSink) Record(ctx context.Context, decision models.AccessDecision) {
	bg := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		writeCtx, cancel := context.WithTimeout(bg, s.timeout)
		defer cancel()

		d := decision
		if err := s.repo.Append(writeCtx, &d); err != nil {
			observability.AuditWriteFailures.Inc()
			observability.LogAsyncOperationError(bg, "audit_append", err, map[string]interface{}{
				"resource_type": d.ResourceType,
				"resource_id":   d.ResourceID,
				"action":        d.Action,
			})
		}
	}()
}

// Wait blocks until pending writes finish. Used on shutdown and in tests.
func (s *DBSink) Wait() {
	s.wg.Wait()
}
