package observability

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/career-extractor/internal/types"
)

// Progress is one progress notification emitted by the orchestrator
type Progress struct {
	SessionID uuid.UUID      `json:"session_id"`
	Phase     string         `json:"phase"`
	Category  types.Category `json:"category,omitempty"`
	Message   string         `json:"message"`
	Percent   float64        `json:"percent"`
	Time      time.Time      `json:"time"`
}

// ProgressSink receives progress notifications. Emit must not block.
type ProgressSink interface {
	Emit(ctx context.Context, p Progress)
}

// NopSink discards progress
type NopSink struct{}

// Emit implements ProgressSink
func (NopSink) Emit(context.Context, Progress) {}

// LoggerSink writes progress to a zap logger
type LoggerSink struct {
	Logger *zap.Logger
}

// Emit implements ProgressSink
func (s LoggerSink) Emit(_ context.Context, p Progress) {
	if s.Logger == nil {
		return
	}
	fields := []zap.Field{
		zap.String("phase", p.Phase),
		zap.Float64("percent", p.Percent),
	}
	if p.Category != "" {
		fields = append(fields, zap.String("category", string(p.Category)))
	}
	s.Logger.Info(p.Message, fields...)
}

// RecorderSink stores progress as session events
type RecorderSink struct {
	Recorder *Recorder
}

// Emit implements ProgressSink
func (s RecorderSink) Emit(ctx context.Context, p Progress) {
	if s.Recorder == nil {
		return
	}
	s.Recorder.LogEvent(ctx, p.SessionID, types.ExtractionEvent{
		EventType: types.EventProgress,
		Phase:     p.Phase,
		Category:  p.Category,
		Message:   p.Message,
		Data:      map[string]any{"percent": p.Percent},
		CreatedAt: p.Time,
	})
}

// ChannelSink forwards progress to a buffered channel, dropping
// notifications when the reader falls behind
type ChannelSink struct {
	ch      chan Progress
	dropped atomic.Int64
}

// NewChannelSink creates a sink with the given buffer size
func NewChannelSink(buffer int) *ChannelSink {
	if buffer < 1 {
		buffer = 1
	}
	return &ChannelSink{ch: make(chan Progress, buffer)}
}

// C returns the receive side
func (s *ChannelSink) C() <-chan Progress {
	return s.ch
}

// Dropped returns how many notifications were discarded
func (s *ChannelSink) Dropped() int64 {
	return s.dropped.Load()
}

// Emit implements ProgressSink
func (s *ChannelSink) Emit(_ context.Context, p Progress) {
	select {
	case s.ch <- p:
	default:
		s.dropped.Add(1)
	}
}

// Close closes the channel; Emit must not be called afterwards
func (s *ChannelSink) Close() {
	close(s.ch)
}

// MultiSink fans progress out to several sinks in order
type MultiSink []ProgressSink

// Emit implements ProgressSink
func (m MultiSink) Emit(ctx context.Context, p Progress) {
	for _, s := range m {
		if s != nil {
			s.Emit(ctx, p)
		}
	}
}
