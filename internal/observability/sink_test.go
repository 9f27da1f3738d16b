package observability

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jonathan/career-extractor/internal/types"
)

func TestChannelSink_DropsWhenFull(t *testing.T) {
	sink := NewChannelSink(1)
	ctx := context.Background()

	sink.Emit(ctx, Progress{Message: "first"})
	sink.Emit(ctx, Progress{Message: "second"})

	assert.Equal(t, int64(1), sink.Dropped())
	got := <-sink.C()
	assert.Equal(t, "first", got.Message)

	sink.Close()
	_, open := <-sink.C()
	assert.False(t, open)
}

func TestLoggerSink(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sink := LoggerSink{Logger: zap.New(core)}

	sink.Emit(context.Background(), Progress{Phase: "passes", Category: types.CategorySkills, Message: "running skills", Percent: 40})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "running skills", entry.Message)
	assert.Equal(t, "skills", entry.ContextMap()["category"])
	assert.Equal(t, 40.0, entry.ContextMap()["percent"])
}

func TestRecorderSink(t *testing.T) {
	store := NewMemoryStore()
	sink := RecorderSink{Recorder: NewRecorder(store, nil)}
	id := uuid.New()

	sink.Emit(context.Background(), Progress{SessionID: id, Phase: "structure", Message: "parsed", Percent: 10})

	events, _ := store.ListEvents(context.Background(), id)
	require.Len(t, events, 1)
	assert.Equal(t, types.EventProgress, events[0].EventType)
	assert.Equal(t, "structure", events[0].Phase)
	assert.Equal(t, 10.0, events[0].Data["percent"])
}

func TestMultiSink(t *testing.T) {
	a := NewChannelSink(4)
	b := NewChannelSink(4)
	multi := MultiSink{a, nil, NopSink{}, b}

	multi.Emit(context.Background(), Progress{Message: "x"})

	assert.Len(t, a.C(), 1)
	assert.Len(t, b.C(), 1)
}
