package worker

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-extractor/internal/pipeline"
)

type settled struct {
	acked, nacked, requeued bool
	calls                   int
}

// fakeAcknowledger records how a delivery was settled
type fakeAcknowledger struct {
	mu sync.Mutex
	s  settled
}

func (a *fakeAcknowledger) Ack(uint64, bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.s.acked = true
	a.s.calls++
	return nil
}

func (a *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.s.nacked = true
	a.s.requeued = requeue
	a.s.calls++
	return nil
}

func (a *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	return a.Nack(0, false, requeue)
}

func (a *fakeAcknowledger) result() settled {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.s
}

func delivery(t *testing.T, body any) (amqp.Delivery, *fakeAcknowledger) {
	t.Helper()
	var raw []byte
	switch b := body.(type) {
	case []byte:
		raw = b
	default:
		var err error
		raw, err = json.Marshal(b)
		require.NoError(t, err)
	}
	ack := &fakeAcknowledger{}
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: 7, Body: raw}, ack
}

type fakePublisher struct {
	mu      sync.Mutex
	updates []StatusUpdate
	err     error
}

func (p *fakePublisher) Publish(_ context.Context, u StatusUpdate) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, u)
	return p.err
}

func (p *fakePublisher) statuses() []Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Status, 0, len(p.updates))
	for _, u := range p.updates {
		out = append(out, u.Status)
	}
	return out
}

func (p *fakePublisher) last() StatusUpdate {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.updates[len(p.updates)-1]
}

type fakeSource struct {
	texts map[string]string
	err   error
}

func (s *fakeSource) Fetch(_ context.Context, key string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.texts[key], nil
}

type fakeExtractor struct {
	mu      sync.Mutex
	configs []pipeline.Config
	run     func(ctx context.Context, cfg pipeline.Config) (*pipeline.Result, error)
}

func (e *fakeExtractor) OrchestrateExtraction(ctx context.Context, cfg pipeline.Config) (*pipeline.Result, error) {
	e.mu.Lock()
	e.configs = append(e.configs, cfg)
	e.mu.Unlock()
	return e.run(ctx, cfg)
}
