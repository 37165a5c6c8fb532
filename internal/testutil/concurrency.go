package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/vk/execgraph/internal/registry"
	"github.com/vk/execgraph/internal/value"
)

// MockSleeperModule is a shared, self-contained module for concurrency tests.
// Its "sleep" primitive records when each call ran and how many calls
// overlapped.
type MockSleeperModule struct {
	ExecutionTimes map[string]*ExecutionRecord
	MaxConcurrent  int

	mu            sync.Mutex
	running       int
	sleepDuration time.Duration
}

// NewMockSleeperModule creates a new sleeper module for testing.
func NewMockSleeperModule(sleep time.Duration) *MockSleeperModule {
	return &MockSleeperModule{
		ExecutionTimes: make(map[string]*ExecutionRecord),
		sleepDuration:  sleep,
	}
}

// Register registers sleep(id), which sleeps and returns id.
func (m *MockSleeperModule) Register(r *registry.Registry) {
	r.Register(&registry.Descriptor{
		Name:   "sleep",
		Arity:  registry.Fixed(1),
		Inputs: []value.KindSet{value.KindsOf(value.StringKind)},
		Effect: registry.Effectful,
		Eval: func(ctx context.Context, args []value.Value) (value.Value, error) {
			m.mu.Lock()
			m.running++
			m.MaxConcurrent = max(m.MaxConcurrent, m.running)
			m.mu.Unlock()

			startTime := time.Now()
			select {
			case <-time.After(m.sleepDuration):
			case <-ctx.Done():
			}
			endTime := time.Now()

			m.mu.Lock()
			m.running--
			m.ExecutionTimes[args[0].Str()] = &ExecutionRecord{Start: startTime, End: endTime}
			m.mu.Unlock()
			return args[0], ctx.Err()
		},
	})
}
