package db

import (
	"context"
	"sync"

	"github.com/baiirun/deck/internal/model"
)

// Memory is a Repository that keeps everything in process memory. Nothing
// survives the process; it backs the "memory" storage driver and tests.
type Memory struct {
	mu      sync.Mutex
	snap    model.Snapshot
	chasers []model.Chaser
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(context.Context) (model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap, nil
}

func (m *Memory) Save(_ context.Context, snap model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap
	return nil
}

func (m *Memory) AppendChaser(_ context.Context, c model.Chaser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chasers = append(m.chasers, c)
	return nil
}

func (m *Memory) ListChasers(_ context.Context, taskID string) ([]model.Chaser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Chaser
	for _, c := range m.chasers {
		if taskID == "" || c.TaskID == taskID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }
