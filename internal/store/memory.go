package store

import (
	"context"
	"sync"

	"github.com/moolen/fitaura/internal/agent"
)

// maxTurnsPerUser bounds the in-memory history of one user.
const maxTurnsPerUser = 1000

// Memory is a process-local Store. Data is lost on restart.
type Memory struct {
	mu       sync.RWMutex
	profiles map[string]agent.Profile
	history  map[string][]Turn
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		profiles: make(map[string]agent.Profile),
		history:  make(map[string][]Turn),
	}
}

// Get implements ProfileStore.
func (m *Memory) Get(ctx context.Context, userID string) (agent.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.profiles[userID].Clone(), nil
}

// Put implements ProfileStore.
func (m *Memory) Put(ctx context.Context, userID string, profile agent.Profile) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[userID] = profile.Clone()
	return nil
}

// AppendTurn implements HistoryStore.
func (m *Memory) AppendTurn(ctx context.Context, userID string, turn Turn) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	turn.AgentsUsed = append([]string(nil), turn.AgentsUsed...)

	m.mu.Lock()
	defer m.mu.Unlock()
	turns := append(m.history[userID], turn)
	if len(turns) > maxTurnsPerUser {
		turns = turns[len(turns)-maxTurnsPerUser:]
	}
	m.history[userID] = turns
	return nil
}

// History implements HistoryStore.
func (m *Memory) History(ctx context.Context, userID string, limit int) ([]Turn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit = NormalizeLimit(limit)

	m.mu.RLock()
	defer m.mu.RUnlock()
	turns := m.history[userID]
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out, nil
}

// Close implements Store.
func (m *Memory) Close() error {
	return nil
}
