// Package step runs named units of work at most once per run by recording
// a checkpoint after each successful step.
package step

import (
	"context"
	"sync"
	"time"
)

// Store persists step checkpoints and the claims that keep two executions
// of the same step from overlapping.
type Store interface {
	// GetCheckpoint returns the checkpoint data for a step, or nil when the
	// step has not completed in this run.
	GetCheckpoint(ctx context.Context, runID, stepName string) ([]byte, error)
	// SaveCheckpoint records that a step completed with the given data.
	SaveCheckpoint(ctx context.Context, runID, stepName string, data []byte) error
	// ClaimStep marks the step as running for owner until ttl elapses. It
	// reports false while an unexpired claim exists.
	ClaimStep(ctx context.Context, runID, stepName, owner string, ttl time.Duration) (bool, error)
	// ReleaseStep drops owner's claim. Claims held by other owners are kept.
	ReleaseStep(ctx context.Context, runID, stepName, owner string) error
}

type memoryCheckpoint struct {
	data      []byte
	expiresAt time.Time // zero: never
}

type memoryClaim struct {
	owner     string
	expiresAt time.Time
}

// MemoryStore is an in-process Store for single-instance deployments and tests.
type MemoryStore struct {
	mu          sync.Mutex
	ttl         time.Duration
	now         func() time.Time
	checkpoints map[string]memoryCheckpoint // key: "runID:stepName"
	claims      map[string]memoryClaim
}

// NewMemoryStore returns an empty MemoryStore whose checkpoints expire after
// ttl. A ttl of zero keeps checkpoints forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:         ttl,
		now:         time.Now,
		checkpoints: make(map[string]memoryCheckpoint),
		claims:      make(map[string]memoryClaim),
	}
}

// GetCheckpoint implements Store.
func (m *MemoryStore) GetCheckpoint(_ context.Context, runID, stepName string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := checkpointID(runID, stepName)
	cp, ok := m.checkpoints[id]
	if !ok {
		return nil, nil
	}
	if expired(cp.expiresAt, m.now()) {
		delete(m.checkpoints, id)
		return nil, nil
	}
	out := make([]byte, len(cp.data))
	copy(out, cp.data)
	return out, nil
}

// SaveCheckpoint implements Store. Expired checkpoints are swept on save.
func (m *MemoryStore) SaveCheckpoint(_ context.Context, runID, stepName string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)

	cp := memoryCheckpoint{data: make([]byte, len(data))}
	copy(cp.data, data)
	if m.ttl > 0 {
		cp.expiresAt = now.Add(m.ttl)
	}
	m.checkpoints[checkpointID(runID, stepName)] = cp
	return nil
}

// ClaimStep implements Store.
func (m *MemoryStore) ClaimStep(_ context.Context, runID, stepName, owner string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	id := checkpointID(runID, stepName)
	if c, ok := m.claims[id]; ok && !expired(c.expiresAt, now) {
		return false, nil
	}
	m.claims[id] = memoryClaim{owner: owner, expiresAt: now.Add(ttl)}
	return true, nil
}

// ReleaseStep implements Store.
func (m *MemoryStore) ReleaseStep(_ context.Context, runID, stepName, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := checkpointID(runID, stepName)
	if c, ok := m.claims[id]; ok && c.owner == owner {
		delete(m.claims, id)
	}
	return nil
}

// Len returns the number of unexpired checkpoints.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweep(m.now())
	return len(m.checkpoints)
}

func (m *MemoryStore) sweep(now time.Time) {
	for id, cp := range m.checkpoints {
		if expired(cp.expiresAt, now) {
			delete(m.checkpoints, id)
		}
	}
	for id, c := range m.claims {
		if expired(c.expiresAt, now) {
			delete(m.claims, id)
		}
	}
}

func expired(at, now time.Time) bool {
	return !at.IsZero() && !now.Before(at)
}

func checkpointID(runID, stepName string) string {
	return runID + ":" + stepName
}
