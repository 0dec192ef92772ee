package index

import (
	"context"
	"sync"

	"MediaSearchBot/internal/models"
)

// Memory is an in-memory Store. It backs unit tests and shares its ranking
// path with the Mongo store.
type Memory struct {
	captions bool

	mu      sync.RWMutex
	records map[string]models.MediaRecord
}

// NewMemory creates an empty in-memory catalog. captionSearch controls
// whether captions participate in matching.
func NewMemory(captionSearch bool) *Memory {
	return &Memory{
		captions: captionSearch,
		records:  make(map[string]models.MediaRecord),
	}
}

func (m *Memory) Upsert(ctx context.Context, rec models.MediaRecord) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, models.WrapStorage(models.StorageTimeout, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, existed := m.records[rec.Key]
	m.records[rec.Key] = rec
	return !existed, nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return models.WrapStorage(models.StorageTimeout, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, key)
	return nil
}

func (m *Memory) Search(ctx context.Context, q Query) ([]models.MediaRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.WrapStorage(models.StorageTimeout, err)
	}
	snapshot := m.snapshot()
	ordered := filterAndRank(snapshot, q, m.captions)
	return pageSlice(ordered, q.Offset, q.Limit), nil
}

func (m *Memory) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, models.WrapStorage(models.StorageTimeout, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.records)), nil
}

func (m *Memory) CountByKind(ctx context.Context) (map[models.MediaKind]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.WrapStorage(models.StorageTimeout, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[models.MediaKind]int64)
	for _, rec := range m.records {
		out[rec.Kind]++
	}
	return out, nil
}

func (m *Memory) CountByChannel(ctx context.Context) (map[int64]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.WrapStorage(models.StorageTimeout, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int64]int64)
	for _, rec := range m.records {
		out[rec.ChannelID]++
	}
	return out, nil
}

// snapshot copies the record set so ranking runs without holding the lock.
// Each record is copied whole, so a concurrent upsert is seen old-or-new,
// never mixed.
func (m *Memory) snapshot() []models.MediaRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.MediaRecord, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	return out
}
