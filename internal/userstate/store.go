// Package userstate owns the durable ban list and usage statistics.
package userstate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// userRecord tracks one requester's usage.
type userRecord struct {
	FirstSeen  time.Time `json:"first_seen"`
	QueryCount int64     `json:"query_count"`
	LastQuery  time.Time `json:"last_query,omitempty"`
}

// persisted is the durable form written to the state file.
type persisted struct {
	Banned       []int64               `json:"banned_users"`
	Users        map[int64]*userRecord `json:"users"`
	TotalQueries int64                 `json:"total_queries"`
	TotalFiles   int64                 `json:"total_files_indexed"`
	StartTime    time.Time             `json:"start_time"`
	LastSaved    time.Time             `json:"last_saved"`
}

// Stats is the aggregate counter snapshot.
type Stats struct {
	TotalUsers        int
	TotalQueries      int64
	TotalFilesIndexed int64
	BannedUsers       int
	StartTime         time.Time
	LastSaved         time.Time
}

// Store keeps the authoritative copy in memory and flushes the full state to
// one JSON file: periodically, immediately on ban/unban, and on shutdown.
type Store struct {
	path     string
	interval time.Duration
	log      *zap.Logger

	// saveMu serializes Save from snapshot through rename, so a save that
	// snapshots later always lands on disk later. Without it an autosave
	// holding a pre-ban snapshot could rename after the ban's immediate
	// flush and erase it from the durable copy.
	saveMu sync.Mutex

	mu           sync.RWMutex
	banned       map[int64]struct{}
	users        map[int64]*userRecord
	totalQueries int64
	totalFiles   int64
	startTime    time.Time
	lastSaved    time.Time
	dirty        bool
}

// New creates a Store persisting to path with the given autosave interval.
func New(path string, interval time.Duration, log *zap.Logger) *Store {
	return &Store{
		path:      path,
		interval:  interval,
		log:       log,
		banned:    make(map[int64]struct{}),
		users:     make(map[int64]*userRecord),
		startTime: time.Now(),
	}
}

// Load reads the durable copy. A missing or corrupt file initializes empty
// state instead of failing startup; corruption is reported through the log.
func (s *Store) Load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("failed to read state file, starting empty",
				zap.String("path", s.path), zap.Error(err))
		}
		return
	}

	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		s.log.Warn("state file corrupt, starting empty",
			zap.String("path", s.path), zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range p.Banned {
		s.banned[id] = struct{}{}
	}
	if p.Users != nil {
		s.users = p.Users
	}
	s.totalQueries = p.TotalQueries
	s.totalFiles = p.TotalFiles
	if !p.StartTime.IsZero() {
		s.startTime = p.StartTime
	}
	s.lastSaved = p.LastSaved
}

// Save writes the full state atomically: temp file in the same directory,
// fsync, rename. Saves are serialized, the snapshot is taken only once the
// writer's turn comes.
func (s *Store) Save() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	p := persisted{
		Banned:       bannedSlice(s.banned),
		Users:        copyUsers(s.users),
		TotalQueries: s.totalQueries,
		TotalFiles:   s.totalFiles,
		StartTime:    s.startTime,
		LastSaved:    time.Now(),
	}
	s.mu.Unlock()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	s.mu.Lock()
	s.lastSaved = p.LastSaved
	s.dirty = false
	s.mu.Unlock()
	return nil
}

// Run periodically flushes dirty state until ctx is cancelled, then performs
// a final save.
func (s *Store) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.RLock()
			dirty := s.dirty
			s.mu.RUnlock()
			if !dirty {
				continue
			}
			if err := s.Save(); err != nil {
				s.log.Error("autosave failed", zap.Error(err))
			}
		case <-ctx.Done():
			if err := s.Save(); err != nil {
				s.log.Error("final state save failed", zap.Error(err))
			}
			return
		}
	}
}

// IsBanned reports whether identity is on the ban list.
func (s *Store) IsBanned(identity int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.banned[identity]
	return ok
}

// Ban adds identity to the ban list and flushes immediately; a ban must not
// be lost on crash. It reports whether the list changed.
func (s *Store) Ban(identity int64) (bool, error) {
	s.mu.Lock()
	if _, ok := s.banned[identity]; ok {
		s.mu.Unlock()
		return false, nil
	}
	s.banned[identity] = struct{}{}
	s.mu.Unlock()

	if err := s.Save(); err != nil {
		return true, err
	}
	s.log.Info("user banned", zap.Int64("user_id", identity))
	return true, nil
}

// Unban removes identity from the ban list and flushes immediately.
func (s *Store) Unban(identity int64) (bool, error) {
	s.mu.Lock()
	if _, ok := s.banned[identity]; !ok {
		s.mu.Unlock()
		return false, nil
	}
	delete(s.banned, identity)
	s.mu.Unlock()

	if err := s.Save(); err != nil {
		return true, err
	}
	s.log.Info("user unbanned", zap.Int64("user_id", identity))
	return true, nil
}

// BannedUsers returns the ban list in ascending order.
func (s *Store) BannedUsers() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return bannedSlice(s.banned)
}

// RecordUsage counts one served query for identity, creating the per-user
// record on first sight. Flushed by the autosave loop, not inline.
func (s *Store) RecordUsage(identity int64) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalQueries++
	u, ok := s.users[identity]
	if !ok {
		u = &userRecord{FirstSeen: now}
		s.users[identity] = u
	}
	u.QueryCount++
	u.LastQuery = now
	s.dirty = true
}

// RecordIngest counts newly indexed files.
func (s *Store) RecordIngest(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalFiles += n
	s.dirty = true
}

// UserIDs returns every identity that has issued at least one query.
func (s *Store) UserIDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int64, 0, len(s.users))
	for id := range s.users {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SnapshotStats returns the aggregate counters.
func (s *Store) SnapshotStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		TotalUsers:        len(s.users),
		TotalQueries:      s.totalQueries,
		TotalFilesIndexed: s.totalFiles,
		BannedUsers:       len(s.banned),
		StartTime:         s.startTime,
		LastSaved:         s.lastSaved,
	}
}

func bannedSlice(m map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func copyUsers(m map[int64]*userRecord) map[int64]*userRecord {
	out := make(map[int64]*userRecord, len(m))
	for id, u := range m {
		cp := *u
		out[id] = &cp
	}
	return out
}
