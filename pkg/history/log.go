// Package history keeps an in-memory log of generated queries and the
// ratings users attach to them. The log is bounded: once the configured
// capacity is reached the oldest entries are dropped.
package history

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sqlsentinel/sentinel-engine/pkg/apperrors"
	"github.com/sqlsentinel/sentinel-engine/pkg/models"
)

// DefaultCapacity bounds the log when no explicit capacity is given.
const DefaultCapacity = 500

// DefaultRecentLimit is how many entries Recent returns when the caller
// asks for zero or a negative count.
const DefaultRecentLimit = 50

// Log is a bounded, append-only record of query generations.
// All methods are safe for concurrent use.
type Log struct {
	mu       sync.RWMutex
	capacity int
	entries  []models.QueryRecord
	byID     map[uuid.UUID]int
}

// NewLog creates a log holding at most capacity entries. A capacity of
// zero or less falls back to DefaultCapacity.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		capacity: capacity,
		byID:     make(map[uuid.UUID]int),
	}
}

// Append stores a record and returns it with ID and CreatedAt filled in
// when the caller left them zero. The oldest entry is evicted when the
// log is full.
func (l *Log) Append(record models.QueryRecord) models.QueryRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	if len(l.entries) >= l.capacity {
		evicted := l.entries[0]
		delete(l.byID, evicted.ID)
		l.entries = l.entries[1:]
		l.reindexLocked()
	}

	l.entries = append(l.entries, record)
	l.byID[record.ID] = len(l.entries) - 1
	return record
}

// Get returns the record with the given ID.
func (l *Log) Get(id uuid.UUID) (models.QueryRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	idx, ok := l.byID[id]
	if !ok {
		return models.QueryRecord{}, fmt.Errorf("query %s: %w", id, apperrors.ErrNotFound)
	}
	return l.entries[idx], nil
}

// Recent returns up to n records, newest first. n <= 0 means
// DefaultRecentLimit.
func (l *Log) Recent(n int) []models.QueryRecord {
	if n <= 0 {
		n = DefaultRecentLimit
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]models.QueryRecord, n)
	for i := 0; i < n; i++ {
		out[i] = l.entries[len(l.entries)-1-i]
	}
	return out
}

// Len returns the number of stored records.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Rate attaches a user rating to a recorded query. Stars must be in
// [1,5].
func (l *Log) Rate(id uuid.UUID, stars int, comment string) (models.QueryRecord, error) {
	if stars < 1 || stars > 5 {
		return models.QueryRecord{}, fmt.Errorf("stars %d: %w", stars, apperrors.ErrInvalidRating)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	idx, ok := l.byID[id]
	if !ok {
		return models.QueryRecord{}, fmt.Errorf("query %s: %w", id, apperrors.ErrNotFound)
	}

	l.entries[idx].Rating = &models.UserRating{
		Stars:   stars,
		Comment: comment,
		RatedAt: time.Now().UTC(),
	}
	return l.entries[idx], nil
}

// Summary aggregates the log: totals, validity counts, and averages of
// the recorded scores and ratings.
type Summary struct {
	Total        int      `json:"total"`
	Valid        int      `json:"valid"`
	Invalid      int      `json:"invalid"`
	Rated        int      `json:"rated"`
	AverageScore float64  `json:"average_score"`
	AverageStars float64  `json:"average_stars"`
	CommonIssues []string `json:"common_issues,omitempty"`
}

// maxCommonIssues caps the issue messages reported in a Summary.
const maxCommonIssues = 3

// Summarize computes aggregate statistics over all stored records.
func (l *Log) Summarize() Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var s Summary
	var scoreSum float64
	var scored int
	var starsSum int
	issueCounts := make(map[string]int)

	s.Total = len(l.entries)
	for _, rec := range l.entries {
		if rec.IsValid {
			s.Valid++
		} else {
			s.Invalid++
		}
		if rec.Scores != nil {
			scoreSum += rec.Scores.Overall
			scored++
		}
		if rec.Rating != nil {
			s.Rated++
			starsSum += rec.Rating.Stars
		}
		for _, msg := range rec.Errors {
			issueCounts[msg]++
		}
		for _, msg := range rec.SecurityIssues {
			issueCounts[msg]++
		}
	}
	if scored > 0 {
		s.AverageScore = scoreSum / float64(scored)
	}
	if s.Rated > 0 {
		s.AverageStars = float64(starsSum) / float64(s.Rated)
	}
	s.CommonIssues = topIssues(issueCounts, maxCommonIssues)
	return s
}

// topIssues returns up to limit messages ordered by descending count,
// ties broken alphabetically so the result is deterministic.
func topIssues(counts map[string]int, limit int) []string {
	if len(counts) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(counts))
	for msg := range counts {
		msgs = append(msgs, msg)
	}
	sort.Slice(msgs, func(i, j int) bool {
		if counts[msgs[i]] != counts[msgs[j]] {
			return counts[msgs[i]] > counts[msgs[j]]
		}
		return msgs[i] < msgs[j]
	})
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs
}

// reindexLocked rebuilds the ID index after an eviction shifted entry
// positions. Caller must hold the write lock.
func (l *Log) reindexLocked() {
	for i := range l.entries {
		l.byID[l.entries[i].ID] = i
	}
}
