package jobs

import (
	"sync"
	"time"

	"github.com/gcbaptista/promo-search-engine/model"
)

// StatsData is a point-in-time copy of job statistics
type StatsData struct {
	JobsCreated          int64                     `json:"jobs_created"`
	JobsCompleted        int64                     `json:"jobs_completed"`
	JobsFailed           int64                     `json:"jobs_failed"`
	JobsRejected         int64                     `json:"jobs_rejected"`
	AverageExecutionTime time.Duration             `json:"average_execution_time_ns"`
	LastExecutionTime    time.Duration             `json:"last_execution_time_ns"`
	JobsByType           map[model.JobType]int64   `json:"jobs_by_type"`
	JobsByStatus         map[model.JobStatus]int64 `json:"jobs_by_status"`
	LastUpdated          time.Time                 `json:"last_updated"`
}

// Stats tracks job counts and execution times
type Stats struct {
	mu                 sync.RWMutex
	created            int64
	completed          int64
	failed             int64
	rejected           int64
	totalExecutionTime time.Duration
	lastExecutionTime  time.Duration
	byType             map[model.JobType]int64
	byStatus           map[model.JobStatus]int64
	lastUpdated        time.Time
}

// NewStats creates an empty statistics collector
func NewStats() *Stats {
	return &Stats{
		byType:      make(map[model.JobType]int64),
		byStatus:    make(map[model.JobStatus]int64),
		lastUpdated: time.Now(),
	}
}

func (s *Stats) recordCreated(jobType model.JobType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created++
	s.byType[jobType]++
	s.byStatus[model.JobStatusPending]++
	s.lastUpdated = time.Now()
}

func (s *Stats) recordStatusChange(oldStatus, newStatus model.JobStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if oldStatus != "" && s.byStatus[oldStatus] > 0 {
		s.byStatus[oldStatus]--
	}
	s.byStatus[newStatus]++
	s.lastUpdated = time.Now()
}

func (s *Stats) recordFinished(err error, executionTime time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failed++
	} else {
		s.completed++
	}
	s.totalExecutionTime += executionTime
	s.lastExecutionTime = executionTime
	s.lastUpdated = time.Now()
}

func (s *Stats) recordRejected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejected++
	s.lastUpdated = time.Now()
}

// Snapshot returns a copy of the current statistics.
func (s *Stats) Snapshot() StatsData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byType := make(map[model.JobType]int64, len(s.byType))
	for k, v := range s.byType {
		byType[k] = v
	}
	byStatus := make(map[model.JobStatus]int64, len(s.byStatus))
	for k, v := range s.byStatus {
		byStatus[k] = v
	}

	var avg time.Duration
	if finished := s.completed + s.failed; finished > 0 {
		avg = s.totalExecutionTime / time.Duration(finished)
	}

	return StatsData{
		JobsCreated:          s.created,
		JobsCompleted:        s.completed,
		JobsFailed:           s.failed,
		JobsRejected:         s.rejected,
		AverageExecutionTime: avg,
		LastExecutionTime:    s.lastExecutionTime,
		JobsByType:           byType,
		JobsByStatus:         byStatus,
		LastUpdated:          s.lastUpdated,
	}
}

// SuccessRate returns the share of finished jobs that completed, 1.0 when none finished.
func (s *Stats) SuccessRate() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	finished := s.completed + s.failed
	if finished == 0 {
		return 1.0
	}
	return float64(s.completed) / float64(finished)
}
