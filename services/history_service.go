package services

import (
	"fmt"
	"sync"
	"time"

	"querygateapi/models"
	"querygateapi/pkg/logger"
	"querygateapi/repository"
)

const (
	historyDefaultDays  = 7
	historyDefaultLimit = 50
	historyMaxLimit     = 500
)

// HistoryService records and serves the query audit trail. Record satisfies
// the pipeline's recorder contract.
type HistoryService interface {
	Record(entry *models.QueryHistory) error
	GetRecent(userID uint, days, limit int, status string) ([]models.QueryHistory, error)
	Purge(retention time.Duration) (int64, error)
}

type historyService struct {
	historyRepo repository.QueryHistoryRepository
}

// NewHistoryService creates a new history service instance.
func NewHistoryService() HistoryService {
	return &historyService{
		historyRepo: repository.NewQueryHistoryRepository(),
	}
}

// Record persists one audit entry.
func (s *historyService) Record(entry *models.QueryHistory) error {
	if entry == nil {
		return fmt.Errorf("history entry cannot be nil")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return s.historyRepo.Create(nil, entry)
}

// GetRecent returns a user's audit entries from the last N days, newest
// first, optionally filtered to one status.
func (s *historyService) GetRecent(userID uint, days, limit int, status string) ([]models.QueryHistory, error) {
	if userID == 0 {
		return nil, fmt.Errorf("invalid user ID: must be greater than 0")
	}
	if days <= 0 {
		days = historyDefaultDays
	}
	if limit <= 0 {
		limit = historyDefaultLimit
	}
	if limit > historyMaxLimit {
		limit = historyMaxLimit
	}
	since := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
	return s.historyRepo.GetRecent(nil, userID, since, limit, status)
}

// Purge deletes audit entries older than the retention period.
func (s *historyService) Purge(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.historyRepo.DeleteOlderThan(nil, cutoff)
}

// RetentionSweeper deletes expired audit entries on a fixed interval in the
// background.
type RetentionSweeper struct {
	history   HistoryService
	retention time.Duration
	interval  time.Duration

	mu      sync.Mutex
	stopCh  chan struct{}
	stopped bool
}

// NewRetentionSweeper creates a sweeper that enforces the given retention.
func NewRetentionSweeper(history HistoryService, retention time.Duration) *RetentionSweeper {
	return &RetentionSweeper{
		history:   history,
		retention: retention,
		interval:  time.Hour,
		stopCh:    make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called.
func (rs *RetentionSweeper) Start() {
	go rs.loop()
}

// Stop stops the sweep loop.
func (rs *RetentionSweeper) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.stopped {
		close(rs.stopCh)
		rs.stopped = true
		logger.Infof("History retention sweeper stopped")
	}
}

func (rs *RetentionSweeper) loop() {
	ticker := time.NewTicker(rs.interval)
	defer ticker.Stop()

	logger.Infof("History retention sweeper started, retention %v", rs.retention)

	for {
		select {
		case <-rs.stopCh:
			return
		case <-ticker.C:
			n, err := rs.history.Purge(rs.retention)
			if err != nil {
				logger.Errorf("History retention sweep failed: %v", err)
				continue
			}
			if n > 0 {
				logger.Infof("History retention sweep removed %d entries", n)
			}
		}
	}
}
