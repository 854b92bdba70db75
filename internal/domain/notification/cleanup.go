package notification

import (
	"context"
	"log"
	"time"
)

// CleanupService purges events that were never pulled.
type CleanupService struct {
	repo      Repository
	retention time.Duration
	now       func() time.Time
}

func NewCleanupService(repo Repository, retention time.Duration) *CleanupService {
	return &CleanupService{
		repo:      repo,
		retention: retention,
		now:       time.Now,
	}
}

// CleanupOldEvents removes events older than the retention window.
func (c *CleanupService) CleanupOldEvents(ctx context.Context) (int64, error) {
	startTime := time.Now()

	cutoff := c.now().Add(-c.retention)
	deleted, err := c.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("notification cleanup failed: %v", err)
		return 0, err
	}

	log.Printf("notification cleanup completed: deleted=%d cutoff=%s took=%v", deleted, cutoff.Format(time.RFC3339), time.Since(startTime))
	return deleted, nil
}
