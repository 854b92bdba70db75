package notification

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, e *Event) error
	// Pull returns the owner's events oldest first and deletes exactly those.
	Pull(ctx context.Context, ownerID int64) ([]Event, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *eventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, e *Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *eventRepository) Pull(ctx context.Context, ownerID int64) ([]Event, error) {
	var out []Event
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ?", ownerID).
			Order("created_at ASC, id ASC").
			Find(&out).Error; err != nil {
			return err
		}
		if len(out) == 0 {
			return nil
		}

		ids := make([]int64, 0, len(out))
		for _, e := range out {
			ids = append(ids, e.ID)
		}
		return tx.Where("id IN ?", ids).Delete(&Event{}).Error
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *eventRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", cutoff.UTC()).Delete(&Event{})
	return res.RowsAffected, res.Error
}
