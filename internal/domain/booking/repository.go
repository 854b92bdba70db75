package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"ceramicflow/internal/domain/notification"
)

type reservationRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *reservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) CreateWithArtifact(ctx context.Context, res *Reservation, a *Artifact) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(res).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrSlotTaken
			}
			return err
		}

		a.ReservationID = res.ID
		return tx.Create(a).Error
	})
}

func (r *reservationRepository) SlotTaken(ctx context.Context, date string, slot time.Time, excludeID int64) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&Reservation{}).
		Where("calendar_date = ? AND slot_instant = ?", date, slot.UTC())
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var cnt int64
	if err := q.Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *reservationRepository) BookedSlots(ctx context.Context, date string) ([]time.Time, error) {
	var slots []time.Time
	err := r.db.WithContext(ctx).
		Model(&Reservation{}).
		Where("calendar_date = ?", date).
		Order("slot_instant").
		Pluck("slot_instant", &slots).Error
	return slots, err
}

func (r *reservationRepository) MarkStarted(ctx context.Context, ownerID int64, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&Reservation{}).
		Where("owner_id = ? AND status = ? AND slot_instant < ?", ownerID, StatusScheduled, now.UTC()).
		Updates(map[string]any{"status": StatusInProgress, "updated_at": now.UTC()}).Error
}

func (r *reservationRepository) ListByOwner(ctx context.Context, ownerID int64, date string) ([]Reservation, error) {
	q := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if date != "" {
		q = q.Where("calendar_date = ?", date)
	}

	var out []Reservation
	if err := q.Order("slot_instant ASC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reservationRepository) GetOwned(ctx context.Context, ownerID, id int64) (*Reservation, error) {
	var res Reservation
	err := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&res).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

func (r *reservationRepository) UpdateSlot(ctx context.Context, id int64, slot time.Time) error {
	tx := r.db.WithContext(ctx).
		Model(&Reservation{}).
		Where("id = ?", id).
		Update("slot_instant", slot.UTC())
	if tx.Error != nil {
		if isUniqueViolation(tx.Error) {
			return ErrSlotTaken
		}
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// DeleteWithArtifact removes the artifact, the reservation's pending events and
// the reservation itself, in that order.
func (r *reservationRepository) DeleteWithArtifact(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("reservation_id = ?", id).Delete(&Artifact{}).Error; err != nil {
			return err
		}
		if err := tx.Where("reservation_id = ?", id).Delete(&notification.Event{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&Reservation{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrReservationNotFound
		}
		return nil
	})
}

func (r *reservationRepository) ownedArtifacts(ctx context.Context, ownerID int64) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&Artifact{}).
		Joins("JOIN reservations ON reservations.id = artifacts.reservation_id").
		Where("reservations.owner_id = ?", ownerID)
}

func (r *reservationRepository) GetArtifact(ctx context.Context, ownerID, reservationID int64) (*Artifact, error) {
	var a Artifact
	err := r.ownedArtifacts(ctx, ownerID).
		Where("artifacts.reservation_id = ?", reservationID).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArtifactNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *reservationRepository) ListArtifacts(ctx context.Context, ownerID int64) ([]Artifact, error) {
	var out []Artifact
	err := r.ownedArtifacts(ctx, ownerID).
		Order("artifacts.id").
		Find(&out).Error
	return out, err
}

func (r *reservationRepository) SetReminders(ctx context.Context, ownerID, reservationID int64, enabled bool) (*Artifact, error) {
	a, err := r.GetArtifact(ctx, ownerID, reservationID)
	if err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Model(&Artifact{}).
		Where("id = ?", a.ID).
		Update("reminders_enabled", enabled).Error; err != nil {
		return nil, err
	}

	a.RemindersEnabled = enabled
	return a, nil
}

func (r *reservationRepository) ListCandidates(ctx context.Context, now time.Time) ([]Candidate, error) {
	var out []Candidate
	err := r.db.WithContext(ctx).
		Table("artifacts").
		Select("artifacts.id AS artifact_id, artifacts.reservation_id, reservations.owner_id, artifacts.name, artifacts.current_stage AS stage, artifacts.reminders_enabled").
		Joins("JOIN reservations ON reservations.id = artifacts.reservation_id").
		Where("reservations.slot_instant < ? AND artifacts.current_stage <> ?", now.UTC(), StageFinished).
		Order("artifacts.id").
		Scan(&out).Error
	return out, err
}

// Advance applies one stage move with a compare-and-set on the current stage.
func (r *reservationRepository) Advance(ctx context.Context, adv Advancement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Artifact{}).
			Where("id = ? AND current_stage = ?", adv.Candidate.ArtifactID, adv.Candidate.Stage).
			Update("current_stage", adv.To)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleCandidate
		}

		if err := tx.Model(&Reservation{}).
			Where("id = ?", adv.Candidate.ReservationID).
			Updates(map[string]any{"status": adv.Status, "updated_at": adv.At.UTC()}).Error; err != nil {
			return err
		}

		if adv.Event != nil {
			if err := tx.Create(adv.Event).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
}
