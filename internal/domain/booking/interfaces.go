package booking

import (
	"context"
	"time"

	"ceramicflow/internal/domain/notification"
)

// Repository is the reservation ledger store. Owner-scoped lookups return
// ErrReservationNotFound / ErrArtifactNotFound for absent and foreign ids alike.
type Repository interface {
	CreateWithArtifact(ctx context.Context, r *Reservation, a *Artifact) error
	SlotTaken(ctx context.Context, date string, slot time.Time, excludeID int64) (bool, error)
	BookedSlots(ctx context.Context, date string) ([]time.Time, error)
	MarkStarted(ctx context.Context, ownerID int64, now time.Time) error
	ListByOwner(ctx context.Context, ownerID int64, date string) ([]Reservation, error)
	GetOwned(ctx context.Context, ownerID, id int64) (*Reservation, error)
	UpdateSlot(ctx context.Context, id int64, slot time.Time) error
	DeleteWithArtifact(ctx context.Context, id int64) error

	GetArtifact(ctx context.Context, ownerID, reservationID int64) (*Artifact, error)
	ListArtifacts(ctx context.Context, ownerID int64) ([]Artifact, error)
	SetReminders(ctx context.Context, ownerID, reservationID int64, enabled bool) (*Artifact, error)
}

// Candidate is an artifact eligible for advancement: its slot has passed and it
// is not finished.
type Candidate struct {
	ArtifactID       int64  `gorm:"column:artifact_id"`
	ReservationID    int64  `gorm:"column:reservation_id"`
	OwnerID          int64  `gorm:"column:owner_id"`
	Name             string `gorm:"column:name"`
	Stage            Stage  `gorm:"column:stage"`
	RemindersEnabled bool   `gorm:"column:reminders_enabled"`
}

// Advancement moves one candidate from Candidate.Stage to To. Event is persisted
// in the same transaction when set.
type Advancement struct {
	Candidate Candidate
	To        Stage
	Status    Status
	Event     *notification.Event
	At        time.Time
}
