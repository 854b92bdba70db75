package booking

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
)

type ArtifactKind string

const (
	KindMug   ArtifactKind = "mug"
	KindVase  ArtifactKind = "vase"
	KindPlate ArtifactKind = "plate"
	KindOther ArtifactKind = "other"
)

func ParseKind(s string) (ArtifactKind, bool) {
	switch k := ArtifactKind(s); k {
	case KindMug, KindVase, KindPlate, KindOther:
		return k, true
	}
	return "", false
}

// Reservation is one hour slot booked by a client. CalendarDate is the studio-local
// date of SlotInstant; (CalendarDate, SlotInstant) is unique across all owners.
type Reservation struct {
	ID           int64        `json:"id" gorm:"primaryKey"`
	OwnerID      int64        `json:"owner_id" gorm:"not null;index"`
	Label        string       `json:"label" gorm:"type:varchar(200);not null"`
	CalendarDate string       `json:"date" gorm:"type:varchar(10);not null;uniqueIndex:idx_reservations_slot,priority:1"`
	SlotInstant  time.Time    `json:"slot_instant" gorm:"not null;uniqueIndex:idx_reservations_slot,priority:2"`
	ArtifactKind ArtifactKind `json:"artifact_kind" gorm:"type:varchar(16);not null"`
	Status       Status       `json:"status" gorm:"type:varchar(16);not null;index"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (Reservation) TableName() string { return "reservations" }

// Artifact is the piece made during a reservation. Exactly one per reservation.
type Artifact struct {
	ID               int64     `json:"id" gorm:"primaryKey"`
	ReservationID    int64     `json:"reservation_id" gorm:"not null;uniqueIndex"`
	Name             string    `json:"name" gorm:"type:varchar(120);not null"`
	CurrentStage     Stage     `json:"current_stage" gorm:"type:varchar(16);not null;index"`
	RemindersEnabled bool      `json:"reminders_enabled" gorm:"not null"`
	CreatedAt        time.Time `json:"created_at"`
}

func (Artifact) TableName() string { return "artifacts" }

func artifactName(kind ArtifactKind) string {
	return fmt.Sprintf("My %s", kind)
}

// StatusFor derives the reservation status from its artifact's stage.
func StatusFor(stage Stage) Status {
	if stage == StageFinished {
		return StatusFinished
	}
	return StatusInProgress
}
