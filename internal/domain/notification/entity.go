package notification

import "time"

// Event is a pending notice for the owner of a reservation. It is created when an
// artifact enters a notable stage and deleted when the owner pulls it.
type Event struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	ReservationID int64     `json:"reservation_id" gorm:"not null;index"`
	OwnerID       int64     `json:"-" gorm:"not null;index"`
	ArtifactName  string    `json:"artifact_name" gorm:"type:varchar(120)"`
	Stage         string    `json:"stage" gorm:"type:varchar(16)"`
	Message       string    `json:"message" gorm:"type:text;not null"`
	CreatedAt     time.Time `json:"timestamp" gorm:"index"`
}

func (Event) TableName() string { return "notification_events" }
