package booking

import "time"

// CreateReservationRequest accepts either an absolute slot_instant or an "HH:MM"
// slot on date.
type CreateReservationRequest struct {
	Label        string     `json:"label" validate:"required,max=200"`
	Date         string     `json:"date" validate:"required"`
	Slot         string     `json:"slot"`
	SlotInstant  *time.Time `json:"slot_instant"`
	ArtifactKind string     `json:"artifact_kind" validate:"required"`
}

type RescheduleRequest struct {
	Slot        string     `json:"slot"`
	SlotInstant *time.Time `json:"slot_instant"`
}

type UpdateRemindersRequest struct {
	RemindersEnabled *bool `json:"reminders_enabled" validate:"required"`
}

type AvailabilityResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}
