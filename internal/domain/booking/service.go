package booking

import (
	"context"
	"strings"
	"time"

	"ceramicflow/internal/pkg/apperr"
)

type Options struct {
	Location         *time.Location
	OpenHour         int
	CloseHour        int
	StrictReschedule bool
	Clock            func() time.Time
}

type Service struct {
	repo Repository
	opts Options
}

func NewService(repo Repository, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.OpenHour == 0 && opts.CloseHour == 0 {
		opts.OpenHour, opts.CloseHour = 10, 22
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Service{repo: repo, opts: opts}
}

func (s *Service) now() time.Time {
	return s.opts.Clock().In(s.opts.Location)
}

func (s *Service) parseDate(date string) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, strings.TrimSpace(date), s.opts.Location)
	if err != nil {
		return time.Time{}, apperr.Validation("date must be YYYY-MM-DD")
	}
	return day, nil
}

// Availability returns the free hourly slot labels for date in chronological order.
func (s *Service) Availability(ctx context.Context, date string) ([]string, error) {
	day, err := s.parseDate(date)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if day.Before(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.opts.Location)) {
		return []string{}, nil
	}

	booked, err := s.repo.BookedSlots(ctx, day.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	return freeSlots(day, s.opts.OpenHour, s.opts.CloseHour, booked, now), nil
}

type CreateInput struct {
	Label       string
	Date        string
	SlotInstant time.Time
	Kind        string
}

// Create books a slot and seeds its artifact in one transaction.
func (s *Service) Create(ctx context.Context, ownerID int64, in CreateInput) (*Reservation, error) {
	// 1. Validate input
	if ownerID <= 0 {
		return nil, apperr.Validation("owner is required")
	}
	label := strings.TrimSpace(in.Label)
	if label == "" {
		return nil, apperr.Validation("label is required")
	}
	kind, ok := ParseKind(strings.ToLower(strings.TrimSpace(in.Kind)))
	if !ok {
		return nil, apperr.Validation("unknown artifact kind %q", in.Kind)
	}
	day, err := s.parseDate(in.Date)
	if err != nil {
		return nil, err
	}
	if in.SlotInstant.IsZero() {
		return nil, apperr.Validation("slot is required")
	}

	// 2. Slot is minute precision and must sit on the requested date
	slot := in.SlotInstant.Truncate(time.Minute)
	if !sameDay(slot.In(s.opts.Location), day) {
		return nil, apperr.Validation("slot does not fall on %s", day.Format(dateLayout))
	}

	// 3. Check the slot is free
	date := day.Format(dateLayout)
	taken, err := s.repo.SlotTaken(ctx, date, slot, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlotTaken
	}

	// 4. Create reservation and its artifact together
	res := &Reservation{
		OwnerID:      ownerID,
		Label:        label,
		CalendarDate: date,
		SlotInstant:  slot.UTC(),
		ArtifactKind: kind,
		Status:       StatusScheduled,
	}
	art := &Artifact{
		Name:             artifactName(kind),
		CurrentStage:     StageModeling,
		RemindersEnabled: true,
	}
	if err := s.repo.CreateWithArtifact(ctx, res, art); err != nil {
		return nil, err
	}
	return res, nil
}

// List sweeps the owner's elapsed scheduled reservations to in_progress, then
// returns them ordered by slot. An empty date lists every date.
func (s *Service) List(ctx context.Context, ownerID int64, date string) ([]Reservation, error) {
	if date != "" {
		day, err := s.parseDate(date)
		if err != nil {
			return nil, err
		}
		date = day.Format(dateLayout)
	}

	if err := s.repo.MarkStarted(ctx, ownerID, s.opts.Clock()); err != nil {
		return nil, err
	}

	out, err := s.repo.ListByOwner(ctx, ownerID, date)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Reservation{}
	}
	return out, nil
}

// Reschedule moves a reservation to another slot on the same calendar date.
func (s *Service) Reschedule(ctx context.Context, ownerID, id int64, newSlot time.Time) (*Reservation, error) {
	res, err := s.repo.GetOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if newSlot.IsZero() {
		return nil, apperr.Validation("slot is required")
	}

	slot := newSlot.Truncate(time.Minute)
	if slot.In(s.opts.Location).Format(dateLayout) != res.CalendarDate {
		return nil, apperr.Validation("slot must stay on %s", res.CalendarDate)
	}

	if s.opts.StrictReschedule {
		taken, err := s.repo.SlotTaken(ctx, res.CalendarDate, slot, res.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrSlotTaken
		}
	}

	if err := s.repo.UpdateSlot(ctx, res.ID, slot); err != nil {
		return nil, err
	}
	res.SlotInstant = slot.UTC()
	return res, nil
}

func (s *Service) Cancel(ctx context.Context, ownerID, id int64) error {
	res, err := s.repo.GetOwned(ctx, ownerID, id)
	if err != nil {
		return err
	}
	return s.repo.DeleteWithArtifact(ctx, res.ID)
}

func (s *Service) GetArtifact(ctx context.Context, ownerID, reservationID int64) (*Artifact, error) {
	return s.repo.GetArtifact(ctx, ownerID, reservationID)
}

func (s *Service) ListArtifacts(ctx context.Context, ownerID int64) ([]Artifact, error) {
	out, err := s.repo.ListArtifacts(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Artifact{}
	}
	return out, nil
}

func (s *Service) SetReminders(ctx context.Context, ownerID, reservationID int64, enabled bool) (*Artifact, error) {
	return s.repo.SetReminders(ctx, ownerID, reservationID, enabled)
}

// ResolveSlot turns an "HH:MM" label on date into an instant in the studio location.
func (s *Service) ResolveSlot(date, hhmm string) (time.Time, error) {
	day, err := s.parseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	t, err := slotAt(day, strings.TrimSpace(hhmm), s.opts.Location)
	if err != nil {
		return time.Time{}, apperr.Validation("slot must be HH:MM")
	}
	return t, nil
}

// RescheduleTo is Reschedule with an "HH:MM" label on the reservation's own date.
func (s *Service) RescheduleTo(ctx context.Context, ownerID, id int64, hhmm string) (*Reservation, error) {
	res, err := s.repo.GetOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	slot, err := s.ResolveSlot(res.CalendarDate, hhmm)
	if err != nil {
		return nil, err
	}
	return s.Reschedule(ctx, ownerID, id, slot)
}
