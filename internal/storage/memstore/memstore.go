// Package memstore is an in-process store for the reservation ledger, the stage
// machine and pending notifications. Rows live in id-keyed arenas with secondary
// indexes; one mutex makes each multi-row operation atomic.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"ceramicflow/internal/domain/booking"
	"ceramicflow/internal/domain/notification"
	"ceramicflow/internal/domain/progress"
)

var (
	_ booking.Repository      = (*Store)(nil)
	_ progress.Store          = (*Store)(nil)
	_ notification.Repository = (*Store)(nil)
)

type slotKey struct {
	date string
	unix int64
}

type Store struct {
	mu sync.RWMutex

	reservations map[int64]*booking.Reservation
	artifacts    map[int64]*booking.Artifact
	events       map[int64]*notification.Event

	bySlot        map[slotKey]int64
	byReservation map[int64]int64 // reservation id -> artifact id
	byOwner       map[int64]map[int64]struct{}

	nextReservation int64
	nextArtifact    int64
	nextEvent       int64

	now func() time.Time
}

func New() *Store {
	return &Store{
		reservations:  make(map[int64]*booking.Reservation),
		artifacts:     make(map[int64]*booking.Artifact),
		events:        make(map[int64]*notification.Event),
		bySlot:        make(map[slotKey]int64),
		byReservation: make(map[int64]int64),
		byOwner:       make(map[int64]map[int64]struct{}),
		now:           time.Now,
	}
}

func keyOf(date string, slot time.Time) slotKey {
	return slotKey{date: date, unix: slot.UTC().Unix()}
}

func (s *Store) CreateWithArtifact(_ context.Context, r *booking.Reservation, a *booking.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := keyOf(r.CalendarDate, r.SlotInstant)
	if _, taken := s.bySlot[key]; taken {
		return booking.ErrSlotTaken
	}

	now := s.now().UTC()
	s.nextReservation++
	r.ID = s.nextReservation
	r.CreatedAt, r.UpdatedAt = now, now

	s.nextArtifact++
	a.ID = s.nextArtifact
	a.ReservationID = r.ID
	a.CreatedAt = now

	rc, ac := *r, *a
	s.reservations[r.ID] = &rc
	s.artifacts[a.ID] = &ac
	s.bySlot[key] = r.ID
	s.byReservation[r.ID] = a.ID
	owned, ok := s.byOwner[r.OwnerID]
	if !ok {
		owned = make(map[int64]struct{})
		s.byOwner[r.OwnerID] = owned
	}
	owned[r.ID] = struct{}{}
	return nil
}

func (s *Store) SlotTaken(_ context.Context, date string, slot time.Time, excludeID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.bySlot[keyOf(date, slot)]
	return ok && id != excludeID, nil
}

func (s *Store) BookedSlots(_ context.Context, date string) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []time.Time
	for key := range s.bySlot {
		if key.date == date {
			out = append(out, time.Unix(key.unix, 0).UTC())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func (s *Store) MarkStarted(_ context.Context, ownerID int64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.byOwner[ownerID] {
		r := s.reservations[id]
		if r.Status == booking.StatusScheduled && r.SlotInstant.Before(now) {
			r.Status = booking.StatusInProgress
			r.UpdatedAt = now.UTC()
		}
	}
	return nil
}

func (s *Store) ListByOwner(_ context.Context, ownerID int64, date string) ([]booking.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]booking.Reservation, 0, len(s.byOwner[ownerID]))
	for id := range s.byOwner[ownerID] {
		r := s.reservations[id]
		if date != "" && r.CalendarDate != date {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SlotInstant.Equal(out[j].SlotInstant) {
			return out[i].ID < out[j].ID
		}
		return out[i].SlotInstant.Before(out[j].SlotInstant)
	})
	return out, nil
}

// owned must be called with s.mu held.
func (s *Store) owned(ownerID, id int64) (*booking.Reservation, bool) {
	r, ok := s.reservations[id]
	if !ok || r.OwnerID != ownerID {
		return nil, false
	}
	return r, true
}

func (s *Store) GetOwned(_ context.Context, ownerID, id int64) (*booking.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.owned(ownerID, id)
	if !ok {
		return nil, booking.ErrReservationNotFound
	}
	out := *r
	return &out, nil
}

func (s *Store) UpdateSlot(_ context.Context, id int64, slot time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reservations[id]
	if !ok {
		return booking.ErrReservationNotFound
	}
	newKey := keyOf(r.CalendarDate, slot)
	if other, taken := s.bySlot[newKey]; taken && other != id {
		return booking.ErrSlotTaken
	}

	delete(s.bySlot, keyOf(r.CalendarDate, r.SlotInstant))
	r.SlotInstant = slot.UTC()
	r.UpdatedAt = s.now().UTC()
	s.bySlot[newKey] = id
	return nil
}

func (s *Store) DeleteWithArtifact(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reservations[id]
	if !ok {
		return booking.ErrReservationNotFound
	}

	if artID, ok := s.byReservation[id]; ok {
		delete(s.artifacts, artID)
		delete(s.byReservation, id)
	}
	for eid, e := range s.events {
		if e.ReservationID == id {
			delete(s.events, eid)
		}
	}
	delete(s.bySlot, keyOf(r.CalendarDate, r.SlotInstant))
	delete(s.byOwner[r.OwnerID], id)
	delete(s.reservations, id)
	return nil
}

func (s *Store) artifactOf(ownerID, reservationID int64) (*booking.Artifact, bool) {
	if _, ok := s.owned(ownerID, reservationID); !ok {
		return nil, false
	}
	a, ok := s.artifacts[s.byReservation[reservationID]]
	return a, ok
}

func (s *Store) GetArtifact(_ context.Context, ownerID, reservationID int64) (*booking.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.artifactOf(ownerID, reservationID)
	if !ok {
		return nil, booking.ErrArtifactNotFound
	}
	out := *a
	return &out, nil
}

func (s *Store) ListArtifacts(_ context.Context, ownerID int64) ([]booking.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]booking.Artifact, 0, len(s.byOwner[ownerID]))
	for resID := range s.byOwner[ownerID] {
		if a, ok := s.artifacts[s.byReservation[resID]]; ok {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) SetReminders(_ context.Context, ownerID, reservationID int64, enabled bool) (*booking.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.artifactOf(ownerID, reservationID)
	if !ok {
		return nil, booking.ErrArtifactNotFound
	}
	a.RemindersEnabled = enabled
	out := *a
	return &out, nil
}

func (s *Store) ListCandidates(_ context.Context, now time.Time) ([]booking.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []booking.Candidate
	for _, a := range s.artifacts {
		if a.CurrentStage == booking.StageFinished {
			continue
		}
		r := s.reservations[a.ReservationID]
		if !r.SlotInstant.Before(now) {
			continue
		}
		out = append(out, booking.Candidate{
			ArtifactID:       a.ID,
			ReservationID:    r.ID,
			OwnerID:          r.OwnerID,
			Name:             a.Name,
			Stage:            a.CurrentStage,
			RemindersEnabled: a.RemindersEnabled,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ArtifactID < out[j].ArtifactID })
	return out, nil
}

func (s *Store) Advance(_ context.Context, adv booking.Advancement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.artifacts[adv.Candidate.ArtifactID]
	if !ok || a.CurrentStage != adv.Candidate.Stage {
		return booking.ErrStaleCandidate
	}
	r, ok := s.reservations[a.ReservationID]
	if !ok {
		return booking.ErrStaleCandidate
	}

	a.CurrentStage = adv.To
	r.Status = adv.Status
	r.UpdatedAt = adv.At.UTC()
	if adv.Event != nil {
		s.insertEvent(adv.Event)
	}
	return nil
}

// insertEvent must be called with s.mu held.
func (s *Store) insertEvent(e *notification.Event) {
	s.nextEvent++
	e.ID = s.nextEvent
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now().UTC()
	}
	ec := *e
	s.events[e.ID] = &ec
}

func (s *Store) Create(_ context.Context, e *notification.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertEvent(e)
	return nil
}

func (s *Store) Pull(_ context.Context, ownerID int64) ([]notification.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []notification.Event
	for id, e := range s.events {
		if e.OwnerID == ownerID {
			out = append(out, *e)
			delete(s.events, id)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, e := range s.events {
		if e.CreatedAt.Before(cutoff) {
			delete(s.events, id)
			n++
		}
	}
	return n, nil
}
