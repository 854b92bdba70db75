package progress

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"ceramicflow/internal/domain/booking"
	"ceramicflow/internal/domain/notification"
)

const EventStageUpdated = "stage_updated"

// Store is the persistence the stage machine needs.
type Store interface {
	ListCandidates(ctx context.Context, now time.Time) ([]booking.Candidate, error)
	Advance(ctx context.Context, adv booking.Advancement) error
}

// Publisher pushes a message to every live connection of one user.
type Publisher interface {
	Publish(ctx context.Context, userID int64, msg any) error
}

type Reminders interface {
	Remind(r notification.Reminder) bool
}

type StageUpdate struct {
	ReservationID int64               `json:"reservation_id"`
	ArtifactID    int64               `json:"artifact_id"`
	ArtifactName  string              `json:"artifact_name"`
	Stage         booking.Stage       `json:"stage"`
	Status        booking.Status      `json:"status"`
	Notification  *notification.Event `json:"notification,omitempty"`
}

type Options struct {
	Notable   []booking.Stage
	Clock     func() time.Time
	Reminders Reminders
}

// Advancer moves artifacts through the pipeline, one stage per selected
// candidate per tick.
type Advancer struct {
	store     Store
	selector  Selector
	publisher Publisher
	reminders Reminders
	notable   map[booking.Stage]bool
	clock     func() time.Time
}

func NewAdvancer(store Store, selector Selector, publisher Publisher, opts Options) *Advancer {
	if selector == nil {
		selector = NewRandom(nil)
	}
	notable := opts.Notable
	if notable == nil {
		notable = []booking.Stage{booking.StagePainting, booking.StageFinished}
	}
	set := make(map[booking.Stage]bool, len(notable))
	for _, s := range notable {
		set[s] = true
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Advancer{
		store:     store,
		selector:  selector,
		publisher: publisher,
		reminders: opts.Reminders,
		notable:   set,
		clock:     clock,
	}
}

// Tick runs one advancement round and returns how many artifacts moved.
func (a *Advancer) Tick(ctx context.Context) (int, error) {
	// 1. Collect artifacts whose slot has elapsed
	now := a.clock()
	candidates, err := a.store.ListCandidates(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list candidates: %w", err)
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	// 2. Let the selector pick who moves this tick
	var (
		moved int
		errs  []error
	)
	for _, c := range a.selector.Select(candidates) {
		// 3. Advance one stage; a stale row lost a race and is skipped
		update, err := a.advance(ctx, c, now)
		if err != nil {
			if errors.Is(err, booking.ErrStaleCandidate) {
				log.Printf("progress: skipped stale artifact_id=%d stage=%s", c.ArtifactID, c.Stage)
				continue
			}
			errs = append(errs, fmt.Errorf("advance artifact %d: %w", c.ArtifactID, err))
			continue
		}
		if update == nil {
			continue
		}
		// 4. Push and SMS only after the stage is persisted
		moved++
		a.notify(ctx, c, update)
	}

	return moved, errors.Join(errs...)
}

func (a *Advancer) advance(ctx context.Context, c booking.Candidate, now time.Time) (*StageUpdate, error) {
	next, ok := c.Stage.Next()
	if !ok {
		return nil, nil
	}

	adv := booking.Advancement{
		Candidate: c,
		To:        next,
		Status:    booking.StatusFor(next),
		At:        now,
	}
	if a.notable[next] {
		adv.Event = &notification.Event{
			ReservationID: c.ReservationID,
			OwnerID:       c.OwnerID,
			ArtifactName:  c.Name,
			Stage:         string(next),
			Message:       StageMessage(c.Name, next),
			CreatedAt:     now.UTC(),
		}
	}

	if err := a.store.Advance(ctx, adv); err != nil {
		return nil, err
	}

	log.Printf("progress: advanced artifact_id=%d reservation_id=%d %s->%s", c.ArtifactID, c.ReservationID, c.Stage, next)
	return &StageUpdate{
		ReservationID: c.ReservationID,
		ArtifactID:    c.ArtifactID,
		ArtifactName:  c.Name,
		Stage:         next,
		Status:        adv.Status,
		Notification:  adv.Event,
	}, nil
}

// notify runs after commit. Push and SMS failures never fail the tick.
func (a *Advancer) notify(ctx context.Context, c booking.Candidate, u *StageUpdate) {
	if a.publisher != nil {
		frame := notification.Frame{Event: EventStageUpdated, Payload: u}
		if err := a.publisher.Publish(ctx, c.OwnerID, frame); err != nil {
			log.Printf("progress: push failed user_id=%d: %v", c.OwnerID, err)
		}
	}

	if a.reminders != nil && u.Notification != nil && c.RemindersEnabled {
		a.reminders.Remind(notification.Reminder{
			UserID:       c.OwnerID,
			ArtifactName: c.Name,
			Message:      u.Notification.Message,
		})
	}
}

// StageMessage is the owner-facing text for entering stage.
func StageMessage(name string, stage booking.Stage) string {
	switch stage {
	case booking.StagePainting:
		return fmt.Sprintf("Your object \"%s\" is now ready for painting.", name)
	case booking.StageFinished:
		return fmt.Sprintf("Your object \"%s\" is finished and ready for pickup!", name)
	default:
		return fmt.Sprintf("Your object \"%s\" moved to %s.", name, stage)
	}
}
