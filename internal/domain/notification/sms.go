package notification

import (
	"context"
	"log"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// MessageSender is the subset of the Twilio API used for reminders.
type MessageSender interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// ContactBook looks up a user's phone number. Empty means no SMS.
type ContactBook interface {
	PhoneNumber(ctx context.Context, userID int64) (string, error)
}

type Reminder struct {
	UserID       int64
	ArtifactName string
	Message      string
}

// NewTwilioSender returns the Twilio messages API for the given account.
func NewTwilioSender(accountSID, authToken string) MessageSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return client.Api
}

// SMSReminder sends reminder texts from a background worker fed by a bounded queue.
type SMSReminder struct {
	sender   MessageSender
	contacts ContactBook
	from     string
	queue    chan Reminder
}

func NewSMSReminder(sender MessageSender, contacts ContactBook, from string, queueSize int) *SMSReminder {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &SMSReminder{
		sender:   sender,
		contacts: contacts,
		from:     from,
		queue:    make(chan Reminder, queueSize),
	}
}

// Remind enqueues r without blocking. It reports false when the queue is full.
func (s *SMSReminder) Remind(r Reminder) bool {
	select {
	case s.queue <- r:
		return true
	default:
		log.Printf("sms: queue full, dropping reminder user_id=%d artifact=%q", r.UserID, r.ArtifactName)
		return false
	}
}

// Run sends queued reminders until ctx is cancelled.
func (s *SMSReminder) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case r := <-s.queue:
			if err := s.send(ctx, r); err != nil {
				log.Printf("sms: failed user_id=%d: %v", r.UserID, err)
			}
		}
	}
}

func (s *SMSReminder) send(ctx context.Context, r Reminder) error {
	phone, err := s.contacts.PhoneNumber(ctx, r.UserID)
	if err != nil {
		return err
	}
	if phone == "" {
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(phone)
	params.SetFrom(s.from)
	params.SetBody(r.Message)

	resp, err := s.sender.CreateMessage(params)
	if err != nil {
		return err
	}
	if resp != nil && resp.Sid != nil {
		log.Printf("sms: sent user_id=%d sid=%s", r.UserID, *resp.Sid)
	}
	return nil
}
