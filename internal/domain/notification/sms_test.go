package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	args := m.Called(params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*twilioApi.ApiV2010Message), args.Error(1)
}

type phoneBook map[int64]string

func (p phoneBook) PhoneNumber(_ context.Context, userID int64) (string, error) {
	return p[userID], nil
}

func TestSMSReminder_SendsToOwnerPhone(t *testing.T) {
	sender := new(MockSender)
	sid := "SM123"
	sent := make(chan struct{})

	sender.On("CreateMessage", mock.MatchedBy(func(p *twilioApi.CreateMessageParams) bool {
		return p.To != nil && *p.To == "+15550001111" &&
			p.From != nil && *p.From == "+15559990000" &&
			p.Body != nil && *p.Body == `Your object "My mug" is now ready for painting.`
	})).Run(func(mock.Arguments) { close(sent) }).Return(&twilioApi.ApiV2010Message{Sid: &sid}, nil).Once()

	r := NewSMSReminder(sender, phoneBook{1: "+15550001111"}, "+15559990000", 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	assert.True(t, r.Remind(Reminder{UserID: 1, ArtifactName: "My mug", Message: `Your object "My mug" is now ready for painting.`}))

	select {
	case <-sent:
	case <-time.After(2 * time.Second):
		t.Fatal("sms never sent")
	}
	sender.AssertExpectations(t)
}

func TestSMSReminder_SkipsUsersWithoutPhone(t *testing.T) {
	sender := new(MockSender)
	r := NewSMSReminder(sender, phoneBook{}, "+15559990000", 4)

	assert.NoError(t, r.send(context.Background(), Reminder{UserID: 9, Message: "x"}))
	sender.AssertNotCalled(t, "CreateMessage", mock.Anything)
}

func TestSMSReminder_SendError(t *testing.T) {
	sender := new(MockSender)
	sender.On("CreateMessage", mock.Anything).Return(nil, errors.New("twilio down"))

	r := NewSMSReminder(sender, phoneBook{1: "+15550001111"}, "+15559990000", 4)
	assert.Error(t, r.send(context.Background(), Reminder{UserID: 1, Message: "x"}))
}

func TestSMSReminder_FullQueueDrops(t *testing.T) {
	r := NewSMSReminder(new(MockSender), phoneBook{}, "+1", 1)

	assert.True(t, r.Remind(Reminder{UserID: 1}))
	assert.False(t, r.Remind(Reminder{UserID: 2}))
}
