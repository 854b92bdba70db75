package notification

import "context"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Pull is read-and-clear: a second call with no new events returns an empty slice.
func (s *Service) Pull(ctx context.Context, ownerID int64) ([]Event, error) {
	events, err := s.repo.Pull(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []Event{}
	}
	return events, nil
}
