package inquiry

import (
	"context"
	"database/sql"
	"errors"

	"inquiry-system/internal/domain/vote"
)

var (
	ErrNotFound      = vote.ErrInquiryNotFound
	ErrInvalidStatus = errors.New("invalid inquiry status")
	ErrTitleRequired = errors.New("title required")
	ErrInvalidParent = errors.New("parent inquiry does not exist")
)

type Service struct {
	repo  Repository
	modes TypeModes
}

func NewService(repo Repository, modes TypeModes) *Service {
	return &Service{repo: repo, modes: modes}
}

func (s *Service) Create(ctx context.Context, q *Inquiry) (int64, error) {
	if q.Title == "" {
		return 0, ErrTitleRequired
	}
	if q.ParentID != nil {
		if _, err := s.Get(ctx, *q.ParentID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return 0, ErrInvalidParent
			}
			return 0, err
		}
	}
	q.Status = StatusDraft
	q.Mode = s.modes.ModeFor(q.Type)
	return s.repo.Create(ctx, q)
}

func (s *Service) Get(ctx context.Context, id int64) (*Inquiry, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	q.Mode = s.modes.ModeFor(q.Type)
	return q, nil
}

func (s *Service) List(ctx context.Context, status *string) ([]Inquiry, error) {
	list, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, err
	}
	s.fillModes(list)
	return list, nil
}

func (s *Service) Children(ctx context.Context, parentID int64) ([]Inquiry, error) {
	list, err := s.repo.ListChildren(ctx, parentID)
	if err != nil {
		return nil, err
	}
	s.fillModes(list)
	return list, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) error {
	if status != StatusDraft && status != StatusOpen && status != StatusClosed {
		return ErrInvalidStatus
	}
	err := s.repo.UpdateStatus(ctx, id, status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// VotingState reports the voting mode of the inquiry and whether it accepts votes.
func (s *Service) VotingState(ctx context.Context, inquiryID int64) (vote.Mode, bool, error) {
	q, err := s.Get(ctx, inquiryID)
	if err != nil {
		return "", false, err
	}
	return q.Mode, q.Status == StatusOpen, nil
}

func (s *Service) fillModes(list []Inquiry) {
	for i := range list {
		list[i].Mode = s.modes.ModeFor(list[i].Type)
	}
}
