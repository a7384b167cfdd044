package vote

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

var (
	ErrInquiryNotFound  = errors.New("inquiry not found")
	ErrInquiryNotOpen   = errors.New("inquiry is not open for support")
	ErrInvalidValue     = errors.New("invalid vote value")
	ErrSimpleModeUpdate = errors.New("simple mode votes cannot be updated")
	ErrVoteNotFound     = errors.New("vote not found")
	ErrNotOwner         = errors.New("vote belongs to another user")
)

type Service struct {
	repo      Repository
	inquiries InquiryLookup
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, inquiries InquiryLookup, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		inquiries: inquiries,
		logger:    logger,
		now:       time.Now,
	}
}

// Create casts the user's vote. An omitted value means Positive, which is the only
// value simple mode stores. Casting over an existing record replaces its value.
func (s *Service) Create(ctx context.Context, inquiryID, userID int64, value *Value) (*Vote, error) {
	mode, err := s.openInquiry(ctx, inquiryID)
	if err != nil {
		return nil, err
	}

	val := Positive
	if value != nil {
		val = *value
	}
	if !val.Valid() || (mode == ModeSimple && val != Positive) {
		return nil, ErrInvalidValue
	}

	v := &Vote{InquiryID: inquiryID, UserID: userID, Value: val}
	if err := s.repo.Upsert(ctx, v); err != nil {
		return nil, err
	}
	s.logger.Info("vote created",
		"event", "support_vote_created",
		"module", "domain/vote",
		"vote_id", v.ID,
		"inquiry_id", inquiryID,
		"user_id", userID,
		"value", int8(v.Value),
		"mode", string(mode),
	)
	return v, nil
}

// Update changes the value of the user's vote. A missing record is created so a
// client whose create was superseded still converges.
func (s *Service) Update(ctx context.Context, inquiryID, userID int64, value Value) (*Vote, error) {
	mode, err := s.openInquiry(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	if mode == ModeSimple {
		return nil, ErrSimpleModeUpdate
	}
	if !value.Valid() {
		return nil, ErrInvalidValue
	}

	v := &Vote{InquiryID: inquiryID, UserID: userID, Value: value}
	if err := s.repo.Upsert(ctx, v); err != nil {
		return nil, err
	}
	s.logger.Info("vote updated",
		"event", "support_vote_updated",
		"module", "domain/vote",
		"vote_id", v.ID,
		"inquiry_id", inquiryID,
		"user_id", userID,
		"value", int8(v.Value),
	)
	return v, nil
}

// Remove withdraws the user's vote. Removing a missing vote is not an error.
func (s *Service) Remove(ctx context.Context, inquiryID, userID int64) error {
	if _, err := s.openInquiry(ctx, inquiryID); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, inquiryID, userID); err != nil && !errors.Is(err, ErrVoteNotFound) {
		return err
	}
	s.logger.Info("vote removed",
		"event", "support_vote_removed",
		"module", "domain/vote",
		"inquiry_id", inquiryID,
		"user_id", userID,
	)
	return nil
}

// Restore reinstates a previously removed vote owned by userID.
func (s *Service) Restore(ctx context.Context, voteID, userID int64) (*Vote, error) {
	v, err := s.repo.GetByID(ctx, voteID)
	if err != nil {
		return nil, err
	}
	if v.UserID != userID {
		return nil, ErrNotOwner
	}
	if _, err := s.openInquiry(ctx, v.InquiryID); err != nil {
		return nil, err
	}
	if !v.Removed() {
		return v, nil
	}
	if err := s.repo.Restore(ctx, voteID); err != nil {
		return nil, err
	}
	v.DeletedAt = nil
	s.logger.Info("vote restored",
		"event", "support_vote_restored",
		"module", "domain/vote",
		"vote_id", v.ID,
		"inquiry_id", v.InquiryID,
		"user_id", userID,
	)
	return v, nil
}

// List returns the live votes of an inquiry.
func (s *Service) List(ctx context.Context, inquiryID int64) ([]Vote, error) {
	all, err := s.repo.ListByInquiry(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	live := make([]Vote, 0, len(all))
	for _, v := range all {
		if !v.Removed() {
			live = append(live, v)
		}
	}
	return live, nil
}

// Summary returns the inquiry tally and the user's live vote, if any.
func (s *Service) Summary(ctx context.Context, inquiryID, userID int64) (Counts, *Vote, error) {
	list, err := s.List(ctx, inquiryID)
	if err != nil {
		return Counts{}, nil, err
	}
	var own *Vote
	for i := range list {
		if list[i].UserID == userID {
			own = &list[i]
			break
		}
	}
	return Tally(list), own, nil
}

func (s *Service) openInquiry(ctx context.Context, inquiryID int64) (Mode, error) {
	mode, open, err := s.inquiries.VotingState(ctx, inquiryID)
	if err != nil {
		return "", err
	}
	if !open {
		return "", ErrInquiryNotOpen
	}
	return mode, nil
}
