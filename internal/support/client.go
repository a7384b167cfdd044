package support

import (
	"context"

	"inquiry-system/internal/domain/vote"
)

// Client is the backend that owns vote records.
type Client interface {
	// CreateVote casts a vote; a nil value asks for the simple mode default.
	CreateVote(ctx context.Context, inquiryID, userID int64, value *vote.Value) (vote.Vote, error)
	UpdateVote(ctx context.Context, inquiryID, userID int64, value vote.Value) (vote.Vote, error)
	// RemoveVote succeeds when no vote exists.
	RemoveVote(ctx context.Context, inquiryID, userID int64) error
	RestoreVote(ctx context.Context, voteID int64) (vote.Vote, error)
	ListVotesForInquiry(ctx context.Context, inquiryID int64) ([]vote.Vote, error)
}
