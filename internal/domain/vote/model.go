package vote

import (
	"context"
	"fmt"
	"time"
)

// Value is the tri-state support signal stored on a vote record.
type Value int8

const (
	Negative Value = -1
	Neutral  Value = 0
	Positive Value = 1
)

func (v Value) Valid() bool {
	return v >= Negative && v <= Positive
}

func (v Value) String() string {
	switch v {
	case Positive:
		return "positive"
	case Neutral:
		return "neutral"
	case Negative:
		return "negative"
	default:
		return fmt.Sprintf("invalid(%d)", int8(v))
	}
}

// Mode is the voting shape configured per inquiry type.
type Mode string

const (
	ModeTernary Mode = "ternary"
	ModeSimple  Mode = "simple"
)

func (m Mode) Valid() bool {
	return m == ModeTernary || m == ModeSimple
}

type Vote struct {
	ID        int64      `json:"id"`
	InquiryID int64      `json:"inquiry_id"`
	UserID    int64      `json:"user_id"`
	Value     Value      `json:"value"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (v Vote) Removed() bool {
	return v.DeletedAt != nil
}

// Counts is the per-inquiry tally of live votes.
type Counts struct {
	Votes    int64 `json:"count_votes"`
	Positive int64 `json:"count_positive"`
	Neutral  int64 `json:"count_neutral"`
	Negative int64 `json:"count_negative"`
}

// Tally counts the live votes in list.
func Tally(list []Vote) Counts {
	var c Counts
	for _, v := range list {
		if v.Removed() {
			continue
		}
		c.Votes++
		switch v.Value {
		case Positive:
			c.Positive++
		case Neutral:
			c.Neutral++
		case Negative:
			c.Negative++
		}
	}
	return c
}

// Repository stores vote records. Removed votes are soft deleted so they can be
// restored.
type Repository interface {
	// Get returns the vote for the pair including a soft deleted one.
	Get(ctx context.Context, inquiryID, userID int64) (*Vote, error)
	GetByID(ctx context.Context, id int64) (*Vote, error)
	Upsert(ctx context.Context, v *Vote) error
	SoftDelete(ctx context.Context, inquiryID, userID int64) error
	Restore(ctx context.Context, id int64) error
	ListByInquiry(ctx context.Context, inquiryID int64) ([]Vote, error)
}

// InquiryLookup is the slice of the inquiry domain the vote service depends on.
type InquiryLookup interface {
	VotingState(ctx context.Context, inquiryID int64) (mode Mode, open bool, err error)
}
