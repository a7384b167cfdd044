package inquiry

import (
	"context"
	"time"

	"inquiry-system/internal/domain/vote"
)

const (
	StatusDraft  = "draft"
	StatusOpen   = "open"
	StatusClosed = "closed"
)

type Inquiry struct {
	ID          int64     `json:"id"`
	ParentID    *int64    `json:"parent_id,omitempty"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Status      string    `json:"status"`
	Mode        vote.Mode `json:"mode"`
	CreatorID   int64     `json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Repository interface {
	Create(ctx context.Context, q *Inquiry) (int64, error)
	GetByID(ctx context.Context, id int64) (*Inquiry, error)
	List(ctx context.Context, status *string) ([]Inquiry, error)
	ListChildren(ctx context.Context, parentID int64) ([]Inquiry, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

// TypeModes maps inquiry types to their voting mode. Unlisted types vote in
// ternary mode.
type TypeModes map[string]vote.Mode

func NewTypeModes(simpleTypes []string) TypeModes {
	m := make(TypeModes, len(simpleTypes))
	for _, t := range simpleTypes {
		if t != "" {
			m[t] = vote.ModeSimple
		}
	}
	return m
}

func (m TypeModes) ModeFor(inquiryType string) vote.Mode {
	if mode, ok := m[inquiryType]; ok {
		return mode
	}
	return vote.ModeTernary
}
