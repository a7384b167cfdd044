package support

import (
	"errors"
	"fmt"

	"inquiry-system/internal/domain/vote"
)

var (
	// ErrCanceled marks a request superseded by a newer one for the same
	// inquiry and user. It is not a failure.
	ErrCanceled      = errors.New("support request superseded")
	ErrNothingToUndo = errors.New("no removed vote to restore")
)

// IsCanceled reports whether err means the request was superseded. A caller
// canceling its own context is a failure and rolls back.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// PersistenceError is a backend failure after which every view was rolled back.
type PersistenceError struct {
	Op         string
	InquiryID  int64
	UserID     int64
	Mode       vote.Mode
	Transition Transition
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("support %s inquiry=%d user=%d (%s %s): %v",
		e.Op, e.InquiryID, e.UserID, e.Mode, e.Transition, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
