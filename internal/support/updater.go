package support

import (
	"log/slog"

	"inquiry-system/internal/domain/vote"
)

type Updater struct {
	logger *slog.Logger
}

func NewUpdater(logger *slog.Logger) *Updater {
	if logger == nil {
		logger = slog.Default()
	}
	return &Updater{logger: logger}
}

// Apply moves one view's aggregate along t. Counters are clamped at zero; an
// underflow means the view was already out of sync and is only logged.
func (u *Updater) Apply(view AggregateView, t Transition) {
	agg := view.Aggregate()
	id := view.InquiryID()

	if prev, cast := t.Previous.Value(); cast {
		agg.CountVotes = u.decrement(id, "count_votes", agg.CountVotes)
		if t.Mode == vote.ModeTernary {
			if c := valueCounter(&agg, prev); c != nil {
				*c = u.decrement(id, "count_"+prev.String(), *c)
			}
		}
	}
	if next, cast := t.Next.Value(); cast && !t.Remove {
		agg.CountVotes++
		if t.Mode == vote.ModeTernary {
			if c := valueCounter(&agg, next); c != nil {
				*c++
			}
		}
	}

	agg.CurrentUser.State = t.Next
	if t.Remove {
		agg.CurrentUser.VoteID = 0
	}
	view.SetAggregate(agg)
}

func (u *Updater) decrement(inquiryID int64, counter string, n int) int {
	if n <= 0 {
		u.logger.Warn("vote counter underflow clamped",
			"event", "support_counter_underflow",
			"module", "support",
			"inquiry_id", inquiryID,
			"counter", counter,
		)
		return 0
	}
	return n - 1
}

func valueCounter(agg *Aggregate, v vote.Value) *int {
	switch v {
	case vote.Positive:
		return &agg.CountPositive
	case vote.Neutral:
		return &agg.CountNeutral
	case vote.Negative:
		return &agg.CountNegative
	default:
		return nil
	}
}

// Snapshot holds the exact pre-transition aggregates of a set of views.
type Snapshot struct {
	entries []snapshotEntry
}

type snapshotEntry struct {
	view AggregateView
	agg  Aggregate
}

func Capture(views []AggregateView) Snapshot {
	entries := make([]snapshotEntry, len(views))
	for i, v := range views {
		entries[i] = snapshotEntry{view: v, agg: v.Aggregate()}
	}
	return Snapshot{entries: entries}
}

// Restore writes every captured aggregate back verbatim.
func (s Snapshot) Restore() {
	for _, e := range s.entries {
		e.view.SetAggregate(e.agg)
	}
}

func (s Snapshot) Len() int {
	return len(s.entries)
}
