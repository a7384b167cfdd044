package worker

import (
	"context"
	"log/slog"

	"inquiry-system/internal/metrics"
)

const (
	KindCreated  = "created"
	KindUpdated  = "updated"
	KindRemoved  = "removed"
	KindRestored = "restored"
)

// VoteEvent is emitted by the API after a vote record changed.
type VoteEvent struct {
	InquiryID int64
	UserID    int64
	Kind      string
	Value     int8
}

type EventWorker struct {
	Ch     <-chan VoteEvent
	logger *slog.Logger
}

func NewEventWorker(ch <-chan VoteEvent, logger *slog.Logger) *EventWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventWorker{Ch: ch, logger: logger}
}

// Run consumes events until ctx is done or the channel is closed.
func (w *EventWorker) Run(ctx context.Context) {
	w.logger.Info("vote event worker started", "event", "worker_started", "module", "worker")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("vote event worker stopped", "event", "worker_stopped", "module", "worker")
			return
		case ev, ok := <-w.Ch:
			if !ok {
				w.logger.Info("vote event channel closed", "event", "worker_stopped", "module", "worker")
				return
			}
			w.handle(ev)
		}
	}
}

func (w *EventWorker) handle(ev VoteEvent) {
	metrics.IncVoteEvent(ev.Kind)
	w.logger.Debug("vote event processed",
		"event", "support_vote_"+ev.Kind,
		"module", "worker",
		"inquiry_id", ev.InquiryID,
		"user_id", ev.UserID,
		"value", ev.Value,
	)
}
