package support

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"inquiry-system/internal/domain/vote"
	"inquiry-system/internal/metrics"
)

const (
	opCreate  = "create"
	opUpdate  = "update"
	opRemove  = "remove"
	opRestore = "restore"
	opList    = "list"
)

// Outcome describes a finished toggle or undo.
type Outcome struct {
	Transition Transition
	// Vote is the server record merged into the canonical view; nil after a
	// remove or a canceled call.
	Vote     *vote.Vote
	Canceled bool
	Views    int
}

type voteKey struct {
	inquiryID int64
	userID    int64
}

type removedVote struct {
	voteID int64
	state  VoteState
}

// Coordinator is the entry point UI handlers call to change a user's support.
type Coordinator struct {
	client  Client
	locator *Locator
	updater *Updater
	lock    sync.Locker
	logger  *slog.Logger
	tracer  trace.Tracer

	mu      sync.Mutex
	removed map[voteKey]removedVote
	// voteIDs holds the id of the last server record committed for a pair. The
	// canonical view can miss it when a later toggle overtook the commit.
	voteIDs map[voteKey]int64
}

type Option func(*Coordinator)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLocker sets the lock held while views are read or mutated. It defaults to
// the source itself when the source is a sync.Locker, as ViewStore is.
func WithLocker(l sync.Locker) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.lock = l
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(c *Coordinator) {
		if t != nil {
			c.tracer = t
		}
	}
}

func NewCoordinator(client Client, source ViewSource, opts ...Option) *Coordinator {
	c := &Coordinator{
		client:  client,
		locator: NewLocator(source),
		logger:  slog.Default(),
		tracer:  otel.Tracer("inquiry-system/support"),
		removed: make(map[voteKey]removedVote),
		voteIDs: make(map[voteKey]int64),
	}
	if l, ok := source.(sync.Locker); ok {
		c.lock = l
	} else {
		c.lock = &sync.Mutex{}
	}
	for _, opt := range opts {
		opt(c)
	}
	c.updater = NewUpdater(c.logger)
	return c
}

// Toggle advances the user's vote on the inquiry one step of the mode's cycle.
//
// Every view of the inquiry is updated before the backend is called. On success
// the server record is merged into the canonical view. On failure the views are
// restored from the snapshot and a *PersistenceError is returned. A superseded
// call returns a Canceled outcome and leaves the views as applied.
func (c *Coordinator) Toggle(ctx context.Context, inquiryID, userID int64, mode vote.Mode) (Outcome, error) {
	ctx, span := c.tracer.Start(ctx, "support.Toggle", trace.WithAttributes(
		attribute.Int64("inquiry.id", inquiryID),
		attribute.Int64("user.id", userID),
		attribute.String("vote.mode", string(mode)),
	))
	defer span.End()

	c.lock.Lock()
	views := c.locator.Find(inquiryID)
	current := UserVote{}
	if len(views) > 0 {
		current = views[0].Aggregate().CurrentUser
	}
	t, err := Next(mode, current.State)
	if err != nil {
		c.lock.Unlock()
		span.SetStatus(codes.Error, err.Error())
		return Outcome{}, err
	}
	snap := c.applyLocked(views, t)
	c.lock.Unlock()

	op, record, err := c.persist(ctx, inquiryID, userID, t)
	out, err := c.finish(span, op, inquiryID, userID, t, snap, record, err)
	if err == nil && !out.Canceled && t.Remove {
		// VoteID may still be 0 if the create has not committed yet; Undo
		// resolves it then.
		c.rememberRemoved(inquiryID, userID, removedVote{voteID: current.VoteID, state: t.Previous})
	}
	return out, err
}

// Undo restores the vote most recently removed through Toggle for the pair,
// with the same optimistic apply and rollback as Toggle.
func (c *Coordinator) Undo(ctx context.Context, inquiryID, userID int64, mode vote.Mode) (Outcome, error) {
	ctx, span := c.tracer.Start(ctx, "support.Undo", trace.WithAttributes(
		attribute.Int64("inquiry.id", inquiryID),
		attribute.Int64("user.id", userID),
		attribute.String("vote.mode", string(mode)),
	))
	defer span.End()

	key := voteKey{inquiryID: inquiryID, userID: userID}
	c.mu.Lock()
	rv, ok := c.removed[key]
	if ok && rv.voteID == 0 {
		rv.voteID = c.voteIDs[key]
	}
	c.mu.Unlock()
	if !ok || rv.voteID == 0 {
		return Outcome{}, ErrNothingToUndo
	}

	c.lock.Lock()
	views := c.locator.Find(inquiryID)
	if len(views) > 0 && views[0].Aggregate().CurrentUser.HasVoted() {
		c.lock.Unlock()
		return Outcome{}, ErrNothingToUndo
	}
	t := Transition{Mode: mode, Previous: NoVote(), Next: rv.state}
	snap := c.applyLocked(views, t)
	c.lock.Unlock()

	var record *vote.Vote
	restored, err := c.client.RestoreVote(ctx, rv.voteID)
	if err == nil {
		record = &restored
	}
	out, err := c.finish(span, opRestore, inquiryID, userID, t, snap, record, err)
	if err == nil && !out.Canceled {
		c.mu.Lock()
		delete(c.removed, key)
		c.mu.Unlock()
	}
	return out, err
}

// Refresh loads the inquiry's votes from the backend and overwrites every view
// with the recomputed aggregate.
func (c *Coordinator) Refresh(ctx context.Context, inquiryID, userID int64, mode vote.Mode) (Aggregate, error) {
	ctx, span := c.tracer.Start(ctx, "support.Refresh", trace.WithAttributes(
		attribute.Int64("inquiry.id", inquiryID),
	))
	defer span.End()

	list, err := c.client.ListVotesForInquiry(ctx, inquiryID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error("support refresh failed",
			"event", "support_refresh_failed",
			"module", "support",
			"inquiry_id", inquiryID,
			"user_id", userID,
			"mode", string(mode),
			"error", err.Error(),
		)
		return Aggregate{}, &PersistenceError{Op: opList, InquiryID: inquiryID, UserID: userID, Mode: mode, Err: err}
	}

	agg := AggregateFromVotes(list, userID, mode)
	c.lock.Lock()
	for _, v := range c.locator.Find(inquiryID) {
		v.SetAggregate(agg)
	}
	c.lock.Unlock()
	return agg, nil
}

func (c *Coordinator) applyLocked(views []AggregateView, t Transition) Snapshot {
	snap := Capture(views)
	for _, v := range views {
		c.updater.Apply(v, t)
	}
	return snap
}

func (c *Coordinator) persist(ctx context.Context, inquiryID, userID int64, t Transition) (string, *vote.Vote, error) {
	if t.Remove {
		return opRemove, nil, c.client.RemoveVote(ctx, inquiryID, userID)
	}

	next, _ := t.Next.Value()
	var (
		op     string
		record vote.Vote
		err    error
	)
	switch {
	case !t.Previous.IsCast() && t.Mode == vote.ModeSimple:
		op = opCreate
		record, err = c.client.CreateVote(ctx, inquiryID, userID, nil)
	case !t.Previous.IsCast():
		op = opCreate
		record, err = c.client.CreateVote(ctx, inquiryID, userID, &next)
	default:
		op = opUpdate
		record, err = c.client.UpdateVote(ctx, inquiryID, userID, next)
	}
	if err != nil {
		return op, nil, err
	}
	return op, &record, nil
}

func (c *Coordinator) finish(
	span trace.Span,
	op string,
	inquiryID, userID int64,
	t Transition,
	snap Snapshot,
	record *vote.Vote,
	err error,
) (Outcome, error) {
	out := Outcome{Transition: t, Views: snap.Len()}
	span.SetAttributes(attribute.String("support.op", op), attribute.String("support.transition", t.String()))

	switch {
	case err != nil && IsCanceled(err):
		c.logger.Info("support request superseded",
			"event", "support_toggle_canceled",
			"module", "support",
			"inquiry_id", inquiryID,
			"user_id", userID,
			"op", op,
			"transition", t.String(),
			"mode", string(t.Mode),
		)
		metrics.IncToggle(string(t.Mode), op, "canceled")
		out.Canceled = true
		return out, nil

	case err != nil:
		c.lock.Lock()
		snap.Restore()
		c.lock.Unlock()

		c.logger.Error("support request failed; views rolled back",
			"event", "support_toggle_rolled_back",
			"module", "support",
			"inquiry_id", inquiryID,
			"user_id", userID,
			"op", op,
			"transition", t.String(),
			"mode", string(t.Mode),
			"views", snap.Len(),
			"error", err.Error(),
		)
		metrics.IncToggle(string(t.Mode), op, "rolled_back")
		span.SetStatus(codes.Error, err.Error())
		return out, &PersistenceError{
			Op:         op,
			InquiryID:  inquiryID,
			UserID:     userID,
			Mode:       t.Mode,
			Transition: t,
			Err:        err,
		}
	}

	if record != nil {
		c.lock.Lock()
		c.mergeLocked(inquiryID, t, *record)
		c.lock.Unlock()

		c.mu.Lock()
		c.voteIDs[voteKey{inquiryID: inquiryID, userID: userID}] = record.ID
		c.mu.Unlock()
	}
	c.logger.Info("support request committed",
		"event", "support_toggle_committed",
		"module", "support",
		"inquiry_id", inquiryID,
		"user_id", userID,
		"op", op,
		"transition", t.String(),
		"mode", string(t.Mode),
	)
	metrics.IncToggle(string(t.Mode), op, "committed")
	out.Vote = record
	return out, nil
}

// mergeLocked trusts the server record over the optimistic guess. When the
// server stored a different value than the one applied, every view is moved to
// the server value so the views stay equal and the counters stay balanced.
func (c *Coordinator) mergeLocked(inquiryID int64, t Transition, record vote.Vote) {
	views := c.locator.Find(inquiryID)
	if len(views) == 0 {
		return
	}
	canonical := views[0]
	live := canonical.Aggregate().CurrentUser.State
	server := stateFromRecord(record, t.Mode)

	if live != t.Next {
		// A later toggle already moved the views on; it owns their state now.
		return
	}
	if server != t.Next {
		c.logger.Warn("server vote differs from optimistic value",
			"event", "support_server_value_mismatch",
			"module", "support",
			"inquiry_id", inquiryID,
			"vote_id", record.ID,
			"optimistic", t.Next.String(),
			"server", server.String(),
		)
		fix := Transition{Mode: t.Mode, Previous: t.Next, Next: server}
		for _, v := range views {
			c.updater.Apply(v, fix)
		}
	}

	agg := canonical.Aggregate()
	agg.CurrentUser.VoteID = record.ID
	canonical.SetAggregate(agg)
}

func (c *Coordinator) rememberRemoved(inquiryID, userID int64, rv removedVote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removed[voteKey{inquiryID: inquiryID, userID: userID}] = rv
}
