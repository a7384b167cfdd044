package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"inquiry-system/internal/domain/inquiry"
	"inquiry-system/internal/domain/vote"
	"inquiry-system/internal/support"
	"inquiry-system/internal/supportclient"
)

// Drives the optimistic engine against the real router and checks every view
// against the server after each step.
func TestSupportCycleAgainstAPI(t *testing.T) {
	env := setupServer(t, VoteLimits{})
	adminToken, memberToken, memberID := adminAndMember(t, env)

	parent := createInquiryViaAPI(t, env.server.URL, adminToken, createInquiryRequest{Title: "Transport"})
	id := createInquiryViaAPI(t, env.server.URL, adminToken, createInquiryRequest{Title: "Tram line", ParentID: &parent})
	updateInquiryStatus(t, env.server.URL, adminToken, id, inquiry.StatusOpen)

	store := support.NewViewStore()
	open := support.NewInquiryView(id, support.Aggregate{})
	listed := support.NewInquiryView(id, support.Aggregate{})
	parentView := support.NewInquiryView(parent, support.Aggregate{})
	parentView.Children = []*support.InquiryView{open}
	store.SetList([]*support.InquiryView{parentView, listed})
	store.SetOpen(open)

	client := supportclient.New(env.server.URL, memberToken, supportclient.WithHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	coord := support.NewCoordinator(client, store)
	ctx := context.Background()

	want := []struct {
		value  vote.Value
		live   bool
		counts vote.Counts
	}{
		{vote.Positive, true, vote.Counts{Votes: 1, Positive: 1}},
		{vote.Neutral, true, vote.Counts{Votes: 1, Neutral: 1}},
		{vote.Negative, true, vote.Counts{Votes: 1, Negative: 1}},
		{0, false, vote.Counts{}},
	}
	var lastID int64
	for i, w := range want {
		out, err := coord.Toggle(ctx, id, memberID, vote.ModeTernary)
		if err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		if out.Canceled || out.Views != 2 {
			t.Fatalf("toggle %d: unexpected outcome %+v", i, out)
		}

		votes, err := client.ListVotesForInquiry(ctx, id)
		if err != nil {
			t.Fatalf("list %d: %v", i, err)
		}
		if got := vote.Tally(votes); got != w.counts {
			t.Fatalf("toggle %d: server counts %+v want %+v", i, got, w.counts)
		}

		aggs := store.Aggregates(id)
		for _, a := range aggs {
			if int64(a.CountVotes) != w.counts.Votes || int64(a.CountPositive) != w.counts.Positive ||
				int64(a.CountNeutral) != w.counts.Neutral || int64(a.CountNegative) != w.counts.Negative {
				t.Fatalf("toggle %d: view counters %+v want %+v", i, a, w.counts)
			}
			if a.CurrentUser.HasVoted() != w.live {
				t.Fatalf("toggle %d: view vote presence %v want %v", i, a.CurrentUser.HasVoted(), w.live)
			}
		}
		if w.live {
			if out.Vote == nil || out.Vote.Value != w.value {
				t.Fatalf("toggle %d: unexpected server record %+v", i, out.Vote)
			}
			if aggs[0].CurrentUser.VoteID != out.Vote.ID {
				t.Fatalf("toggle %d: canonical view has vote id %d want %d", i, aggs[0].CurrentUser.VoteID, out.Vote.ID)
			}
			lastID = out.Vote.ID
		}
	}

	out, err := coord.Undo(ctx, id, memberID, vote.ModeTernary)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if out.Vote == nil || out.Vote.ID != lastID || out.Vote.Value != vote.Negative {
		t.Fatalf("undo restored %+v", out.Vote)
	}

	agg, err := coord.Refresh(ctx, id, memberID, vote.ModeTernary)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if agg.CountVotes != 1 || agg.CountNegative != 1 || agg.CurrentUser.State != support.Cast(vote.Negative) {
		t.Fatalf("unexpected refreshed aggregate %+v", agg)
	}
	for _, a := range store.Aggregates(id) {
		if a != agg {
			t.Fatalf("views differ after refresh: %+v vs %+v", a, agg)
		}
	}
}

func TestSupportRollbackOnClosedInquiry(t *testing.T) {
	env := setupServer(t, VoteLimits{})
	adminToken, memberToken, memberID := adminAndMember(t, env)

	id := createInquiryViaAPI(t, env.server.URL, adminToken, createInquiryRequest{Type: "petition", Title: "Closed"})
	updateInquiryStatus(t, env.server.URL, adminToken, id, inquiry.StatusClosed)

	store := support.NewViewStore()
	before := support.Aggregate{CountVotes: 4}
	view := support.NewInquiryView(id, before)
	store.SetOpen(view)

	coord := support.NewCoordinator(supportclient.New(env.server.URL, memberToken), store)
	_, err := coord.Toggle(context.Background(), id, memberID, vote.ModeSimple)

	var perr *support.PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	var apiErr *supportclient.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "inquiry_not_open" {
		t.Fatalf("expected inquiry_not_open api error, got %v", err)
	}
	if got := view.Aggregate(); got != before {
		t.Fatalf("view not rolled back: %+v", got)
	}
}
