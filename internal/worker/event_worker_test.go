package worker

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestRunDrainsUntilClosed(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ch := make(chan VoteEvent, 2)
	ch <- VoteEvent{InquiryID: 1, UserID: 2, Kind: KindCreated, Value: 1}
	ch <- VoteEvent{InquiryID: 1, UserID: 2, Kind: KindRemoved}
	close(ch)

	done := make(chan struct{})
	go func() {
		NewEventWorker(ch, logger).Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("worker did not stop after channel close")
	}
	out := buf.String()
	if !strings.Contains(out, "support_vote_created") || !strings.Contains(out, "support_vote_removed") {
		t.Fatalf("expected both events logged, got %q", out)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewEventWorker(make(chan VoteEvent), nil).Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("worker did not stop on cancel")
	}
}
