// Command supportctl toggles the caller's support on an inquiry through the
// optimistic engine and prints the resulting counters.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"inquiry-system/internal/config"
	"inquiry-system/internal/domain/vote"
	"inquiry-system/internal/platform/otel"
	"inquiry-system/internal/support"
	"inquiry-system/internal/supportclient"
)

func main() {
	fs := flag.NewFlagSet("supportctl", flag.ExitOnError)
	inquiryID := fs.Int64("inquiry", 0, "inquiry id")
	userID := fs.Int64("user", 0, "id of the user the token belongs to")
	mode := fs.String("mode", string(vote.ModeTernary), "voting mode: ternary or simple")
	action := fs.String("action", "toggle", "toggle or refresh")
	otelEndpoint := fs.String("otel-endpoint", "", "OTLP/HTTP endpoint for traces")
	_ = fs.Parse(os.Args[1:])

	if *inquiryID == 0 || *userID == 0 || !vote.Mode(*mode).Valid() {
		fs.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *inquiryID, *userID, vote.Mode(*mode), *action, *otelEndpoint); err != nil {
		log.Fatalf("supportctl: %v", err)
	}
}

func run(ctx context.Context, inquiryID, userID int64, mode vote.Mode, action, otelEndpoint string) error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}

	shutdown, err := otel.Setup(ctx, "inquiry-supportctl", otelEndpoint)
	if err != nil {
		return err
	}
	defer func() { _ = shutdown(context.Background()) }()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	client := supportclient.New(cfg.APIURL, cfg.Token,
		supportclient.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		supportclient.WithLogger(logger),
	)

	store := support.NewViewStore()
	view := support.NewInquiryView(inquiryID, support.Aggregate{})
	store.SetOpen(view)
	coord := support.NewCoordinator(client, store, support.WithLogger(logger))

	// seed the view with the server state so the toggle starts from it
	if _, err := coord.Refresh(ctx, inquiryID, userID, mode); err != nil {
		return err
	}

	switch action {
	case "refresh":
	case "toggle":
		out, err := coord.Toggle(ctx, inquiryID, userID, mode)
		if err != nil {
			return err
		}
		fmt.Printf("transition: %s\n", out.Transition)
	default:
		return fmt.Errorf("unknown action %q", action)
	}

	agg := view.Aggregate()
	fmt.Printf("votes=%d positive=%d neutral=%d negative=%d mine=%s\n",
		agg.CountVotes, agg.CountPositive, agg.CountNeutral, agg.CountNegative, agg.CurrentUser.State)
	return nil
}
