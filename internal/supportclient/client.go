package supportclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"inquiry-system/internal/domain/vote"
	"inquiry-system/internal/retry"
	"inquiry-system/internal/support"
)

var (
	errSuperseded   = errors.New("superseded by a newer request")
	ErrUserMismatch = errors.New("server returned a vote of another user")
)

// APIError is a non-2xx response from the inquiry API.
type APIError struct {
	Status  int
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api %d", e.Status)
}

type pairKey struct {
	inquiryID int64
	userID    int64
}

type inflightCall struct {
	seq    uint64
	cancel context.CancelCauseFunc
}

// Client talks to the inquiry API on behalf of one authenticated user. A new
// create, update or remove for an inquiry cancels the one still in flight for
// the same inquiry and user; the superseded call returns support.ErrCanceled.
type Client struct {
	baseURL      string
	token        string
	http         *http.Client
	logger       *slog.Logger
	listAttempts int
	listBackoff  time.Duration

	mu       sync.Mutex
	seq      uint64
	inflight map[pairKey]inflightCall
}

var _ support.Client = (*Client)(nil)

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithListRetry configures the retries of ListVotesForInquiry. Mutations are
// never retried.
func WithListRetry(attempts int, baseDelay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.listAttempts = attempts
			c.listBackoff = baseDelay
		}
	}
}

func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		token:        token,
		http:         &http.Client{Timeout: 10 * time.Second},
		logger:       slog.Default(),
		listAttempts: 3,
		listBackoff:  200 * time.Millisecond,
		inflight:     make(map[pairKey]inflightCall),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type voteBody struct {
	Value *vote.Value `json:"value,omitempty"`
}

type voteListResponse struct {
	InquiryID int64       `json:"inquiry_id"`
	Votes     []vote.Vote `json:"votes"`
}

func (c *Client) CreateVote(ctx context.Context, inquiryID, userID int64, value *vote.Value) (vote.Vote, error) {
	ctx, done := c.supersede(ctx, inquiryID, userID)
	defer done()

	var v vote.Vote
	if err := c.do(ctx, http.MethodPost, inquiryVotesPath(inquiryID), voteBody{Value: value}, &v); err != nil {
		return vote.Vote{}, err
	}
	return v, checkOwner(v, userID)
}

func (c *Client) UpdateVote(ctx context.Context, inquiryID, userID int64, value vote.Value) (vote.Vote, error) {
	ctx, done := c.supersede(ctx, inquiryID, userID)
	defer done()

	var v vote.Vote
	if err := c.do(ctx, http.MethodPut, inquiryVotesPath(inquiryID), voteBody{Value: &value}, &v); err != nil {
		return vote.Vote{}, err
	}
	return v, checkOwner(v, userID)
}

func (c *Client) RemoveVote(ctx context.Context, inquiryID, userID int64) error {
	ctx, done := c.supersede(ctx, inquiryID, userID)
	defer done()

	return c.do(ctx, http.MethodDelete, inquiryVotesPath(inquiryID), nil, nil)
}

func (c *Client) RestoreVote(ctx context.Context, voteID int64) (vote.Vote, error) {
	var v vote.Vote
	if err := c.do(ctx, http.MethodPost, "/api/v1/votes/"+strconv.FormatInt(voteID, 10)+"/restore", nil, &v); err != nil {
		return vote.Vote{}, err
	}
	return v, nil
}

func (c *Client) ListVotesForInquiry(ctx context.Context, inquiryID int64) ([]vote.Vote, error) {
	var resp voteListResponse
	err := retry.DoWithRetry(ctx, c.listAttempts, c.listBackoff, func() error {
		err := c.do(ctx, http.MethodGet, inquiryVotesPath(inquiryID), nil, &resp)
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			return retry.Permanent(err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp.Votes, nil
}

// supersede registers a mutation for the pair and cancels the previous one.
// The returned func must be called when the request finishes.
func (c *Client) supersede(ctx context.Context, inquiryID, userID int64) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(ctx)
	key := pairKey{inquiryID: inquiryID, userID: userID}

	c.mu.Lock()
	if prev, ok := c.inflight[key]; ok {
		prev.cancel(errSuperseded)
	}
	c.seq++
	seq := c.seq
	c.inflight[key] = inflightCall{seq: seq, cancel: cancel}
	c.mu.Unlock()

	return ctx, func() {
		c.mu.Lock()
		if cur, ok := c.inflight[key]; ok && cur.seq == seq {
			delete(c.inflight, key)
		}
		c.mu.Unlock()
		cancel(nil)
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(context.Cause(ctx), errSuperseded) {
			c.logger.Debug("support request superseded",
				"event", "support_client_superseded",
				"module", "supportclient",
				"method", method,
				"path", path,
				"request_id", requestID,
			)
			return fmt.Errorf("%s %s: %w", method, path, support.ErrCanceled)
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		c.logger.Warn("inquiry api error",
			"event", "support_client_api_error",
			"module", "supportclient",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"code", apiErr.Code,
			"request_id", requestID,
		)
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(context.Cause(ctx), errSuperseded) {
			return fmt.Errorf("decode %s %s: %w", method, path, support.ErrCanceled)
		}
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func inquiryVotesPath(inquiryID int64) string {
	return "/api/v1/inquiries/" + strconv.FormatInt(inquiryID, 10) + "/votes"
}

func checkOwner(v vote.Vote, userID int64) error {
	if v.UserID != userID {
		return fmt.Errorf("%w: got %d want %d", ErrUserMismatch, v.UserID, userID)
	}
	return nil
}
