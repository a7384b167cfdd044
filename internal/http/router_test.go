package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"inquiry-system/internal/domain/inquiry"
	"inquiry-system/internal/domain/user"
	"inquiry-system/internal/domain/vote"
	jwtpkg "inquiry-system/internal/platform/jwt"
	"inquiry-system/internal/worker"
)

type testUserRepo struct {
	mu     sync.Mutex
	users  map[int64]*user.User
	byMail map[string]int64
	nextID int64
}

func newTestUserRepo() *testUserRepo {
	return &testUserRepo{
		users:  make(map[int64]*user.User),
		byMail: make(map[string]int64),
		nextID: 1,
	}
}

func (r *testUserRepo) Create(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = r.nextID
	r.nextID++
	u.CreatedAt = time.Now()
	copyUser := *u
	r.users[u.ID] = &copyUser
	r.byMail[u.Email] = u.ID
	return nil
}

func (r *testUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byMail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copyUser := *r.users[id]
	return &copyUser, nil
}

func (r *testUserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copyUser := *u
	return &copyUser, nil
}

type testInquiryRepo struct {
	mu        sync.Mutex
	inquiries map[int64]*inquiry.Inquiry
	nextID    int64
}

func newTestInquiryRepo() *testInquiryRepo {
	return &testInquiryRepo{inquiries: make(map[int64]*inquiry.Inquiry), nextID: 1}
}

func (r *testInquiryRepo) Create(ctx context.Context, q *inquiry.Inquiry) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q.ID = r.nextID
	r.nextID++
	q.CreatedAt = time.Now()
	q.UpdatedAt = q.CreatedAt
	copyQ := *q
	r.inquiries[q.ID] = &copyQ
	return q.ID, nil
}

func (r *testInquiryRepo) GetByID(ctx context.Context, id int64) (*inquiry.Inquiry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.inquiries[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copyQ := *q
	return &copyQ, nil
}

func (r *testInquiryRepo) List(ctx context.Context, status *string) ([]inquiry.Inquiry, error) {
	return r.filter(func(q *inquiry.Inquiry) bool { return status == nil || q.Status == *status }), nil
}

func (r *testInquiryRepo) ListChildren(ctx context.Context, parentID int64) ([]inquiry.Inquiry, error) {
	return r.filter(func(q *inquiry.Inquiry) bool { return q.ParentID != nil && *q.ParentID == parentID }), nil
}

func (r *testInquiryRepo) filter(keep func(*inquiry.Inquiry) bool) []inquiry.Inquiry {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := []inquiry.Inquiry{}
	for id := int64(1); id < r.nextID; id++ {
		if q, ok := r.inquiries[id]; ok && keep(q) {
			res = append(res, *q)
		}
	}
	return res
}

func (r *testInquiryRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.inquiries[id]
	if !ok {
		return sql.ErrNoRows
	}
	q.Status = status
	q.UpdatedAt = time.Now()
	return nil
}

type testVoteRepo struct {
	mu     sync.Mutex
	votes  []*vote.Vote
	nextID int64
}

func newTestVoteRepo() *testVoteRepo {
	return &testVoteRepo{nextID: 1}
}

func (r *testVoteRepo) find(inquiryID, userID int64) *vote.Vote {
	for _, v := range r.votes {
		if v.InquiryID == inquiryID && v.UserID == userID {
			return v
		}
	}
	return nil
}

func (r *testVoteRepo) Get(ctx context.Context, inquiryID, userID int64) (*vote.Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.find(inquiryID, userID)
	if v == nil {
		return nil, vote.ErrVoteNotFound
	}
	copyV := *v
	return &copyV, nil
}

func (r *testVoteRepo) GetByID(ctx context.Context, id int64) (*vote.Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.votes {
		if v.ID == id {
			copyV := *v
			return &copyV, nil
		}
	}
	return nil, vote.ErrVoteNotFound
}

func (r *testVoteRepo) Upsert(ctx context.Context, v *vote.Vote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing := r.find(v.InquiryID, v.UserID); existing != nil {
		existing.Value = v.Value
		existing.DeletedAt = nil
		v.ID, v.CreatedAt = existing.ID, existing.CreatedAt
		return nil
	}
	v.ID = r.nextID
	r.nextID++
	v.CreatedAt = time.Now()
	copyV := *v
	r.votes = append(r.votes, &copyV)
	return nil
}

func (r *testVoteRepo) SoftDelete(ctx context.Context, inquiryID, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.find(inquiryID, userID)
	if v == nil || v.Removed() {
		return vote.ErrVoteNotFound
	}
	now := time.Now()
	v.DeletedAt = &now
	return nil
}

func (r *testVoteRepo) Restore(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.votes {
		if v.ID == id {
			v.DeletedAt = nil
			return nil
		}
	}
	return vote.ErrVoteNotFound
}

func (r *testVoteRepo) ListByInquiry(ctx context.Context, inquiryID int64) ([]vote.Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []vote.Vote
	for _, v := range r.votes {
		if v.InquiryID == inquiryID {
			res = append(res, *v)
		}
	}
	return res, nil
}

type testEnv struct {
	server    *httptest.Server
	users     *testUserRepo
	inquiries *testInquiryRepo
	votes     *testVoteRepo
	events    chan worker.VoteEvent
}

func setupServer(t *testing.T, limits VoteLimits) *testEnv {
	t.Helper()
	env := &testEnv{
		users:     newTestUserRepo(),
		inquiries: newTestInquiryRepo(),
		votes:     newTestVoteRepo(),
		events:    make(chan worker.VoteEvent, 100),
	}

	userSvc := user.NewService(env.users)
	inquirySvc := inquiry.NewService(env.inquiries, inquiry.NewTypeModes([]string{"petition"}))
	voteSvc := vote.NewService(env.votes, inquirySvc, nil)
	jwtMgr := jwtpkg.NewManager("secret", "test-issuer", time.Hour)

	env.server = httptest.NewServer(NewRouter(userSvc, inquirySvc, voteSvc, jwtMgr, env.events, nil, limits))
	t.Cleanup(env.server.Close)
	return env
}

func seedUserWithPassword(t *testing.T, repo *testUserRepo, email, role, password string) int64 {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &user.User{Email: email, PasswordHash: string(hash), Role: role, IsActive: true}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u.ID
}

func loginAndToken(t *testing.T, serverURL, email, password string) string {
	t.Helper()
	body, _ := json.Marshal(authRequest{Email: email, Password: password})
	resp, err := http.Post(serverURL+"/api/v1/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status: %d", resp.StatusCode)
	}
	var payload authResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if payload.Token == "" {
		t.Fatalf("token missing")
	}
	return payload.Token
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		rdr = bytes.NewReader(data)
	}
	req, _ := http.NewRequest(method, url, rdr)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s %s: expected %d, got %d", resp.Request.Method, resp.Request.URL.Path, want, resp.StatusCode)
	}
}

func decodeInto(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func createInquiryViaAPI(t *testing.T, serverURL, token string, req createInquiryRequest) int64 {
	t.Helper()
	resp := doJSON(t, http.MethodPost, serverURL+"/api/v1/inquiries", token, req)
	expectStatus(t, resp, http.StatusCreated)
	var payload map[string]int64
	decodeInto(t, resp, &payload)
	return payload["id"]
}

func updateInquiryStatus(t *testing.T, serverURL, token string, id int64, status string) {
	t.Helper()
	resp := doJSON(t, http.MethodPatch, serverURL+"/api/v1/inquiries/"+itoa(id)+"/status", token, updateStatusRequest{Status: status})
	expectStatus(t, resp, http.StatusNoContent)
}

func votesURL(serverURL string, inquiryID int64) string {
	return serverURL + "/api/v1/inquiries/" + itoa(inquiryID) + "/votes"
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

func valuePtr(v vote.Value) *vote.Value {
	return &v
}

// adminAndMember seeds both roles and returns their tokens.
func adminAndMember(t *testing.T, env *testEnv) (adminToken, memberToken string, memberID int64) {
	t.Helper()
	seedUserWithPassword(t, env.users, "admin@test.com", user.RoleAdmin, "pass123")
	memberID = seedUserWithPassword(t, env.users, "user@test.com", user.RoleMember, "pass123")
	return loginAndToken(t, env.server.URL, "admin@test.com", "pass123"),
		loginAndToken(t, env.server.URL, "user@test.com", "pass123"),
		memberID
}

func TestRBACForInquiryCreation(t *testing.T) {
	env := setupServer(t, VoteLimits{})
	adminToken, memberToken, _ := adminAndMember(t, env)

	createInquiryViaAPI(t, env.server.URL, adminToken, createInquiryRequest{Title: "Admin inquiry"})

	resp := doJSON(t, http.MethodPost, env.server.URL+"/api/v1/inquiries", memberToken, createInquiryRequest{Title: "Member inquiry"})
	expectStatus(t, resp, http.StatusForbidden)

	resp = doJSON(t, http.MethodGet, env.server.URL+"/api/v1/inquiries", "", nil)
	expectStatus(t, resp, http.StatusUnauthorized)
}

func TestRegisterThenLogin(t *testing.T) {
	env := setupServer(t, VoteLimits{})

	resp := doJSON(t, http.MethodPost, env.server.URL+"/api/v1/auth/register", "", authRequest{Email: "New@Test.com", Password: "pw"})
	expectStatus(t, resp, http.StatusCreated)
	var payload authResponse
	decodeInto(t, resp, &payload)
	if payload.User == nil || payload.User.Role != user.RoleMember || payload.User.DisplayName != "new" {
		t.Fatalf("unexpected registered user %+v", payload.User)
	}

	resp = doJSON(t, http.MethodPost, env.server.URL+"/api/v1/auth/register", "", authRequest{Email: "new@test.com", Password: "pw"})
	expectStatus(t, resp, http.StatusBadRequest)

	loginAndToken(t, env.server.URL, "new@test.com", "pw")
}

func TestVoteLifecycle(t *testing.T) {
	env := setupServer(t, VoteLimits{})
	adminToken, memberToken, memberID := adminAndMember(t, env)

	id := createInquiryViaAPI(t, env.server.URL, adminToken, createInquiryRequest{Title: "Bike lanes"})
	updateInquiryStatus(t, env.server.URL, adminToken, id, inquiry.StatusOpen)

	resp := doJSON(t, http.MethodPost, votesURL(env.server.URL, id), memberToken, nil)
	expectStatus(t, resp, http.StatusCreated)
	var created vote.Vote
	decodeInto(t, resp, &created)
	if created.UserID != memberID || created.Value != vote.Positive {
		t.Fatalf("unexpected created vote %+v", created)
	}

	resp = doJSON(t, http.MethodPut, votesURL(env.server.URL, id), memberToken, voteRequest{Value: valuePtr(vote.Neutral)})
	expectStatus(t, resp, http.StatusOK)
	var updated vote.Vote
	decodeInto(t, resp, &updated)
	if updated.ID != created.ID || updated.Value != vote.Neutral {
		t.Fatalf("unexpected updated vote %+v", updated)
	}

	resp = doJSON(t, http.MethodGet, votesURL(env.server.URL, id), memberToken, nil)
	expectStatus(t, resp, http.StatusOK)
	var list voteListResponse
	decodeInto(t, resp, &list)
	if list.InquiryID != id || len(list.Votes) != 1 || list.Votes[0].Value != vote.Neutral {
		t.Fatalf("unexpected vote list %+v", list)
	}

	expectStatus(t, doJSON(t, http.MethodDelete, votesURL(env.server.URL, id), memberToken, nil), http.StatusNoContent)
	expectStatus(t, doJSON(t, http.MethodDelete, votesURL(env.server.URL, id), memberToken, nil), http.StatusNoContent)

	resp = doJSON(t, http.MethodGet, votesURL(env.server.URL, id), memberToken, nil)
	list = voteListResponse{}
	decodeInto(t, resp, &list)
	if len(list.Votes) != 0 {
		t.Fatalf("expected no live votes, got %+v", list.Votes)
	}

	kinds := map[string]int{}
	for len(env.events) > 0 {
		kinds[(<-env.events).Kind]++
	}
	if kinds[worker.KindCreated] != 1 || kinds[worker.KindUpdated] != 1 || kinds[worker.KindRemoved] != 2 {
		t.Fatalf("unexpected emitted events %v", kinds)
	}
}

func TestInquiryStatusGating(t *testing.T) {
	env := setupServer(t, VoteLimits{})
	adminToken, memberToken, _ := adminAndMember(t, env)

	id := createInquiryViaAPI(t, env.server.URL, adminToken, createInquiryRequest{Title: "Draft inquiry"})

	resp := doJSON(t, http.MethodPost, votesURL(env.server.URL, id), memberToken, nil)
	expectStatus(t, resp, http.StatusConflict)
	var errPayload map[string]string
	decodeInto(t, resp, &errPayload)
	if errPayload["error"] != "inquiry_not_open" || errPayload["message"] == "" {
		t.Fatalf("expected structured error payload, got %v", errPayload)
	}

	updateInquiryStatus(t, env.server.URL, adminToken, id, inquiry.StatusClosed)
	expectStatus(t, doJSON(t, http.MethodDelete, votesURL(env.server.URL, id), memberToken, nil), http.StatusConflict)

	expectStatus(t, doJSON(t, http.MethodPost, votesURL(env.server.URL, 9999), memberToken, nil), http.StatusNotFound)
	expectStatus(t, doJSON(t, http.MethodPatch, env.server.URL+"/api/v1/inquiries/9999/status", adminToken,
		updateStatusRequest{Status: inquiry.StatusOpen}), http.StatusNotFound)
	expectStatus(t, doJSON(t, http.MethodPatch, env.server.URL+"/api/v1/inquiries/"+itoa(id)+"/status", adminToken,
		updateStatusRequest{Status: "archived"}), http.StatusBadRequest)
}

func TestSimpleModeVotes(t *testing.T) {
	env := setupServer(t, VoteLimits{})
	adminToken, memberToken, _ := adminAndMember(t, env)

	id := createInquiryViaAPI(t, env.server.URL, adminToken, createInquiryRequest{Type: "petition", Title: "Plant trees"})
	updateInquiryStatus(t, env.server.URL, adminToken, id, inquiry.StatusOpen)

	expectStatus(t, doJSON(t, http.MethodPost, votesURL(env.server.URL, id), memberToken,
		voteRequest{Value: valuePtr(vote.Negative)}), http.StatusBadRequest)
	expectStatus(t, doJSON(t, http.MethodPost, votesURL(env.server.URL, id), memberToken, voteRequest{}), http.StatusCreated)

	resp := doJSON(t, http.MethodPut, votesURL(env.server.URL, id), memberToken, voteRequest{Value: valuePtr(vote.Neutral)})
	expectStatus(t, resp, http.StatusConflict)
	var errPayload map[string]string
	decodeInto(t, resp, &errPayload)
	if errPayload["error"] != "simple_mode_update" {
		t.Fatalf("unexpected error code %q", errPayload["error"])
	}
}

func TestRestoreRequiresOwner(t *testing.T) {
	env := setupServer(t, VoteLimits{})
	adminToken, memberToken, _ := adminAndMember(t, env)

	id := createInquiryViaAPI(t, env.server.URL, adminToken, createInquiryRequest{Title: "Night buses"})
	updateInquiryStatus(t, env.server.URL, adminToken, id, inquiry.StatusOpen)

	resp := doJSON(t, http.MethodPost, votesURL(env.server.URL, id), memberToken, voteRequest{Value: valuePtr(vote.Negative)})
	expectStatus(t, resp, http.StatusCreated)
	var created vote.Vote
	decodeInto(t, resp, &created)
	expectStatus(t, doJSON(t, http.MethodDelete, votesURL(env.server.URL, id), memberToken, nil), http.StatusNoContent)

	restoreURL := env.server.URL + "/api/v1/votes/" + itoa(created.ID) + "/restore"
	expectStatus(t, doJSON(t, http.MethodPost, restoreURL, adminToken, nil), http.StatusForbidden)

	resp = doJSON(t, http.MethodPost, restoreURL, memberToken, nil)
	expectStatus(t, resp, http.StatusOK)
	var restored vote.Vote
	decodeInto(t, resp, &restored)
	if restored.Removed() || restored.Value != vote.Negative {
		t.Fatalf("unexpected restored vote %+v", restored)
	}
}

func TestInquiryDetailIncludesChildrenAndOwnVote(t *testing.T) {
	env := setupServer(t, VoteLimits{})
	adminToken, memberToken, memberID := adminAndMember(t, env)

	parent := createInquiryViaAPI(t, env.server.URL, adminToken, createInquiryRequest{Title: "Parks"})
	child := createInquiryViaAPI(t, env.server.URL, adminToken, createInquiryRequest{Title: "More benches", ParentID: &parent})
	updateInquiryStatus(t, env.server.URL, adminToken, child, inquiry.StatusOpen)

	expectStatus(t, doJSON(t, http.MethodPost, votesURL(env.server.URL, child), memberToken,
		voteRequest{Value: valuePtr(vote.Neutral)}), http.StatusCreated)

	resp := doJSON(t, http.MethodGet, env.server.URL+"/api/v1/inquiries/"+itoa(parent), memberToken, nil)
	expectStatus(t, resp, http.StatusOK)
	var detail inquiryDetailResponse
	decodeInto(t, resp, &detail)

	if detail.ID != parent || detail.Counts.Votes != 0 || detail.MyVote != nil {
		t.Fatalf("unexpected parent summary %+v", detail.inquirySummary)
	}
	if len(detail.Children) != 1 {
		t.Fatalf("expected one child, got %d", len(detail.Children))
	}
	c := detail.Children[0]
	if c.ID != child || c.Counts.Votes != 1 || c.Counts.Neutral != 1 {
		t.Fatalf("unexpected child summary %+v", c)
	}
	if c.MyVote == nil || c.MyVote.UserID != memberID || c.MyVote.Value != vote.Neutral {
		t.Fatalf("expected caller vote on child, got %+v", c.MyVote)
	}
}

func TestVoteRoutesAreRateLimited(t *testing.T) {
	env := setupServer(t, VoteLimits{PerMinute: 1, Burst: 1})
	adminToken, memberToken, _ := adminAndMember(t, env)

	id := createInquiryViaAPI(t, env.server.URL, adminToken, createInquiryRequest{Title: "Limits"})
	updateInquiryStatus(t, env.server.URL, adminToken, id, inquiry.StatusOpen)

	expectStatus(t, doJSON(t, http.MethodPost, votesURL(env.server.URL, id), memberToken, nil), http.StatusCreated)
	expectStatus(t, doJSON(t, http.MethodDelete, votesURL(env.server.URL, id), memberToken, nil), http.StatusTooManyRequests)

	// reads are not throttled
	expectStatus(t, doJSON(t, http.MethodGet, votesURL(env.server.URL, id), memberToken, nil), http.StatusOK)
}
