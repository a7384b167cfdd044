package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"inquiry-system/internal/domain/inquiry"
	"inquiry-system/internal/domain/user"
	"inquiry-system/internal/domain/vote"
	jwtpkg "inquiry-system/internal/platform/jwt"
	"inquiry-system/internal/worker"
)

// VoteLimits throttles the vote mutation routes per client IP.
type VoteLimits struct {
	PerMinute int
	Burst     int
}

func (l VoteLimits) limit() rate.Limit {
	if l.PerMinute <= 0 {
		return rate.Inf
	}
	return rate.Every(time.Minute / time.Duration(l.PerMinute))
}

type Handler struct {
	userSvc    *user.Service
	inquirySvc *inquiry.Service
	voteSvc    *vote.Service
	jwtMgr     *jwtpkg.Manager
	voteCh     chan<- worker.VoteEvent
	db         *sql.DB
}

func NewRouter(
	userSvc *user.Service,
	inquirySvc *inquiry.Service,
	voteSvc *vote.Service,
	jwtMgr *jwtpkg.Manager,
	voteCh chan<- worker.VoteEvent,
	db *sql.DB,
	limits VoteLimits,
) http.Handler {
	h := &Handler{
		userSvc:    userSvc,
		inquirySvc: inquirySvc,
		voteSvc:    voteSvc,
		jwtMgr:     jwtMgr,
		voteCh:     voteCh,
		db:         db,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(RequestLogger)
	r.Use(CORSMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/ready", h.handleReady)
	r.Get("/swagger/*", httpSwagger.WrapHandler)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", h.handleRegister)
		r.Post("/auth/login", h.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(jwtMgr))

			r.Get("/inquiries", h.handleListInquiries)
			r.Get("/inquiries/{id}", h.handleGetInquiry)
			r.Get("/inquiries/{id}/votes", h.handleListVotes)

			r.Group(func(r chi.Router) {
				r.Use(RateLimitVotes(limits.limit(), limits.Burst))
				r.Post("/inquiries/{id}/votes", h.handleCreateVote)
				r.Put("/inquiries/{id}/votes", h.handleUpdateVote)
				r.Delete("/inquiries/{id}/votes", h.handleRemoveVote)
				r.Post("/votes/{id}/restore", h.handleRestoreVote)
			})

			r.Group(func(r chi.Router) {
				r.Use(RequireRole(user.RoleAdmin))
				r.Post("/inquiries", h.handleCreateInquiry)
				r.Patch("/inquiries/{id}/status", h.handleUpdateInquiryStatus)
			})
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	idStr := chi.URLParam(r, name)
	return strconv.ParseInt(idStr, 10, 64)
}

// emit hands the event to the worker without blocking the request.
func (h *Handler) emit(ev worker.VoteEvent) {
	if h.voteCh == nil {
		return
	}
	select {
	case h.voteCh <- ev:
	default:
	}
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":   "db_unavailable",
			"message": "database not configured",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":   "db_unavailable",
			"message": "database not ready",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
