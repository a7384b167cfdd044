package api

import (
	"encoding/json"
	"net/http"

	"inquiry-system/internal/domain/inquiry"
	"inquiry-system/internal/domain/vote"
	"inquiry-system/internal/platform/apperr"
)

type createInquiryRequest struct {
	ParentID    *int64  `json:"parent_id,omitempty"`
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// inquirySummary is an inquiry with its live tally and the caller's vote.
type inquirySummary struct {
	inquiry.Inquiry
	Counts vote.Counts `json:"counts"`
	MyVote *vote.Vote  `json:"my_vote,omitempty"`
}

type inquiryDetailResponse struct {
	inquirySummary
	Children []inquirySummary `json:"children"`
}

// @Summary     List inquiries
// @Tags        inquiries
// @Security    BearerAuth
// @Produce     json
// @Param       status  query     string  false  "draft, open or closed"
// @Success     200     {array}   inquirySummary
// @Failure     401     {object}  map[string]string  "unauthorized"
// @Router      /api/v1/inquiries [get]
func (h *Handler) handleListInquiries(w http.ResponseWriter, r *http.Request) {
	var status *string
	if s := r.URL.Query().Get("status"); s != "" {
		status = &s
	}

	list, err := h.inquirySvc.List(r.Context(), status)
	if err != nil {
		errorResponse(w, err)
		return
	}
	res, err := h.summarize(r, list)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// @Summary     Inquiry with children, counters and the caller's vote
// @Tags        inquiries
// @Security    BearerAuth
// @Produce     json
// @Param       id   path      int64  true  "Inquiry ID"
// @Success     200  {object}  inquiryDetailResponse
// @Failure     404  {object}  map[string]string  "not found"
// @Router      /api/v1/inquiries/{id} [get]
func (h *Handler) handleGetInquiry(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid inquiry id", err))
		return
	}

	q, err := h.inquirySvc.Get(r.Context(), id)
	if err != nil {
		errorResponse(w, err)
		return
	}
	children, err := h.inquirySvc.Children(r.Context(), id)
	if err != nil {
		errorResponse(w, err)
		return
	}

	summaries, err := h.summarize(r, append([]inquiry.Inquiry{*q}, children...))
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inquiryDetailResponse{
		inquirySummary: summaries[0],
		Children:       summaries[1:],
	})
}

// @Summary     Create an inquiry
// @Tags        inquiries
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       request  body      createInquiryRequest  true  "Inquiry"
// @Success     201      {object}  map[string]int64
// @Failure     400      {object}  map[string]string  "invalid input"
// @Failure     403      {object}  map[string]string  "forbidden"
// @Router      /api/v1/inquiries [post]
func (h *Handler) handleCreateInquiry(w http.ResponseWriter, r *http.Request) {
	var req createInquiryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	q := &inquiry.Inquiry{
		ParentID:    req.ParentID,
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		CreatorID:   userIDFromCtx(r),
	}
	id, err := h.inquirySvc.Create(r.Context(), q)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// @Summary     Change inquiry status
// @Tags        inquiries
// @Security    BearerAuth
// @Accept      json
// @Param       id       path  int64                true  "Inquiry ID"
// @Param       request  body  updateStatusRequest  true  "New status"
// @Success     204
// @Failure     400  {object}  map[string]string  "invalid status"
// @Failure     404  {object}  map[string]string  "not found"
// @Router      /api/v1/inquiries/{id}/status [patch]
func (h *Handler) handleUpdateInquiryStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid inquiry id", err))
		return
	}
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	if err := h.inquirySvc.UpdateStatus(r.Context(), id, req.Status); err != nil {
		errorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) summarize(r *http.Request, list []inquiry.Inquiry) ([]inquirySummary, error) {
	userID := userIDFromCtx(r)
	res := make([]inquirySummary, 0, len(list))
	for _, q := range list {
		counts, own, err := h.voteSvc.Summary(r.Context(), q.ID, userID)
		if err != nil {
			return nil, err
		}
		res = append(res, inquirySummary{Inquiry: q, Counts: counts, MyVote: own})
	}
	return res, nil
}
