package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"inquiry-system/internal/domain/vote"
	"inquiry-system/internal/platform/apperr"
	"inquiry-system/internal/worker"
)

type voteRequest struct {
	Value *vote.Value `json:"value,omitempty"`
}

type voteListResponse struct {
	InquiryID int64       `json:"inquiry_id"`
	Votes     []vote.Vote `json:"votes"`
}

// decodeVoteRequest accepts an empty body as a request without a value.
func decodeVoteRequest(r *http.Request) (voteRequest, error) {
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return req, apperr.BadRequest("invalid_input", "invalid body", err)
	}
	return req, nil
}

// @Summary     Cast a vote
// @Description Value defaults to 1. Casting over an existing vote replaces its value.
// @Tags        votes
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       id       path      int64        true   "Inquiry ID"
// @Param       request  body      voteRequest  false  "Vote value"
// @Success     201      {object}  vote.Vote
// @Failure     400      {object}  map[string]string  "invalid value"
// @Failure     404      {object}  map[string]string  "inquiry not found"
// @Failure     409      {object}  map[string]string  "inquiry not open"
// @Failure     429      {object}  map[string]string  "rate limited"
// @Router      /api/v1/inquiries/{id}/votes [post]
func (h *Handler) handleCreateVote(w http.ResponseWriter, r *http.Request) {
	inquiryID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid inquiry id", err))
		return
	}
	req, err := decodeVoteRequest(r)
	if err != nil {
		errorResponse(w, err)
		return
	}

	userID := userIDFromCtx(r)
	v, err := h.voteSvc.Create(r.Context(), inquiryID, userID, req.Value)
	if err != nil {
		errorResponse(w, err)
		return
	}
	h.emit(worker.VoteEvent{InquiryID: inquiryID, UserID: userID, Kind: worker.KindCreated, Value: int8(v.Value)})
	writeJSON(w, http.StatusCreated, v)
}

// @Summary     Change a vote value
// @Description Creates the vote when the caller has none. Rejected for simple mode inquiries.
// @Tags        votes
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       id       path      int64        true  "Inquiry ID"
// @Param       request  body      voteRequest  true  "Vote value"
// @Success     200      {object}  vote.Vote
// @Failure     400      {object}  map[string]string  "invalid value"
// @Failure     409      {object}  map[string]string  "inquiry not open or simple mode"
// @Router      /api/v1/inquiries/{id}/votes [put]
func (h *Handler) handleUpdateVote(w http.ResponseWriter, r *http.Request) {
	inquiryID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid inquiry id", err))
		return
	}
	req, err := decodeVoteRequest(r)
	if err != nil {
		errorResponse(w, err)
		return
	}
	if req.Value == nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "value is required", nil))
		return
	}

	userID := userIDFromCtx(r)
	v, err := h.voteSvc.Update(r.Context(), inquiryID, userID, *req.Value)
	if err != nil {
		errorResponse(w, err)
		return
	}
	h.emit(worker.VoteEvent{InquiryID: inquiryID, UserID: userID, Kind: worker.KindUpdated, Value: int8(v.Value)})
	writeJSON(w, http.StatusOK, v)
}

// @Summary     Withdraw a vote
// @Tags        votes
// @Security    BearerAuth
// @Param       id   path  int64  true  "Inquiry ID"
// @Success     204
// @Failure     404  {object}  map[string]string  "inquiry not found"
// @Failure     409  {object}  map[string]string  "inquiry not open"
// @Router      /api/v1/inquiries/{id}/votes [delete]
func (h *Handler) handleRemoveVote(w http.ResponseWriter, r *http.Request) {
	inquiryID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid inquiry id", err))
		return
	}

	userID := userIDFromCtx(r)
	if err := h.voteSvc.Remove(r.Context(), inquiryID, userID); err != nil {
		errorResponse(w, err)
		return
	}
	h.emit(worker.VoteEvent{InquiryID: inquiryID, UserID: userID, Kind: worker.KindRemoved})
	w.WriteHeader(http.StatusNoContent)
}

// @Summary     Live votes of an inquiry
// @Tags        votes
// @Security    BearerAuth
// @Produce     json
// @Param       id   path      int64  true  "Inquiry ID"
// @Success     200  {object}  voteListResponse
// @Failure     404  {object}  map[string]string  "inquiry not found"
// @Router      /api/v1/inquiries/{id}/votes [get]
func (h *Handler) handleListVotes(w http.ResponseWriter, r *http.Request) {
	inquiryID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid inquiry id", err))
		return
	}
	if _, err := h.inquirySvc.Get(r.Context(), inquiryID); err != nil {
		errorResponse(w, err)
		return
	}

	votes, err := h.voteSvc.List(r.Context(), inquiryID)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, voteListResponse{InquiryID: inquiryID, Votes: votes})
}

// @Summary     Restore a withdrawn vote
// @Tags        votes
// @Security    BearerAuth
// @Produce     json
// @Param       id   path      int64  true  "Vote ID"
// @Success     200  {object}  vote.Vote
// @Failure     403  {object}  map[string]string  "not the owner"
// @Failure     404  {object}  map[string]string  "vote not found"
// @Router      /api/v1/votes/{id}/restore [post]
func (h *Handler) handleRestoreVote(w http.ResponseWriter, r *http.Request) {
	voteID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid vote id", err))
		return
	}

	userID := userIDFromCtx(r)
	v, err := h.voteSvc.Restore(r.Context(), voteID, userID)
	if err != nil {
		errorResponse(w, err)
		return
	}
	h.emit(worker.VoteEvent{InquiryID: v.InquiryID, UserID: userID, Kind: worker.KindRestored, Value: int8(v.Value)})
	writeJSON(w, http.StatusOK, v)
}
