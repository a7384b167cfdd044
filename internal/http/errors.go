package api

import (
	"database/sql"
	"errors"
	"net/http"

	"inquiry-system/internal/domain/inquiry"
	"inquiry-system/internal/domain/user"
	"inquiry-system/internal/domain/vote"
	"inquiry-system/internal/platform/apperr"
)

func errorResponse(w http.ResponseWriter, err error) {
	appErr := mapError(err)
	if appErr.StatusCode() >= http.StatusInternalServerError {
		slogLogger.Error("request failed",
			"event", "http_internal_error",
			"module", "http",
			"code", appErr.Code,
			"error", appErr.Error(),
			"cause", errors.Unwrap(appErr),
		)
	}
	writeJSON(w, appErr.StatusCode(), appErr.Body())
}

func mapError(err error) *apperr.AppError {
	if err == nil {
		return apperr.Internal("internal_error", "internal server error", nil)
	}

	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return apperr.NotFound("not_found", "resource not found", err)
	case errors.Is(err, user.ErrInvalidCredentials):
		return apperr.Unauthorized("invalid_credentials", "invalid credentials", err)
	case errors.Is(err, user.ErrInactiveUser):
		return apperr.Unauthorized("inactive_user", "user is inactive", err)
	case errors.Is(err, user.ErrEmailTaken):
		return apperr.BadRequest("email_taken", "email already taken", err)
	case errors.Is(err, user.ErrMissingFields):
		return apperr.BadRequest("invalid_input", "email and password required", err)
	case errors.Is(err, inquiry.ErrNotFound):
		return apperr.NotFound("inquiry_not_found", "inquiry not found", err)
	case errors.Is(err, inquiry.ErrInvalidStatus):
		return apperr.BadRequest("invalid_status", "status must be draft, open or closed", err)
	case errors.Is(err, inquiry.ErrTitleRequired):
		return apperr.BadRequest("invalid_input", "title is required", err)
	case errors.Is(err, inquiry.ErrInvalidParent):
		return apperr.BadRequest("invalid_parent", "parent inquiry does not exist", err)
	case errors.Is(err, vote.ErrInquiryNotOpen):
		return apperr.Conflict("inquiry_not_open", "inquiry is not open for support", err)
	case errors.Is(err, vote.ErrSimpleModeUpdate):
		return apperr.Conflict("simple_mode_update", "simple mode votes cannot be updated", err)
	case errors.Is(err, vote.ErrInvalidValue):
		return apperr.BadRequest("invalid_value", "value must be -1, 0 or 1", err)
	case errors.Is(err, vote.ErrVoteNotFound):
		return apperr.NotFound("vote_not_found", "vote not found", err)
	case errors.Is(err, vote.ErrNotOwner):
		return apperr.Forbidden("not_owner", "vote belongs to another user", err)
	default:
		return apperr.FromError(err)
	}
}
