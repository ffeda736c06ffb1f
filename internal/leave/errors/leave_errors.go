package errors

import (
	"fmt"
	"net/http"

	"github.com/R-M-Tejaswini/slack-leave-app/internal/shared/apperror"
)

var (
	ErrRequestNotFound  = apperror.New(apperror.CodeNotFound, "leave request not found", http.StatusNotFound)
	ErrAlreadyActioned  = apperror.New(apperror.CodeConflict, "this request has already been actioned", http.StatusConflict)
	ErrLeaveTypeUnknown = apperror.New(apperror.CodeInvalidInput, "unknown leave type", http.StatusBadRequest)
	ErrInvalidRequestID = apperror.New(apperror.CodeInvalidInput, "invalid leave request id", http.StatusBadRequest)

	ErrInvalidRange = apperror.New(apperror.CodeInvalidRange, "end date cannot be before the start date", http.StatusBadRequest)
	ErrPastDate     = apperror.New(apperror.CodePastDate, "leave cannot start on a past date", http.StatusBadRequest)
	// Retrospective leave types record absences that already happened,
	// so their dates may not reach into the future.
	ErrRetrospectiveFuture = apperror.New(apperror.CodePastDate, "this leave type must start today or earlier", http.StatusBadRequest)
	ErrNonWorkingRange     = apperror.New(apperror.CodeNonWorkingRange, "the selected dates contain no working days", http.StatusBadRequest)
	ErrOverlap             = apperror.New(apperror.CodeOverlap, "you already have a pending or approved request overlapping these dates", http.StatusConflict)
)

// LookbackExceeded is returned when a retrospective request starts
// further back than the configured lookback window.
func LookbackExceeded(days int) *apperror.AppError {
	return apperror.New(
		apperror.CodePastDate,
		fmt.Sprintf("retrospective leave cannot start more than %d days ago", days),
		http.StatusBadRequest,
	)
}

// AllowanceExceeded reports how many working days were requested against
// how many remain in the month of the start date.
func AllowanceExceeded(requested, remaining int) *apperror.AppError {
	return apperror.New(
		apperror.CodeAllowanceExceeded,
		fmt.Sprintf("you are requesting %d working day(s) but only have %d left this month", requested, remaining),
		http.StatusBadRequest,
	)
}
