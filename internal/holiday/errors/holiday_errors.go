package holidayerrors

import (
	"net/http"

	"github.com/R-M-Tejaswini/slack-leave-app/internal/shared/apperror"
)

var (
	ErrInvalidHolidayID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid holiday id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrHolidayNotFound = apperror.New(
		apperror.CodeNotFound,
		"holiday not found",
		http.StatusNotFound,
	)
	ErrHolidayDateTaken = apperror.New(
		apperror.CodeConflict,
		"a holiday already exists on this date",
		http.StatusConflict,
	)
)
