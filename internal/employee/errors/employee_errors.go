package employeeerrors

import (
	"net/http"

	"github.com/R-M-Tejaswini/slack-leave-app/internal/shared/apperror"
)

var (
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidManagerID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid manager id",
		http.StatusBadRequest,
	)
	ErrInvalidTeamID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid team id",
		http.StatusBadRequest,
	)
	ErrInvalidAllowance = apperror.New(
		apperror.CodeInvalidInput,
		"monthly leave allowance must not be negative",
		http.StatusBadRequest,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrEmployeeExists = apperror.New(
		apperror.CodeConflict,
		"an employee with this slack id or email already exists",
		http.StatusConflict,
	)
	ErrSelfManager = apperror.New(
		apperror.CodeInvalidInput,
		"an employee cannot be their own manager",
		http.StatusBadRequest,
	)
)
