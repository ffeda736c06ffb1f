package teamerrors

import (
	"net/http"

	"github.com/R-M-Tejaswini/slack-leave-app/internal/shared/apperror"
)

var (
	ErrInvalidTeamID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid team id",
		http.StatusBadRequest,
	)
	ErrTeamNotFound = apperror.New(
		apperror.CodeNotFound,
		"team not found",
		http.StatusNotFound,
	)
	ErrTeamNameTaken = apperror.New(
		apperror.CodeConflict,
		"a team with this name already exists",
		http.StatusConflict,
	)
)
