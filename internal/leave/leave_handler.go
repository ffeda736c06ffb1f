package leave

import (
	"net/http"
	"time"

	leaveerrors "github.com/R-M-Tejaswini/slack-leave-app/internal/leave/errors"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/shared/apperror"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler is the read-only admin surface over requests. Mutations go
// through the Slack surface, which is where the people involved are.
type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.writeServiceError(c, leaveerrors.ErrInvalidRequestID)
		return
	}
	req, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ToRequestResponse(req), nil)
}

func (h *Handler) History(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.writeServiceError(c, leaveerrors.ErrInvalidRequestID)
		return
	}
	rows, err := h.service.History(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	resp := make([]AuditResponse, len(rows))
	for i := range rows {
		resp[i] = ToAuditResponse(&rows[i])
	}
	response.Success(c, http.StatusOK, resp, nil)
}

// Calendar lists approved requests intersecting [start, end], both
// dates required as YYYY-MM-DD query params.
func (h *Handler) Calendar(c *gin.Context) {
	start, err := time.Parse("2006-01-02", c.Query("start"))
	if err != nil {
		h.writeServiceError(c, apperror.InvalidField("start"))
		return
	}
	end, err := time.Parse("2006-01-02", c.Query("end"))
	if err != nil {
		h.writeServiceError(c, apperror.InvalidField("end"))
		return
	}

	requests, err := h.service.ApprovedInRange(c.Request.Context(), start, end)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	resp := make([]RequestResponse, len(requests))
	for i := range requests {
		resp[i] = ToRequestResponse(&requests[i])
	}
	response.Success(c, http.StatusOK, resp, nil)
}
