package webhook

import (
	"errors"
	"net/http"
	"time"

	"github.com/R-M-Tejaswini/slack-leave-app/internal/employee"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/leave"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/shared/apperror"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/slackapp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/slack-go/slack"
)

// leaveForm is the parsed state of the create/update modal.
type leaveForm struct {
	StartDate time.Time
	EndDate   time.Time
	LeaveType string
	Reason    string
}

// fieldError ties a human message to the form block it belongs under.
type fieldError struct {
	Block   string
	Message string
}

func parseLeaveForm(cb *slack.InteractionCallback) (leaveForm, *fieldError) {
	if cb.View.State == nil {
		return leaveForm{}, &fieldError{Block: slackapp.BlockStartDate, Message: "A server error occurred."}
	}
	values := cb.View.State.Values

	startStr := values[slackapp.BlockStartDate][slackapp.InputStartDate].SelectedDate
	endStr := values[slackapp.BlockEndDate][slackapp.InputEndDate].SelectedDate
	typeName := values[slackapp.BlockLeaveType][slackapp.SelectLeaveType].SelectedOption.Value
	reason := values[slackapp.BlockReason][slackapp.InputReason].Value

	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return leaveForm{}, &fieldError{Block: slackapp.BlockStartDate, Message: "Please select a start date."}
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return leaveForm{}, &fieldError{Block: slackapp.BlockEndDate, Message: "Please select an end date."}
	}
	if typeName == "" {
		return leaveForm{}, &fieldError{Block: slackapp.BlockLeaveType, Message: "Please select a leave type."}
	}

	return leaveForm{StartDate: start, EndDate: end, LeaveType: typeName, Reason: reason}, nil
}

// validationFieldError maps a service error onto the form block the
// failure belongs to, so the modal shows it under the right field.
func validationFieldError(err error) *fieldError {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		return &fieldError{Block: slackapp.BlockStartDate, Message: "A server error occurred."}
	}

	block := slackapp.BlockStartDate
	switch appErr.Code {
	case apperror.CodeInvalidRange:
		block = slackapp.BlockEndDate
	case apperror.CodeInvalidInput:
		block = slackapp.BlockLeaveType
	}
	return &fieldError{Block: block, Message: appErr.Message}
}

func respondFieldErrors(c *gin.Context, fe *fieldError) {
	respondFieldError(c, fe.Block, fe.Message)
}

func respondFieldError(c *gin.Context, block, message string) {
	c.JSON(http.StatusOK, gin.H{
		"response_action": "errors",
		"errors":          gin.H{block: message},
	})
}

func selectedRequestID(cb *slack.InteractionCallback) (uuid.UUID, bool) {
	if cb.View.State == nil {
		return uuid.Nil, false
	}
	value := cb.View.State.Values[slackapp.BlockRequestPick][slackapp.ActionRequestSelect].SelectedOption.Value
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// ownRequestViews maps an employee's own requests for display; no
// duration is computed because neither the picker nor the calendar
// grid shows it.
func ownRequestViews(requests []leave.Request, emp *employee.Employee) []slackapp.RequestView {
	views := make([]slackapp.RequestView, 0, len(requests))
	for i := range requests {
		r := &requests[i]
		view := requestViewOf(r)
		if view.EmployeeName == "" {
			view.EmployeeName = emp.Name
			view.SlackUserID = emp.SlackUserID
		}
		views = append(views, view)
	}
	return views
}

func requestViewOf(r *leave.Request) slackapp.RequestView {
	view := slackapp.RequestView{
		ID:         r.ID.String(),
		EmployeeID: r.EmployeeID.String(),
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		Reason:     r.Reason,
		Status:     r.Status,
		CreatedAt:  r.CreatedAt,
	}
	if r.Employee != nil {
		view.EmployeeName = r.Employee.Name
		view.SlackUserID = r.Employee.SlackUserID
	}
	if r.LeaveType != nil {
		view.LeaveType = r.LeaveType.Name
	}
	if r.Approver != nil {
		view.ApproverName = r.Approver.Name
	}
	return view
}
