package leave

import (
	"context"
	"time"

	"github.com/R-M-Tejaswini/slack-leave-app/internal/calendar"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/config"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/employee"
	leaveerrors "github.com/R-M-Tejaswini/slack-leave-app/internal/leave/errors"

	"github.com/google/uuid"
)

// HolidaySource is the slice of the holiday repository the validator
// needs; the full repository satisfies it.
type HolidaySource interface {
	DatesInRange(ctx context.Context, start, end time.Time) (calendar.DateSet, error)
}

// Validator runs the request checks in a fixed order and reports the
// first failure. The order is deliberate: cheap shape checks first,
// then checks that need database reads. Callers run it inside the same
// transaction that writes the request, so the overlap and allowance
// reads see a consistent snapshot.
type Validator struct {
	policy config.LeavePolicy
	now    func() time.Time
}

func NewValidator(policy config.LeavePolicy, now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{policy: policy, now: now}
}

// Validate returns the number of working days the candidate range
// covers when every rule passes. excludeID carries the request being
// edited so it never collides or competes with itself.
func (v *Validator) Validate(
	ctx context.Context,
	repo Repository,
	holidays HolidaySource,
	emp *employee.Employee,
	leaveTypeName string,
	start, end time.Time,
	excludeID *uuid.UUID,
) (int, error) {
	start = dateOnly(start)
	end = dateOnly(end)

	if end.Before(start) {
		return 0, leaveerrors.ErrInvalidRange
	}

	today := dateOnly(v.now())
	if v.policy.IsRetrospective(leaveTypeName) {
		if start.After(today) || end.After(today) {
			return 0, leaveerrors.ErrRetrospectiveFuture
		}
		oldest := today.AddDate(0, 0, -v.policy.RetrospectiveLookbackDays)
		if start.Before(oldest) {
			return 0, leaveerrors.LookbackExceeded(v.policy.RetrospectiveLookbackDays)
		}
	} else if start.Before(today) {
		return 0, leaveerrors.ErrPastDate
	}

	set, err := holidays.DatesInRange(ctx, start, end)
	if err != nil {
		return 0, err
	}
	requested := calendar.BusinessDays(start, end, set)
	if requested == 0 {
		return 0, leaveerrors.ErrNonWorkingRange
	}

	active := []string{StatusPending, StatusApproved}
	overlapping, err := repo.HasOverlapping(ctx, emp.ID, start, end, active, excludeID)
	if err != nil {
		return 0, err
	}
	if overlapping {
		return 0, leaveerrors.ErrOverlap
	}

	taken, err := v.workingDaysTaken(ctx, repo, holidays, emp.ID, start, excludeID)
	if err != nil {
		return 0, err
	}
	remaining := emp.MonthlyLeaveAllowance - taken
	if requested > remaining {
		return requested, leaveerrors.AllowanceExceeded(requested, remaining)
	}

	return requested, nil
}

// workingDaysTaken sums the working-day cost of the employee's pending
// and approved requests charged to the month of the candidate's start
// date. A request counts against the month its start date falls in,
// even when it spills into the next.
func (v *Validator) workingDaysTaken(
	ctx context.Context,
	repo Repository,
	holidays HolidaySource,
	employeeID uuid.UUID,
	start time.Time,
	excludeID *uuid.UUID,
) (int, error) {
	active := []string{StatusPending, StatusApproved}
	requests, err := repo.ListStartingInMonth(ctx, employeeID, start.Year(), start.Month(), active, excludeID)
	if err != nil {
		return 0, err
	}
	if len(requests) == 0 {
		return 0, nil
	}

	spanStart, spanEnd := requests[0].StartDate, requests[0].EndDate
	for _, r := range requests[1:] {
		if r.StartDate.Before(spanStart) {
			spanStart = r.StartDate
		}
		if r.EndDate.After(spanEnd) {
			spanEnd = r.EndDate
		}
	}
	set, err := holidays.DatesInRange(ctx, spanStart, spanEnd)
	if err != nil {
		return 0, err
	}

	taken := 0
	for _, r := range requests {
		taken += calendar.BusinessDays(r.StartDate, r.EndDate, set)
	}
	return taken, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
