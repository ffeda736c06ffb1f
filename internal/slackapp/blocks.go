package slackapp

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

var statusEmoji = map[string]string{
	"pending":   "⏳",
	"approved":  "✅",
	"rejected":  "❌",
	"cancelled": "🗑️",
}

func emojiFor(status string) string {
	if e, ok := statusEmoji[status]; ok {
		return e
	}
	return "❔"
}

func plainText(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.PlainTextType, text, true, false)
}

func mrkdwn(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, text, false, false)
}

// dateRange renders "March 05, 2026" for single days and
// "Mar 05 to Mar 07, 2026" for ranges.
func dateRange(start, end time.Time) string {
	if start.Equal(end) {
		return start.Format("January 02, 2006")
	}
	return fmt.Sprintf("%s to %s", start.Format("Jan 02"), end.Format("Jan 02, 2006"))
}

// LeaveFormModal builds the request submission modal. The leave type
// dropdown is populated from the catalog so new types appear without a
// deploy; the datepickers default to tomorrow.
func LeaveFormModal(leaveTypes []string, today time.Time) slack.ModalViewRequest {
	tomorrow := today.AddDate(0, 0, 1).Format("2006-01-02")

	options := make([]*slack.OptionBlockObject, 0, len(leaveTypes))
	for _, name := range leaveTypes {
		options = append(options, slack.NewOptionBlockObject(name, plainText(name), nil))
	}
	if len(options) == 0 {
		options = append(options, slack.NewOptionBlockObject("error_no_leave_types", plainText("No leave types found"), nil))
	}

	startPicker := slack.NewDatePickerBlockElement(InputStartDate)
	startPicker.InitialDate = tomorrow
	startPicker.Placeholder = plainText("Select a date")

	endPicker := slack.NewDatePickerBlockElement(InputEndDate)
	endPicker.InitialDate = tomorrow
	endPicker.Placeholder = plainText("Select a date")

	typeSelect := slack.NewOptionsSelectBlockElement(slack.OptTypeStatic, plainText("Select leave type"), SelectLeaveType, options...)
	typeSelect.InitialOption = options[0]

	reasonInput := slack.NewPlainTextInputBlockElement(plainText("Provide additional details (e.g., flight times, reason for sick day)."), InputReason)
	reasonInput.Multiline = true

	blocks := []slack.Block{
		slack.NewSectionBlock(mrkdwn("*Submit your leave request*\nPlease fill out all fields below."), nil, nil),
		slack.NewDividerBlock(),
		slack.NewInputBlock(BlockStartDate, plainText("Start Date"), nil, startPicker),
		slack.NewInputBlock(BlockEndDate, plainText("End Date"), nil, endPicker),
		slack.NewInputBlock(BlockLeaveType, plainText("Leave Type"), nil, typeSelect),
		slack.NewInputBlock(BlockReason, plainText("Reason"), nil, reasonInput),
	}

	return slack.ModalViewRequest{
		Type:       slack.VTModal,
		CallbackID: CallbackLeaveRequestModal,
		Title:      plainText("Request Leave"),
		Submit:     plainText("Submit"),
		Close:      plainText("Cancel"),
		Blocks:     slack.Blocks{BlockSet: blocks},
	}
}

// UpdateFormModal is the submission form pre-filled from an existing
// request, with the request id hidden in the private metadata.
func UpdateFormModal(view RequestView, leaveTypes []string, today time.Time) slack.ModalViewRequest {
	modal := LeaveFormModal(leaveTypes, today)

	meta, _ := json.Marshal(UpdateModalMetadata{LeaveRequestID: view.ID})
	modal.CallbackID = CallbackLeaveUpdateSubmission
	modal.PrivateMetadata = string(meta)
	modal.Title = plainText("Update Leave Request")
	modal.Submit = plainText("Submit Update")

	blocks := modal.Blocks.BlockSet
	blocks[0] = slack.NewSectionBlock(mrkdwn("*Updating your leave request*\nPlease modify the details below."), nil, nil)

	if input, ok := blocks[2].(*slack.InputBlock); ok {
		if picker, ok := input.Element.(*slack.DatePickerBlockElement); ok {
			picker.InitialDate = view.StartDate.Format("2006-01-02")
		}
	}
	if input, ok := blocks[3].(*slack.InputBlock); ok {
		if picker, ok := input.Element.(*slack.DatePickerBlockElement); ok {
			picker.InitialDate = view.EndDate.Format("2006-01-02")
		}
	}
	if input, ok := blocks[4].(*slack.InputBlock); ok {
		if sel, ok := input.Element.(*slack.SelectBlockElement); ok {
			sel.InitialOption = slack.NewOptionBlockObject(view.LeaveType, plainText(view.LeaveType), nil)
		}
	}
	if input, ok := blocks[5].(*slack.InputBlock); ok {
		if text, ok := input.Element.(*slack.PlainTextInputBlockElement); ok {
			text.InitialValue = view.Reason
		}
	}

	return modal
}

// SelectionModal lists the employee's pending requests so they can
// pick one to update or cancel. With nothing pending it degrades into
// a plain informational modal with no submit button.
func SelectionModal(pending []RequestView, action SelectionAction) slack.ModalViewRequest {
	title, submitText, callbackID, placeholder := "Cancel a Leave Request", "Confirm Cancellation", CallbackCancelLeaveSubmission, "Choose the request you want to cancel"
	if action == SelectionUpdate {
		title, submitText, callbackID, placeholder = "Update a Leave Request", "Select to Edit", CallbackSelectLeaveToUpdate, "Choose the request you want to change"
	}

	if len(pending) == 0 {
		return slack.ModalViewRequest{
			Type:  slack.VTModal,
			Title: plainText(title),
			Close: plainText("Close"),
			Blocks: slack.Blocks{BlockSet: []slack.Block{
				slack.NewSectionBlock(mrkdwn("You have no pending leave requests to modify."), nil, nil),
			}},
		}
	}

	options := make([]*slack.OptionBlockObject, 0, len(pending))
	for _, req := range pending {
		label := fmt.Sprintf("%s: %s", req.LeaveType, dateRange(req.StartDate, req.EndDate))
		options = append(options, slack.NewOptionBlockObject(req.ID, plainText(label), nil))
	}

	picker := slack.NewOptionsSelectBlockElement(slack.OptTypeStatic, plainText(placeholder), ActionRequestSelect, options...)

	return slack.ModalViewRequest{
		Type:       slack.VTModal,
		CallbackID: callbackID,
		Title:      plainText(title),
		Submit:     plainText(submitText),
		Close:      plainText("Close"),
		Blocks: slack.Blocks{BlockSet: []slack.Block{
			slack.NewSectionBlock(mrkdwn("Please choose one of your pending requests from the list below."), nil, nil),
			slack.NewInputBlock(BlockRequestPick, plainText("Your Pending Requests"), nil, picker),
		}},
	}
}

// ApprovalMessageBlocks renders the manager-facing message. While the
// request is pending it carries the decision buttons; once actioned the
// same message is rewritten with the outcome so the buttons disappear.
func ApprovalMessageBlocks(view RequestView, completed, updated bool) []slack.Block {
	headerText := fmt.Sprintf("New Leave Request for %s", view.EmployeeName)
	if updated {
		headerText = "UPDATED: " + headerText
	}

	blocks := []slack.Block{slack.NewHeaderBlock(plainText(headerText))}

	if updated {
		blocks = append(blocks, slack.NewContextBlock("",
			mrkdwn(":warning: *The details of this request have been modified by the employee.*"),
		))
	}

	dayWord := "days"
	if view.DurationDays == 1 {
		dayWord = "day"
	}
	emoji := emojiFor(view.Status)

	fields := []*slack.TextBlockObject{
		mrkdwn(fmt.Sprintf("*Employee:*\n<@%s>", view.SlackUserID)),
		mrkdwn(fmt.Sprintf("*Dates Requested:*\n%s (*%d %s*)", dateRange(view.StartDate, view.EndDate), view.DurationDays, dayWord)),
		mrkdwn(" "),
		mrkdwn(" "),
		mrkdwn(fmt.Sprintf("*Leave Type:*\n%s", view.LeaveType)),
		mrkdwn(fmt.Sprintf("*Status:*\n%s %s", emoji, titleCase(view.Status))),
	}
	blocks = append(blocks, slack.NewSectionBlock(nil, fields, nil))

	if view.Reason != "" {
		blocks = append(blocks, slack.NewSectionBlock(mrkdwn(fmt.Sprintf("*Reason Provided:*\n>>> %s", view.Reason)), nil, nil))
	}

	blocks = append(blocks, slack.NewContextBlock("",
		mrkdwn(fmt.Sprintf("Request ID: #%s | Submitted: %s", view.ID, view.CreatedAt.Format("Jan 02, 2006 at 03:04 PM"))),
	))

	if completed {
		actor := view.ApproverName
		if actor == "" {
			actor = "System"
		}
		if view.Status == "cancelled" {
			actor = view.EmployeeName
		}
		statusText := fmt.Sprintf("%s This request was *%s* by %s.", emoji, titleCase(view.Status), actor)
		blocks = append(blocks,
			slack.NewSectionBlock(mrkdwn(statusText), nil, nil),
			slack.NewDividerBlock(),
		)
		return blocks
	}

	approve := slack.NewButtonBlockElement(ActionApproveLeave, view.ID, plainText("Approve"))
	approve.Style = slack.StylePrimary
	reject := slack.NewButtonBlockElement(ActionRejectLeave, view.ID, plainText("Reject"))
	reject.Style = slack.StyleDanger
	whoIsAway := slack.NewButtonBlockElement(ActionViewOverlappingLeave, view.ID, plainText("Who's Away?"))

	blocks = append(blocks,
		slack.NewActionBlock("approval_actions_"+view.ID, approve, reject, whoIsAway),
		slack.NewDividerBlock(),
	)
	return blocks
}

// EmployeeNotificationBlocks is the DM sent to the requester when
// their request reaches a terminal state.
func EmployeeNotificationBlocks(view RequestView) []slack.Block {
	approver := view.ApproverName
	if approver == "" {
		approver = "the system"
	}

	var headerText, contextText string
	switch view.Status {
	case "approved":
		headerText = "✅ Your Leave Request was Approved"
		contextText = fmt.Sprintf("This request was approved by *%s*.", approver)
	case "rejected":
		headerText = "❌ Your Leave Request was Rejected"
		contextText = fmt.Sprintf("This request was rejected by *%s*.", approver)
	default:
		headerText = "🗑️ Your Leave Request was Cancelled"
		contextText = "You successfully cancelled this request."
	}

	return []slack.Block{
		slack.NewHeaderBlock(plainText(headerText)),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			mrkdwn(fmt.Sprintf("*Leave Type:*\n%s", view.LeaveType)),
			mrkdwn(fmt.Sprintf("*Dates:*\n%s", dateRange(view.StartDate, view.EndDate))),
		}, nil),
		slack.NewContextBlock("", mrkdwn(contextText)),
	}
}

// CalendarModal renders a fixed-width month grid inside a modal, with
// previous/next navigation carrying the target month in the button
// value. viewerEmployeeID highlights the viewer's own entries; summary
// is shown only on the personal calendar.
func CalendarModal(requests []RequestView, monthDate time.Time, title, viewerEmployeeID string, summary *MonthSummary) slack.ModalViewRequest {
	var blocks []slack.Block

	if summary != nil {
		summaryText := fmt.Sprintf(
			"*Your Leave Summary for %s %d*\nMonthly Allowance: *%d days*\nRemaining This Month: *%d days*",
			monthDate.Month(), monthDate.Year(), summary.Allowance, summary.Remaining,
		)
		blocks = append(blocks,
			slack.NewSectionBlock(mrkdwn(summaryText), nil, nil),
			slack.NewDividerBlock(),
		)
	}

	blocks = append(blocks, slack.NewSectionBlock(mrkdwn("```"+calendarBody(requests, monthDate, title, viewerEmployeeID)+"```"), nil, nil))

	firstOfMonth := time.Date(monthDate.Year(), monthDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	prev := slack.NewButtonBlockElement(ActionNavigateCalendarPrev, firstOfMonth.AddDate(0, -1, 0).Format("2006-01-02"), plainText("⬅️ Previous Month"))
	next := slack.NewButtonBlockElement(ActionNavigateCalendarNext, firstOfMonth.AddDate(0, 1, 0).Format("2006-01-02"), plainText("Next Month ➡️"))

	blocks = append(blocks,
		slack.NewDividerBlock(),
		slack.NewActionBlock("", prev, next),
	)

	return slack.ModalViewRequest{
		Type:       slack.VTModal,
		CallbackID: CallbackTeamLeaveCalendar,
		Title:      plainText(title),
		Close:      plainText("Close"),
		Blocks:     slack.Blocks{BlockSet: blocks},
	}
}

func calendarBody(requests []RequestView, monthDate time.Time, title, viewerEmployeeID string) string {
	year, month := monthDate.Year(), monthDate.Month()
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	numDays := firstOfMonth.AddDate(0, 1, -1).Day()

	// Group entries by day of month for the grid lookup.
	byDay := make(map[int][]RequestView)
	for _, req := range requests {
		for d := req.StartDate; !d.After(req.EndDate); d = d.AddDate(0, 0, 1) {
			if d.Year() == year && d.Month() == month {
				byDay[d.Day()] = append(byDay[d.Day()], req)
			}
		}
	}

	header := fmt.Sprintf("%s for %s %d", title, month, year)
	lines := []string{header, strings.Repeat("=", len(header))}

	dayNames := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	for day := 1; day <= numDays; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		weekday := (int(date.Weekday()) + 6) % 7 // Monday = 0

		datePart := fmt.Sprintf("%-10s", fmt.Sprintf("%s %02d:", dayNames[weekday], day))

		var statusPart string
		if weekday >= 5 {
			statusPart = "(Weekend)"
		} else {
			var entries []string
			for _, req := range byDay[day] {
				emoji, ok := map[string]string{"approved": "✅", "pending": "⏳"}[req.Status]
				if !ok {
					continue
				}
				name := req.EmployeeName
				if viewerEmployeeID != "" && req.EmployeeID == viewerEmployeeID {
					name = fmt.Sprintf("*%s (Your Leave)*", name)
				}
				entries = append(entries, fmt.Sprintf("%s %s", emoji, name))
			}
			statusPart = "Available"
			if len(entries) > 0 {
				statusPart = strings.Join(entries, ", ")
			}
		}
		lines = append(lines, datePart+statusPart)

		if weekday == 6 && day < numDays {
			lines = append(lines, "")
		}
	}

	return strings.Join(lines, "\n")
}

func titleCase(s string) string {
	return titleCaser.String(s)
}
