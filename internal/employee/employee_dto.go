package employee

type CreateEmployeeRequest struct {
	SlackUserID           string  `json:"slack_user_id" binding:"required"`
	Name                  string  `json:"name" binding:"required"`
	Email                 string  `json:"email" binding:"required,email"`
	ManagerID             *string `json:"manager_id"`
	TeamID                *string `json:"team_id"`
	MonthlyLeaveAllowance *int    `json:"monthly_leave_allowance"`
}

type UpdateEmployeeRequest struct {
	Name                  string  `json:"name" binding:"required"`
	Email                 string  `json:"email" binding:"required,email"`
	ManagerID             *string `json:"manager_id"`
	TeamID                *string `json:"team_id"`
	MonthlyLeaveAllowance *int    `json:"monthly_leave_allowance"`
}

type EmployeeResponse struct {
	ID                    string  `json:"id"`
	SlackUserID           string  `json:"slack_user_id"`
	Name                  string  `json:"name"`
	Email                 string  `json:"email"`
	ManagerID             *string `json:"manager_id,omitempty"`
	ManagerName           *string `json:"manager_name,omitempty"`
	TeamID                *string `json:"team_id,omitempty"`
	TeamName              *string `json:"team_name,omitempty"`
	MonthlyLeaveAllowance int     `json:"monthly_leave_allowance"`
}
