package leavetype

type CreateLeaveTypeRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateLeaveTypeRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type LeaveTypeResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
