package team

type CreateTeamRequest struct {
	Name           string `json:"name" binding:"required"`
	SlackChannelID string `json:"slack_channel_id" binding:"required"`
}

type UpdateTeamRequest struct {
	Name           string `json:"name" binding:"required"`
	SlackChannelID string `json:"slack_channel_id" binding:"required"`
}

type TeamResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	SlackChannelID string `json:"slack_channel_id"`
}
