package api

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string            `json:"status" example:"ok"`
	Checks map[string]string `json:"checks,omitempty"`
}

// WarningResponse is returned when a request is accepted but not acted on.
type WarningResponse struct {
	Warning string `json:"warning" example:"webhook secret not configured"`
}
