package dto

import "time"

// APIResponse is the standard success envelope for API endpoints
type APIResponse struct {
	Success   bool         `json:"success" example:"true"`
	Message   string       `json:"message,omitempty" example:"Operation completed successfully"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// NewAPIResponse creates a success response with data and message
func NewAPIResponse(data interface{}, message string) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}
