package dto

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"hod.cse@school.edu"`
	Password string `json:"password" binding:"required,min=8" example:"changeme123"`
}

// LoginResponse carries the issued token and the resolved actor
type LoginResponse struct {
	Token      string  `json:"token"`
	ID         int64   `json:"id"`
	Email      string  `json:"email"`
	FullName   string  `json:"fullName"`
	Role       string  `json:"role"`
	Department *string `json:"department,omitempty"`
}
