package domain

// Caller is the authenticated identity performing an operation
type Caller struct {
	UserID string         `json:"uid"`
	Email  string         `json:"email,omitempty"`
	Claims map[string]any `json:"claims,omitempty"`
}
