package models

import "github.com/jordanlanch/brainbuddy/pkg/quota"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SessionRequest signs a user in with a nickname
type SessionRequest struct {
	Nickname string `json:"nickname" validate:"required,max=64"`
}

// SessionResponse carries the derived user id and its session token
type SessionResponse struct {
	UserID    string `json:"user_id"`
	Nickname  string `json:"nickname"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// UsageResponse is today's quota state
type UsageResponse struct {
	UserID    string         `json:"user_id"`
	Day       string         `json:"day"`
	Used      int            `json:"used"`
	Limit     quota.Limit    `json:"limit" swaggertype:"integer" extensions:"x-nullable"`     // null when premium
	Remaining quota.Limit    `json:"remaining" swaggertype:"integer" extensions:"x-nullable"` // null when premium
	Premium   bool           `json:"premium"`
	History   map[string]int `json:"history,omitempty"`
}

// AskRequest asks for an explanation of a topic
type AskRequest struct {
	Question    string `json:"question" validate:"max=2000"`
	DetailLevel int    `json:"detail_level" validate:"omitempty,min=3,max=8"`
	Tone        string `json:"tone" validate:"omitempty,oneof=simple normal exam-ready"`
}

// AskResponse is the delivered answer with the quota left afterwards
type AskResponse struct {
	Answer    string      `json:"answer"`
	Source    string      `json:"source"`
	Notices   []string    `json:"notices,omitempty"`
	Used      int         `json:"used"`
	Remaining quota.Limit `json:"remaining" swaggertype:"integer" extensions:"x-nullable"`
	Premium   bool        `json:"premium"`
}
