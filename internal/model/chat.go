package model

import (
	"time"
)

// ChatMessage is immutable once created. CreatedAt carries the same
// unknown-until-acknowledged caveat as Report.CreatedAt.
type ChatMessage struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Text      string     `json:"text"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type SendMessageRequest struct {
	Text string `json:"text" validate:"required"`
}
