package domain

import "time"

// ChatMessage exchanged between members and support staff.
// A nil ReceiverID addresses the admin pool.
type ChatMessage struct {
	ID         string    `json:"id,omitempty"`
	SenderID   string    `json:"sender_id" validate:"required"`
	SenderName string    `json:"sender_name"`
	SenderRole Role      `json:"sender_role"`
	ReceiverID *string   `json:"receiver_id"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToAdminPool reports whether the message is not addressed to a specific user.
func (m ChatMessage) ToAdminPool() bool {
	return m.ReceiverID == nil || *m.ReceiverID == ""
}
