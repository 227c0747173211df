package domain

import "time"

// Notification shown in the admin bell and member inbox.
type Notification struct {
	ID               string    `json:"id" validate:"required"`
	NotificationType string    `json:"notification_type"`
	Message          string    `json:"message"`
	IsRead           bool      `json:"is_read"`
	CreatedAt        time.Time `json:"created_at"`
}

// CountUnread counts notifications not yet marked read.
func CountUnread(ns []Notification) int {
	n := 0
	for _, x := range ns {
		if !x.IsRead {
			n++
		}
	}
	return n
}
