package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
)

// ListUsers lists member accounts (admin).
func (c *Client) ListUsers(ctx context.Context) ([]domain.UserProfile, error) {
	var out []domain.UserProfile
	err := c.do(ctx, call{method: http.MethodGet, route: "/api/users", path: "/api/users"}, &out)
	return out, err
}

func (c *Client) ListNotifications(ctx context.Context) ([]domain.Notification, error) {
	var out []domain.Notification
	err := c.do(ctx, call{method: http.MethodGet, route: "/api/notifications", path: "/api/notifications"}, &out)
	return out, err
}

// MarkNotificationRead is the only notification mutation.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodPut, route: "/api/notifications/{id}/read", path: "/api/notifications/" + pathEscape(id) + "/read"}, nil)
}

// ChatHistory returns the stored conversation. Admins pass the member's id;
// members pass "" for their own thread.
func (c *Client) ChatHistory(ctx context.Context, userID string) ([]domain.ChatMessage, error) {
	q := url.Values{}
	if userID != "" {
		q.Set("user_id", userID)
	}
	var out []domain.ChatMessage
	err := c.do(ctx, call{method: http.MethodGet, route: "/api/chat/messages", path: "/api/chat/messages", query: q}, &out)
	return out, err
}
