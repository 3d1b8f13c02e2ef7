package apiclient

import (
	"encoding/json"

	"github.com/jrsteele09/ums-portal/users"
)

// LoginRequest is the body of POST /api/users/login/
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the SimpleJWT token pair plus the user snapshot.
type LoginResponse struct {
	Access  string     `json:"access"`
	Refresh string     `json:"refresh"`
	User    users.User `json:"user"`
}

// RegisterRequest is the body of POST /api/users/register/. Role is always
// sent; Register fills in users.DefaultRole when it is empty.
type RegisterRequest struct {
	Email     string         `json:"email"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Password  string         `json:"password"`
	Role      users.RoleType `json:"role"`
}

type RegisterResponse struct {
	Message string     `json:"message"`
	User    users.User `json:"user"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse carries a new access token, and a new refresh token when the
// API rotates them.
type RefreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Stats is a dashboard payload keyed by counter name, e.g. "total_students".
// Numbers are kept as json.Number so decimals such as fees are not rounded.
type Stats map[string]any

// Notification is one entry of the activity feed.
type Notification struct {
	ID               int    `json:"id"`
	Title            string `json:"title"`
	Message          string `json:"message"`
	NotificationType string `json:"notification_type"`
	IsRead           bool   `json:"is_read"`
	CreatedAt        string `json:"created_at"`
}

// notificationPage accepts both a bare list and a DRF paginated envelope.
type notificationPage []Notification

func (p *notificationPage) UnmarshalJSON(data []byte) error {
	var list []Notification
	if err := json.Unmarshal(data, &list); err == nil {
		*p = list
		return nil
	}
	var envelope struct {
		Results []Notification `json:"results"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	*p = envelope.Results
	return nil
}
