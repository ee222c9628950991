package domain

import "errors"

// User is a backend user account as reported by the user-management API.
// The portal only displays these and issues create/delete commands.
type User struct {
	Username  string `json:"username"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

var ErrUserNotFound = errors.New("user not found")
