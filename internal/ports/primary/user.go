package primary

import "context"

// UserService defines the primary port for the minimal user management the
// workflow needs: owners must exist and be active, and reopen is gated on
// the admin role.
type UserService interface {
	// CreateUser creates a user.
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)

	// ListUsers retrieves all users.
	ListUsers(ctx context.Context) ([]*User, error)

	// SetUserActive activates or deactivates a user.
	SetUserActive(ctx context.Context, userID string, active bool) error
}

// CreateUserRequest contains the fields for a new user.
type CreateUserRequest struct {
	ID   string
	Name string
	Role string
}

// User represents a user at the port boundary.
type User struct {
	ID        string
	Name      string
	Role      string
	Active    bool
	CreatedAt string
}
