package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/example/rcfa/internal/ports/primary"
)

// UserAdapter is a thin adapter that translates CLI operations to
// UserService calls.
type UserAdapter struct {
	service primary.UserService
	out     io.Writer
}

// NewUserAdapter creates a new UserAdapter with the given service.
func NewUserAdapter(service primary.UserService, out io.Writer) *UserAdapter {
	return &UserAdapter{service: service, out: out}
}

// Create creates a user.
func (a *UserAdapter) Create(ctx context.Context, id, name, role string) error {
	user, err := a.service.CreateUser(ctx, primary.CreateUserRequest{ID: id, Name: name, Role: role})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Created user %s (%s)\n", user.ID, user.Role)
	return nil
}

// List prints all users.
func (a *UserAdapter) List(ctx context.Context) error {
	users, err := a.service.ListUsers(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Fprintln(a.out, "No users found")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tROLE\tACTIVE")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", u.ID, u.Name, u.Role, u.Active)
	}
	return w.Flush()
}

// SetActive activates or deactivates a user.
func (a *UserAdapter) SetActive(ctx context.Context, userID string, active bool) error {
	if err := a.service.SetUserActive(ctx, userID, active); err != nil {
		return err
	}
	state := "deactivated"
	if active {
		state = "activated"
	}
	fmt.Fprintf(a.out, "✓ User %s %s\n", userID, state)
	return nil
}
