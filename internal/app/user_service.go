package app

import (
	"context"
	"fmt"

	"github.com/example/rcfa/internal/apperr"
	"github.com/example/rcfa/internal/ctxutil"
	"github.com/example/rcfa/internal/ports/primary"
	"github.com/example/rcfa/internal/ports/secondary"
)

// UserServiceImpl implements the UserService interface. Users are not
// case-scoped, so no audit events are written here; owner changes show up in
// the item events of the cases they affect.
type UserServiceImpl struct {
	userRepo secondary.UserRepository
}

// NewUserService creates a new UserService with injected dependencies.
func NewUserService(userRepo secondary.UserRepository) *UserServiceImpl {
	return &UserServiceImpl{userRepo: userRepo}
}

// CreateUser creates a user.
func (s *UserServiceImpl) CreateUser(ctx context.Context, req primary.CreateUserRequest) (*primary.User, error) {
	if req.ID == "" {
		return nil, apperr.NewValidation("id", "required")
	}
	if req.Name == "" {
		return nil, apperr.NewValidation("name", "required")
	}
	role := req.Role
	if role == "" {
		role = ctxutil.RoleMember
	}
	if role != ctxutil.RoleMember && role != ctxutil.RoleAdmin {
		return nil, apperr.NewValidation("role", fmt.Sprintf("unknown role %q", role))
	}

	existing, err := s.userRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &apperr.ConflictError{Reason: fmt.Sprintf("user %s already exists", req.ID)}
	}

	if err := s.userRepo.Create(ctx, &secondary.UserRecord{
		ID:     req.ID,
		Name:   req.Name,
		Role:   role,
		Active: true,
	}); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	created, err := s.userRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created user: %w", err)
	}
	return s.recordToUser(created), nil
}

// ListUsers retrieves all users.
func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]*primary.User, error) {
	records, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]*primary.User, len(records))
	for i, r := range records {
		users[i] = s.recordToUser(r)
	}
	return users, nil
}

// SetUserActive activates or deactivates a user. Deactivation does not touch
// the items the user owns; the finalize gate catches inactive owners when the
// case tries to move forward.
func (s *UserServiceImpl) SetUserActive(ctx context.Context, userID string, active bool) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return &apperr.NotFoundError{Kind: "user", ID: userID}
	}
	if err := s.userRepo.SetActive(ctx, userID, active); err != nil {
		return fmt.Errorf("failed to set user active flag: %w", err)
	}
	return nil
}

// Helper methods

func (s *UserServiceImpl) recordToUser(r *secondary.UserRecord) *primary.User {
	return &primary.User{
		ID:        r.ID,
		Name:      r.Name,
		Role:      r.Role,
		Active:    r.Active,
		CreatedAt: formatTime(r.CreatedAt),
	}
}

// Ensure UserServiceImpl implements the interface
var _ primary.UserService = (*UserServiceImpl)(nil)
