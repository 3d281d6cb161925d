package app

import (
	"context"
	"errors"
	"testing"

	"github.com/example/rcfa/internal/apperr"
	"github.com/example/rcfa/internal/ports/primary"
)

func TestCreateUser(t *testing.T) {
	env := newTestEnv()
	svc := NewUserService(env.users)

	created, err := svc.CreateUser(context.Background(), primary.CreateUserRequest{
		ID:   "alice",
		Name: "Alice Moreau",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if created.Role != "member" || !created.Active {
		t.Errorf("expected active member by default, got %+v", created)
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	env := newTestEnv()
	env.seedUser("alice", true)
	svc := NewUserService(env.users)

	_, err := svc.CreateUser(context.Background(), primary.CreateUserRequest{ID: "alice", Name: "Alice"})
	var cerr *apperr.ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestCreateUserBadRole(t *testing.T) {
	env := newTestEnv()
	svc := NewUserService(env.users)

	_, err := svc.CreateUser(context.Background(), primary.CreateUserRequest{ID: "x", Name: "X", Role: "owner"})
	var verr *apperr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSetUserActive(t *testing.T) {
	env := newTestEnv()
	env.seedUser("bob", true)
	svc := NewUserService(env.users)

	if err := svc.SetUserActive(context.Background(), "bob", false); err != nil {
		t.Fatalf("SetUserActive failed: %v", err)
	}
	if env.users.users["bob"].Active {
		t.Error("expected bob deactivated")
	}

	err := svc.SetUserActive(context.Background(), "ghost", false)
	var nerr *apperr.NotFoundError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
