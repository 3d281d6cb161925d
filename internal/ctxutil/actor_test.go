package ctxutil

import (
	"context"
	"testing"
)

func TestActorRoundTrip(t *testing.T) {
	ctx := WithActor(context.Background(), Actor{UserID: "alice", Role: RoleAdmin})
	actor := ActorFromContext(ctx)
	if actor.UserID != "alice" {
		t.Errorf("expected user alice, got %q", actor.UserID)
	}
	if !actor.IsAdmin() {
		t.Errorf("expected admin actor, got role %q", actor.Role)
	}
}

func TestActorFromContextMissing(t *testing.T) {
	actor := ActorFromContext(context.Background())
	if actor.UserID != "" || actor.Role != "" {
		t.Errorf("expected zero actor, got %+v", actor)
	}
	if actor.IsAdmin() {
		t.Error("zero actor must not be admin")
	}
}

func TestIsAdmin(t *testing.T) {
	if (Actor{Role: RoleMember}).IsAdmin() {
		t.Error("member must not be admin")
	}
	if !(Actor{Role: RoleAdmin}).IsAdmin() {
		t.Error("admin role not recognized")
	}
}
