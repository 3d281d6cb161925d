package cli

import (
	"context"
	"fmt"

	"github.com/example/rcfa/internal/config"
	"github.com/example/rcfa/internal/ctxutil"
	"github.com/example/rcfa/internal/db"
)

// actorContext builds the request context for a command: the configured user
// becomes the actor attached to every audit event the command writes.
func actorContext() (context.Context, error) {
	dir, err := db.Dir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("no configuration found (run 'rcfa init --user <id>' first): %w", err)
	}
	if cfg.UserID == "" {
		return nil, fmt.Errorf("no user configured (run 'rcfa init --user <id>' first)")
	}

	return ctxutil.WithActor(context.Background(), cfg.Actor()), nil
}
