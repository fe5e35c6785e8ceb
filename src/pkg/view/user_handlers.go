package view

import (
	"context"

	"bloglist/local-app/src/pkg/log"
	"bloglist/local-app/src/pkg/model"
)

// initUserCommandHandlers initializes user command handlers
func initUserCommandHandlers() map[string]CommandHandler {
	return map[string]CommandHandler{
		"login":  handleUserLogin,
		"logout": handleUserLogout,
		"whoami": handleUserWhoami,
	}
}

// handleUserLogin handles the user login command
func handleUserLogin(ctx context.Context, v *View, cmd model.Command) (interface{}, error) {
	v.logger.Info(ctx, "Handling user login command", log.Fields{"username": cmd.Args[0]})
	return v.Login(ctx, cmd.Args[0], cmd.Args[1])
}

// handleUserLogout handles the user logout command
func handleUserLogout(ctx context.Context, v *View, cmd model.Command) (interface{}, error) {
	v.logger.Info(ctx, "Handling user logout command", nil)
	return nil, v.Logout(ctx)
}

// handleUserWhoami handles the user whoami command
func handleUserWhoami(ctx context.Context, v *View, cmd model.Command) (interface{}, error) {
	user, ok := v.UserGet()
	if !ok {
		return nil, ErrLoginRequired
	}
	return user, nil
}
