package view

import (
	"context"
	"errors"
	"fmt"

	"bloglist/local-app/src/pkg/log"
	"bloglist/local-app/src/pkg/model"
)

// YesFlag skips the confirmation of blog delete.
const YesFlag = "--yes"

// Command wraps model.Command with argument validation
type Command struct {
	command model.Command
	logger  *log.Logger
}

// NewCommand creates a Command from a model.Command
func NewCommand(cmd model.Command, logger *log.Logger) Command {
	return Command{command: cmd, logger: logger}
}

// Validate checks scope, operation and argument count
func (c *Command) Validate() error {
	ctx := context.Background()
	c.logger.Debug(ctx, "Validating command", log.Fields{"scope": c.command.Scope, "operation": c.command.Operation})

	if c.command.Scope == "" {
		return errors.New("command scope is required")
	}

	switch c.command.Scope {
	case "user":
		return c.validateUserCommand()
	case "blog":
		return c.validateBlogCommand()
	default:
		c.logger.Warn(ctx, "Invalid command scope", log.Fields{"scope": c.command.Scope})
		return fmt.Errorf("invalid command scope: %s", c.command.Scope)
	}
}

func (c *Command) validateUserCommand() error {
	args := c.command.Args
	switch c.command.Operation {
	case "login":
		if len(args) != 2 {
			return errors.New("user login command requires 2 arguments: <username> <password>")
		}
	case "logout", "whoami":
		if len(args) != 0 {
			return fmt.Errorf("user %s command does not accept any arguments", c.command.Operation)
		}
	default:
		c.logger.Warn(context.Background(), "Invalid user operation", log.Fields{"operation": c.command.Operation})
		return fmt.Errorf("invalid user operation: %s", c.command.Operation)
	}
	return nil
}

func (c *Command) validateBlogCommand() error {
	args := c.command.Args
	switch c.command.Operation {
	case "list", "refresh":
		if len(args) != 0 {
			return fmt.Errorf("blog %s command does not accept any arguments", c.command.Operation)
		}
	case "add":
		if len(args) != 3 {
			return errors.New("blog add command requires 3 arguments: <title> <author> <url>")
		}
	case "like", "view":
		if len(args) != 1 {
			return fmt.Errorf("blog %s command requires 1 argument: <ref>", c.command.Operation)
		}
	case "delete":
		if len(args) < 1 || len(args) > 2 || (len(args) == 2 && args[1] != YesFlag) {
			return errors.New("blog delete command requires 1 or 2 arguments: <ref> [--yes]")
		}
	case "export":
		if len(args) < 1 || len(args) > 2 {
			return errors.New("blog export command requires 1 or 2 arguments: <filename> [json|xml]")
		}
		if len(args) == 2 && args[1] != "json" && args[1] != "xml" {
			return fmt.Errorf("unsupported export format: %s", args[1])
		}
	default:
		c.logger.Warn(context.Background(), "Invalid blog operation", log.Fields{"operation": c.command.Operation})
		return fmt.Errorf("invalid blog operation: %s", c.command.Operation)
	}
	return nil
}
