// Package adapter turns shell input into commands for the view.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bloglist/local-app/src/pkg/log"
	"bloglist/local-app/src/pkg/model"
	"bloglist/local-app/src/pkg/view"
)

// ErrEmptyCommand is returned for blank input.
var ErrEmptyCommand = errors.New("empty command")

// CLIAdapter connects the line-based shell to a View
type CLIAdapter struct {
	view   *view.View
	logger *log.Logger
}

// NewCLIAdapter creates a new instance of CLIAdapter for v
func NewCLIAdapter(v *view.View, logger *log.Logger) (*CLIAdapter, error) {
	if v == nil {
		return nil, fmt.Errorf("view not initialized")
	}
	logger.Info(context.Background(), "Creating new CLI adapter", nil)
	return &CLIAdapter{view: v, logger: logger}, nil
}

// CommandParse converts the input line into a command
func (a *CLIAdapter) CommandParse(input string) (model.Command, error) {
	args, err := ParseArgs(input)
	if err != nil {
		return model.Command{}, err
	}
	if len(args) == 0 {
		return model.Command{}, ErrEmptyCommand
	}

	cmd := model.Command{
		Scope: strings.ToLower(args[0]),
		Args:  []string{},
	}
	if len(args) > 1 {
		cmd.Operation = strings.ToLower(args[1])
		cmd.Args = args[2:]
	}

	a.logger.Debug(context.Background(), "Command parsed", log.Fields{"scope": cmd.Scope, "operation": cmd.Operation})
	return cmd, nil
}

// CommandProcess parses input and runs it against the view
func (a *CLIAdapter) CommandProcess(ctx context.Context, input string) (interface{}, error) {
	cmd, err := a.CommandParse(input)
	if err != nil {
		return nil, err
	}
	return a.view.CommandRun(ctx, cmd)
}

// PromptGet returns the prompt for the current state
func (a *CLIAdapter) PromptGet() string {
	user, ok := a.view.UserGet()
	if !ok {
		return "> "
	}
	name := user.Name
	if name == "" {
		name = user.Username
	}
	return fmt.Sprintf("%s > ", name)
}

// View returns the view the adapter drives.
func (a *CLIAdapter) View() *view.View {
	return a.view
}

// ParseArgs splits input on spaces, keeping double-quoted text together.
func ParseArgs(input string) ([]string, error) {
	var args []string
	var current strings.Builder
	inQuotes := false
	quoted := false

	for _, char := range input {
		switch {
		case char == '"':
			inQuotes = !inQuotes
			quoted = true
		case (char == ' ' || char == '\t') && !inQuotes:
			if current.Len() > 0 || quoted {
				args = append(args, current.String())
				current.Reset()
				quoted = false
			}
		default:
			current.WriteRune(char)
		}
	}
	if inQuotes {
		return nil, errors.New("unterminated quote")
	}
	if current.Len() > 0 || quoted {
		args = append(args, current.String())
	}
	return args, nil
}
