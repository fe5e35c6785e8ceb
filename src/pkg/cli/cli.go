// Package cli runs the interactive blog list shell.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"bloglist/local-app/src/pkg/adapter"
	"bloglist/local-app/src/pkg/event"
	"bloglist/local-app/src/pkg/log"
	"bloglist/local-app/src/pkg/model"
	"bloglist/local-app/src/pkg/view"
)

// CLI represents the command-line interface
type CLI struct {
	adapter *adapter.CLIAdapter
	rl      *readline.Instance
	out     io.Writer
	styles  Styles
	logger  *log.Logger

	// confirm asks a yes/no question. It reads from the terminal unless replaced.
	confirm func(prompt string) (bool, error)

	// idle is set while the shell waits for a command line. rendered holds the
	// last message printed per kind until it is cleared.
	mu       sync.Mutex
	idle     bool
	rendered map[model.NotificationKind]string
}

// NewCLI creates a CLI reading from the terminal with history in cfg.HistoryFile
func NewCLI(a *adapter.CLIAdapter, cfg *model.Config, logger *log.Logger) (*CLI, error) {
	if cfg.HistoryFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.HistoryFile), 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          a.PromptGet(),
		HistoryFile:     cfg.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize readline: %w", err)
	}

	c := newCLI(a, rl.Stdout(), NewStyles(cfg.UseColor), logger)
	c.rl = rl
	c.confirm = c.readConfirm
	return c, nil
}

func newCLI(a *adapter.CLIAdapter, out io.Writer, styles Styles, logger *log.Logger) *CLI {
	return &CLI{
		adapter: a,
		out:     out,
		styles:  styles,
		logger:  logger,
		confirm:  func(string) (bool, error) { return false, nil },
		rendered: make(map[model.NotificationKind]string),
	}
}

// Watch subscribes the shell to notification events. A message shown while the
// shell waits for input is printed above the prompt, and the prompt is redrawn
// when a message expires.
func (c *CLI) Watch(events *event.EventManager) {
	events.Subscribe(event.NotificationShown, c.notificationShown)
	events.Subscribe(event.NotificationCleared, c.notificationCleared)
}

func (c *CLI) notificationShown(e event.Event) {
	n, ok := e.Data.(model.Notification)
	if !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.idle || c.rendered[n.Kind] == n.Message {
		return
	}
	c.rendered[n.Kind] = n.Message
	fmt.Fprintln(c.out, c.renderNotification(n))
}

func (c *CLI) notificationCleared(e event.Event) {
	n, ok := e.Data.(model.Notification)
	if !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rendered[n.Kind] == n.Message {
		delete(c.rendered, n.Kind)
	}
	if c.idle && c.rl != nil {
		c.rl.Refresh()
	}
}

func (c *CLI) setIdle(idle bool) {
	c.mu.Lock()
	c.idle = idle
	c.mu.Unlock()
}

// Run reads and executes commands until exit, end of input or ctx is done
func (c *CLI) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, "Welcome to bloglist!")
	fmt.Fprintln(c.out, "Type 'help' for a list of commands or 'exit' to quit.")
	c.renderNotifications()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			c.rl.Close()
		case <-stop:
		}
	}()

	for {
		c.rl.SetPrompt(c.styles.Prompt.Render(c.adapter.PromptGet()))
		c.setIdle(true)
		line, err := c.rl.Readline()
		c.setIdle(false)
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			if len(line) == 0 {
				return nil
			}
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error(ctx, "Error reading input", log.Fields{"error": err})
			return fmt.Errorf("failed to read input: %w", err)
		}

		if !c.Execute(ctx, line) {
			return nil
		}
	}
}

// Close releases the terminal.
func (c *CLI) Close() error {
	if c.rl == nil {
		return nil
	}
	return c.rl.Close()
}

// Execute runs one input line and renders its outcome. It returns false on exit.
func (c *CLI) Execute(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}

	cmd, err := c.adapter.CommandParse(line)
	if err != nil {
		c.renderError(err)
		return true
	}

	switch cmd.Scope {
	case "exit", "quit":
		if cmd.Operation == "" {
			fmt.Fprintln(c.out, "Goodbye!")
			return false
		}
	case "help":
		var args []string
		if cmd.Operation != "" {
			args = append([]string{cmd.Operation}, cmd.Args...)
		}
		printHelp(c.out, args)
		return true
	}

	if cmd.Scope == "blog" && cmd.Operation == "delete" && !c.deleteConfirmed(cmd) {
		fmt.Fprintln(c.out, "Cancelled.")
		return true
	}

	result, err := c.adapter.View().CommandRun(ctx, cmd)
	c.renderNotifications()
	if err != nil {
		c.renderError(err)
		return true
	}
	c.renderResult(result)
	return true
}

// deleteConfirmed asks before a removal unless --yes was given. Commands that
// will fail anyway are passed through so the view reports the failure.
func (c *CLI) deleteConfirmed(cmd model.Command) bool {
	if len(cmd.Args) != 1 {
		return true
	}
	v := c.adapter.View()
	if v.StateGet() != view.StateAuthenticated {
		return true
	}
	blog, err := v.BlogResolve(cmd.Args[0])
	if err != nil {
		return true
	}

	ok, err := c.confirm(fmt.Sprintf("Remove blog '%s' by %s? [y/N] ", blog.Title, blog.Author))
	if err != nil {
		c.logger.Warn(context.Background(), "Confirmation failed", log.Fields{"error": err})
		return false
	}
	return ok
}

func (c *CLI) readConfirm(prompt string) (bool, error) {
	c.rl.SetPrompt(prompt)
	answer, err := c.rl.Readline()
	if err != nil {
		return false, err
	}
	return isYes(answer), nil
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (c *CLI) renderNotifications() {
	notes := c.adapter.View().Notifications()
	c.mu.Lock()
	for _, n := range notes {
		c.rendered[n.Kind] = n.Message
	}
	c.mu.Unlock()
	for _, n := range notes {
		fmt.Fprintln(c.out, c.renderNotification(n))
	}
}

func (c *CLI) renderNotification(n model.Notification) string {
	if n.Kind == model.NotificationError {
		return c.styles.Error.Render(n.Message)
	}
	return c.styles.Success.Render(n.Message)
}

func (c *CLI) renderError(err error) {
	fmt.Fprintln(c.out, c.styles.Detail.Render("Error: "+err.Error()))
}

func (c *CLI) renderResult(result interface{}) {
	switch r := result.(type) {
	case nil:
	case []*model.Blog:
		fmt.Fprint(c.out, c.formatBlogList(r))
	case *model.Blog:
		fmt.Fprint(c.out, c.formatBlog(r))
	case *model.User:
		fmt.Fprintf(c.out, "%s (%s)\n", r.Name, r.Username)
	case string:
		fmt.Fprintln(c.out, r)
	default:
		fmt.Fprintf(c.out, "%v\n", r)
	}
}

func (c *CLI) formatBlogList(blogs []*model.Blog) string {
	if len(blogs) == 0 {
		return "No blogs.\n"
	}
	var sb strings.Builder
	for i, b := range blogs {
		fmt.Fprintf(&sb, "%2d. %s %s %s\n", i+1,
			c.styles.Title.Render(b.Title),
			b.Author,
			c.styles.Detail.Render(fmt.Sprintf("(%d likes)", b.Likes)))
	}
	return sb.String()
}

func (c *CLI) formatBlog(b *model.Blog) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", c.styles.Title.Render(b.Title), b.Author)
	fmt.Fprintf(&sb, "  %s\n", b.URL)
	fmt.Fprintf(&sb, "  %d likes\n", b.Likes)
	if b.User != nil {
		creator := b.User.Name
		if creator == "" {
			creator = b.User.Username
		}
		if creator != "" {
			fmt.Fprintf(&sb, "  %s\n", c.styles.Detail.Render("added by "+creator))
		}
	}
	fmt.Fprintf(&sb, "  %s\n", c.styles.Detail.Render("id "+b.ID))
	return sb.String()
}
