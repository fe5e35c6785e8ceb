// Package view composes the session, the blog list and the notifications into the
// state the user interacts with, and runs shell commands against it.
package view

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"bloglist/local-app/src/pkg/data"
	"bloglist/local-app/src/pkg/log"
	"bloglist/local-app/src/pkg/model"
	"bloglist/local-app/src/pkg/notify"
	"bloglist/local-app/src/pkg/session"
	"bloglist/local-app/src/pkg/storage"
)

// State is the authentication state of the view.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// ErrLoginRequired is returned by blog mutations while nobody is logged in.
var ErrLoginRequired = errors.New("login required")

// Notification texts.
const (
	MsgFetchFailed  = "failed to fetch blogs"
	MsgCreateFailed = "failed to create blog"
	MsgLikeFailed   = "failed to like blog"
	MsgRemoveFailed = "failed to remove blog"
)

// CommandHandler is a function type for command handlers
type CommandHandler func(ctx context.Context, v *View, cmd model.Command) (interface{}, error)

// View owns the current user and the blog list for one shell.
type View struct {
	sessions *session.SessionManager
	blogs    *data.BlogManager
	notifier *notify.Notifier
	logger   *log.Logger

	mu            sync.Mutex
	sessionCtx    context.Context
	sessionCancel context.CancelFunc

	commandHandlers map[string]map[string]CommandHandler
}

// New creates a View in the anonymous state.
func New(sessions *session.SessionManager, blogs *data.BlogManager, notifier *notify.Notifier, logger *log.Logger) *View {
	ctx := context.Background()
	logger.Info(ctx, "Creating new View", nil)

	v := &View{
		sessions: sessions,
		blogs:    blogs,
		notifier: notifier,
		logger:   logger,
	}
	v.initCommandHandlers()
	return v
}

// initCommandHandlers initializes the command handlers map
func (v *View) initCommandHandlers() {
	v.commandHandlers = map[string]map[string]CommandHandler{
		"user": initUserCommandHandlers(),
		"blog": initBlogCommandHandlers(),
	}
}

// Start restores a persisted session and fetches the list.
// A failed fetch is reported as a notification and does not fail Start.
func (v *View) Start(ctx context.Context) error {
	v.logger.Info(ctx, "Starting view", nil)

	user, err := v.sessions.Restore(ctx)
	if err != nil {
		v.logger.Error(ctx, "Failed to restore session", log.Fields{"error": err})
		return fmt.Errorf("failed to restore session: %w", err)
	}
	if user != nil {
		v.sessionBegin()
		v.logger.Info(ctx, "Resumed session", log.Fields{"username": user.Username})
	}

	if _, err := v.Refresh(ctx); err != nil {
		v.logger.Warn(ctx, "Initial fetch failed", log.Fields{"error": err})
	}
	return nil
}

// Login authenticates and moves the view to the authenticated state.
// The session manager reports failures to the user.
func (v *View) Login(ctx context.Context, username, password string) (*model.User, error) {
	user, err := v.sessions.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	v.sessionBegin()
	return user, nil
}

// Logout drops the session. Requests still in flight for it no longer touch the list.
// When the stored session cannot be removed the view stays logged in.
func (v *View) Logout(ctx context.Context) error {
	if err := v.sessions.Logout(ctx); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}

	v.mu.Lock()
	if v.sessionCancel != nil {
		v.sessionCancel()
		v.sessionCancel = nil
		v.sessionCtx = nil
	}
	v.mu.Unlock()
	return nil
}

// Refresh reloads the list from the backend.
func (v *View) Refresh(ctx context.Context) ([]*model.Blog, error) {
	blogs, err := v.blogs.BlogsLoad(ctx)
	if err != nil {
		v.notifier.Error(MsgFetchFailed)
		return nil, err
	}
	return blogs, nil
}

// BlogCreate adds a blog and appends it to the list.
func (v *View) BlogCreate(ctx context.Context, info model.BlogInfo) (*model.Blog, error) {
	ctx, done, err := v.sessionContext(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	blog, err := v.blogs.BlogAdd(ctx, info)
	if err != nil {
		v.notifier.Error(MsgCreateFailed)
		return nil, err
	}
	v.notifier.Success(fmt.Sprintf("A new blog '%s' by '%s'", blog.Title, blog.Author))
	return blog, nil
}

// BlogLike adds one like to the blog with id.
func (v *View) BlogLike(ctx context.Context, id string) (*model.Blog, error) {
	ctx, done, err := v.sessionContext(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	blog, err := v.blogs.BlogLike(ctx, id)
	if err != nil {
		v.notifier.Error(MsgLikeFailed)
		return nil, err
	}
	v.notifier.Success(fmt.Sprintf("liked '%s' (%d likes)", blog.Title, blog.Likes))
	return blog, nil
}

// BlogDelete removes the blog with id.
func (v *View) BlogDelete(ctx context.Context, id string) (*model.Blog, error) {
	ctx, done, err := v.sessionContext(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	blog, err := v.blogs.BlogDelete(ctx, id)
	if err != nil {
		v.notifier.Error(MsgRemoveFailed)
		return nil, err
	}
	v.notifier.Success(fmt.Sprintf("removed blog '%s' by %s", blog.Title, blog.Author))
	return blog, nil
}

// BlogsGet returns the current list.
func (v *View) BlogsGet() []*model.Blog {
	return v.blogs.BlogsGet()
}

// BlogResolve finds a blog by list position or id.
func (v *View) BlogResolve(ref string) (*model.Blog, error) {
	return v.blogs.BlogResolve(ref)
}

// BlogsExport writes the current list to filename as json or xml.
func (v *View) BlogsExport(filename, format string) error {
	if err := storage.FileExport(v.blogs.BlogsGet(), filename, format); err != nil {
		return fmt.Errorf("failed to export blogs: %w", err)
	}
	return nil
}

// StateGet returns the current state.
func (v *View) StateGet() State {
	if _, ok := v.sessions.UserGet(); ok {
		return StateAuthenticated
	}
	return StateAnonymous
}

// UserGet returns the logged-in user.
func (v *View) UserGet() (*model.User, bool) {
	return v.sessions.UserGet()
}

// Notifications returns the visible notifications, error first.
func (v *View) Notifications() []model.Notification {
	return v.notifier.Active()
}

// CommandRun validates cmd and dispatches it to its handler.
func (v *View) CommandRun(ctx context.Context, cmd model.Command) (interface{}, error) {
	v.logger.Command(ctx, "Running command", log.Fields{"scope": cmd.Scope, "operation": cmd.Operation, "argCount": len(cmd.Args)})

	c := NewCommand(cmd, v.logger)
	if err := c.Validate(); err != nil {
		return nil, err
	}

	scopeHandlers, ok := v.commandHandlers[cmd.Scope]
	if !ok {
		v.logger.Error(ctx, "Invalid command scope", log.Fields{"scope": cmd.Scope})
		return nil, fmt.Errorf("invalid command scope: %s", cmd.Scope)
	}
	handler, ok := scopeHandlers[cmd.Operation]
	if !ok {
		v.logger.Error(ctx, "Invalid command operation", log.Fields{"operation": cmd.Operation})
		return nil, fmt.Errorf("invalid command operation: %s", cmd.Operation)
	}

	result, err := handler(ctx, v, cmd)
	if err != nil {
		v.logger.Warn(ctx, "Command execution failed", log.Fields{"error": err})
	} else {
		v.logger.Debug(ctx, "Command executed successfully", nil)
	}
	return result, err
}

// sessionBegin replaces the session context with a fresh one.
func (v *View) sessionBegin() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.sessionCancel != nil {
		v.sessionCancel()
	}
	v.sessionCtx, v.sessionCancel = context.WithCancel(context.Background())
}

// sessionContext derives a request context that is also canceled when the
// current session ends. It fails with ErrLoginRequired in the anonymous state.
func (v *View) sessionContext(ctx context.Context) (context.Context, func(), error) {
	v.mu.Lock()
	sessionCtx := v.sessionCtx
	v.mu.Unlock()

	if sessionCtx == nil || v.StateGet() != StateAuthenticated {
		v.logger.Warn(ctx, "Blog mutation without login", nil)
		return nil, nil, ErrLoginRequired
	}

	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(sessionCtx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}, nil
}
