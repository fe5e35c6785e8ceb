// Package session manages the logged-in user and its persisted copy in local storage.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"bloglist/local-app/src/pkg/api"
	"bloglist/local-app/src/pkg/event"
	"bloglist/local-app/src/pkg/log"
	"bloglist/local-app/src/pkg/model"
	"bloglist/local-app/src/pkg/notify"
	"bloglist/local-app/src/pkg/storage"
)

// StorageKey is the local storage key holding the serialized session.
const StorageKey = "loggedBloglistUser"

// Notification texts shown on login failure.
const (
	MsgWrongCredentials = "Wrong credentials"
	MsgLoginFailed      = "login failed"
)

// Authenticator is the part of the API client the session manager needs.
type Authenticator interface {
	Login(ctx context.Context, creds model.Credentials) (*model.User, error)
	SetToken(token string)
}

// SessionManager holds the current user and keeps local storage in sync with it.
type SessionManager struct {
	auth     Authenticator
	store    storage.LocalStore
	notifier *notify.Notifier
	events   *event.EventManager
	logger   *log.Logger

	mu   sync.RWMutex
	user *model.User
}

// NewSessionManager creates a SessionManager. events may be nil.
func NewSessionManager(auth Authenticator, store storage.LocalStore, notifier *notify.Notifier, events *event.EventManager, logger *log.Logger) *SessionManager {
	logger.Info(context.Background(), "Creating new SessionManager", nil)
	return &SessionManager{
		auth:     auth,
		store:    store,
		notifier: notifier,
		events:   events,
		logger:   logger,
	}
}

// Login authenticates against the backend and persists the session.
// On failure an error notification is shown and the session is unchanged.
func (sm *SessionManager) Login(ctx context.Context, username, password string) (*model.User, error) {
	sm.logger.Info(ctx, "Logging in", log.Fields{"username": username})

	user, err := sm.auth.Login(ctx, model.Credentials{Username: username, Password: password})
	if err != nil {
		sm.logger.Warn(ctx, "Login failed", log.Fields{"username": username, "error": err})
		if errors.Is(err, api.ErrAuth) {
			sm.notifier.Error(MsgWrongCredentials)
		} else {
			sm.notifier.Error(MsgLoginFailed)
		}
		return nil, fmt.Errorf("login failed: %w", err)
	}

	data, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize session: %w", err)
	}
	if err := sm.store.ItemSet(ctx, StorageKey, string(data)); err != nil {
		sm.logger.Error(ctx, "Failed to persist session", log.Fields{"error": err})
		sm.notifier.Error(MsgLoginFailed)
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	sm.activate(user)
	sm.logger.Info(ctx, "Logged in", log.Fields{"username": user.Username})
	return user, nil
}

// Restore reads the persisted session. It returns nil, nil when there is none.
// An unreadable stored value is discarded.
func (sm *SessionManager) Restore(ctx context.Context) (*model.User, error) {
	value, ok, err := sm.store.ItemGet(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if !ok {
		sm.logger.Debug(ctx, "No stored session", nil)
		return nil, nil
	}

	var user model.User
	if err := json.Unmarshal([]byte(value), &user); err != nil || user.Token == "" {
		sm.logger.Warn(ctx, "Discarding unreadable stored session", log.Fields{"error": err})
		if err := sm.store.ItemRemove(ctx, StorageKey); err != nil {
			return nil, fmt.Errorf("failed to discard session: %w", err)
		}
		return nil, nil
	}

	sm.activate(&user)
	sm.logger.Info(ctx, "Session restored", log.Fields{"username": user.Username})
	return &user, nil
}

// Logout removes the persisted session and the token. Calling it twice is fine.
func (sm *SessionManager) Logout(ctx context.Context) error {
	if err := sm.store.ItemRemove(ctx, StorageKey); err != nil {
		sm.logger.Error(ctx, "Failed to remove stored session", log.Fields{"error": err})
		return fmt.Errorf("failed to remove session: %w", err)
	}

	sm.mu.Lock()
	prev := sm.user
	sm.user = nil
	sm.mu.Unlock()

	sm.auth.SetToken("")
	if prev != nil {
		sm.logger.Info(ctx, "Logged out", log.Fields{"username": prev.Username})
	}
	sm.publish(nil)
	return nil
}

// UserGet returns the current user.
func (sm *SessionManager) UserGet() (*model.User, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if sm.user == nil {
		return nil, false
	}
	u := *sm.user
	return &u, true
}

func (sm *SessionManager) activate(user *model.User) {
	sm.mu.Lock()
	sm.user = user
	sm.mu.Unlock()

	sm.auth.SetToken(user.Token)
	sm.publish(user)
}

func (sm *SessionManager) publish(user *model.User) {
	if sm.events == nil {
		return
	}
	var data interface{}
	if user != nil {
		u := *user
		data = &u
	}
	sm.events.Publish(event.Event{Type: event.SessionChanged, Data: data})
}
