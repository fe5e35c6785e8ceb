package view

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"bloglist/local-app/src/pkg/api"
	"bloglist/local-app/src/pkg/api/apitest"
	"bloglist/local-app/src/pkg/data"
	"bloglist/local-app/src/pkg/event"
	"bloglist/local-app/src/pkg/log"
	"bloglist/local-app/src/pkg/model"
	"bloglist/local-app/src/pkg/notify"
	"bloglist/local-app/src/pkg/session"
	"bloglist/local-app/src/pkg/storage"
)

const notifyTimeout = 100 * time.Millisecond

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type harness struct {
	srv      *apitest.Server
	store    *storage.Storage
	notifier *notify.Notifier
	view     *View
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	srv.AddUser("mluukkai", "Matti Luukkainen", "salainen")

	store, err := storage.NewStorage(&model.Config{
		StorageDriver: string(storage.SQLitePure),
		StorageDir:    t.TempDir(),
		StorageFile:   "bloglist.db",
	}, log.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := &harness{srv: srv, store: store}
	h.view = h.newView(t)
	return h
}

// newView builds a view over the harness backend and storage, as a fresh start of the app would.
func (h *harness) newView(t *testing.T) *View {
	t.Helper()
	logger := log.NewNopLogger()
	events := event.NewEventManager(logger)
	t.Cleanup(events.Wait)

	client, err := api.NewClient(h.srv.URL, 5*time.Second, logger)
	require.NoError(t, err)

	notifier := notify.NewNotifier(notifyTimeout, events, logger)
	t.Cleanup(notifier.Stop)
	h.notifier = notifier

	sessions := session.NewSessionManager(client, h.store, notifier, events, logger)
	blogs, err := data.NewBlogManager(client, true, logger)
	require.NoError(t, err)
	return New(sessions, blogs, notifier, logger)
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	_, err := h.view.Login(context.Background(), "mluukkai", "salainen")
	require.NoError(t, err)
}

func (h *harness) message(kind model.NotificationKind) string {
	msg, _ := h.notifier.Current(kind)
	return msg
}

func TestStart_Anonymous(t *testing.T) {
	h := newHarness(t)
	h.srv.AddBlog("mluukkai", model.BlogInfo{Title: "T", Author: "A", URL: "U"}, 1)

	require.NoError(t, h.view.Start(context.Background()))
	assert.Equal(t, StateAnonymous, h.view.StateGet())
	assert.Len(t, h.view.BlogsGet(), 1)
}

func TestStart_FetchFailureIsNotFatal(t *testing.T) {
	h := newHarness(t)
	h.srv.Close()

	require.NoError(t, h.view.Start(context.Background()))
	assert.Equal(t, MsgFetchFailed, h.message(model.NotificationError))
	assert.Empty(t, h.view.BlogsGet())
}

func TestLogin_Valid(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.view.Start(context.Background()))

	user, err := h.view.Login(context.Background(), "mluukkai", "salainen")
	require.NoError(t, err)
	assert.Equal(t, "Matti Luukkainen", user.Name)
	assert.Equal(t, StateAuthenticated, h.view.StateGet())

	_, ok, err := h.store.ItemGet(context.Background(), session.StorageKey)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLogin_Invalid(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.view.Start(context.Background()))

	_, err := h.view.Login(context.Background(), "mluukkai", "wrong")
	require.Error(t, err)
	assert.Equal(t, StateAnonymous, h.view.StateGet())
	assert.Equal(t, session.MsgWrongCredentials, h.message(model.NotificationError))

	assert.Eventually(t, func() bool {
		return len(h.view.Notifications()) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestRestoreOnStart(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	restarted := h.newView(t)
	require.NoError(t, restarted.Start(context.Background()))
	assert.Equal(t, StateAuthenticated, restarted.StateGet())
	user, ok := restarted.UserGet()
	require.True(t, ok)
	assert.Equal(t, "mluukkai", user.Username)

	_, err := restarted.BlogCreate(context.Background(), model.BlogInfo{Title: "T", Author: "A", URL: "U"})
	assert.NoError(t, err, "the restored token is used for mutations")
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	require.NoError(t, h.view.Logout(context.Background()))
	assert.Equal(t, StateAnonymous, h.view.StateGet())

	_, ok, err := h.store.ItemGet(context.Background(), session.StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)

	restarted := h.newView(t)
	require.NoError(t, restarted.Start(context.Background()))
	assert.Equal(t, StateAnonymous, restarted.StateGet())
}

func TestBlogCreate(t *testing.T) {
	h := newHarness(t)
	h.srv.AddBlog("mluukkai", model.BlogInfo{Title: "old", URL: "u"}, 2)
	require.NoError(t, h.view.Start(context.Background()))
	h.login(t)

	blog, err := h.view.BlogCreate(context.Background(), model.BlogInfo{Title: "T", Author: "A", URL: "U"})
	require.NoError(t, err)

	blogs := h.view.BlogsGet()
	require.Len(t, blogs, 2)
	assert.Equal(t, blog.ID, blogs[1].ID)

	msg := h.message(model.NotificationSuccess)
	assert.Equal(t, "A new blog 'T' by 'A'", msg)
	assert.Contains(t, msg, "T")
	assert.Contains(t, msg, "A")
}

func TestBlogCreate_Failure(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	_, err := h.view.BlogCreate(context.Background(), model.BlogInfo{Author: "A"})
	assert.ErrorIs(t, err, api.ErrValidation)
	assert.Equal(t, MsgCreateFailed, h.message(model.NotificationError))
	assert.Empty(t, h.view.BlogsGet())
}

func TestBlogLike(t *testing.T) {
	h := newHarness(t)
	target := h.srv.AddBlog("mluukkai", model.BlogInfo{Title: "target", Author: "A", URL: "u"}, 3)
	h.srv.AddBlog("mluukkai", model.BlogInfo{Title: "other", Author: "B", URL: "u"}, 1)
	require.NoError(t, h.view.Start(context.Background()))
	h.login(t)

	liked, err := h.view.BlogLike(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, 4, liked.Likes)
	assert.Equal(t, "liked 'target' (4 likes)", h.message(model.NotificationSuccess))

	blogs := h.view.BlogsGet()
	require.Len(t, blogs, 2)
	assert.Equal(t, 4, blogs[0].Likes)
	assert.Equal(t, "other", blogs[1].Title)
	assert.Equal(t, 1, blogs[1].Likes)
}

func TestBlogDelete(t *testing.T) {
	h := newHarness(t)
	keep := h.srv.AddBlog("mluukkai", model.BlogInfo{Title: "keep", Author: "A", URL: "u"}, 5)
	gone := h.srv.AddBlog("mluukkai", model.BlogInfo{Title: "gone", Author: "B", URL: "u"}, 1)
	require.NoError(t, h.view.Start(context.Background()))
	h.login(t)

	_, err := h.view.BlogDelete(context.Background(), gone)
	require.NoError(t, err)
	assert.Equal(t, "removed blog 'gone' by B", h.message(model.NotificationSuccess))

	blogs := h.view.BlogsGet()
	require.Len(t, blogs, 1)
	assert.Equal(t, keep, blogs[0].ID)
}

func TestBlogDelete_Forbidden(t *testing.T) {
	h := newHarness(t)
	h.srv.AddUser("other", "Other", "secret")
	theirs := h.srv.AddBlog("other", model.BlogInfo{Title: "theirs", URL: "u"}, 0)
	require.NoError(t, h.view.Start(context.Background()))
	h.login(t)

	_, err := h.view.BlogDelete(context.Background(), theirs)
	assert.ErrorIs(t, err, api.ErrAuth)
	assert.Equal(t, MsgRemoveFailed, h.message(model.NotificationError))
	assert.Len(t, h.view.BlogsGet(), 1)
}

func TestMutationsRequireLogin(t *testing.T) {
	h := newHarness(t)
	id := h.srv.AddBlog("mluukkai", model.BlogInfo{Title: "T", URL: "u"}, 0)
	require.NoError(t, h.view.Start(context.Background()))
	before := len(h.srv.Requests())

	_, err := h.view.BlogCreate(context.Background(), model.BlogInfo{Title: "T", URL: "U"})
	assert.ErrorIs(t, err, ErrLoginRequired)
	_, err = h.view.BlogLike(context.Background(), id)
	assert.ErrorIs(t, err, ErrLoginRequired)
	_, err = h.view.BlogDelete(context.Background(), id)
	assert.ErrorIs(t, err, ErrLoginRequired)

	assert.Len(t, h.srv.Requests(), before, "no request is sent")
	assert.Empty(t, h.view.Notifications())
}

func TestLogout_EndsSessionContext(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	ctx, done, err := h.view.sessionContext(context.Background())
	require.NoError(t, err)
	defer done()

	require.NoError(t, h.view.Logout(context.Background()))
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("request context outlived the session")
	}

	_, err = h.view.BlogCreate(context.Background(), model.BlogInfo{Title: "T", URL: "U"})
	assert.ErrorIs(t, err, ErrLoginRequired)
}

func TestLogout_StorageFailureKeepsSession(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	require.NoError(t, h.store.Close())

	err := h.view.Logout(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateAuthenticated, h.view.StateGet())

	blog, err := h.view.BlogCreate(context.Background(), model.BlogInfo{Title: "Still here", Author: "A", URL: "U"})
	require.NoError(t, err)
	assert.Equal(t, "Still here", blog.Title)
}

func TestCommandRun(t *testing.T) {
	h := newHarness(t)
	h.srv.AddBlog("mluukkai", model.BlogInfo{Title: "first", Author: "A", URL: "u"}, 3)
	require.NoError(t, h.view.Start(context.Background()))
	ctx := context.Background()

	run := func(scope, op string, args ...string) (interface{}, error) {
		return h.view.CommandRun(ctx, model.Command{Scope: scope, Operation: op, Args: args})
	}

	_, err := run("user", "whoami")
	assert.ErrorIs(t, err, ErrLoginRequired)
	_, err = run("blog", "like", "1")
	assert.ErrorIs(t, err, ErrLoginRequired)

	result, err := run("user", "login", "mluukkai", "salainen")
	require.NoError(t, err)
	assert.Equal(t, "mluukkai", result.(*model.User).Username)

	result, err = run("blog", "add", "two words", "B", "http://b")
	require.NoError(t, err)
	added := result.(*model.Blog)
	assert.Equal(t, "two words", added.Title)

	result, err = run("blog", "like", "1")
	require.NoError(t, err)
	assert.Equal(t, 4, result.(*model.Blog).Likes)

	result, err = run("blog", "view", added.ID)
	require.NoError(t, err)
	assert.Equal(t, "two words", result.(*model.Blog).Title)

	result, err = run("blog", "list")
	require.NoError(t, err)
	assert.Len(t, result.([]*model.Blog), 2)

	_, err = run("blog", "delete", "2", YesFlag)
	require.NoError(t, err)
	assert.Len(t, h.view.BlogsGet(), 1)

	_, err = run("blog", "view", "9")
	assert.ErrorIs(t, err, data.ErrBlogNotFound)

	result, err = run("blog", "refresh")
	require.NoError(t, err)
	assert.Len(t, result.([]*model.Blog), 1)

	_, err = run("user", "logout")
	require.NoError(t, err)
	assert.Equal(t, StateAnonymous, h.view.StateGet())
}

func TestCommandRun_Validation(t *testing.T) {
	h := newHarness(t)
	cases := []model.Command{
		{},
		{Scope: "mindmap", Operation: "list"},
		{Scope: "user", Operation: "login", Args: []string{"only-username"}},
		{Scope: "user", Operation: "whoami", Args: []string{"x"}},
		{Scope: "user", Operation: "fly"},
		{Scope: "blog", Operation: "add", Args: []string{"T", "A"}},
		{Scope: "blog", Operation: "like"},
		{Scope: "blog", Operation: "delete", Args: []string{"1", "--force"}},
		{Scope: "blog", Operation: "list", Args: []string{"x"}},
		{Scope: "blog", Operation: "export", Args: []string{"f", "yaml"}},
	}
	for _, cmd := range cases {
		_, err := h.view.CommandRun(context.Background(), cmd)
		assert.Error(t, err, "%+v", cmd)
	}
	assert.Empty(t, h.srv.Requests())
}

func TestCommandRun_Export(t *testing.T) {
	h := newHarness(t)
	h.srv.AddBlog("mluukkai", model.BlogInfo{Title: "T", Author: "A", URL: "U"}, 1)
	require.NoError(t, h.view.Start(context.Background()))
	dir := t.TempDir()

	jsonFile := filepath.Join(dir, "blogs.json")
	result, err := h.view.CommandRun(context.Background(), model.Command{Scope: "blog", Operation: "export", Args: []string{jsonFile}})
	require.NoError(t, err)
	assert.Contains(t, result, "exported 1 blogs")

	raw, err := os.ReadFile(jsonFile)
	require.NoError(t, err)
	var blogs []*model.Blog
	require.NoError(t, json.Unmarshal(raw, &blogs))
	require.Len(t, blogs, 1)
	assert.Equal(t, "T", blogs[0].Title)

	xmlFile := filepath.Join(dir, "blogs.xml")
	_, err = h.view.CommandRun(context.Background(), model.Command{Scope: "blog", Operation: "export", Args: []string{xmlFile}})
	require.NoError(t, err)
	raw, err = os.ReadFile(xmlFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "<?xml"))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "anonymous", StateAnonymous.String())
	assert.Equal(t, "authenticated", StateAuthenticated.String())
}
