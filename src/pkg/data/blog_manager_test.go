package data

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"bloglist/local-app/src/pkg/api"
	"bloglist/local-app/src/pkg/api/apitest"
	"bloglist/local-app/src/pkg/log"
	"bloglist/local-app/src/pkg/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestManager(t *testing.T, sortByLikes bool) (*BlogManager, *apitest.Server) {
	t.Helper()
	logger := log.NewNopLogger()

	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	srv.AddUser("root", "Superuser", "secret")

	client, err := api.NewClient(srv.URL, 5*time.Second, logger)
	require.NoError(t, err)
	user, err := client.Login(context.Background(), model.Credentials{Username: "root", Password: "secret"})
	require.NoError(t, err)
	client.SetToken(user.Token)

	bm, err := NewBlogManager(client, sortByLikes, logger)
	require.NoError(t, err)
	return bm, srv
}

func titles(blogs []*model.Blog) []string {
	out := make([]string, len(blogs))
	for i, b := range blogs {
		out[i] = b.Title
	}
	return out
}

func TestNewBlogManager_RequiresService(t *testing.T) {
	_, err := NewBlogManager(nil, true, log.NewNopLogger())
	assert.Error(t, err)
}

func TestBlogsLoad_SortsByLikes(t *testing.T) {
	bm, srv := newTestManager(t, true)
	srv.AddBlog("root", model.BlogInfo{Title: "low", URL: "u"}, 1)
	srv.AddBlog("root", model.BlogInfo{Title: "high", URL: "u"}, 9)
	srv.AddBlog("root", model.BlogInfo{Title: "mid-a", URL: "u"}, 5)
	srv.AddBlog("root", model.BlogInfo{Title: "mid-b", URL: "u"}, 5)

	blogs, err := bm.BlogsLoad(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"high", "mid-a", "mid-b", "low"}, titles(blogs))
	assert.Equal(t, titles(blogs), titles(bm.BlogsGet()))
}

func TestBlogsLoad_KeepsServerOrder(t *testing.T) {
	bm, srv := newTestManager(t, false)
	srv.AddBlog("root", model.BlogInfo{Title: "low", URL: "u"}, 1)
	srv.AddBlog("root", model.BlogInfo{Title: "high", URL: "u"}, 9)

	blogs, err := bm.BlogsLoad(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"low", "high"}, titles(blogs))
}

func TestBlogAdd_AppendsOne(t *testing.T) {
	bm, srv := newTestManager(t, true)
	srv.AddBlog("root", model.BlogInfo{Title: "existing", URL: "u"}, 7)
	_, err := bm.BlogsLoad(context.Background())
	require.NoError(t, err)

	blog, err := bm.BlogAdd(context.Background(), model.BlogInfo{Title: "T", Author: "A", URL: "U"})
	require.NoError(t, err)
	assert.Equal(t, "T", blog.Title)

	blogs := bm.BlogsGet()
	require.Len(t, blogs, 2)
	assert.Equal(t, []string{"existing", "T"}, titles(blogs))
	assert.Equal(t, blog.ID, blogs[1].ID)
}

func TestBlogAdd_FailureLeavesList(t *testing.T) {
	bm, _ := newTestManager(t, true)

	_, err := bm.BlogAdd(context.Background(), model.BlogInfo{Author: "A"})
	assert.ErrorIs(t, err, api.ErrValidation)
	assert.Empty(t, bm.BlogsGet())
}

func TestBlogLike_IncrementsOnlyTarget(t *testing.T) {
	bm, srv := newTestManager(t, true)
	target := srv.AddBlog("root", model.BlogInfo{Title: "target", URL: "u"}, 3)
	other := srv.AddBlog("root", model.BlogInfo{Title: "other", URL: "u"}, 8)
	_, err := bm.BlogsLoad(context.Background())
	require.NoError(t, err)
	before, _ := bm.BlogGet(other)

	liked, err := bm.BlogLike(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, 4, liked.Likes)
	require.NotNil(t, liked.User)
	assert.Equal(t, "root", liked.User.Username, "local creator is kept when the response has only an id")

	after, _ := bm.BlogGet(other)
	assert.Equal(t, before, after)

	stored, _ := srv.Blog(target)
	assert.Equal(t, 4, stored.Likes)
	assert.Len(t, bm.BlogsGet(), 2)
}

func TestBlogLike_Unknown(t *testing.T) {
	bm, _ := newTestManager(t, true)
	_, err := bm.BlogLike(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrBlogNotFound)
}

func TestBlogDelete_RemovesOnlyTarget(t *testing.T) {
	bm, srv := newTestManager(t, true)
	a := srv.AddBlog("root", model.BlogInfo{Title: "a", URL: "u"}, 3)
	b := srv.AddBlog("root", model.BlogInfo{Title: "b", URL: "u"}, 2)
	c := srv.AddBlog("root", model.BlogInfo{Title: "c", URL: "u"}, 1)
	_, err := bm.BlogsLoad(context.Background())
	require.NoError(t, err)

	removed, err := bm.BlogDelete(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, "b", removed.Title)

	blogs := bm.BlogsGet()
	require.Len(t, blogs, 2)
	assert.Equal(t, a, blogs[0].ID)
	assert.Equal(t, c, blogs[1].ID)
	assert.Equal(t, 2, srv.BlogCount())
}

func TestBlogDelete_ForbiddenKeepsEntry(t *testing.T) {
	bm, srv := newTestManager(t, true)
	srv.AddUser("other", "Other", "secret")
	theirs := srv.AddBlog("other", model.BlogInfo{Title: "theirs", URL: "u"}, 0)
	_, err := bm.BlogsLoad(context.Background())
	require.NoError(t, err)

	_, err = bm.BlogDelete(context.Background(), theirs)
	assert.ErrorIs(t, err, api.ErrAuth)
	_, ok := bm.BlogGet(theirs)
	assert.True(t, ok)
}

func TestBlogResolve(t *testing.T) {
	bm, srv := newTestManager(t, true)
	first := srv.AddBlog("root", model.BlogInfo{Title: "first", URL: "u"}, 2)
	srv.AddBlog("root", model.BlogInfo{Title: "second", URL: "u"}, 1)
	_, err := bm.BlogsLoad(context.Background())
	require.NoError(t, err)

	blog, err := bm.BlogResolve("2")
	require.NoError(t, err)
	assert.Equal(t, "second", blog.Title)

	blog, err = bm.BlogResolve(first)
	require.NoError(t, err)
	assert.Equal(t, "first", blog.Title)

	for _, ref := range []string{"0", "3", "nope"} {
		_, err := bm.BlogResolve(ref)
		assert.ErrorIs(t, err, ErrBlogNotFound, ref)
	}
}

func TestBlogsGet_ReturnsCopies(t *testing.T) {
	bm, srv := newTestManager(t, true)
	id := srv.AddBlog("root", model.BlogInfo{Title: "T", URL: "u"}, 1)
	_, err := bm.BlogsLoad(context.Background())
	require.NoError(t, err)

	bm.BlogsGet()[0].Likes = 100
	blog, _ := bm.BlogGet(id)
	assert.Equal(t, 1, blog.Likes)
}

func TestBlogsClear(t *testing.T) {
	bm, srv := newTestManager(t, true)
	srv.AddBlog("root", model.BlogInfo{Title: "T", URL: "u"}, 1)
	_, err := bm.BlogsLoad(context.Background())
	require.NoError(t, err)

	bm.BlogsClear()
	assert.Empty(t, bm.BlogsGet())
}

// cancelingService answers like the backend but cancels the caller's context
// before returning, the way a logout racing an in-flight request does.
type cancelingService struct {
	cancel context.CancelFunc
}

func (s *cancelingService) BlogsGetAll(ctx context.Context) ([]*model.Blog, error) {
	s.cancel()
	return []*model.Blog{{ID: "x", Title: "late"}}, nil
}

func (s *cancelingService) BlogCreate(ctx context.Context, info model.BlogInfo) (*model.Blog, error) {
	s.cancel()
	return &model.Blog{ID: "new", Title: info.Title}, nil
}

func (s *cancelingService) BlogUpdate(ctx context.Context, id string, patch model.BlogPatch) (*model.Blog, error) {
	s.cancel()
	return &model.Blog{ID: id, Likes: *patch.Likes}, nil
}

func (s *cancelingService) BlogRemove(ctx context.Context, id string) error {
	s.cancel()
	return nil
}

func TestStaleResponsesAreDropped(t *testing.T) {
	svc := &cancelingService{}
	bm, err := NewBlogManager(svc, true, log.NewNopLogger())
	require.NoError(t, err)
	bm.blogs = []*model.Blog{{ID: "a", Title: "a", Likes: 3}}

	run := func(f func(ctx context.Context) error) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		svc.cancel = cancel
		return f(ctx)
	}

	err = run(func(ctx context.Context) error { _, err := bm.BlogAdd(ctx, model.BlogInfo{Title: "T", URL: "U"}); return err })
	assert.ErrorIs(t, err, context.Canceled)
	err = run(func(ctx context.Context) error { _, err := bm.BlogLike(ctx, "a"); return err })
	assert.ErrorIs(t, err, context.Canceled)
	err = run(func(ctx context.Context) error { _, err := bm.BlogDelete(ctx, "a"); return err })
	assert.ErrorIs(t, err, context.Canceled)
	err = run(func(ctx context.Context) error { _, err := bm.BlogsLoad(ctx); return err })
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, []*model.Blog{{ID: "a", Title: "a", Likes: 3}}, bm.BlogsGet())
}

func TestErrorsWrapBackendKinds(t *testing.T) {
	bm, srv := newTestManager(t, true)
	srv.Close()

	_, err := bm.BlogsLoad(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrNetwork))
}
