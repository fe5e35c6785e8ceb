// Package data keeps the local replica of the blog list in step with the backend.
package data

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"bloglist/local-app/src/pkg/log"
	"bloglist/local-app/src/pkg/model"
)

// ErrBlogNotFound is returned when a reference matches no blog in the list.
var ErrBlogNotFound = errors.New("blog not found")

// BlogService is the part of the API client the blog manager needs.
type BlogService interface {
	BlogsGetAll(ctx context.Context) ([]*model.Blog, error)
	BlogCreate(ctx context.Context, info model.BlogInfo) (*model.Blog, error)
	BlogUpdate(ctx context.Context, id string, patch model.BlogPatch) (*model.Blog, error)
	BlogRemove(ctx context.Context, id string) error
}

// BlogOperations defines the interface for blog list operations
type BlogOperations interface {
	BlogsLoad(ctx context.Context) ([]*model.Blog, error)
	BlogsGet() []*model.Blog
	BlogGet(id string) (*model.Blog, bool)
	BlogResolve(ref string) (*model.Blog, error)
	BlogAdd(ctx context.Context, info model.BlogInfo) (*model.Blog, error)
	BlogLike(ctx context.Context, id string) (*model.Blog, error)
	BlogDelete(ctx context.Context, id string) (*model.Blog, error)
	BlogsClear()
}

// BlogManager holds the blog list as last seen from the backend.
// The list changes only under mu, and only for requests whose context is still live.
type BlogManager struct {
	service     BlogService
	logger      *log.Logger
	sortByLikes bool

	mu    sync.RWMutex
	blogs []*model.Blog
}

var _ BlogOperations = (*BlogManager)(nil)

// NewBlogManager creates a BlogManager
func NewBlogManager(service BlogService, sortByLikes bool, logger *log.Logger) (*BlogManager, error) {
	ctx := context.Background()
	logger.Info(ctx, "Creating new BlogManager", log.Fields{"sortByLikes": sortByLikes})

	if service == nil {
		logger.Error(ctx, "BlogService not initialized", nil)
		return nil, fmt.Errorf("blogService not initialized")
	}

	return &BlogManager{
		service:     service,
		logger:      logger,
		sortByLikes: sortByLikes,
		blogs:       []*model.Blog{},
	}, nil
}

// BlogsLoad replaces the list with the backend's, ordered by likes when configured.
func (bm *BlogManager) BlogsLoad(ctx context.Context) ([]*model.Blog, error) {
	bm.logger.Info(ctx, "Loading blogs", nil)

	blogs, err := bm.service.BlogsGetAll(ctx)
	if err != nil {
		bm.logger.Error(ctx, "Failed to fetch blogs", log.Fields{"error": err})
		return nil, fmt.Errorf("failed to fetch blogs: %w", err)
	}
	if bm.sortByLikes {
		sort.SliceStable(blogs, func(i, j int) bool { return blogs[i].Likes > blogs[j].Likes })
	}

	bm.mu.Lock()
	if err := ctx.Err(); err != nil {
		bm.mu.Unlock()
		return nil, fmt.Errorf("failed to fetch blogs: %w", err)
	}
	bm.blogs = blogs
	out := cloneAll(bm.blogs)
	bm.mu.Unlock()

	bm.logger.Info(ctx, "Blogs loaded", log.Fields{"count": len(out)})
	return out, nil
}

// BlogsGet returns a copy of the current list.
func (bm *BlogManager) BlogsGet() []*model.Blog {
	bm.mu.RLock()
	defer bm.mu.RUnlock()
	return cloneAll(bm.blogs)
}

// BlogGet returns a copy of the blog with id.
func (bm *BlogManager) BlogGet(id string) (*model.Blog, bool) {
	bm.mu.RLock()
	defer bm.mu.RUnlock()
	if i := bm.indexOf(id); i >= 0 {
		return bm.blogs[i].Clone(), true
	}
	return nil, false
}

// BlogResolve finds a blog by 1-based position in the current list or by id.
func (bm *BlogManager) BlogResolve(ref string) (*model.Blog, error) {
	bm.mu.RLock()
	defer bm.mu.RUnlock()

	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(bm.blogs) {
			return nil, fmt.Errorf("%w: no blog at position %d", ErrBlogNotFound, n)
		}
		return bm.blogs[n-1].Clone(), nil
	}
	if i := bm.indexOf(ref); i >= 0 {
		return bm.blogs[i].Clone(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrBlogNotFound, ref)
}

// BlogAdd creates a blog on the backend and appends it to the list.
func (bm *BlogManager) BlogAdd(ctx context.Context, info model.BlogInfo) (*model.Blog, error) {
	bm.logger.Info(ctx, "Adding blog", log.Fields{"title": info.Title, "author": info.Author})

	created, err := bm.service.BlogCreate(ctx, info)
	if err != nil {
		bm.logger.Error(ctx, "Failed to create blog", log.Fields{"error": err, "title": info.Title})
		return nil, fmt.Errorf("failed to create blog: %w", err)
	}

	bm.mu.Lock()
	if err := ctx.Err(); err != nil {
		bm.mu.Unlock()
		bm.logger.Warn(ctx, "Dropping stale create response", log.Fields{"blogID": created.ID})
		return nil, fmt.Errorf("failed to create blog: %w", err)
	}
	bm.blogs = append(bm.blogs, created)
	out := created.Clone()
	bm.mu.Unlock()

	bm.logger.Info(ctx, "Blog added", log.Fields{"blogID": out.ID})
	return out, nil
}

// BlogLike increments the likes of the blog with id and stores the backend's answer.
// When the answer carries only the creator id, the local creator is kept.
func (bm *BlogManager) BlogLike(ctx context.Context, id string) (*model.Blog, error) {
	current, ok := bm.BlogGet(id)
	if !ok {
		return nil, fmt.Errorf("failed to like blog: %w: %s", ErrBlogNotFound, id)
	}
	bm.logger.Info(ctx, "Liking blog", log.Fields{"blogID": id, "likes": current.Likes})

	likes := current.Likes + 1
	patch := model.BlogPatch{Likes: &likes}
	if current.User != nil {
		patch.User = current.User.ID
	}

	updated, err := bm.service.BlogUpdate(ctx, id, patch)
	if err != nil {
		bm.logger.Error(ctx, "Failed to like blog", log.Fields{"error": err, "blogID": id})
		return nil, fmt.Errorf("failed to like blog: %w", err)
	}

	bm.mu.Lock()
	if err := ctx.Err(); err != nil {
		bm.mu.Unlock()
		bm.logger.Warn(ctx, "Dropping stale like response", log.Fields{"blogID": id})
		return nil, fmt.Errorf("failed to like blog: %w", err)
	}
	i := bm.indexOf(id)
	if i < 0 {
		bm.mu.Unlock()
		return nil, fmt.Errorf("failed to like blog: %w: %s", ErrBlogNotFound, id)
	}
	if !updated.User.Populated() && bm.blogs[i].User.Populated() {
		u := *bm.blogs[i].User
		updated.User = &u
	}
	bm.blogs[i] = updated
	out := updated.Clone()
	bm.mu.Unlock()

	bm.logger.Info(ctx, "Blog liked", log.Fields{"blogID": id, "likes": out.Likes})
	return out, nil
}

// BlogDelete removes the blog with id from the backend and from the list.
// It returns the removed blog.
func (bm *BlogManager) BlogDelete(ctx context.Context, id string) (*model.Blog, error) {
	current, ok := bm.BlogGet(id)
	if !ok {
		return nil, fmt.Errorf("failed to remove blog: %w: %s", ErrBlogNotFound, id)
	}
	bm.logger.Info(ctx, "Removing blog", log.Fields{"blogID": id})

	if err := bm.service.BlogRemove(ctx, id); err != nil {
		bm.logger.Error(ctx, "Failed to remove blog", log.Fields{"error": err, "blogID": id})
		return nil, fmt.Errorf("failed to remove blog: %w", err)
	}

	bm.mu.Lock()
	if err := ctx.Err(); err != nil {
		bm.mu.Unlock()
		bm.logger.Warn(ctx, "Dropping stale remove response", log.Fields{"blogID": id})
		return nil, fmt.Errorf("failed to remove blog: %w", err)
	}
	if i := bm.indexOf(id); i >= 0 {
		bm.blogs = append(bm.blogs[:i:i], bm.blogs[i+1:]...)
	}
	bm.mu.Unlock()

	bm.logger.Info(ctx, "Blog removed", log.Fields{"blogID": id})
	return current, nil
}

// BlogsClear empties the list.
func (bm *BlogManager) BlogsClear() {
	bm.mu.Lock()
	bm.blogs = []*model.Blog{}
	bm.mu.Unlock()
}

// indexOf must be called with mu held.
func (bm *BlogManager) indexOf(id string) int {
	for i, b := range bm.blogs {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(blogs []*model.Blog) []*model.Blog {
	out := make([]*model.Blog, len(blogs))
	for i, b := range blogs {
		out[i] = b.Clone()
	}
	return out
}
