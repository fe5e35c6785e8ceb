package view

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"bloglist/local-app/src/pkg/log"
	"bloglist/local-app/src/pkg/model"
)

// initBlogCommandHandlers initializes blog command handlers
func initBlogCommandHandlers() map[string]CommandHandler {
	return map[string]CommandHandler{
		"list":    handleBlogList,
		"refresh": handleBlogRefresh,
		"add":     handleBlogAdd,
		"like":    handleBlogLike,
		"delete":  handleBlogDelete,
		"view":    handleBlogView,
		"export":  handleBlogExport,
	}
}

// handleBlogList returns the list as currently held, without a fetch
func handleBlogList(ctx context.Context, v *View, cmd model.Command) (interface{}, error) {
	return v.BlogsGet(), nil
}

// handleBlogRefresh handles the blog refresh command
func handleBlogRefresh(ctx context.Context, v *View, cmd model.Command) (interface{}, error) {
	v.logger.Info(ctx, "Handling blog refresh command", nil)
	return v.Refresh(ctx)
}

// handleBlogAdd handles the blog add command
func handleBlogAdd(ctx context.Context, v *View, cmd model.Command) (interface{}, error) {
	info := model.BlogInfo{Title: cmd.Args[0], Author: cmd.Args[1], URL: cmd.Args[2]}
	v.logger.Info(ctx, "Handling blog add command", log.Fields{"title": info.Title})
	return v.BlogCreate(ctx, info)
}

// handleBlogLike handles the blog like command
func handleBlogLike(ctx context.Context, v *View, cmd model.Command) (interface{}, error) {
	if v.StateGet() != StateAuthenticated {
		return nil, ErrLoginRequired
	}
	blog, err := v.BlogResolve(cmd.Args[0])
	if err != nil {
		return nil, err
	}
	v.logger.Info(ctx, "Handling blog like command", log.Fields{"blogID": blog.ID})
	return v.BlogLike(ctx, blog.ID)
}

// handleBlogDelete handles the blog delete command. Confirmation happens in the shell.
func handleBlogDelete(ctx context.Context, v *View, cmd model.Command) (interface{}, error) {
	if v.StateGet() != StateAuthenticated {
		return nil, ErrLoginRequired
	}
	blog, err := v.BlogResolve(cmd.Args[0])
	if err != nil {
		return nil, err
	}
	v.logger.Info(ctx, "Handling blog delete command", log.Fields{"blogID": blog.ID})
	return v.BlogDelete(ctx, blog.ID)
}

// handleBlogView handles the blog view command
func handleBlogView(ctx context.Context, v *View, cmd model.Command) (interface{}, error) {
	return v.BlogResolve(cmd.Args[0])
}

// handleBlogExport writes the list to a file. The format defaults to the file extension, then json.
func handleBlogExport(ctx context.Context, v *View, cmd model.Command) (interface{}, error) {
	filename := cmd.Args[0]
	format := "json"
	if len(cmd.Args) == 2 {
		format = cmd.Args[1]
	} else if ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")); ext == "xml" {
		format = ext
	}

	v.logger.Info(ctx, "Handling blog export command", log.Fields{"filename": filename, "format": format})
	if err := v.BlogsExport(filename, format); err != nil {
		return nil, err
	}
	return fmt.Sprintf("exported %d blogs to %s", len(v.BlogsGet()), filename), nil
}
