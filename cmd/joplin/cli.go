package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taigrr/joplin-cli/internal/app"
	"github.com/taigrr/joplin-cli/internal/config"
	"github.com/taigrr/joplin-cli/internal/joplin"
	"github.com/taigrr/joplin-cli/internal/types"
	"github.com/taigrr/joplin-cli/internal/uri"
)

var errUnavailable = errors.New("joplin is not available")

type globalOptions struct {
	configPath string
	debug      bool
}

func (o *globalOptions) load() (*config.AppConfig, *zap.Logger, func(), error) {
	path := o.configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, nil, nil, err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, nil, err
	}
	logger, closeLog, err := app.NewLogger(cfg.Log, o.debug)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, closeLog, nil
}

// run builds the app, checks the server and calls fn.
func (o *globalOptions) run(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error, appOpts ...app.Option) error {
	cfg, logger, closeLog, err := o.load()
	if err != nil {
		return err
	}
	defer closeLog()

	a, err := app.New(cfg, logger, appOpts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("failed to close app", zap.Error(err))
		}
	}()

	ctx := cmd.Context()
	if !a.Start(ctx) {
		return errUnavailable
	}
	return fn(ctx, a)
}

// resolveItem loads the folder or note with id, which may also be an
// internal link target such as ":/<id>". An empty id yields nil so commands
// fall back to the saved selection.
func resolveItem(ctx context.Context, a *app.App, id string) (*types.FolderOrNote, error) {
	if id == "" {
		return nil, nil
	}
	if linked, ok := uri.ParseInternalLink(id); ok {
		id = linked
	}
	if item, ok := a.Tree.Lookup(id); ok {
		return &item, nil
	}

	note, err := a.Client.Notes.Get(ctx, id, "id", "title", "parent_id", "is_todo", "todo_completed")
	if err == nil {
		item := types.NewNoteItem(note)
		return &item, nil
	}
	var nf *joplin.NotFoundError
	if !errors.As(err, &nf) {
		return nil, err
	}

	folder, err := a.Client.Folders.Get(ctx, id, "id", "title", "parent_id")
	if err != nil {
		if errors.As(err, &nf) {
			return nil, fmt.Errorf("no note or folder with id %s", id)
		}
		return nil, err
	}
	item := types.NewFolderItem(folder)
	return &item, nil
}

func optionalArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
