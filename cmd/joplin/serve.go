package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taigrr/joplin-cli/internal/app"
	"github.com/taigrr/joplin-cli/internal/config"
	"github.com/taigrr/joplin-cli/internal/prompt"
	"github.com/taigrr/joplin-cli/internal/types"
)

func newServeCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run an MCP server on stdio exposing the Joplin commands",
		Long: `serve runs a Model Context Protocol server over stdio. Every tool call
runs the same command as the CLI, with prompts answered from the tool
input. Notes are never opened in an editor, and the saved selection of
the CLI is not used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, closeLog, err := opts.load()
			if err != nil {
				return err
			}
			defer closeLog()
			cfg.Editor = ""
			cfg.StorageDir = filepath.Join(cfg.StorageDir, "mcp")

			server := mcp.NewServer(&mcp.Implementation{
				Name:    "joplin",
				Version: version,
			}, nil)
			b := &bridge{cfg: cfg, logger: logger.Named("mcp")}
			b.registerTools(server)

			logger.Info("serving mcp on stdio")
			if err := server.Run(cmd.Context(), &mcp.StdioTransport{}); err != nil {
				return fmt.Errorf("error running server: %w", err)
			}
			return nil
		},
	}
}

// captureClipboard keeps the copied text instead of touching the system
// clipboard.
type captureClipboard struct {
	mu   sync.Mutex
	text string
}

func (c *captureClipboard) WriteText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
	return nil
}

func (c *captureClipboard) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// bridge runs tool calls against a fresh App each time. Calls are
// serialized since they share the state file and the storage dir.
type bridge struct {
	cfg    *config.AppConfig
	logger *zap.Logger
	mu     sync.Mutex

	// appOpts is used by tests to point the client at a fake server.
	appOpts []app.Option
}

type call struct {
	app       *app.App
	prompter  *prompt.Scripted
	clipboard *captureClipboard
}

// item resolves id, which is required.
func (c *call) item(ctx context.Context, id string) (*types.FolderOrNote, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("id is required")
	}
	return resolveItem(ctx, c.app, id)
}

// run builds an App with a scripted prompter and calls fn. The returned
// messages are the info messages fn produced.
func (b *bridge) run(ctx context.Context, fn func(ctx context.Context, c *call) error) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := &call{prompter: prompt.NewScripted(), clipboard: &captureClipboard{}}
	opts := append([]app.Option{
		app.WithPrompter(c.prompter),
		app.WithClipboard(c.clipboard),
	}, b.appOpts...)
	a, err := app.New(b.cfg, b.logger, opts...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := a.Close(); err != nil {
			b.logger.Warn("failed to close app", zap.Error(err))
		}
	}()
	c.app = a

	if !a.Start(ctx) {
		return c.prompter.Infos(), joinMessages(errUnavailable, c.prompter.Errors())
	}
	err = fn(ctx, c)
	if errs := c.prompter.Errors(); err == nil && len(errs) > 0 {
		err = joinMessages(nil, errs)
	}
	return c.prompter.Infos(), err
}

func joinMessages(err error, msgs []string) error {
	if len(msgs) == 0 {
		return err
	}
	if err == nil {
		return errors.New(strings.Join(msgs, "; "))
	}
	return fmt.Errorf("%w: %s", err, strings.Join(msgs, "; "))
}
