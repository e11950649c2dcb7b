// Package app wires the configuration, the Joplin client and the command
// service together.
package app

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/taigrr/joplin-cli/internal/command"
	"github.com/taigrr/joplin-cli/internal/config"
	"github.com/taigrr/joplin-cli/internal/editor"
	"github.com/taigrr/joplin-cli/internal/filesystem"
	"github.com/taigrr/joplin-cli/internal/joplin"
	"github.com/taigrr/joplin-cli/internal/pathfilter"
	"github.com/taigrr/joplin-cli/internal/prompt"
	"github.com/taigrr/joplin-cli/internal/state"
	"github.com/taigrr/joplin-cli/internal/tree"
	"github.com/taigrr/joplin-cli/internal/types"
)

const stateFile = "state.yaml"

type systemClipboard struct{}

func (systemClipboard) WriteText(text string) error {
	return clipboard.WriteAll(text)
}

type options struct {
	prompter  command.Prompter
	clipboard command.Clipboard
	launcher  editor.Launcher
	baseURL   string
	http      *http.Client
}

// Option customizes New.
type Option func(*options)

// WithPrompter replaces the terminal prompter.
func WithPrompter(p command.Prompter) Option {
	return func(o *options) { o.prompter = p }
}

// WithClipboard replaces the system clipboard.
func WithClipboard(c command.Clipboard) Option {
	return func(o *options) { o.clipboard = c }
}

// WithLauncher replaces the editor launcher.
func WithLauncher(l editor.Launcher) Option {
	return func(o *options) { o.launcher = l }
}

// WithBaseURL points the client at another server.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithHTTPClient replaces the client's transport.
func WithHTTPClient(h *http.Client) Option {
	return func(o *options) { o.http = h }
}

// App owns every long-lived component.
type App struct {
	Config    *config.AppConfig
	Logger    *zap.Logger
	Client    *joplin.Client
	Tree      *tree.Provider
	Refresher *tree.Refresher
	Storage   *filesystem.Service
	Editor    *editor.Session
	State     *state.Store
	Prompter  command.Prompter
	Commands  *command.Service

	mu  sync.Mutex
	ctx context.Context
}

// New builds the application. The Joplin connection settings are read from
// cfg once here.
func New(cfg *config.AppConfig, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.prompter == nil {
		o.prompter = prompt.NewTerminal(nil, nil)
	}
	if o.clipboard == nil {
		o.clipboard = systemClipboard{}
	}

	clientOpts := []joplin.Option{joplin.WithLogger(logger.Named("joplin"))}
	if o.baseURL != "" {
		clientOpts = append(clientOpts, joplin.WithBaseURL(o.baseURL))
	}
	if o.http != nil {
		clientOpts = append(clientOpts, joplin.WithHTTPClient(o.http))
	}
	client := joplin.New(cfg.Client(), clientOpts...)

	store, err := state.Open(filepath.Join(cfg.StorageDir, stateFile))
	if err != nil {
		return nil, err
	}
	storage := filesystem.New(cfg.StorageDir, pathfilter.New(nil))

	editorOpts := []editor.Option{editor.WithLogger(logger.Named("editor"))}
	if o.launcher != nil {
		editorOpts = append(editorOpts, editor.WithLauncher(o.launcher))
	}
	session := editor.New(client.Notes, client.Resources, storage, cfg.Editor, editorOpts...)
	session.SetActiveNoteID(store.ActiveNote())

	provider := tree.New(client.Folders, client.Notes, logger.Named("tree"))
	if item, ok := store.Selected(); ok {
		provider.Select(item)
	}

	a := &App{
		Config:    cfg,
		Logger:    logger,
		Client:    client,
		Tree:      provider,
		Refresher: tree.NewRefresher(provider, cfg.RefreshInterval, logger.Named("refresher")),
		Storage:   storage,
		Editor:    session,
		State:     store,
		Prompter:  o.prompter,
		ctx:       context.Background(),
	}
	a.Commands = command.New(command.APIs{
		Notes:     client.Notes,
		Folders:   client.Folders,
		Tags:      client.Tags,
		Resources: client.Resources,
		Search:    client.Search,
		Server:    client,
	}, command.UI{
		Tree:      provider,
		Prompter:  o.prompter,
		Editor:    session,
		Clipboard: o.clipboard,
		Storage:   storage,
	}, command.Settings{
		Token:         cfg.Token,
		DeleteConfirm: cfg.DeleteConfirm,
	}, logger.Named("command"))

	session.OnActiveChanged(a.onActiveChanged)
	return a, nil
}

func (a *App) onActiveChanged(fileName string) {
	id, ok := editor.NoteIDFromFileName(fileName)
	if !ok {
		return
	}
	if err := a.State.SetActiveNote(id); err != nil {
		a.Logger.Warn("failed to save active note", zap.Error(err))
	}
	if err := a.Commands.OnActiveNoteChanged(a.context(), fileName); err != nil {
		a.Logger.Debug("reveal active note failed", zap.Error(err))
	}
}

func (a *App) context() context.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ctx
}

// Start checks the server and starts the periodic tree refresh. Without a
// token it reports the problem and makes no request. It returns false when
// Joplin cannot be used.
func (a *App) Start(ctx context.Context) bool {
	a.mu.Lock()
	a.ctx = ctx
	a.mu.Unlock()

	if !a.Commands.CheckServer(ctx) {
		return false
	}
	a.Refresher.Start(ctx)
	return true
}

// Select makes item the selection and persists it.
func (a *App) Select(item types.FolderOrNote) error {
	a.Tree.Select(item)
	return a.State.SetSelected(item)
}

// Close stops background work and saves the session state.
func (a *App) Close() error {
	a.Refresher.Stop()
	var errs []error
	if err := a.Editor.Close(); err != nil {
		errs = append(errs, err)
	}
	if item, ok := a.Tree.Selection(); ok {
		if err := a.State.SetSelected(item); err != nil {
			errs = append(errs, err)
		}
	} else if _, had := a.State.Selected(); had {
		if err := a.State.ClearSelected(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
