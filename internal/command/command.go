// Package command implements the user-facing note commands. Each command
// resolves its target, asks the user what it needs, calls the Joplin API
// and refreshes the tree.
package command

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/taigrr/joplin-cli/internal/prompt"
	"github.com/taigrr/joplin-cli/internal/types"
)

type (
	// NoteAPI is the subset of the notes endpoints the commands use.
	NoteAPI interface {
		List(ctx context.Context, p types.ListParams) (types.Page[types.Note], error)
		Get(ctx context.Context, id string, fields ...string) (types.Note, error)
		Create(ctx context.Context, p types.NoteCreateParams) (types.Note, error)
		Update(ctx context.Context, p types.NoteUpdateParams) (types.Note, error)
		Remove(ctx context.Context, id string) error
		Tags(ctx context.Context, id string, p types.ListParams) (types.Page[types.Tag], error)
		ToggleTodo(ctx context.Context, id string) error
	}

	// FolderAPI is the subset of the folders endpoints the commands use.
	FolderAPI interface {
		Create(ctx context.Context, p types.FolderCreateParams) (types.Folder, error)
		Update(ctx context.Context, p types.FolderUpdateParams) (types.Folder, error)
		Remove(ctx context.Context, id string) error
	}

	// TagAPI is the subset of the tags endpoints the commands use.
	TagAPI interface {
		List(ctx context.Context, p types.ListParams) (types.Page[types.Tag], error)
		Create(ctx context.Context, p types.TagCreateParams) (types.Tag, error)
		Remove(ctx context.Context, id string) error
		AddNote(ctx context.Context, tagID, noteID string) error
		RemoveNote(ctx context.Context, tagID, noteID string) error
	}

	// ResourceAPI is the subset of the resources endpoints the commands use.
	ResourceAPI interface {
		List(ctx context.Context, p types.ListParams) (types.Page[types.Resource], error)
		Create(ctx context.Context, p types.ResourceCreateParams) (types.Resource, error)
		Remove(ctx context.Context, id string) error
	}

	// SearchAPI runs full-text searches.
	SearchAPI interface {
		Search(ctx context.Context, p types.SearchParams) (types.Page[types.SearchHit], error)
	}

	// Pinger checks that the server is reachable.
	Pinger interface {
		Ping(ctx context.Context) (bool, error)
	}

	// APIs groups the Joplin services.
	APIs struct {
		Notes     NoteAPI
		Folders   FolderAPI
		Tags      TagAPI
		Resources ResourceAPI
		Search    SearchAPI
		Server    Pinger
	}
)

type (
	// Tree is the folder/note hierarchy shown to the user.
	Tree interface {
		Selection() (types.FolderOrNote, bool)
		Refresh(ctx context.Context) error
		Reveal(ctx context.Context, item types.FolderOrNote) error
		Visible() bool
	}

	// Prompter asks the user for input. Dismissal is not an error.
	Prompter interface {
		Input(ctx context.Context, opts prompt.InputOptions) (string, error)
		Pick(ctx context.Context, items []prompt.Item, opts prompt.PickOptions) ([]prompt.Item, bool, error)
		QuickPick(ctx context.Context, opts prompt.QuickPickOptions) (prompt.Item, bool, error)
		Info(msg string)
		Error(msg string)
	}

	// Editor opens notes and resources locally.
	Editor interface {
		OpenAndWatch(ctx context.Context, id string) (string, error)
		OpenResource(ctx context.Context, id string) (string, error)
		ActiveNoteID() string
		InsertText(ctx context.Context, text string) error
	}

	// Clipboard receives copied links.
	Clipboard interface {
		WriteText(text string) error
	}

	// Storage holds temporary files.
	Storage interface {
		CreateEmptyFile(dir, name string) (string, error)
		Remove(path string) error
	}

	// UI groups the collaborators that face the user.
	UI struct {
		Tree      Tree
		Prompter  Prompter
		Editor    Editor
		Clipboard Clipboard
		Storage   Storage
	}

	// Settings are the user preferences the commands honor.
	Settings struct {
		Token         string
		DeleteConfirm bool
	}
)

// Service runs the commands.
type Service struct {
	notes     NoteAPI
	folders   FolderAPI
	tags      TagAPI
	resources ResourceAPI
	search    SearchAPI
	server    Pinger

	tree      Tree
	prompt    Prompter
	editor    Editor
	clipboard Clipboard
	storage   Storage

	settings Settings
	logger   *zap.Logger
}

// New creates a Service.
func New(apis APIs, ui UI, settings Settings, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		notes:     apis.Notes,
		folders:   apis.Folders,
		tags:      apis.Tags,
		resources: apis.Resources,
		search:    apis.Search,
		server:    apis.Server,
		tree:      ui.Tree,
		prompt:    ui.Prompter,
		editor:    ui.Editor,
		clipboard: ui.Clipboard,
		storage:   ui.Storage,
		settings:  settings,
		logger:    logger,
	}
}

// target returns item when it is set, otherwise the tree selection.
func (s *Service) target(item *types.FolderOrNote) (types.FolderOrNote, bool) {
	if item != nil && item.Valid() {
		return *item, true
	}
	if s.tree == nil {
		return types.FolderOrNote{}, false
	}
	return s.tree.Selection()
}

func (s *Service) refresh(ctx context.Context) error {
	if s.tree == nil {
		return nil
	}
	if err := s.tree.Refresh(ctx); err != nil {
		return s.fail("refresh tree", err)
	}
	return nil
}

// fail logs err, shows it to the user and returns it wrapped with action.
func (s *Service) fail(action string, err error) error {
	s.logger.Error(action+" failed", zap.Error(err))
	s.prompt.Error(fmt.Sprintf("Failed to %s: %v", action, err))
	return fmt.Errorf("%s: %w", action, err)
}

// promptFailed reports a prompt that could not be shown. Interrupts are
// returned as is.
func (s *Service) promptFailed(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return s.fail("show prompt", err)
}
