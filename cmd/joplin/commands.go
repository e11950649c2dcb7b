package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/taigrr/joplin-cli/internal/app"
	"github.com/taigrr/joplin-cli/internal/search"
	"github.com/taigrr/joplin-cli/internal/tree"
	"github.com/taigrr/joplin-cli/internal/types"
	"github.com/taigrr/joplin-cli/internal/uri"
)

const clearScreen = "\033[H\033[2J"

func newTreeCommand(opts *globalOptions) *cobra.Command {
	var watch, showIDs, collapsed bool
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show folders and notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Tree.Refresh(ctx); err != nil {
					return err
				}
				if sel, ok := a.Tree.Selection(); ok {
					if err := a.Tree.Reveal(ctx, sel); err != nil {
						return err
					}
				}
				out := cmd.OutOrStdout()
				renderOpts := tree.RenderOptions{ExpandAll: !collapsed, ShowIDs: showIDs}
				if !watch {
					return a.Tree.Render(out, renderOpts)
				}

				a.Tree.SetVisible(true)
				a.Tree.OnRefresh(func() {
					fmt.Fprint(out, clearScreen)
					if err := a.Tree.Render(out, renderOpts); err != nil {
						a.Logger.Warn("render failed", zap.Error(err))
					}
				})
				fmt.Fprint(out, clearScreen)
				if err := a.Tree.Render(out, renderOpts); err != nil {
					return err
				}
				<-ctx.Done()
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep refreshing the tree")
	cmd.Flags().BoolVar(&showIDs, "ids", false, "show item ids")
	cmd.Flags().BoolVar(&collapsed, "collapsed", false, "only expand folders on the path to the selection")
	return cmd
}

func newSelectCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "select <id|title>",
		Short: "Select the folder or note later commands act on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Tree.Refresh(ctx); err != nil {
					return err
				}
				item, ok := a.Tree.Lookup(args[0])
				if !ok {
					items := a.Tree.Items()
					candidates := make([]search.Candidate, len(items))
					for i, it := range items {
						candidates[i] = search.Candidate{ID: it.ID(), Label: it.Title()}
					}
					m, err := search.Best(args[0], candidates)
					if err != nil {
						return err
					}
					item = items[m.Index]
				}
				if err := a.Select(item); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Selected %s %q (%s)\n", item.Noun(), item.Title(), item.ID())
				return nil
			})
		},
	}
}

// itemCommand builds a subcommand taking an optional id.
func itemCommand(opts *globalOptions, use, short string, fn func(ctx context.Context, cmd *cobra.Command, a *app.App, item *types.FolderOrNote) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [id]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app.App) error {
				item, err := resolveItem(ctx, a, optionalArg(args))
				if err != nil {
					return err
				}
				return fn(ctx, cmd, a, item)
			})
		},
	}
}

func newNoteCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Work with notes; without an id the selection is used",
	}
	cmd.AddCommand(
		itemCommand(opts, "create", "Create a note in the given or selected folder", func(ctx context.Context, _ *cobra.Command, a *app.App, item *types.FolderOrNote) error {
			return a.Commands.Create(ctx, types.TypeNote, item)
		}),
		itemCommand(opts, "rm", "Delete a note or folder", func(ctx context.Context, _ *cobra.Command, a *app.App, item *types.FolderOrNote) error {
			return a.Commands.Remove(ctx, item)
		}),
		itemCommand(opts, "rename", "Rename a note or folder", func(ctx context.Context, _ *cobra.Command, a *app.App, item *types.FolderOrNote) error {
			return a.Commands.Rename(ctx, item)
		}),
		itemCommand(opts, "todo", "Toggle a todo between open and done", func(ctx context.Context, _ *cobra.Command, a *app.App, item *types.FolderOrNote) error {
			return a.Commands.ToggleTodoState(ctx, item)
		}),
		itemCommand(opts, "open", "Edit a note in $EDITOR", func(ctx context.Context, _ *cobra.Command, a *app.App, item *types.FolderOrNote) error {
			return a.Commands.OpenNote(ctx, item)
		}),
		itemCommand(opts, "link", "Copy a markdown link to the clipboard", func(ctx context.Context, cmd *cobra.Command, a *app.App, item *types.FolderOrNote) error {
			if err := a.Commands.CopyLink(ctx, item); err != nil {
				return err
			}
			if target := targetOf(a, item); target != nil {
				fmt.Fprintln(cmd.OutOrStdout(), uri.MarkdownLink(uri.TrimTitleStart(target.Title()), target.ID()))
				if target.IsNote() {
					fmt.Fprintln(cmd.OutOrStdout(), uri.NoteURL(target.ID()))
				}
			}
			return nil
		}),
		itemCommand(opts, "show", "Render a note in the terminal", showNote),
	)
	return cmd
}

func targetOf(a *app.App, item *types.FolderOrNote) *types.FolderOrNote {
	if item != nil {
		return item
	}
	if sel, ok := a.Tree.Selection(); ok {
		return &sel
	}
	return nil
}

func showNote(ctx context.Context, cmd *cobra.Command, a *app.App, item *types.FolderOrNote) error {
	target := targetOf(a, item)
	if target == nil || !target.IsNote() {
		return fmt.Errorf("no note selected")
	}
	note, err := a.Client.Notes.Get(ctx, target.ID(), "id", "title", "body")
	if err != nil {
		return err
	}

	md := "# " + note.Title + "\n\n" + note.Body
	out, err := glamour.Render(md, "auto")
	if err != nil {
		out = md
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func newFolderCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folder",
		Short: "Work with folders",
	}
	cmd.AddCommand(
		itemCommand(opts, "create", "Create a folder inside the given or selected folder", func(ctx context.Context, _ *cobra.Command, a *app.App, item *types.FolderOrNote) error {
			return a.Commands.Create(ctx, types.TypeFolder, item)
		}),
	)
	return cmd
}

func newSearchCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search",
		Short: "Search notes as you type and open the chosen one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app.App) error {
				return a.Commands.Search(ctx)
			})
		},
	}
}

func newTagsCommand(opts *globalOptions) *cobra.Command {
	cmd := itemCommand(opts, "tags", "Pick the tags of a note", func(ctx context.Context, _ *cobra.Command, a *app.App, item *types.FolderOrNote) error {
		if item == nil {
			if sel, ok := a.Tree.Selection(); ok && sel.IsNote() {
				item = &sel
			}
		}
		return a.Commands.ManageTags(ctx, item)
	})
	cmd.Use = "tags [note-id]"
	return cmd
}

func newTagCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Create or delete tags",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "create",
			Short: "Create a tag",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.run(cmd, func(ctx context.Context, a *app.App) error {
					return a.Commands.CreateTag(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "rm",
			Short: "Delete a tag",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.run(cmd, func(ctx context.Context, a *app.App) error {
					return a.Commands.RemoveTag(ctx)
				})
			},
		},
	)
	return cmd
}

func newResourceCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "resource",
		Aliases: []string{"attachment"},
		Short:   "Create or delete attachments",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "create",
			Short: "Create an attachment and link it from the active note",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.run(cmd, func(ctx context.Context, a *app.App) error {
					return a.Commands.CreateResource(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "rm",
			Short: "Delete attachments",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.run(cmd, func(ctx context.Context, a *app.App) error {
					return a.Commands.RemoveResource(ctx)
				})
			},
		},
	)
	return cmd
}

func newConfigCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Change a setting (token, host, port, deleteConfirm, refreshInterval, editor, storageDir)",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, _, closeLog, err := opts.load()
				if err != nil {
					return err
				}
				defer closeLog()
				if err := cfg.Set(args[0], args[1]); err != nil {
					return err
				}
				if err := cfg.Save(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s to %s\n", args[0], cfg.File)
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, _, closeLog, err := opts.load()
				if err != nil {
					return err
				}
				defer closeLog()
				shown := *cfg
				shown.Token = maskToken(shown.Token)
				data, err := yaml.Marshal(&shown)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", cfg.File, data)
				return nil
			},
		},
	)
	return cmd
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}
