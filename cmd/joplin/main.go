// Package main implements the joplin command line client and its MCP
// bridge.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(
		ctx,
		newRootCommand(),
		fang.WithVersion(version),
		fang.WithoutManpage(),
	); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:   "joplin",
		Short: "Manage Joplin notes from the terminal",
		Long: `joplin talks to the Joplin desktop app through its Web Clipper data API.
It browses folders and notes as a tree, creates, renames and deletes them,
edits notes in $EDITOR with changes pushed back as you save, manages tags
and attachments, and can expose the same commands over MCP.

Enable the Web Clipper service in Joplin and store its token with
"joplin config set token <token>" or the JOPLIN_TOKEN variable.`,
		Example: `joplin tree
joplin select Groceries
joplin note create
joplin search`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/joplin-cli/config.yaml)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		newTreeCommand(opts),
		newSelectCommand(opts),
		newNoteCommand(opts),
		newFolderCommand(opts),
		newSearchCommand(opts),
		newTagsCommand(opts),
		newTagCommand(opts),
		newResourceCommand(opts),
		newConfigCommand(opts),
		newServeCommand(opts),
	)
	return cmd
}
