package tree

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	folderStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	doneStyle     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	idStyle       = lipgloss.NewStyle().Faint(true)
)

// RenderOptions control Render.
type RenderOptions struct {
	// ExpandAll ignores the expanded state of folders.
	ExpandAll bool
	ShowIDs   bool
}

// Render writes the hierarchy as an indented text tree.
func (p *Provider) Render(w io.Writer, opts RenderOptions) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	selected := ""
	if p.selection != nil {
		selected = p.selection.ID()
	}

	var b strings.Builder
	var walk func([]*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			b.WriteString(strings.Repeat("  ", n.Depth))
			b.WriteString(label(n, opts, n.Item.ID() == selected))
			b.WriteString("\n")
			if n.Item.IsFolder() && (opts.ExpandAll || n.Expanded) {
				walk(n.Children)
			}
		}
	}
	walk(p.roots)

	_, err := fmt.Fprint(w, b.String())
	return err
}

func label(n *Node, opts RenderOptions, selected bool) string {
	var text string
	switch {
	case n.Item.IsFolder():
		marker := "▸ "
		if opts.ExpandAll || n.Expanded {
			marker = "▾ "
		}
		text = marker + folderStyle.Render(n.Item.Title())
	default:
		note, _ := n.Item.Note()
		switch {
		case note.Todo() && note.Completed():
			text = "☑ " + doneStyle.Render(note.Title)
		case note.Todo():
			text = "☐ " + note.Title
		default:
			text = "  " + note.Title
		}
	}
	if opts.ShowIDs {
		text += " " + idStyle.Render(n.Item.ID())
	}
	if selected {
		return selectedStyle.Render(text)
	}
	return text
}
