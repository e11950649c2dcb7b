package main

import "github.com/modelcontextprotocol/go-sdk/mcp"

type (
	// ActionOutput is returned by tools that only report success.
	ActionOutput struct {
		Success  bool     `json:"success"`
		Messages []string `json:"messages,omitempty"`
	}

	// ItemInfo describes a folder or note.
	ItemInfo struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		Kind     string `json:"kind"`
		ParentID string `json:"parentId,omitempty"`
		Done     bool   `json:"done,omitempty"`
	}

	// TreeInput contains parameters for listing the hierarchy.
	TreeInput struct {
		ShowIDs bool `json:"showIds,omitempty" jsonschema:"Include item ids in the rendered tree (default: false)"`
	}

	// TreeOutput contains the rendered hierarchy and every item in it.
	TreeOutput struct {
		Tree  string     `json:"tree"`
		Items []ItemInfo `json:"items"`
	}

	// CreateInput contains parameters for creating a note or folder.
	CreateInput struct {
		ParentID string `json:"parentId,omitempty" jsonschema:"Folder to create in, or a note whose folder is used (default: root)"`
		Title    string `json:"title" jsonschema:"Title of the new item"`
	}

	// CreateOutput contains the result of creating a note or folder.
	CreateOutput struct {
		Success  bool     `json:"success"`
		ID       string   `json:"id,omitempty"`
		Messages []string `json:"messages,omitempty"`
	}

	// RemoveInput contains parameters for deleting a note or folder.
	RemoveInput struct {
		ID      string `json:"id" jsonschema:"Id of the note or folder"`
		Confirm string `json:"confirm" jsonschema:"Must be set to 'yes' to confirm deletion"`
	}

	// RenameInput contains parameters for renaming a note or folder.
	RenameInput struct {
		ID    string `json:"id" jsonschema:"Id of the note or folder"`
		Title string `json:"title" jsonschema:"New title"`
	}

	// ItemInput identifies one note or folder.
	ItemInput struct {
		ID string `json:"id" jsonschema:"Id of the note or folder"`
	}

	// SearchInput contains parameters for searching notes.
	SearchInput struct {
		Query string `json:"query,omitempty" jsonschema:"Joplin search query; empty lists the most recently updated notes"`
	}

	// NoteRef is a note id and title.
	NoteRef struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}

	// SearchOutput contains the matching notes, most recently updated first.
	SearchOutput struct {
		Results []NoteRef `json:"results"`
	}

	// ManageTagsInput contains parameters for setting the tags of a note.
	ManageTagsInput struct {
		NoteID string   `json:"noteId" jsonschema:"Id of the note"`
		Tags   []string `json:"tags" jsonschema:"Complete list of tag titles or ids the note should carry; unknown tags are ignored"`
	}

	// ManageTagsOutput contains the tags of the note after the change.
	ManageTagsOutput struct {
		Success  bool     `json:"success"`
		Tags     []string `json:"tags"`
		Messages []string `json:"messages,omitempty"`
	}

	// TagInput contains a tag title.
	TagInput struct {
		Tag string `json:"tag" jsonschema:"Tag title, or tag id when removing"`
	}

	// RemoveResourceInput contains parameters for deleting attachments.
	RemoveResourceInput struct {
		Resources []string `json:"resources" jsonschema:"Titles or ids of the attachments to delete"`
	}

	// LinkOutput contains a markdown link to a note or folder, and for notes
	// the URL that opens it in the desktop app.
	LinkOutput struct {
		Link string `json:"link"`
		URL  string `json:"url,omitempty"`
	}
)

func (b *bridge) registerTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "tree",
		Description: "List every folder and note as an indented tree, folders first and sorted by title.",
	}, b.handleTree)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_note",
		Description: "Create a note. parentId may be a folder or a note, in which case the note's folder is used.",
	}, b.handleCreateNote)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_folder",
		Description: "Create a folder at the root or inside parentId.",
	}, b.handleCreateFolder)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove",
		Description: "Delete a note or folder. Requires confirm='yes' for safety.",
	}, b.handleRemove)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "rename",
		Description: "Change the title of a note or folder.",
	}, b.handleRename)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "toggle_todo",
		Description: "Toggle a todo between open and done.",
	}, b.handleToggleTodo)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search",
		Description: "Search notes with the Joplin query syntax. Returns at most 100 notes, most recently updated first.",
	}, b.handleSearch)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "manage_tags",
		Description: "Set the tags of a note. Tags missing from the list are removed from the note. Tags must exist; use create_tag first.",
	}, b.handleManageTags)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_tag",
		Description: "Create a tag.",
	}, b.handleCreateTag)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove_tag",
		Description: "Delete a tag. Notes carrying it lose the tag.",
	}, b.handleRemoveTag)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove_resource",
		Description: "Delete attachments by id, or by title when exactly one attachment carries it.",
	}, b.handleRemoveResource)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "copy_link",
		Description: "Return a markdown link to a note or folder that Joplin resolves as an internal link.",
	}, b.handleCopyLink)
}
