// Package prompt collects answers from the user: free text, pick lists and
// a live quick-pick whose items are reloaded as the user types.
//
// A dismissed prompt is not an error. Input returns "" and the pick
// methods return ok=false.
package prompt

import (
	"context"
	"time"
)

// DefaultDebounce is the quick-pick reload delay.
const DefaultDebounce = 250 * time.Millisecond

type (
	// Item is one entry of a pick list.
	Item struct {
		Label       string
		Description string
		// Value identifies the item to the caller, usually an id.
		Value  string
		Picked bool
	}

	// InputOptions configure a free text prompt.
	InputOptions struct {
		Prompt      string
		Placeholder string
		// Value pre-fills the box.
		Value string
	}

	// PickOptions configure a pick list.
	PickOptions struct {
		Title       string
		Placeholder string
		CanPickMany bool
	}

	// LoadFunc returns the items for the current quick-pick query.
	LoadFunc func(ctx context.Context, query string) ([]Item, error)

	// QuickPickOptions configure a live quick-pick.
	QuickPickOptions struct {
		Title       string
		Placeholder string
		Load        LoadFunc
		// Debounce delays reloads after a keystroke. Zero means DefaultDebounce.
		Debounce time.Duration
	}
)

// Labels returns the labels of items in order.
func Labels(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Label
	}
	return out
}

// Values returns the values of items in order.
func Values(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Value
	}
	return out
}
