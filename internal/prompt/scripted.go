package prompt

import (
	"context"
	"strings"
	"sync"
)

type quickAnswer struct {
	query string
	value string
}

// Scripted answers prompts from queues filled ahead of time. An empty queue
// answers like a user who dismissed the prompt. Info and Error messages are
// recorded.
type Scripted struct {
	mu      sync.Mutex
	inputs  []string
	picks   [][]string
	quick   []quickAnswer
	offered [][]Item
	infos   []string
	errors  []string
}

// NewScripted creates an empty Scripted prompter.
func NewScripted() *Scripted {
	return &Scripted{}
}

// AnswerInput queues answers for Input. "" cancels.
func (s *Scripted) AnswerInput(values ...string) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = append(s.inputs, values...)
	return s
}

// AnswerPick queues one answer for Pick: the items whose Value or Label
// equals one of keys. No keys cancels.
func (s *Scripted) AnswerPick(keys ...string) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.picks = append(s.picks, keys)
	return s
}

// AnswerPickNone queues an accepted multi-pick with nothing selected.
func (s *Scripted) AnswerPickNone() *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.picks = append(s.picks, []string{})
	return s
}

// AnswerQuickPick queues one answer for QuickPick: the loader is called with
// query and the item matching value is accepted, or the first item when
// value is "".
func (s *Scripted) AnswerQuickPick(query, value string) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quick = append(s.quick, quickAnswer{query: query, value: value})
	return s
}

func (s *Scripted) Input(ctx context.Context, opts InputOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.inputs) == 0 {
		return "", nil
	}
	v := s.inputs[0]
	s.inputs = s.inputs[1:]
	return strings.TrimSpace(v), nil
}

func (s *Scripted) Pick(ctx context.Context, items []Item, opts PickOptions) ([]Item, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offered = append(s.offered, append([]Item(nil), items...))
	if len(s.picks) == 0 {
		return nil, false, nil
	}
	keys := s.picks[0]
	s.picks = s.picks[1:]
	if keys == nil || (len(keys) == 0 && !opts.CanPickMany) {
		return nil, false, nil
	}

	var picked []Item
	for _, it := range items {
		for _, k := range keys {
			if it.Value == k || it.Label == k {
				picked = append(picked, it)
				break
			}
		}
	}
	if !opts.CanPickMany {
		if len(picked) == 0 {
			return nil, false, nil
		}
		picked = picked[:1]
	}
	return picked, true, nil
}

func (s *Scripted) QuickPick(ctx context.Context, opts QuickPickOptions) (Item, bool, error) {
	s.mu.Lock()
	if len(s.quick) == 0 {
		s.mu.Unlock()
		return Item{}, false, nil
	}
	ans := s.quick[0]
	s.quick = s.quick[1:]
	s.mu.Unlock()

	if opts.Load == nil {
		return Item{}, false, nil
	}
	items, err := opts.Load(ctx, ans.query)
	if err != nil {
		return Item{}, false, err
	}

	s.mu.Lock()
	s.offered = append(s.offered, items)
	s.mu.Unlock()

	for _, it := range items {
		if ans.value == "" || it.Value == ans.value || it.Label == ans.value {
			return it, true, nil
		}
	}
	return Item{}, false, nil
}

func (s *Scripted) Info(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.infos = append(s.infos, msg)
}

func (s *Scripted) Error(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, msg)
}

// Infos returns the recorded info messages.
func (s *Scripted) Infos() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.infos...)
}

// Errors returns the recorded error messages.
func (s *Scripted) Errors() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.errors...)
}

// Offered returns the item lists shown by Pick and QuickPick, in order.
func (s *Scripted) Offered() [][]Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]Item(nil), s.offered...)
}
