package joplin

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/joplin-cli/internal/types"
)

func writeEmpty(path string) error {
	return os.WriteFile(path, nil, 0o644)
}

type fakePages struct {
	pages     []types.Page[int]
	requested []int
	failOn    int
}

func (f *fakePages) fetch(ctx context.Context, p types.ListParams) (types.Page[int], error) {
	f.requested = append(f.requested, p.Page)
	if f.failOn != 0 && p.Page == f.failOn {
		return types.Page[int]{}, errors.New("boom")
	}
	if p.Page > len(f.pages) {
		return types.Page[int]{}, nil
	}
	return f.pages[p.Page-1], nil
}

func TestAll(t *testing.T) {
	tests := []struct {
		name          string
		pages         []types.Page[int]
		want          []int
		wantRequested []int
	}{
		{
			name: "single page",
			pages: []types.Page[int]{
				{Items: []int{1, 2}, HasMore: false},
			},
			want:          []int{1, 2},
			wantRequested: []int{1},
		},
		{
			name: "concatenates in order",
			pages: []types.Page[int]{
				{Items: []int{1, 2, 3}, HasMore: true},
				{Items: []int{4, 5}, HasMore: true},
				{Items: []int{6}, HasMore: false},
			},
			want:          []int{1, 2, 3, 4, 5, 6},
			wantRequested: []int{1, 2, 3},
		},
		{
			name: "empty page terminates",
			pages: []types.Page[int]{
				{Items: []int{1}, HasMore: true},
				{Items: nil, HasMore: true},
				{Items: []int{99}, HasMore: false},
			},
			want:          []int{1},
			wantRequested: []int{1, 2},
		},
		{
			name:          "no results",
			pages:         []types.Page[int]{{}},
			want:          nil,
			wantRequested: []int{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakePages{pages: tt.pages}
			got, err := All[int](context.Background(), f.fetch, types.ListParams{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantRequested, f.requested)
		})
	}
}

func TestAll_ErrorAborts(t *testing.T) {
	f := &fakePages{
		pages: []types.Page[int]{
			{Items: []int{1}, HasMore: true},
			{Items: []int{2}, HasMore: true},
			{Items: []int{3}, HasMore: false},
		},
		failOn: 2,
	}
	got, err := All[int](context.Background(), f.fetch, types.ListParams{})
	require.Error(t, err)
	assert.Nil(t, got)
	assert.Equal(t, []int{1, 2}, f.requested)
}

func TestAll_KeepsQuery(t *testing.T) {
	var seen []types.ListParams
	fetch := func(ctx context.Context, p types.ListParams) (types.Page[int], error) {
		seen = append(seen, p)
		return types.Page[int]{Items: []int{p.Page}, HasMore: p.Page < 2}, nil
	}
	_, err := All[int](context.Background(), fetch, types.ListParams{OrderBy: "title", Fields: []string{"id"}})
	require.NoError(t, err)
	require.Len(t, seen, 2)
	for i, p := range seen {
		assert.Equal(t, i+1, p.Page)
		assert.Equal(t, "title", p.OrderBy)
		assert.Equal(t, []string{"id"}, p.Fields)
	}
}
