package joplin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/joplin-cli/internal/types"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	c := New(Config{Token: "secret"}, WithBaseURL(srv.URL))
	return c, &calls
}

func TestConfig_BaseURL(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:41184", Config{}.BaseURL())
	assert.Equal(t, "http://localhost:27583", Config{Host: "localhost", Port: 27583}.BaseURL())
}

func TestNoteService_List(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/notes", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("token"))
		assert.Equal(t, "id,title", r.URL.Query().Get("fields"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		assert.Equal(t, "user_updated_time", r.URL.Query().Get("order_by"))
		assert.Equal(t, "DESC", r.URL.Query().Get("order_dir"))
		io.WriteString(w, `{"items":[{"id":"a","title":"first"},{"id":"b","title":"second"}],"has_more":true}`)
	})

	page, err := c.Notes.List(context.Background(), types.ListParams{
		Fields:   []string{"id", "title"},
		Limit:    20,
		OrderBy:  "user_updated_time",
		OrderDir: types.OrderDesc,
	})
	require.NoError(t, err)
	assert.True(t, page.HasMore)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "first", page.Items[0].Title)
	assert.Empty(t, page.Items[0].Body)
}

func TestNoteService_GetNotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":"Not Found"}`)
	})

	_, err := c.Notes.Get(context.Background(), "missing")
	require.Error(t, err)

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, http.StatusNotFound, nf.StatusCode)
	assert.Contains(t, err.Error(), "status code 404")
	assert.Contains(t, err.Error(), "Not Found")
}

func TestNoteService_StatusError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := c.Notes.Remove(context.Background(), "x")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)

	var nf *NotFoundError
	assert.False(t, errors.As(err, &nf))
}

func TestNoteService_CreateRequiresTitle(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := c.Notes.Create(context.Background(), types.NoteCreateParams{ParentID: "f"})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Title", ve.Field)
	assert.Zero(t, atomic.LoadInt32(calls))
}

func TestNoteService_Create(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "groceries", body["title"])
		assert.Equal(t, "folder1", body["parent_id"])
		io.WriteString(w, `{"id":"n1","title":"groceries","parent_id":"folder1"}`)
	})

	note, err := c.Notes.Create(context.Background(), types.NoteCreateParams{Title: "groceries", ParentID: "folder1"})
	require.NoError(t, err)
	assert.Equal(t, "n1", note.ID)
}

func TestNoteService_UpdateSendsOnlySetFields(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/notes/n1", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"title": "renamed"}, body)
		io.WriteString(w, `{}`)
	})

	title := "renamed"
	_, err := c.Notes.Update(context.Background(), types.NoteUpdateParams{ID: "n1", Title: &title})
	require.NoError(t, err)
}

func TestNoteService_UpdateRequiresID(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	title := "x"
	_, err := c.Notes.Update(context.Background(), types.NoteUpdateParams{Title: &title})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "ID", ve.Field)
	assert.Zero(t, atomic.LoadInt32(calls))
}

func TestNoteService_ToggleTodo(t *testing.T) {
	tests := []struct {
		name      string
		current   int64
		wantValue float64
	}{
		{name: "open becomes completed", current: 0, wantValue: float64(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC).UnixMilli())},
		{name: "completed becomes open", current: 1700000000000, wantValue: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var put map[string]any
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				switch r.Method {
				case http.MethodGet:
					assert.Equal(t, "id,todo_completed", r.URL.Query().Get("fields"))
					json.NewEncoder(w).Encode(map[string]any{"id": "t1", "todo_completed": tt.current})
				case http.MethodPut:
					require.NoError(t, json.NewDecoder(r.Body).Decode(&put))
					io.WriteString(w, `{}`)
				}
			})
			c.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

			require.NoError(t, c.Notes.ToggleTodo(context.Background(), "t1"))
			assert.Equal(t, tt.wantValue, put["todo_completed"])
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(Config{Token: "secret"}, WithBaseURL(url))
	_, err := c.Ping(context.Background())
	var ne *NetworkError
	require.True(t, errors.As(err, &ne))
	assert.NotContains(t, err.Error(), "secret")
}

func TestClient_Ping(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ping", r.URL.Path)
		io.WriteString(w, "JoplinClipperServer")
	})
	ok, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTagService_AddAndRemoveNote(t *testing.T) {
	var seen []string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodPost {
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "n1", body["id"])
		}
		io.WriteString(w, `{}`)
	})

	require.NoError(t, c.Tags.AddNote(context.Background(), "t1", "n1"))
	require.NoError(t, c.Tags.RemoveNote(context.Background(), "t1", "n1"))
	assert.Equal(t, []string{"POST /tags/t1/notes", "DELETE /tags/t1/notes/n1"}, seen)
}

func TestSearchService_Search(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "meeting", q.Get("query"))
		assert.Equal(t, "note", q.Get("type"))
		assert.Equal(t, "id,title", q.Get("fields"))
		assert.Equal(t, "100", q.Get("limit"))
		io.WriteString(w, `{"items":[{"id":"n1","title":"meeting notes"}],"has_more":false}`)
	})

	page, err := c.Search.Search(context.Background(), types.SearchParams{
		Query:  "meeting",
		Type:   "note",
		Fields: []string{"id", "title"},
		Limit:  100,
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "meeting notes", page.Items[0].Title)
}

func TestResourceService_Create(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.JSONEq(t, `{"title":"diagram.png"}`, r.FormValue("props"))
		f, hdr, err := r.FormFile("data")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "diagram.png", hdr.Filename)
		io.WriteString(w, `{"id":"r1","title":"diagram.png","mime":"image/png"}`)
	})

	path := t.TempDir() + "/diagram.png"
	require.NoError(t, writeEmpty(path))

	res, err := c.Resources.Create(context.Background(), types.ResourceCreateParams{Title: "diagram.png", Path: path})
	require.NoError(t, err)
	assert.Equal(t, "r1", res.ID)
	assert.True(t, res.IsImage())
}
