package clickup_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/task-extractor/internal/clickup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routedServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.RequestURI()]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"err":"Route not found","ECODE":"APP_001"}`))
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResources_Hierarchy(t *testing.T) {
	t.Parallel()

	srv := routedServer(t, map[string]string{
		"/team":                         `{"teams":[{"id":"10","name":"KMS"}]}`,
		"/team/10/space":                `{"spaces":[{"id":"20","name":"Engineering"}]}`,
		"/space/20/folder":              `{"folders":[{"id":"30","name":"Q3"}]}`,
		"/folder/30/list":               `{"lists":[{"id":"40","name":"Sprint"}]}`,
		"/space/20/list?archived=false": `{"lists":[{"id":"41","name":"Backlog"}]}`,
		"/list/40/task?archived=false":  `{"tasks":[{"id":"t1","name":"Ship it","status":{"status":"in progress","type":"custom"},"priority":{"id":"2","priority":"high"},"custom_fields":[{"id":"cf1","value":1}]}]}`,
		"/list/40":                      `{"id":"40","name":"Sprint","custom_fields":[{"id":"cf1","name":"Branch","type":"drop_down","type_config":{"options":[{"id":"o1","name":"Main","orderindex":0},{"id":"o2","name":"North","orderindex":"1"}]}}]}`,
	})
	c := newTestClient(t, srv.URL, &recordingSleeper{})
	ctx := context.Background()

	teams, err := c.Teams(ctx)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, "KMS", teams[0].Name)

	spaces, err := c.Spaces(ctx, "10")
	require.NoError(t, err)
	assert.Equal(t, "Engineering", spaces[0].Name)

	folders, err := c.Folders(ctx, "20")
	require.NoError(t, err)
	assert.Equal(t, "30", folders[0].ID)

	lists, err := c.FolderLists(ctx, "30")
	require.NoError(t, err)
	assert.Equal(t, "Sprint", lists[0].Name)

	loose, err := c.SpaceLists(ctx, "20")
	require.NoError(t, err)
	assert.Equal(t, "Backlog", loose[0].Name)

	tasks, err := c.Tasks(ctx, "40", false)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "in progress", tasks[0].Status.Status)
	require.NotNil(t, tasks[0].Priority)
	assert.Equal(t, "high", tasks[0].Priority.Priority)
	assert.Equal(t, float64(1), tasks[0].CustomFields[0].Value)

	detail, err := c.ListDetail(ctx, "40")
	require.NoError(t, err)
	require.Len(t, detail.CustomFields, 1)
	opts := detail.CustomFields[0].TypeConfig.Options
	require.Len(t, opts, 2)
	idx, ok := opts[0].Index()
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
	idx, ok = opts[1].Index()
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestResources_PropagateAPIError(t *testing.T) {
	t.Parallel()

	srv := routedServer(t, map[string]string{})
	c := newTestClient(t, srv.URL, &recordingSleeper{})

	_, err := c.Tasks(context.Background(), "missing", false)
	assert.ErrorIs(t, err, clickup.ErrOther)
}

func TestFieldOption_Index(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw    string
		want   int
		wantOK bool
	}{
		{`3`, 3, true},
		{`"7"`, 7, true},
		{`"x"`, 0, false},
		{`null`, 0, false},
		{``, 0, false},
	}
	for _, tt := range tests {
		opt := clickup.FieldOption{OrderIndex: json.RawMessage(tt.raw)}
		got, ok := opt.Index()
		assert.Equal(t, tt.wantOK, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}
