package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/phrazzld/task-extractor/internal/clickup"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, exitOK},
		{"authentication", fmt.Errorf("list: %w", &clickup.APIError{Kind: clickup.KindAuthentication}), exitAuthentication},
		{"shard routing", &clickup.APIError{Kind: clickup.KindShardRouting, Code: "SHARD_006"}, exitShardRouting},
		{"other api error", &clickup.APIError{Kind: clickup.KindOther}, exitFailure},
		{"plain error", errors.New("boom"), exitFailure},
		{"cancelled", context.Canceled, exitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestRootCommand_BindsFlags(t *testing.T) {
	t.Parallel()

	v := viper.New()
	cmd := newRootCommand(v)
	require.NoError(t, cmd.ParseFlags([]string{
		"--workspace", "KMS",
		"--space", "Kikkoman",
		"--include-completed",
		"--exclude-status", "Blocked",
		"--exclude-status", "Dormant",
		"--date-filter", "ThisWeek",
		"--ai-summary",
		"-o", "out.jsonl",
		"--concurrency", "4",
		"--log-level", "debug",
	}))

	assert.Equal(t, "KMS", v.GetString("extract.workspace"))
	assert.Equal(t, "Kikkoman", v.GetString("extract.space"))
	assert.True(t, v.GetBool("extract.include_completed"))
	assert.Equal(t, []string{"Blocked", "Dormant"}, v.GetStringSlice("extract.exclude_statuses"))
	assert.Equal(t, "ThisWeek", v.GetString("extract.date_filter"))
	assert.True(t, v.GetBool("llm.enabled"))
	assert.Equal(t, "out.jsonl", v.GetString("extract.output"))
	assert.Equal(t, 4, v.GetInt("extract.concurrency"))
	assert.Equal(t, "debug", v.GetString("log.level"))
}

// clickupStub serves a one-list space.
func clickupStub(t *testing.T, teamStatus int) *httptest.Server {
	t.Helper()

	created := strconv.FormatInt(time.Now().UnixMilli(), 10)
	tasks := `{"tasks":[{"id":"t1","name":"Order toner","status":{"status":"open","type":"open"},"date_created":"` +
		created + `"}]}`
	routes := map[string]string{
		"/team":            `{"teams":[{"id":"1","name":"KMS"}]}`,
		"/team/1/space":    `{"spaces":[{"id":"20","name":"Kikkoman"}]}`,
		"/space/20/folder": `{"folders":[]}`,
		"/list/40":         `{"id":"40","name":"Backlog","custom_fields":[]}`,
		"/space/20/list?archived=false": `{"lists":[{"id":"40","name":"Backlog"}]}`,
		"/list/40/task?archived=false":  tasks,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/team" && teamStatus != http.StatusOK {
			w.WriteHeader(teamStatus)
			_, _ = w.Write([]byte(`{"err":"Token invalid","ECODE":"OAUTH_025"}`))
			return
		}
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

func stubConfig(srv *httptest.Server) *viper.Viper {
	v := viper.New()
	v.Set("clickup.api_key", "pk_test")
	v.Set("clickup.base_url", srv.URL)
	v.Set("clickup.base_delay", time.Millisecond)
	v.Set("clickup.max_delay", 5*time.Millisecond)
	v.Set("extract.workspace", "KMS")
	v.Set("extract.space", "Kikkoman")
	v.Set("extract.output", "-")
	v.Set("log.level", "error")
	return v
}

func TestRun_WritesRecords(t *testing.T) {
	srv := clickupStub(t, http.StatusOK)

	var out bytes.Buffer
	err := run(context.Background(), stubConfig(srv), "", &out)

	require.NoError(t, err)
	assert.Contains(t, out.String(), `"task_id":"t1"`)
	assert.Contains(t, out.String(), `"list":"Backlog"`)
	assert.NotContains(t, out.String(), "notes_kind", "summaries are off by default")
}

func TestRun_AuthenticationFailure(t *testing.T) {
	srv := clickupStub(t, http.StatusUnauthorized)

	var out bytes.Buffer
	err := run(context.Background(), stubConfig(srv), "", &out)

	require.Error(t, err)
	assert.Equal(t, exitAuthentication, exitCode(err))
	assert.Empty(t, out.String())
}

func TestRun_InvalidConfig(t *testing.T) {
	v := viper.New()
	v.Set("clickup.api_key", "pk_test")

	err := run(context.Background(), v, "", &bytes.Buffer{})

	require.Error(t, err)
	assert.Equal(t, exitFailure, exitCode(err))
}
