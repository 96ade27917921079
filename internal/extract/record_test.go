package extract

import (
	"encoding/json"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/task-extractor/internal/clickup"
	"github.com/phrazzld/task-extractor/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func branchOptions() []clickup.FieldOption {
	return []clickup.FieldOption{
		{ID: "a1b2", Name: "Main Office", OrderIndex: json.RawMessage(`0`)},
		{ID: "c3d4", Name: "North Branch", OrderIndex: json.RawMessage(`"1"`)},
	}
}

func TestOptionLabel(t *testing.T) {
	t.Parallel()

	opts := branchOptions()

	assert.Equal(t, "North Branch", optionLabel("c3d4", opts), "by id")
	assert.Equal(t, "Main Office", optionLabel(float64(0), opts), "by numeric order index")
	assert.Equal(t, "North Branch", optionLabel("1", opts), "by string order index")
	assert.Equal(t, "Main Office", optionLabel("Main Office", opts), "by name")
	assert.Equal(t, "Elsewhere", optionLabel("Elsewhere", opts), "unmatched value as text")
	assert.Equal(t, "7", optionLabel(float64(7), opts))
	assert.Equal(t, "c3d4", optionLabel("c3d4", nil), "no options")
}

func TestValueString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", valueString(nil))
	assert.Equal(t, "Acme", valueString("Acme"))
	assert.Equal(t, "3", valueString(float64(3)))
	assert.Equal(t, "2.5", valueString(2.5))
	assert.Equal(t, "true", valueString(true))
}

func TestPriorityLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Normal", priorityLabel(nil))
	assert.Equal(t, "High", priorityLabel(&clickup.TaskPriority{ID: "2", Priority: "high"}))
	assert.Equal(t, "Urgent", priorityLabel(&clickup.TaskPriority{ID: "1"}))
	assert.Equal(t, "Low", priorityLabel(&clickup.TaskPriority{ID: "4", Priority: "LOW"}))
	assert.Equal(t, "Normal", priorityLabel(&clickup.TaskPriority{ID: "9"}))
}

func TestETALabel(t *testing.T) {
	t.Parallel()

	due := time.Date(2025, 2, 9, 15, 4, 0, 0, time.UTC)
	assert.Equal(t, "9/2/2025 at 3:04 PM", etaLabel(strconv.FormatInt(due.UnixMilli(), 10), time.UTC))
	assert.Equal(t, "", etaLabel("", time.UTC))
	assert.Equal(t, "Invalid Date", etaLabel("soon", time.UTC))
}

func TestExtractImages(t *testing.T) {
	t.Parallel()

	text := "See ![jam](http://x/jam.png) and <img src=\"a.gif\"> plus https://cdn.example.com/photo.JPG"
	got := extractImages(text)
	assert.Contains(t, got, "![jam](http://x/jam.png)")
	assert.Contains(t, got, `<img src="a.gif">`)
	assert.Contains(t, got, "https://cdn.example.com/photo.JPG")
	assert.Empty(t, extractImages(""))
	assert.Empty(t, extractImages("no pictures here"))
}

func TestBuildRecord(t *testing.T) {
	t.Parallel()

	defs := map[string]clickup.CustomFieldDef{
		"f-company": {ID: "f-company", Name: "Company Name", Type: "short_text"},
		"f-branch":  {ID: "f-branch", Name: "Branch", Type: "drop_down", TypeConfig: clickup.TypeConfig{Options: branchOptions()}},
		"f-subject": {ID: "f-subject", Name: "Subject"},
		"f-res":     {ID: "f-res", Name: "Resolution"},
	}
	due := time.Date(2025, 6, 20, 9, 0, 0, 0, time.UTC)
	task := clickup.Task{
		ID:          "t1",
		Name:        "Printer Maintenance",
		Description: "Tray 2 jams. ![photo](https://x/p.png)",
		Status:      clickup.TaskStatus{Status: "in progress"},
		Priority:    &clickup.TaskPriority{ID: "2", Priority: "high"},
		DueDate:     strconv.FormatInt(due.UnixMilli(), 10),
		CustomFields: []clickup.TaskField{
			{ID: "f-company", Value: "Acme"},
			{ID: "f-branch", Value: float64(1)},
			{ID: "f-subject", Value: "Paper jam"},
			{ID: "f-res", Value: nil},
			{ID: "f-unknown", Value: "ignored"},
		},
	}

	r := buildRecord(task, "Support", defs, time.UTC)

	assert.Equal(t, "t1", r.TaskID)
	assert.Equal(t, "Printer Maintenance", r.Task)
	assert.Equal(t, "Support", r.List)
	assert.Equal(t, "Acme", r.Company)
	assert.Equal(t, "North Branch", r.Branch)
	assert.Equal(t, "High", r.Priority)
	assert.Equal(t, "in progress", r.Status)
	assert.Equal(t, "20/6/2025 at 9:00 AM", r.ETA)
	assert.True(t, strings.HasPrefix(r.Extra, "Images: ![photo](https://x/p.png)"), r.Extra)
	assert.Empty(t, r.Notes)

	req := r.summaryRequest("AIzaKey")
	assert.Equal(t, "Printer Maintenance", req.SubjectID)
	assert.Equal(t, "AIzaKey", req.Credential)
	assert.Equal(t, []generation.Field{
		{Label: "Subject", Value: "Paper jam"},
		{Label: "Description", Value: "Tray 2 jams. ![photo](https://x/p.png)"},
		{Label: "Resolution", Value: "(not provided)"},
	}, req.Fields)
}

func TestBuildRecord_Defaults(t *testing.T) {
	t.Parallel()

	r := buildRecord(clickup.Task{ID: "t2"}, "L", nil, time.UTC)

	assert.Equal(t, "Unnamed Task", r.Task)
	assert.Equal(t, "Unknown", r.Status)
	assert.Equal(t, "Normal", r.Priority)
	assert.Empty(t, r.ETA)
	assert.Empty(t, r.Extra)

	req := r.summaryRequest("key")
	assert.Empty(t, req.Fields, "nothing to summarize")
}

func TestRecordJSON(t *testing.T) {
	t.Parallel()

	r := Record{TaskID: "t1", Task: "x", subject: "hidden"}
	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "hidden")
	assert.NotContains(t, string(b), "notes_kind")
	assert.Contains(t, string(b), `"task_id":"t1"`)
}
