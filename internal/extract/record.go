package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/task-extractor/internal/clickup"
	"github.com/phrazzld/task-extractor/internal/generation"
)

// etaLayout renders due dates without leading zeros, e.g. "2/9/2025 at 3:04 PM".
const etaLayout = "2/1/2006 at 3:04 PM"

// notProvided marks an empty field in the summary prompt.
const notProvided = "(not provided)"

// Record is one exported task.
type Record struct {
	TaskID   string `json:"task_id"`
	Task     string `json:"task"`
	List     string `json:"list"`
	Company  string `json:"company"`
	Branch   string `json:"branch"`
	Priority string `json:"priority"`
	Status   string `json:"status"`
	ETA      string `json:"eta"`
	Notes    string `json:"notes"`
	// NotesKind tells how Notes was produced; empty when enrichment is off.
	NotesKind string `json:"notes_kind,omitempty"`
	Extra     string `json:"extra,omitempty"`

	subject     string
	description string
	resolution  string
}

// summaryRequest builds the generation request for r. Empty fields are
// marked as not provided; when every field is empty the request carries no
// fields at all.
func (r *Record) summaryRequest(credential string) generation.Request {
	req := generation.Request{SubjectID: r.Task, Credential: credential}
	if r.subject == "" && r.description == "" && r.resolution == "" {
		return req
	}
	req.Fields = []generation.Field{
		{Label: "Subject", Value: orNotProvided(r.subject)},
		{Label: "Description", Value: orNotProvided(r.description)},
		{Label: "Resolution", Value: orNotProvided(r.resolution)},
	}
	return req
}

func orNotProvided(s string) string {
	if strings.TrimSpace(s) == "" {
		return notProvided
	}
	return s
}

// priorityNames maps ClickUp priority ids to labels.
var priorityNames = map[string]string{
	"1": "Urgent",
	"2": "High",
	"3": "Normal",
	"4": "Low",
}

func priorityLabel(p *clickup.TaskPriority) string {
	if p == nil {
		return "Normal"
	}
	if name := strings.TrimSpace(p.Priority); name != "" {
		return strings.ToUpper(name[:1]) + strings.ToLower(name[1:])
	}
	if name, ok := priorityNames[p.ID]; ok {
		return name
	}
	return "Normal"
}

func etaLabel(dueDate string, loc *time.Location) string {
	if dueDate == "" {
		return ""
	}
	due, ok := parseMillis(dueDate)
	if !ok {
		return "Invalid Date"
	}
	return due.In(loc).Format(etaLayout)
}

var imagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`!\[.*?\]\(.*?\)`),
	regexp.MustCompile(`(?i)<img[^>]*>`),
	regexp.MustCompile(`(?i)https?://\S*\.(?:jpg|jpeg|png|gif|bmp|webp)`),
	regexp.MustCompile(`(?i)attachments?[:.]?\S*\.(?:jpg|jpeg|png|gif|bmp|webp)`),
}

// extractImages lists image references found in a task description.
func extractImages(text string) string {
	if text == "" {
		return ""
	}
	var images []string
	for _, re := range imagePatterns {
		images = append(images, re.FindAllString(text, -1)...)
	}
	return strings.Join(images, "; ")
}

// optionLabel resolves a dropdown value to its option name, matching by
// option id, then by order index, then by name. Unmatched values are
// returned as text.
func optionLabel(value any, options []clickup.FieldOption) string {
	raw := valueString(value)
	if len(options) == 0 {
		return raw
	}

	for _, opt := range options {
		if opt.ID != "" && opt.ID == raw {
			return opt.Name
		}
	}
	if n, err := strconv.Atoi(raw); err == nil {
		for _, opt := range options {
			if idx, ok := opt.Index(); ok && idx == n {
				return opt.Name
			}
		}
	}
	for _, opt := range options {
		if opt.Name == raw {
			return opt.Name
		}
	}
	return raw
}

// valueString renders a decoded JSON value as text. Whole numbers print
// without a fraction so dropdown order indexes compare as integers.
func valueString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// buildRecord maps a task and its list's field definitions onto a Record.
func buildRecord(t clickup.Task, listName string, defs map[string]clickup.CustomFieldDef, loc *time.Location) Record {
	name := t.Name
	if name == "" {
		name = "Unnamed Task"
	}
	status := t.Status.Status
	if status == "" {
		status = "Unknown"
	}

	r := Record{
		TaskID:      t.ID,
		Task:        name,
		List:        listName,
		Priority:    priorityLabel(t.Priority),
		Status:      status,
		ETA:         etaLabel(t.DueDate, loc),
		description: t.Description,
	}

	for _, field := range t.CustomFields {
		def, ok := defs[field.ID]
		if !ok || field.Value == nil {
			continue
		}
		value := valueString(field.Value)
		if value == "" {
			continue
		}

		fieldName := strings.ToLower(def.Name)
		switch {
		case strings.Contains(fieldName, "company"):
			r.Company = value
		case strings.Contains(fieldName, "branch"), strings.Contains(fieldName, "location"):
			r.Branch = optionLabel(field.Value, def.TypeConfig.Options)
		case strings.Contains(fieldName, "subject"):
			r.subject = value
		case strings.Contains(fieldName, "resolution"):
			r.resolution = value
		}
	}

	if images := extractImages(t.Description); images != "" {
		r.Extra = "Images: " + images
	}
	return r
}
