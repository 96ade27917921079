package clickup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Team is a ClickUp workspace.
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Space is a container of folders and lists inside a workspace.
type Space struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Folder groups lists inside a space.
type Folder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// List holds tasks. CustomFields is only populated by ListDetail.
type List struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	CustomFields []CustomFieldDef `json:"custom_fields,omitempty"`
}

// CustomFieldDef is a list-level custom field definition.
type CustomFieldDef struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	TypeConfig TypeConfig `json:"type_config"`
}

// TypeConfig carries dropdown options for drop_down fields.
type TypeConfig struct {
	Options []FieldOption `json:"options"`
}

// FieldOption is one dropdown choice.
type FieldOption struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	OrderIndex json.RawMessage `json:"orderindex"`
}

// Index returns the option's order index, which the API serializes as
// either a number or a numeric string.
func (o FieldOption) Index() (int, bool) {
	if len(o.OrderIndex) == 0 || string(o.OrderIndex) == "null" {
		return 0, false
	}
	var n int
	if err := json.Unmarshal(o.OrderIndex, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(o.OrderIndex, &s); err == nil {
		if n, err := strconv.Atoi(s); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Task is the subset of task fields the extractor reads.
type Task struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Status       TaskStatus    `json:"status"`
	Priority     *TaskPriority `json:"priority"`
	DueDate      string        `json:"due_date"`
	DateCreated  string        `json:"date_created"`
	Archived     bool          `json:"archived"`
	CustomFields []TaskField   `json:"custom_fields"`
}

// TaskStatus is the workflow state of a task.
type TaskStatus struct {
	Status string `json:"status"`
	Type   string `json:"type"`
}

// TaskPriority is nil on tasks without a priority.
type TaskPriority struct {
	ID       string `json:"id"`
	Priority string `json:"priority"`
}

// TaskField is a custom field value on a task.
type TaskField struct {
	ID    string `json:"id"`
	Value any    `json:"value"`
}

// Teams lists the workspaces the token can see.
func (c *Client) Teams(ctx context.Context) ([]Team, error) {
	var resp struct {
		Teams []Team `json:"teams"`
	}
	if err := c.Get(ctx, "/team", &resp); err != nil {
		return nil, err
	}
	return resp.Teams, nil
}

// Spaces lists the spaces of a workspace.
func (c *Client) Spaces(ctx context.Context, teamID string) ([]Space, error) {
	var resp struct {
		Spaces []Space `json:"spaces"`
	}
	if err := c.Get(ctx, "/team/"+url.PathEscape(teamID)+"/space", &resp); err != nil {
		return nil, err
	}
	return resp.Spaces, nil
}

// Folders lists the folders of a space.
func (c *Client) Folders(ctx context.Context, spaceID string) ([]Folder, error) {
	var resp struct {
		Folders []Folder `json:"folders"`
	}
	if err := c.Get(ctx, "/space/"+url.PathEscape(spaceID)+"/folder", &resp); err != nil {
		return nil, err
	}
	return resp.Folders, nil
}

// FolderLists lists the lists inside a folder.
func (c *Client) FolderLists(ctx context.Context, folderID string) ([]List, error) {
	var resp struct {
		Lists []List `json:"lists"`
	}
	if err := c.Get(ctx, "/folder/"+url.PathEscape(folderID)+"/list", &resp); err != nil {
		return nil, err
	}
	return resp.Lists, nil
}

// SpaceLists lists the folderless, unarchived lists of a space.
func (c *Client) SpaceLists(ctx context.Context, spaceID string) ([]List, error) {
	var resp struct {
		Lists []List `json:"lists"`
	}
	if err := c.Get(ctx, "/space/"+url.PathEscape(spaceID)+"/list?archived=false", &resp); err != nil {
		return nil, err
	}
	return resp.Lists, nil
}

// Tasks lists the tasks of a list.
func (c *Client) Tasks(ctx context.Context, listID string, includeArchived bool) ([]Task, error) {
	var resp struct {
		Tasks []Task `json:"tasks"`
	}
	endpoint := fmt.Sprintf("/list/%s/task?archived=%t", url.PathEscape(listID), includeArchived)
	if err := c.Get(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// ListDetail fetches a list with its custom field definitions.
func (c *Client) ListDetail(ctx context.Context, listID string) (*List, error) {
	var list List
	if err := c.Get(ctx, "/list/"+url.PathEscape(listID), &list); err != nil {
		return nil, err
	}
	return &list, nil
}
