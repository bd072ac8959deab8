package l2l

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Version is the current release of the checklist-export tool.
const Version = "1.0.0"

// ErrUnparsedTasks reports that a checklist's task list arrived from the
// server as a raw JSON string instead of structured data. The upstream API
// occasionally does this; affected checklists cannot be flattened and are
// skipped. Re-running the export for the same date range usually works.
var ErrUnparsedTasks = errors.New("tasks arrived as an unparsed string")

// Params holds the request parameters sent with an API call. The auth token
// and result limit are injected by the client and must not be set here.
type Params map[string]string

// envelope is the response wrapper every API endpoint returns.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error,omitempty"`
}

// Site is one manufacturing site as returned by the sites endpoint.
type Site struct {
	Site        int    `json:"site"`
	Description string `json:"description"`
}

// Reference is the shared shape of the plant-reference entities
// (areas, lines, machines, productcomponents). The zero value is the
// documented fallback for checklists that carry no such reference.
type Reference struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Checklist is one submitted checklist record. Reference fields (Area,
// Line, Machine, ...) are opaque numeric ids resolved separately; nil or
// zero both mean "no reference". Tasks is kept raw so that the
// unparsed-string anomaly can be detected instead of failing the decode
// of the whole page.
type Checklist struct {
	ID            int64           `json:"id"`
	Document      *int64          `json:"document"`
	Name          string          `json:"name"`
	Number        FlexString      `json:"number"`
	Created       string          `json:"created"`
	LastUpdated   string          `json:"lastupdated"`
	LastUpdatedBy string          `json:"lastupdatedby"`
	Closed        bool            `json:"closed"`
	ClosedDate    string          `json:"closeddate"`
	Dispatch      FlexString      `json:"dispatch"`
	Area          *int64          `json:"area"`
	Line          *int64          `json:"line"`
	Machine       *int64          `json:"machine"`
	Technology    *int64          `json:"technology"`
	Product       *int64          `json:"product"`
	ProductOrder  *int64          `json:"product_order"`
	BuildSequence *int64          `json:"build_sequence"`
	Tasks         json.RawMessage `json:"tasks"`
	Answers       []Answer        `json:"answers"`
}

// TaskList decodes the checklist's tasks into structured form. It returns
// ErrUnparsedTasks when the server sent the list as a JSON string.
func (c *Checklist) TaskList() ([]Task, error) {
	raw := bytes.TrimSpace(c.Tasks)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		return nil, fmt.Errorf("%w: %s", ErrUnparsedTasks, raw)
	}
	var tasks []Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return tasks, nil
}

// Task is one checklist item: either a plain prompt carrying Text, or a
// table of prompts where each column carries its own text.
type Task struct {
	Text  string     `json:"text"`
	Table *TaskTable `json:"table,omitempty"`
}

// TaskTable is the ordered grid of rows inside a table task.
type TaskTable struct {
	Rows []TaskRow `json:"rows"`
}

// TaskRow is one ordered row of columns inside a table task.
type TaskRow struct {
	Columns []TaskColumn `json:"columns"`
}

// TaskColumn is one cell prompt inside a table row.
type TaskColumn struct {
	Text string `json:"text"`
}

// Answer is one filled-in response. TaskNumber, TableRowNumber and
// TableColumnNumber are 1-based on the wire; the row/column numbers are
// present only for answers inside a table.
type Answer struct {
	TaskNumber        FlexInt    `json:"task_number"`
	TableRowNumber    *FlexInt   `json:"table_row_number"`
	TableColumnNumber *FlexInt   `json:"table_column_number"`
	Answer            FlexString `json:"answer"`
	NA                bool       `json:"na"`
	Created           string     `json:"created"`
	LastUpdatedBy     string     `json:"lastupdatedby"`
	ControlLimitLow   *float64   `json:"control_limit_low"`
	ControlLimitHigh  *float64   `json:"control_limit_high"`
	RejectLimitLow    *float64   `json:"reject_limit_low"`
	RejectLimitHigh   *float64   `json:"reject_limit_high"`
}

// FlexInt decodes a JSON number or a numeric string. The API is not
// consistent about which one it sends for index fields.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid numeric value %q: %w", s, err)
	}
	*n = FlexInt(int(f))
	return nil
}

// FlexString decodes any JSON scalar to its text form. Used for fields the
// API sends sometimes as strings and sometimes as numbers. null becomes "".
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*s = ""
		return nil
	}
	if len(raw) > 0 && raw[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	*s = FlexString(raw)
	return nil
}
