package l2l

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestChecklistTaskList(t *testing.T) {
	tests := []struct {
		name     string
		tasks    string
		wantLen  int
		wantErr  bool
		unparsed bool
	}{
		{
			name:    "structured tasks",
			tasks:   `[{"text":"Check oil level"},{"text":"","table":{"rows":[{"columns":[{"text":"Torque"}]}]}}]`,
			wantLen: 2,
		},
		{
			name:     "unparsed string",
			tasks:    `"[{\"text\":\"Check oil level\"}]"`,
			wantErr:  true,
			unparsed: true,
		},
		{
			name:    "null tasks",
			tasks:   `null`,
			wantLen: 0,
		},
		{
			name:    "missing tasks",
			tasks:   ``,
			wantLen: 0,
		},
		{
			name:    "malformed tasks",
			tasks:   `[{"text":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cl := Checklist{Tasks: json.RawMessage(tt.tasks)}
			tasks, err := cl.TaskList()
			if (err != nil) != tt.wantErr {
				t.Fatalf("TaskList() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.unparsed && !errors.Is(err, ErrUnparsedTasks) {
				t.Errorf("TaskList() error = %v, want ErrUnparsedTasks", err)
			}
			if err == nil && len(tasks) != tt.wantLen {
				t.Errorf("TaskList() returned %d tasks, want %d", len(tasks), tt.wantLen)
			}
		})
	}
}

func TestAnswerDecoding(t *testing.T) {
	raw := `{
		"task_number": "2",
		"table_row_number": 1,
		"table_column_number": null,
		"answer": 42,
		"na": false,
		"created": "2023-01-15 08:30:00",
		"lastupdatedby": "jsmith",
		"control_limit_low": 1.5,
		"control_limit_high": null,
		"reject_limit_low": null,
		"reject_limit_high": 10
	}`

	var ans Answer
	if err := json.Unmarshal([]byte(raw), &ans); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if ans.TaskNumber != 2 {
		t.Errorf("TaskNumber = %d, want 2 (numeric string)", ans.TaskNumber)
	}
	if ans.TableRowNumber == nil || *ans.TableRowNumber != 1 {
		t.Errorf("TableRowNumber = %v, want 1", ans.TableRowNumber)
	}
	if ans.TableColumnNumber != nil {
		t.Errorf("TableColumnNumber = %v, want nil", ans.TableColumnNumber)
	}
	if ans.Answer != "42" {
		t.Errorf("Answer = %q, want %q (number rendered as text)", ans.Answer, "42")
	}
	if ans.ControlLimitLow == nil || *ans.ControlLimitLow != 1.5 {
		t.Errorf("ControlLimitLow = %v, want 1.5", ans.ControlLimitLow)
	}
	if ans.ControlLimitHigh != nil {
		t.Errorf("ControlLimitHigh = %v, want nil", ans.ControlLimitHigh)
	}
}

func TestChecklistDecodingNullReferences(t *testing.T) {
	raw := `{
		"id": 101,
		"document": 55,
		"name": "Daily Startup",
		"number": 9001,
		"closed": true,
		"closeddate": "2023-01-16 07:00:00",
		"dispatch": null,
		"area": 3,
		"line": null,
		"machine": 0,
		"tasks": [],
		"answers": null
	}`

	var cl Checklist
	if err := json.Unmarshal([]byte(raw), &cl); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if cl.ID != 101 {
		t.Errorf("ID = %d, want 101", cl.ID)
	}
	if cl.Number != "9001" {
		t.Errorf("Number = %q, want %q (numeric checklist number)", cl.Number, "9001")
	}
	if cl.Dispatch != "" {
		t.Errorf("Dispatch = %q, want empty for null", cl.Dispatch)
	}
	if cl.Area == nil || *cl.Area != 3 {
		t.Errorf("Area = %v, want 3", cl.Area)
	}
	if cl.Line != nil {
		t.Errorf("Line = %v, want nil", cl.Line)
	}
	if cl.Machine == nil || *cl.Machine != 0 {
		t.Errorf("Machine = %v, want explicit zero", cl.Machine)
	}
	if len(cl.Answers) != 0 {
		t.Errorf("Answers = %v, want empty", cl.Answers)
	}
}
