package replay

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/danielpatrickdp/trajeval/internal/signals"
	"github.com/danielpatrickdp/trajeval/internal/toolcall"
	"github.com/danielpatrickdp/trajeval/internal/value"
)

// #region recording-types

// Recording is one captured scenario execution (detailed_log.json).
type Recording struct {
	Scenario        string         `json:"scenario"`
	UserIntent      string         `json:"user_intent,omitempty"`
	Mode            string         `json:"mode,omitempty"` // "baseline" | "evaluation"
	ExecutionTime   string         `json:"execution_time,omitempty"`
	ExecutionStatus string         `json:"execution_status,omitempty"`
	EarlyStopped    bool           `json:"early_stopped,omitempty"`
	Error           *string        `json:"error,omitempty"`
	Calls           []RecordedCall `json:"tool_calls_summary"`
}

// RecordedCall is one tool call with its response.
type RecordedCall struct {
	ToolName  string                 `json:"tool_name"`
	ToolID    string                 `json:"tool_id,omitempty"`
	ToolInput map[string]value.Value `json:"tool_input"`
	Timestamp string                 `json:"timestamp,omitempty"`
	Response  *Response              `json:"response"`
	Error     *string                `json:"error"`
}

// Response is the tool result as recorded.
type Response struct {
	Content ContentBlocks `json:"content"`
	IsError *bool         `json:"is_error"`
}

// ContentBlock is one text block of a tool result.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ContentBlocks decodes either a block list or a bare string.
type ContentBlocks []ContentBlock

// UnmarshalJSON implements json.Unmarshaler.
func (c *ContentBlocks) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*c = ContentBlocks{{Type: "text", Text: s}}
		return nil
	}
	var blocks []ContentBlock
	if err := json.Unmarshal(trimmed, &blocks); err != nil {
		return err
	}
	*c = blocks
	return nil
}

// #endregion recording-types

// #region conversion

// Trajectory returns the recorded calls as invocations, in order.
func (r *Recording) Trajectory() toolcall.Trajectory {
	t := make(toolcall.Trajectory, len(r.Calls))
	for i, c := range r.Calls {
		t[i] = toolcall.Invocation{Name: c.ToolName, Args: c.ToolInput}
	}
	return t
}

// SignalCalls converts the recorded calls for execution-status analysis.
func (r *Recording) SignalCalls() []signals.Call {
	out := make([]signals.Call, len(r.Calls))
	for i, c := range r.Calls {
		sc := signals.Call{Tool: c.ToolName, Args: c.ToolInput}
		if c.Error != nil {
			sc.Error = *c.Error
		}
		if c.Response != nil {
			sc.IsError = c.Response.IsError != nil && *c.Response.IsError
			sc.Response = c.Response.Text()
		}
		out[i] = sc
	}
	return out
}

// ResponseTexts returns the response text of every call that has one.
func (r *Recording) ResponseTexts() []string {
	var out []string
	for _, c := range r.Calls {
		if t := c.Response.Text(); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Text joins the text of every content block.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	parts := make([]string, 0, len(r.Content))
	for _, b := range r.Content {
		parts = append(parts, b.Text)
	}
	return strings.Join(parts, "\n")
}

// #endregion conversion

// #region schema

//go:embed schema/recording.schema.json
var recordingSchemaJSON []byte

const recordingSchemaURL = "recording.schema.json"

var (
	schemaOnce sync.Once
	schemaInst *jsonschema.Schema
	schemaErr  error
)

func recordingSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(recordingSchemaURL, bytes.NewReader(recordingSchemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		schemaInst, schemaErr = compiler.Compile(recordingSchemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile schema: %w", schemaErr)
		}
	})
	return schemaInst, schemaErr
}

// ValidateRecording checks raw JSON against the recording schema.
func ValidateRecording(raw []byte) error {
	schema, err := recordingSchema()
	if err != nil {
		return err
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("parse recording: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("validate recording: %w", err)
	}
	return nil
}

// #endregion schema

// #region recording-io

// LoadRecording reads, validates and decodes a recording file.
func LoadRecording(path string) (*Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recording %s: %w", path, err)
	}
	return ParseRecording(data)
}

// ParseRecording validates and decodes recording JSON.
func ParseRecording(data []byte) (*Recording, error) {
	if err := ValidateRecording(data); err != nil {
		return nil, err
	}
	var r Recording
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode recording: %w", err)
	}
	return &r, nil
}

// SaveRecording writes r as indented JSON, creating parent directories.
func SaveRecording(path string, r *Recording) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode recording: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create recording dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write recording %s: %w", path, err)
	}
	return nil
}

// #endregion recording-io
