package tools

import (
	"context"
	"reflect"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/sonarmcp/pkg/schema"
	"github.com/invopop/jsonschema"
)

//go:generate mockgen -source=tools.go -destination=../mocks/mocktools/tools_mock.gen.go -package mocktools

// ITool is an operation exposed to the client.
type ITool interface {
	// Name returns the name of the Tool.
	Name() string
	// Description returns the description of the tool, as advertised to the client.
	Description() string
	// Summary returns the one line summary of the tool.
	Summary() string
	// Parameters returns the JSON schema of the tool arguments.
	Parameters() *jsonschema.Schema
}

// Callback is notified about each tool call.
type Callback interface {
	OnToolStart(ctx context.Context, tool ITool, call *ToolCall)
	OnToolEnd(ctx context.Context, tool ITool, call *ToolCall, result *Result)
	OnToolError(ctx context.Context, tool ITool, call *ToolCall, err error)
}

// Args is implemented by the argument record of each tool.
type Args interface {
	ToolName() string
}

// ToolCall is a single inbound tool invocation.
type ToolCall struct {
	// ID is assigned by the server for log correlation
	ID        string
	Name      string
	Arguments map[string]any
}

// Result is the outcome of a successful tool call.
type Result struct {
	Text string
	// Model is the model used for the call, empty for local tools
	Model            string
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

// Definition describes a tool and the type of its arguments.
type Definition struct {
	name        string
	description string
	summary     string
	argsType    reflect.Type
	schema      *schema.Schema
}

var _ ITool = (*Definition)(nil)

// NewDefinition creates a tool definition from the argument record type.
func NewDefinition[T Args](name, summary, description string) (*Definition, error) {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Struct {
		return nil, errors.Errorf("tool %s: arguments must be a struct, got %s", name, t)
	}
	sc, err := schema.New(t)
	if err != nil {
		return nil, errors.WithMessagef(err, "tool %s", name)
	}
	return &Definition{
		name:        name,
		summary:     summary,
		description: description,
		argsType:    t,
		schema:      sc,
	}, nil
}

// Name returns the tool name.
func (d *Definition) Name() string { return d.name }

// Summary returns the one line summary.
func (d *Definition) Summary() string { return d.summary }

// Description returns the full description.
func (d *Definition) Description() string { return d.description }

// Parameters returns the input schema.
func (d *Definition) Parameters() *jsonschema.Schema { return d.schema.Parameters }

// Schema returns the reflected schema.
func (d *Definition) Schema() *schema.Schema { return d.schema }

// newArgs returns a pointer to a zero argument record.
func (d *Definition) newArgs() Args {
	return reflect.New(d.argsType).Interface().(Args)
}

// hasArgument returns true if the tool declares the argument.
func (d *Definition) hasArgument(name string) bool {
	_, ok := d.schema.Property(name)
	return ok
}

// GetNames returns the names of the tools.
func GetNames(list ...ITool) []string {
	names := make([]string, 0, len(list))
	for _, t := range list {
		names = append(names, t.Name())
	}
	return names
}

// GetDescriptions returns a bullet list of tool names and summaries.
func GetDescriptions(list ...ITool) string {
	var b strings.Builder
	for _, t := range list {
		b.WriteString("- ")
		b.WriteString(t.Name())
		b.WriteString(": ")
		b.WriteString(t.Summary())
		b.WriteString("\n")
	}
	return b.String()
}

// Find returns the tool by name.
func Find(list []ITool, name string) ITool {
	idx := slices.IndexFunc(list, func(t ITool) bool { return t.Name() == name })
	if idx < 0 {
		return nil
	}
	return list[idx]
}
