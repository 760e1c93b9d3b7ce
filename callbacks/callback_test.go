package callbacks_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/effective-security/sonarmcp/callbacks"
	"github.com/effective-security/sonarmcp/mocks/mocktools"
	"github.com/effective-security/sonarmcp/pkg/toolerr"
	"github.com/effective-security/sonarmcp/tools"
	"github.com/effective-security/xlog"
	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

type fakeTool struct{ name string }

func (t *fakeTool) Name() string                   { return t.name }
func (t *fakeTool) Description() string            { return "desc" }
func (t *fakeTool) Summary() string                { return "summary" }
func (t *fakeTool) Parameters() *jsonschema.Schema { return nil }

func testCall() *tools.ToolCall {
	return &tools.ToolCall{
		ID:   "call-1",
		Name: "search_web",
		Arguments: map[string]any{
			"query": "fusion energy",
			"model": "sonar",
		},
	}
}

func testResult() *tools.Result {
	return &tools.Result{
		Text:             "Fusion has advanced.",
		Model:            "sonar",
		PromptTokens:     50,
		CompletionTokens: 200,
		TotalTokens:      250,
	}
}

func TestPrinter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cb := callbacks.NewPrinter(&buf, callbacks.ModeVerbose)
	tool := &fakeTool{name: "search_web"}
	ctx := context.Background()

	cb.OnToolStart(ctx, tool, testCall())
	cb.OnToolEnd(ctx, tool, testCall(), testResult())
	cb.OnToolError(ctx, tool, testCall(), toolerr.New(toolerr.RateLimited, "slow down"))
	cb.OnToolError(ctx, tool, testCall(), errors.New("boom"))

	assert.Equal(t, `Tool Start: search_web (call-1)
Input: {model=sonar, query=fusion energy}
Tool End: search_web (call-1)
Tokens: sonar model, 50 prompt, 200 completion, 250 total
Output: Fusion has advanced.
Tool Error: search_web (call-1): RATE_LIMITED: slow down
Tool Error: search_web (call-1): INTERNAL: boom
`, buf.String())

	buf.Reset()
	cb = callbacks.NewPrinter(&buf, callbacks.ModeDefault)
	cb.OnToolEnd(ctx, tool, testCall(), &tools.Result{Text: "local"})
	assert.Equal(t, "Tool End: search_web (call-1)\n", buf.String())
}

func TestPackageLogger(t *testing.T) {
	var buf bytes.Buffer
	xlog.SetFormatter(xlog.NewStringFormatter(&buf))
	xlog.SetGlobalLogLevel(xlog.DEBUG)
	defer xlog.SetGlobalLogLevel(xlog.INFO)

	logger := xlog.NewPackageLogger("github.com/effective-security/sonarmcp", "callbacks_test")
	cb := callbacks.NewPackageLogger(logger)
	tool := &fakeTool{name: "search_web"}
	ctx := context.Background()

	call := testCall()
	call.Arguments["image_base64"] = strings.Repeat("A", 1000)
	cb.OnToolStart(ctx, tool, call)
	cb.OnToolEnd(ctx, tool, call, testResult())
	cb.OnToolError(ctx, tool, call, toolerr.InvalidArgf("query", "query is required"))

	out := buf.String()
	assert.Contains(t, out, "tool_start")
	assert.Contains(t, out, "tool_end")
	assert.Contains(t, out, "tool_error")
	assert.Contains(t, out, "INVALID_ARGUMENT")
	assert.Contains(t, out, "more bytes")
	assert.NotContains(t, out, strings.Repeat("A", 300))
}

func TestFanout(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	m1 := mocktools.NewMockCallback(ctrl)
	m2 := mocktools.NewMockCallback(ctrl)
	tool := mocktools.NewMockITool(ctrl)

	ctx := context.Background()
	call := testCall()
	res := testResult()
	err := toolerr.New(toolerr.Timeout, "timed out")

	for _, m := range []*mocktools.MockCallback{m1, m2} {
		gomock.InOrder(
			m.EXPECT().OnToolStart(ctx, tool, call),
			m.EXPECT().OnToolEnd(ctx, tool, call, res),
			m.EXPECT().OnToolError(ctx, tool, call, err),
		)
	}

	f := callbacks.NewFanout(m1, callbacks.NewNoop())
	f.Add(m2)
	f.OnToolStart(ctx, tool, call)
	f.OnToolEnd(ctx, tool, call, res)
	f.OnToolError(ctx, tool, call, err)
}
